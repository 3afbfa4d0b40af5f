// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package validate

import (
	"math/big"
	"testing"

	bp "github.com/yoss22/bulletproofs"

	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/secp256k1zkp"
)

func kernelWithExcess(seed int64, fee uint64) consensus.TxKernel {
	excess := bp.ScalarMulPoint(&bp.G, big.NewInt(seed))
	return consensus.TxKernel{Fee: fee, Excess: *excess}
}

func TestVerifyNoDuplicatesAcceptsDistinctKernels(t *testing.T) {
	block := &consensus.Block{
		Kernels: consensus.TxKernelList{
			kernelWithExcess(1, 1),
			kernelWithExcess(2, 2),
		},
	}
	if err := verifyNoDuplicates(block); err != nil {
		t.Fatalf("verifyNoDuplicates: %v", err)
	}
}

func TestVerifyNoDuplicatesRejectsRepeatedKernel(t *testing.T) {
	k := kernelWithExcess(1, 1)
	block := &consensus.Block{
		Kernels: consensus.TxKernelList{k, k},
	}
	if err := verifyNoDuplicates(block); err == nil {
		t.Fatalf("verifyNoDuplicates: expected duplicate-kernel error, got nil")
	}
}

func TestVerifyNoDuplicatesRejectsRepeatedInput(t *testing.T) {
	commit := secp256k1zkp.Commitment(make([]byte, secp256k1zkp.PedersenCommitmentSize))
	block := &consensus.Block{
		Inputs: consensus.InputList{
			{Commit: commit},
			{Commit: commit},
		},
	}
	if err := verifyNoDuplicates(block); err == nil {
		t.Fatalf("verifyNoDuplicates: expected duplicate-input error, got nil")
	}
}
