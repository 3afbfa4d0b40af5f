// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package validate

import (
	"testing"

	"github.com/dblokhin/gringo-core/src/consensus"
)

func coinbaseBlock(height, maturity uint64) *consensus.Block {
	return &consensus.Block{
		Kernels: consensus.TxKernelList{{
			Features:   consensus.CoinbaseKernel,
			LockHeight: height + maturity,
		}},
		Outputs: consensus.OutputList{{
			Features: consensus.CoinbaseOutput,
		}},
	}
}

func TestCoinbaseAccepts(t *testing.T) {
	block := coinbaseBlock(10, 25)
	if err := Coinbase(block, 10, 25); err != nil {
		t.Fatalf("Coinbase: %v", err)
	}
}

func TestCoinbaseRejectsWrongLockHeight(t *testing.T) {
	block := coinbaseBlock(10, 25)
	block.Kernels[0].LockHeight = 11 + 25
	if err := Coinbase(block, 10, 25); err == nil {
		t.Fatalf("Coinbase: expected lock-height mismatch error, got nil")
	}
}

func TestCoinbaseRejectsMissingCoinbaseKernel(t *testing.T) {
	block := coinbaseBlock(10, 25)
	block.Kernels = nil
	if err := Coinbase(block, 10, 25); err == nil {
		t.Fatalf("Coinbase: expected missing-coinbase-kernel error, got nil")
	}
}

func TestCoinbaseRejectsMissingCoinbaseOutput(t *testing.T) {
	block := coinbaseBlock(10, 25)
	block.Outputs = nil
	if err := Coinbase(block, 10, 25); err == nil {
		t.Fatalf("Coinbase: expected missing-coinbase-output error, got nil")
	}
}

func TestCoinbaseRejectsExtraCoinbaseKernel(t *testing.T) {
	block := coinbaseBlock(10, 25)
	block.Kernels = append(block.Kernels, block.Kernels[0])
	if err := Coinbase(block, 10, 25); err == nil {
		t.Fatalf("Coinbase: expected extra-coinbase-kernel error, got nil")
	}
}
