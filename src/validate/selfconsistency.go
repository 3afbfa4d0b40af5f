// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package validate holds the consensus validators that check a block for
// internal correctness (SelfConsistency), Mimblewimble balance
// (KernelSums), and coinbase maturity (Coinbase). None of them touch
// chain state; they're pure functions of the block (and, for Coinbase
// and KernelSums, a handful of scalar parameters).
package validate

import (
	"errors"

	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
)

// SelfConsistency checks everything about a block that can be checked
// without chain context: body sort order and dedup, every kernel's
// excess signature, every output's range proof, and a minimum fee.
//
// It builds on the teacher's Block.Validate (header/PoW check, sort
// order, coinbase-count cap, range proofs), supplementing the two
// things that validator leaves incomplete: Block.verifyKernels only
// signature-checks coinbase kernels, and neither it nor any other
// teacher method rejects a body with duplicate entries or
// below-minimum fees.
func SelfConsistency(block *consensus.Block, baseFee uint64) error {
	if err := block.Validate(); err != nil {
		return gringerr.New(gringerr.BadData, "SelfConsistency", err)
	}

	if err := verifyNoDuplicates(block); err != nil {
		return gringerr.New(gringerr.BadData, "SelfConsistency", err)
	}

	for i := range block.Kernels {
		k := &block.Kernels[i]
		if err := k.Validate(); err != nil {
			return gringerr.New(gringerr.BadData, "SelfConsistency", err)
		}
		if k.Features&consensus.CoinbaseKernel == 0 && k.Fee < baseFee {
			return gringerr.New(gringerr.BadData, "SelfConsistency", errors.New("kernel fee below minimum"))
		}
	}

	return nil
}

// verifyNoDuplicates rejects a body with repeated inputs, outputs, or
// kernels. Block.verifySorted already guarantees the lists are sorted by
// hash, so a duplicate always appears as two adjacent, identical
// entries.
func verifyNoDuplicates(block *consensus.Block) error {
	for i := 1; i < len(block.Inputs); i++ {
		if hashEqual(block.Inputs[i-1].Hash(), block.Inputs[i].Hash()) {
			return errors.New("duplicate input in block body")
		}
	}
	for i := 1; i < len(block.Outputs); i++ {
		if hashEqual(block.Outputs[i-1].Hash(), block.Outputs[i].Hash()) {
			return errors.New("duplicate output in block body")
		}
	}
	for i := 1; i < len(block.Kernels); i++ {
		if hashEqual(block.Kernels[i-1].Hash(), block.Kernels[i].Hash()) {
			return errors.New("duplicate kernel in block body")
		}
	}
	return nil
}

func hashEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
