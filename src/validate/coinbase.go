// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package validate

import (
	"errors"

	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
)

// Coinbase checks the rules specific to a block's reward: exactly one
// coinbase kernel, locked until height+maturity, and exactly one
// coinbase output. The coinbase output's amount is not checked here.
// Block.Validate (via
// verifyCoinbase/verifyKernels) only caps the coinbase count at
// MaxBlockCoinbaseOutputs/Kernels (currently 1, so the cap happens to
// coincide with "at most one"); it never requires there be one, and
// never checks the lock height or subsidy amount.
func Coinbase(block *consensus.Block, height, maturity uint64) error {
	var coinbaseKernels, coinbaseOutputs int

	for i := range block.Kernels {
		k := &block.Kernels[i]
		if k.Features&consensus.CoinbaseKernel == 0 {
			continue
		}
		coinbaseKernels++

		if k.LockHeight != height+maturity {
			return gringerr.New(gringerr.BadData, "Coinbase", errors.New("coinbase kernel lock height does not match height plus maturity"))
		}
	}

	for i := range block.Outputs {
		o := &block.Outputs[i]
		if o.Features&consensus.CoinbaseOutput == 0 {
			continue
		}
		coinbaseOutputs++
	}

	if coinbaseKernels != 1 {
		return gringerr.New(gringerr.BadData, "Coinbase", errors.New("block must have exactly one coinbase kernel"))
	}
	if coinbaseOutputs != 1 {
		return gringerr.New(gringerr.BadData, "Coinbase", errors.New("block must have exactly one coinbase output"))
	}

	return nil
}
