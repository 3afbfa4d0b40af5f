// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package validate

import (
	"errors"
	"math/big"

	bp "github.com/yoss22/bulletproofs"

	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
	"github.com/dblokhin/gringo-core/src/secp256k1zkp"
)

// KernelSums verifies the Mimblewimble balance identity: the sum of
// outputs (adjusted for the coinbase/fee overage and, cumulatively, any
// prior BlockSums) must equal the sum of kernel excesses plus the
// kernel offset. It is grounded line-for-line in
// KernelSumValidator::ValidateKernelSums.
func KernelSums(inputs consensus.InputList, outputs consensus.OutputList, kernels consensus.TxKernelList, overage int64, kernelOffset consensus.Hash, prior *consensus.BlockSums) (*consensus.BlockSums, error) {
	positiveOut := make([]bp.Point, 0, len(outputs)+2)
	for _, o := range outputs {
		if o.Commit == nil {
			return nil, gringerr.New(gringerr.BadData, "KernelSums", errors.New("output has no commitment"))
		}
		positiveOut = append(positiveOut, *o.Commit)
	}

	negativeIn := make([]bp.Point, 0, len(inputs)+1)
	for _, in := range inputs {
		p, err := secp256k1zkp.DecompressCommitment(in.Commit)
		if err != nil {
			return nil, gringerr.New(gringerr.BadData, "KernelSums", err)
		}
		negativeIn = append(negativeIn, *p)
	}

	switch {
	case overage > 0:
		positiveOut = append(positiveOut, *secp256k1zkp.CommitTransparent(uint64(overage)))
	case overage < 0:
		negativeIn = append(negativeIn, *secp256k1zkp.CommitTransparent(uint64(-overage)))
	}

	if prior != nil {
		priorOut, err := secp256k1zkp.DecompressCommitment(prior.OutputSum)
		if err != nil {
			return nil, gringerr.New(gringerr.BadData, "KernelSums", err)
		}
		positiveOut = append(positiveOut, *priorOut)
	}

	utxoSum := secp256k1zkp.SumCommitments(positiveOut, negativeIn)
	if utxoSum == nil {
		return nil, gringerr.New(gringerr.BadData, "KernelSums", errors.New("no output or input commitments to sum"))
	}

	kernelPoints := make([]bp.Point, 0, len(kernels)+1)
	for _, k := range kernels {
		kernelPoints = append(kernelPoints, k.Excess)
	}
	if prior != nil {
		priorKernel, err := secp256k1zkp.DecompressCommitment(prior.KernelSum)
		if err != nil {
			return nil, gringerr.New(gringerr.BadData, "KernelSums", err)
		}
		kernelPoints = append(kernelPoints, *priorKernel)
	}

	kernelSum := secp256k1zkp.SumCommitments(kernelPoints, nil)
	if kernelSum == nil {
		return nil, gringerr.New(gringerr.BadData, "KernelSums", errors.New("no kernel excesses to sum"))
	}

	kernelSumWithOffset := kernelSum
	if offset := new(big.Int).SetBytes(kernelOffset); offset.Sign() != 0 {
		kernelSumWithOffset = secp256k1zkp.SumCommitments(
			[]bp.Point{*kernelSum, *secp256k1zkp.OffsetCommit(offset)}, nil)
	}

	if utxoSum.X.Cmp(kernelSumWithOffset.X) != 0 || utxoSum.Y.Cmp(kernelSumWithOffset.Y) != 0 {
		return nil, gringerr.New(gringerr.BadData, "KernelSums", errors.New("utxo sum does not equal kernel sum plus offset"))
	}

	return &consensus.BlockSums{
		OutputSum: secp256k1zkp.CompressCommitment(utxoSum),
		KernelSum: secp256k1zkp.CompressCommitment(kernelSum),
	}, nil
}
