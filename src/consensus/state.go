// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/dblokhin/gringo-core/src/codec"
	"github.com/dblokhin/gringo-core/src/secp256k1zkp"
)

// BlockSums is the aggregate balance commitment carried alongside a block:
// the running sum of all output commitments and the running sum of all
// kernel excesses (offset already folded in), since genesis. Validating a
// new block's kernel sums against the parent's BlockSums is the identity
// check that stands in for re-verifying every historical transaction.
type BlockSums struct {
	OutputSum secp256k1zkp.Commitment
	KernelSum secp256k1zkp.Commitment
}

func (s *BlockSums) Bytes() []byte {
	w := codec.NewWriter()
	w.WriteBytes(s.OutputSum)
	w.WriteBytes(s.KernelSum)
	return w.Bytes()
}

func (s *BlockSums) Read(r *codec.Reader) error {
	out, err := r.ReadBytes()
	if err != nil {
		return err
	}
	ker, err := r.ReadBytes()
	if err != nil {
		return err
	}
	s.OutputSum = out
	s.KernelSum = ker
	return nil
}

// OutputLocation pins an output commitment to the MMR position it was
// written at, the 0-based index of that leaf among the output MMR's leaves
// alone (the indexing space the output and range-proof leaf-sets use), and
// the height of the block that created it (needed to evaluate coinbase
// maturity when the output is later spent).
type OutputLocation struct {
	MMRPosition uint64
	LeafIndex   uint64
	Height      uint64
}

func (l *OutputLocation) Bytes() []byte {
	w := codec.NewWriter()
	w.WriteU64(l.MMRPosition)
	w.WriteU64(l.LeafIndex)
	w.WriteU64(l.Height)
	return w.Bytes()
}

func (l *OutputLocation) Read(r *codec.Reader) error {
	pos, err := r.ReadU64()
	if err != nil {
		return err
	}
	leafIdx, err := r.ReadU64()
	if err != nil {
		return err
	}
	height, err := r.ReadU64()
	if err != nil {
		return err
	}
	l.MMRPosition = pos
	l.LeafIndex = leafIdx
	l.Height = height
	return nil
}

// SpentOutput records an output that a block's inputs spent, so that
// unwinding the block (a reorg) can restore both its leaf-set membership
// and its OutputLocation without needing to replay the whole chain.
type SpentOutput struct {
	Commit   secp256k1zkp.Commitment
	Location OutputLocation
}

func (s *SpentOutput) Bytes() []byte {
	w := codec.NewWriter()
	w.WriteBytes(s.Commit)
	w.WriteFixed(s.Location.Bytes())
	return w.Bytes()
}

func (s *SpentOutput) Read(r *codec.Reader) error {
	commit, err := r.ReadBytes()
	if err != nil {
		return err
	}
	var loc OutputLocation
	if err := loc.Read(r); err != nil {
		return err
	}
	s.Commit = commit
	s.Location = loc
	return nil
}

// SpentOutputList is the per-block record persisted to the SPENT_OUTPUTS
// column family: every output the block's inputs consumed, in input order.
type SpentOutputList []SpentOutput

func (l SpentOutputList) Bytes() []byte {
	w := codec.NewWriter()
	w.WriteU8(1) // version
	w.WriteCount(len(l))
	for i := range l {
		w.WriteFixed(l[i].Bytes())
	}
	return w.Bytes()
}

func (l *SpentOutputList) Read(r *codec.Reader) error {
	if _, err := r.ReadU8(); err != nil {
		return err
	}
	n, err := r.ReadCount()
	if err != nil {
		return err
	}
	out := make(SpentOutputList, n)
	for i := range out {
		if err := out[i].Read(r); err != nil {
			return err
		}
	}
	*l = out
	return nil
}
