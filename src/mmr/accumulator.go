// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package mmr

import "golang.org/x/crypto/blake2b"

func hashPair(left, right Hash) Hash {
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return blake2b.Sum256(buf[:])
}

// Accumulator wraps a HashFile with the append/rewind/root operations that
// make it behave as a Merkle Mountain Range: AppendLeaf backfills every
// interior node that becomes computable, Root bags the current peaks on
// demand (the root is never itself stored), and Rewind truncates back to an
// earlier, valid MMR size.
type Accumulator struct {
	hf *HashFile
}

// NewAccumulator wraps an already-opened hash log.
func NewAccumulator(hf *HashFile) *Accumulator {
	return &Accumulator{hf: hf}
}

// Size is the current node count (leaves and interior nodes together).
func (a *Accumulator) Size() uint64 {
	return a.hf.Size()
}

// AppendLeaf writes leafHash at the next free position, then appends every
// parent node that becomes fully determined as a result:
//
//  1. write leafHash at the next free position;
//  2. while the position just written is the right child of a
//     soon-to-be-complete parent, hash it together with its already-present
//     left sibling and append the result, climbing one level;
//  3. stop once the newest node is not yet a right child.
//
// It returns the position the leaf itself was written at.
func (a *Accumulator) AppendLeaf(leafHash Hash) (uint64, error) {
	leafPos, err := a.hf.Append(leafHash)
	if err != nil {
		return 0, err
	}

	pos := leafPos
	height := uint64(0)
	for HeightOf(pos+1) == height+1 {
		siblingPos := pos - (uint64(1) << (height + 1)) + 1
		left, err := a.hf.Get(siblingPos)
		if err != nil {
			return 0, err
		}
		right, err := a.hf.Get(pos)
		if err != nil {
			return 0, err
		}
		pos, err = a.hf.Append(hashPair(left, right))
		if err != nil {
			return 0, err
		}
		height++
	}
	return leafPos, nil
}

// Peaks returns the 1-based positions of the current peaks, highest first.
func (a *Accumulator) Peaks() []uint64 {
	return Peaks(a.hf.Size())
}

// Root bags the current peaks into a single root hash. Returns the zero
// Hash for an empty accumulator.
func (a *Accumulator) Root() (Hash, error) {
	peaks := a.Peaks()
	if len(peaks) == 0 {
		return Hash{}, nil
	}

	hashes := make([]Hash, len(peaks))
	for i, p := range peaks {
		h, err := a.hf.Get(p)
		if err != nil {
			return Hash{}, err
		}
		hashes[i] = h
	}
	return bagPeaks(hashes), nil
}

// bagPeaks folds peak hashes right to left: bag([p0, p1, ..., pk]) =
// H(p0 || H(p1 || H(... || pk))).
func bagPeaks(peaks []Hash) Hash {
	acc := peaks[len(peaks)-1]
	for i := len(peaks) - 2; i >= 0; i-- {
		acc = hashPair(peaks[i], acc)
	}
	return acc
}

// Rewind truncates the accumulator back to targetSize nodes, which must be
// a valid MMR size (normally obtained from a previously observed header's
// MMR-size field).
func (a *Accumulator) Rewind(targetSize uint64) {
	a.hf.Rewind(targetSize)
}

// Get reads the raw node hash at 1-based position pos.
func (a *Accumulator) Get(pos uint64) (Hash, error) {
	return a.hf.Get(pos)
}

// Commit flushes staged appends/rewinds to disk.
func (a *Accumulator) Commit() error {
	return a.hf.Commit()
}

// Rollback discards staged appends/rewinds.
func (a *Accumulator) Rollback() {
	a.hf.Rollback()
}

// Close releases the underlying file handle.
func (a *Accumulator) Close() error {
	return a.hf.Close()
}
