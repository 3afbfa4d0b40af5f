// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package leafset tracks which leaves of the output and range-proof MMRs
// are currently unspent. It is a thin, Grin-domain-specific façade over
// bitmapfile.File: adding a leaf index marks it unspent, removing it marks
// it spent, and Root folds the whole bitmap into a single commitment
// hash so headers can pin the unspent set without storing it directly.
package leafset

import (
	"fmt"

	"github.com/dblokhin/gringo-core/src/bitmapfile"
	"github.com/dblokhin/gringo-core/src/mmr"
	"golang.org/x/crypto/blake2b"
)

// chunkBits is the number of bitmap bits folded into a single leaf of the
// throwaway root MMR (1024 bits = 128 bytes per chunk).
const chunkBits = 1024
const chunkBytes = chunkBits / 8

// LeafSet is the unspent-leaf bitmap for one PMMR (output or range-proof).
type LeafSet struct {
	bitmap *bitmapfile.File
}

// Load opens the leaf-set bitmap at path, creating an empty one if absent.
func Load(path string) (*LeafSet, error) {
	bm, err := bitmapfile.Load(path)
	if err != nil {
		return nil, err
	}
	return &LeafSet{bitmap: bm}, nil
}

// Add marks leafIndex (0-based leaf position) as unspent.
func (s *LeafSet) Add(leafIndex uint64) {
	s.bitmap.Set(leafIndex)
}

// Remove marks leafIndex as spent.
func (s *LeafSet) Remove(leafIndex uint64) {
	s.bitmap.Unset(leafIndex)
}

// Contains reports whether leafIndex is currently unspent.
func (s *LeafSet) Contains(leafIndex uint64) bool {
	return s.bitmap.IsSet(leafIndex)
}

// Rewind truncates the set to leaves below numLeaves, re-adding any
// positions in restore (outputs that become unspent again as later blocks
// that spent them are unwound).
func (s *LeafSet) Rewind(numLeaves uint64, restore []uint64) {
	s.bitmap.Rewind(numLeaves, restore)
}

// Commit persists staged Add/Remove/Rewind calls.
func (s *LeafSet) Commit() error {
	return s.bitmap.Commit()
}

// Rollback discards staged Add/Remove/Rewind calls.
func (s *LeafSet) Rollback() {
	s.bitmap.Rollback()
}

// Snapshot persists a copy of the current bitmap tagged with blockHash, so
// a later txhashset zip export can bundle the exact leaf-set a block
// validated against.
func (s *LeafSet) Snapshot(blockHash [32]byte) error {
	path := fmt.Sprintf("%s.%x", s.bitmap.Path(), blockHash[:6])
	snap, err := bitmapfile.Create(path, s.bitmap.ToRoaring())
	if err != nil {
		return err
	}
	_ = snap
	return nil
}

// Root folds the bitmap, chunked 1024 bits at a time, into a single hash
// via a throwaway MMR over the chunk hashes. numLeaves is the current size
// of the PMMR this leaf-set tracks (its total leaf count, spent or not).
func (s *LeafSet) Root(numLeaves uint64) mmr.Hash {
	numChunks := (numLeaves + chunkBits - 1) / chunkBits
	chunkHashes := make([]mmr.Hash, 0, numChunks)

	for c := uint64(0); c < numChunks; c++ {
		var raw [chunkBytes]byte
		base := c * chunkBytes
		for j := uint64(0); j < chunkBytes; j++ {
			raw[j] = s.bitmap.GetByte(base + j)
		}
		chunkHashes = append(chunkHashes, mmr.Hash(blake2b.Sum256(raw[:])))
	}

	return mmr.RootOf(chunkHashes)
}
