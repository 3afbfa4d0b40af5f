// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/dblokhin/gringo-core/src/consensus"
)

// buildChain adds a linear run of headers to idx, starting from parent, and
// returns the entries in ascending-height order.
func buildChain(idx *headerIndex, parent consensus.Hash, startHeight uint64, n int, seed byte) []*headerEntry {
	entries := make([]*headerEntry, 0, n)
	prev := parent
	for i := 0; i < n; i++ {
		h := &consensus.BlockHeader{
			Height:   startHeight + uint64(i),
			Previous: prev,
			Nonce:    uint64(seed)<<8 | uint64(i),
		}
		hash := testHash(seed + byte(i))
		idx.add(hash, h)
		entries = append(entries, idx.get(hash))
		prev = hash
	}
	return entries
}

func TestHeaderIndexAddGet(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})

	if idx.get(genesisHash) == nil {
		t.Fatalf("get: expected genesis entry present")
	}
	if idx.get(testHash(77)) != nil {
		t.Fatalf("get: expected no entry for unknown hash")
	}
}

func TestHeaderIndexFindForkPointSameBranch(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	chain := buildChain(idx, genesisHash, 1, 5, 10)

	fork := idx.findForkPoint(chain[4], chain[1])
	if string(fork.hash) != string(chain[1].hash) {
		t.Fatalf("findForkPoint: expected ancestor to be chain[1] since it's on the same branch as the tip")
	}
}

func TestHeaderIndexFindForkPointDivergentBranches(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	genesis := &consensus.BlockHeader{Height: 0, Previous: testHash(255)}
	idx.add(genesisHash, genesis)

	common := buildChain(idx, genesisHash, 1, 2, 20)
	branchA := buildChain(idx, common[1].hash, 3, 3, 40)
	branchB := buildChain(idx, common[1].hash, 3, 3, 60)

	fork := idx.findForkPoint(branchA[2], branchB[2])
	if string(fork.hash) != string(common[1].hash) {
		t.Fatalf("findForkPoint: expected shared ancestor common[1]")
	}
}

func TestHeaderIndexFindForkPointUnequalHeights(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})

	common := buildChain(idx, genesisHash, 1, 2, 20)
	short := buildChain(idx, common[1].hash, 3, 1, 40)
	long := buildChain(idx, common[1].hash, 3, 4, 60)

	fork := idx.findForkPoint(long[3], short[0])
	if string(fork.hash) != string(common[1].hash) {
		t.Fatalf("findForkPoint: expected shared ancestor common[1] despite unequal branch lengths")
	}
}

func TestHeaderIndexPathFromAncestor(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	chain := buildChain(idx, genesisHash, 1, 4, 10)

	path := idx.pathFromAncestor(chain[3], chain[0])
	if len(path) != 3 {
		t.Fatalf("pathFromAncestor: got %d entries, want 3", len(path))
	}
	for i, e := range path {
		if e.header.Height != chain[0].header.Height+uint64(i)+1 {
			t.Fatalf("pathFromAncestor: entry %d has height %d, want ascending order", i, e.header.Height)
		}
	}
	if string(path[len(path)-1].hash) != string(chain[3].hash) {
		t.Fatalf("pathFromAncestor: expected last entry to be the tip")
	}
}

func TestHeaderIndexPathFromAncestorEmptyWhenEqual(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	entry := idx.get(genesisHash)

	path := idx.pathFromAncestor(entry, entry)
	if len(path) != 0 {
		t.Fatalf("pathFromAncestor: got %d entries, want 0 when tip == ancestor", len(path))
	}
}
