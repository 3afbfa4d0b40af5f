// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/dblokhin/gringo-core/src/consensus"
)

func TestHeaderBeatsHigherDifficultyWins(t *testing.T) {
	candidate := &consensus.BlockHeader{TotalDifficulty: 20}
	current := &consensus.BlockHeader{TotalDifficulty: 10}
	if !headerBeats(candidate, testHash(1), current, testHash(2)) {
		t.Fatalf("expected higher TotalDifficulty to win")
	}
	if headerBeats(current, testHash(2), candidate, testHash(1)) {
		t.Fatalf("expected lower TotalDifficulty to lose")
	}
}

func TestHeaderBeatsTieBrokenByLowerHash(t *testing.T) {
	candidate := &consensus.BlockHeader{TotalDifficulty: 10}
	current := &consensus.BlockHeader{TotalDifficulty: 10}

	lower, higher := testHash(1), testHash(2)
	if !headerBeats(candidate, lower, current, higher) {
		t.Fatalf("expected the lexicographically lower hash to win an exact tie")
	}
	if headerBeats(candidate, higher, current, lower) {
		t.Fatalf("expected the lexicographically higher hash to lose an exact tie")
	}
}

// managerWithHeaders builds a Manager wired only to an in-memory headerIndex, enough
// to exercise logic that never touches BlockDB/TxHashSet.
func managerWithHeaders(idx *headerIndex, tip *headerEntry) *Manager {
	return &Manager{headers: idx, candidateTip: tip}
}

func TestManagerBlockListEndingAt(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	chain := buildChain(idx, genesisHash, 1, 5, 10)

	m := managerWithHeaders(idx, chain[4])
	blist := m.blockListEndingAt(chain[4], 3)
	if len(blist) != 3 {
		t.Fatalf("blockListEndingAt: got %d entries, want 3", len(blist))
	}
	for i := 1; i < len(blist); i++ {
		if blist[i].Header.Height <= blist[i-1].Header.Height {
			t.Fatalf("blockListEndingAt: expected ascending heights, got %v then %v",
				blist[i-1].Header.Height, blist[i].Header.Height)
		}
	}
	if blist[len(blist)-1].Header.Height != chain[4].header.Height {
		t.Fatalf("blockListEndingAt: last entry should be the requested tip")
	}
}

func TestManagerBlockListEndingAtStopsAtGenesis(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	chain := buildChain(idx, genesisHash, 1, 2, 10)

	m := managerWithHeaders(idx, chain[1])
	blist := m.blockListEndingAt(chain[1], 100)
	if len(blist) != 3 {
		t.Fatalf("blockListEndingAt: got %d entries, want 3 (genesis + 2)", len(blist))
	}
	if blist[0].Header.Height != 0 {
		t.Fatalf("blockListEndingAt: expected first entry to be genesis")
	}
}

func TestManagerGetBlockHeadersFromKnownLocator(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	chain := buildChain(idx, genesisHash, 1, 4, 10)

	m := managerWithHeaders(idx, chain[3])
	loc := Locator{Hashes: []consensus.Hash{chain[1].hash}}

	headers := m.GetBlockHeaders(loc)
	if len(headers) != 2 {
		t.Fatalf("GetBlockHeaders: got %d headers, want 2 (heights 3 and 4)", len(headers))
	}
	if headers[0].Height != chain[2].header.Height || headers[1].Height != chain[3].header.Height {
		t.Fatalf("GetBlockHeaders: unexpected heights %d, %d", headers[0].Height, headers[1].Height)
	}
}

func TestManagerGetBlockHeadersUnknownLocatorReturnsNil(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	chain := buildChain(idx, genesisHash, 1, 2, 10)

	m := managerWithHeaders(idx, chain[1])
	loc := Locator{Hashes: []consensus.Hash{testHash(250)}}

	if headers := m.GetBlockHeaders(loc); headers != nil {
		t.Fatalf("GetBlockHeaders: expected nil for a locator with no known hash, got %d headers", len(headers))
	}
}

func TestManagerGetBlockHeadersDivergentLocatorFindsForkPoint(t *testing.T) {
	idx := newHeaderIndex()
	genesisHash := testHash(0)
	idx.add(genesisHash, &consensus.BlockHeader{Height: 0, Previous: testHash(255)})
	common := buildChain(idx, genesisHash, 1, 2, 20)
	ours := buildChain(idx, common[1].hash, 3, 2, 40)
	theirs := buildChain(idx, common[1].hash, 3, 1, 60)

	m := managerWithHeaders(idx, ours[1])
	loc := Locator{Hashes: []consensus.Hash{theirs[0].hash}}

	headers := m.GetBlockHeaders(loc)
	if len(headers) != 2 {
		t.Fatalf("GetBlockHeaders: got %d headers, want 2 (our branch past the fork point)", len(headers))
	}
	if headers[0].Height != ours[0].header.Height || headers[1].Height != ours[1].header.Height {
		t.Fatalf("GetBlockHeaders: expected our branch's headers past the shared ancestor")
	}
}
