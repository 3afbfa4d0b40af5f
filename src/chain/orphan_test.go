// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/dblokhin/gringo-core/src/consensus"
)

func testHash(b byte) consensus.Hash {
	h := make(consensus.Hash, consensus.BlockHashSize)
	h[len(h)-1] = b
	return h
}

func blockWithParent(parent consensus.Hash, nonce byte) *consensus.Block {
	pow := make([]uint32, consensus.ProofSize)
	pow[0] = uint32(nonce)
	return &consensus.Block{
		Header: consensus.BlockHeader{
			Previous: parent,
			Nonce:    uint64(nonce),
			POW:      consensus.Proof{Nonces: pow},
		},
	}
}

func TestOrphanPoolAddHasRemove(t *testing.T) {
	p := newOrphanPool(4)
	h1, h2 := testHash(1), testHash(2)
	b1 := blockWithParent(testHash(0), 1)

	if !p.Add(h1, b1) {
		t.Fatalf("Add: expected true for new hash")
	}
	if p.Add(h1, b1) {
		t.Fatalf("Add: expected false for already-buffered hash")
	}
	if !p.Has(h1) {
		t.Fatalf("Has: expected h1 buffered")
	}
	if p.Has(h2) {
		t.Fatalf("Has: expected h2 not buffered")
	}

	p.Remove(h1)
	if p.Has(h1) {
		t.Fatalf("Has: expected h1 removed")
	}
	if p.Len() != 0 {
		t.Fatalf("Len: got %d, want 0", p.Len())
	}
}

func TestOrphanPoolEvictsOldestWhenFull(t *testing.T) {
	p := newOrphanPool(2)
	h1, h2, h3 := testHash(1), testHash(2), testHash(3)

	p.Add(h1, blockWithParent(testHash(0), 1))
	p.Add(h2, blockWithParent(testHash(0), 2))
	p.Add(h3, blockWithParent(testHash(0), 3))

	if p.Has(h1) {
		t.Fatalf("expected oldest entry h1 evicted")
	}
	if !p.Has(h2) || !p.Has(h3) {
		t.Fatalf("expected h2 and h3 still buffered")
	}
	if p.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", p.Len())
	}
}

func TestOrphanPoolFindByParent(t *testing.T) {
	p := newOrphanPool(4)
	parent := testHash(9)
	child := blockWithParent(parent, 1)
	childHash := consensus.Hash(child.Hash())
	p.Add(childHash, child)

	gotHash, gotBlock := p.FindByParent(parent)
	if gotBlock == nil {
		t.Fatalf("FindByParent: expected a match")
	}
	if !bytesEqual(gotHash, childHash) {
		t.Fatalf("FindByParent: returned wrong hash")
	}

	if _, miss := p.FindByParent(testHash(250)); miss != nil {
		t.Fatalf("FindByParent: expected no match for unrelated parent")
	}
}

func TestOrphanPoolFindEligibleSkipsIneligible(t *testing.T) {
	p := newOrphanPool(4)
	known := map[string]bool{}
	markKnown := func(h consensus.Hash) { known[string(h)] = true }

	b1 := blockWithParent(testHash(1), 1)
	b2 := blockWithParent(testHash(2), 2)
	h1, h2 := consensus.Hash(b1.Hash()), consensus.Hash(b2.Hash())
	p.Add(h1, b1)
	p.Add(h2, b2)

	markKnown(testHash(2))
	_, block := p.FindEligible(func(parent consensus.Hash) bool {
		return known[string(parent)]
	})
	if block == nil || block != b2 {
		t.Fatalf("FindEligible: expected b2, the only eligible orphan")
	}
}
