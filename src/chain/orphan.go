// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/dblokhin/gringo-core/src/consensus"
)

// orphanPool buffers blocks whose parent is not yet known, capped at a
// fixed capacity with FIFO eviction of the oldest entry once full.
type orphanPool struct {
	capacity int

	order  []hashKey
	byHash map[hashKey]*consensus.Block
}

type hashKey [32]byte

func toHashKey(h consensus.Hash) hashKey {
	var k hashKey
	copy(k[:], h)
	return k
}

func newOrphanPool(capacity int) *orphanPool {
	return &orphanPool{
		capacity: capacity,
		byHash:   make(map[hashKey]*consensus.Block),
	}
}

// Add buffers block, evicting the oldest orphan if the pool is full.
// Returns false if the block is already buffered.
func (p *orphanPool) Add(hash consensus.Hash, block *consensus.Block) bool {
	key := toHashKey(hash)
	if _, exists := p.byHash[key]; exists {
		return false
	}

	if len(p.order) >= p.capacity && len(p.order) > 0 {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.byHash, oldest)
	}

	p.order = append(p.order, key)
	p.byHash[key] = block
	return true
}

// Has reports whether hash is currently buffered.
func (p *orphanPool) Has(hash consensus.Hash) bool {
	_, ok := p.byHash[toHashKey(hash)]
	return ok
}

// Remove drops hash from the pool, if present.
func (p *orphanPool) Remove(hash consensus.Hash) {
	key := toHashKey(hash)
	if _, ok := p.byHash[key]; !ok {
		return
	}
	delete(p.byHash, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// FindByParent returns the oldest buffered orphan whose declared parent is
// parentHash, or nil if none is buffered.
func (p *orphanPool) FindByParent(parentHash consensus.Hash) (consensus.Hash, *consensus.Block) {
	return p.FindEligible(func(h consensus.Hash) bool {
		return bytesEqual(h, parentHash)
	})
}

// FindEligible returns the oldest buffered orphan whose declared parent
// satisfies pred, or nil if none qualifies.
func (p *orphanPool) FindEligible(pred func(parentHash consensus.Hash) bool) (consensus.Hash, *consensus.Block) {
	for _, key := range p.order {
		block := p.byHash[key]
		if pred(block.Header.Previous) {
			hash := consensus.Hash(block.Hash())
			return hash, block
		}
	}
	return nil, nil
}

// Len reports the number of currently buffered orphans.
func (p *orphanPool) Len() int {
	return len(p.order)
}

func bytesEqual(a, b []byte) bool {
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
