// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"

	"github.com/dblokhin/gringo-core/src/consensus"
)

// headerEntry is one node of the candidate view: every header the Manager
// has accepted, independent of whether its block body has ever been seen.
type headerEntry struct {
	header *consensus.BlockHeader
	hash   consensus.Hash
}

// headerIndex is the in-memory candidate view: a hash-indexed DAG of
// accepted headers, rooted at genesis. Mutating the confirmed view (the
// BlockDB height index and TxHashSet) is expensive; swinging the candidate
// tip to point at a different branch already present in this index is not,
// which is the reason the two views are kept separate (mirrors the
// distinction rubin-protocol's block store draws between its in-memory
// header DAG and its on-disk confirmed chain).
type headerIndex struct {
	byHash map[hashKey]*headerEntry
}

func newHeaderIndex() *headerIndex {
	return &headerIndex{byHash: make(map[hashKey]*headerEntry)}
}

func (idx *headerIndex) add(hash consensus.Hash, header *consensus.BlockHeader) {
	idx.byHash[toHashKey(hash)] = &headerEntry{header: header, hash: hash}
}

func (idx *headerIndex) get(hash consensus.Hash) *headerEntry {
	return idx.byHash[toHashKey(hash)]
}

// findForkPoint walks back from a and b independently (first to equal
// height, then in lockstep) until their hashes agree, returning the common
// ancestor's entry. Grounded on the ancestor search in rubin-protocol's
// store/reorg.go (findForkPoint).
func (idx *headerIndex) findForkPoint(a, b *headerEntry) *headerEntry {
	for a.header.Height > b.header.Height {
		a = idx.get(a.header.Previous)
	}
	for b.header.Height > a.header.Height {
		b = idx.get(b.header.Previous)
	}
	for !bytes.Equal(a.hash, b.hash) {
		a = idx.get(a.header.Previous)
		b = idx.get(b.header.Previous)
	}
	return a
}

// pathFromAncestor walks back from tip to ancestor (exclusive), then
// reverses the result so the path reads in ascending-height application
// order. Grounded on rubin-protocol's store/reorg.go (pathFromAncestor).
func (idx *headerIndex) pathFromAncestor(tip, ancestor *headerEntry) []*headerEntry {
	var reversed []*headerEntry
	cur := tip
	for !bytes.Equal(cur.hash, ancestor.hash) {
		reversed = append(reversed, cur)
		cur = idx.get(cur.header.Previous)
	}
	path := make([]*headerEntry, len(reversed))
	for i, e := range reversed {
		path[len(reversed)-1-i] = e
	}
	return path
}
