// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package mmr

// RootOf builds a throwaway, in-memory MMR over leaves (in order) and
// returns its bagged root, without touching disk. It is used wherever a
// caller needs an MMR root over a sequence of hashes that isn't itself
// backed by a persistent hash log, such as the leaf-set's own root
// (spec.md section 4.3: the unspent-output bitmap is itself committed to
// via a throwaway MMR over 1024-leaf chunks of the bitmap).
func RootOf(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return Hash{}
	}

	var nodes []Hash // 1-based: nodes[0] is position 1

	for _, leaf := range leaves {
		nodes = append(nodes, leaf)
		pos := uint64(len(nodes))
		height := uint64(0)
		for HeightOf(pos+1) == height+1 {
			siblingPos := pos - (uint64(1) << (height + 1)) + 1
			combined := hashPair(nodes[siblingPos-1], nodes[pos-1])
			nodes = append(nodes, combined)
			pos = uint64(len(nodes))
			height++
		}
	}

	peakPositions := Peaks(uint64(len(nodes)))
	hashes := make([]Hash, len(peakPositions))
	for i, p := range peakPositions {
		hashes[i] = nodes[p-1]
	}
	return bagPeaks(hashes)
}
