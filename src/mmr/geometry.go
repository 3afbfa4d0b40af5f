// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package mmr implements the append-only Merkle Mountain Range accumulator
// used by the kernel, output and range-proof hash logs, plus the pure
// geometry functions (peak-finding, height, bagging) that make the MMR's
// root a function of size alone.
//
// Node positions are 1-based, matching the standard MMR-paper / Grin
// numbering (spec.md section 9: "MMR node enumeration uses the standard
// 1-based MMR layout (Grin-compatible) so that external state zip files
// remain interchangeable with existing peers"). The height/peak algorithms
// below are grounded on forestrie-go-merklelog/mmr (PosHeight,
// JumpLeftPerfect, Peaks), which already operates on 1-based positions;
// they are re-derived here against this package's own Hash type.
package mmr

import "math/bits"

func bitLength(n uint64) uint64 {
	return uint64(bits.Len64(n))
}

// allOnes reports whether n's binary representation is all 1 bits, i.e.
// n == 2^k - 1 for some k. Positions with this property are exactly the
// positions of "fully grown" perfect subtree roots.
func allOnes(n uint64) bool {
	if n == 0 {
		return false
	}
	return (uint64(1)<<uint64(bits.OnesCount64(n)))-1 == n
}

// jumpLeftPerfect walks the 1-based position pos to the left-most node at
// the same height, by subtracting the size of the largest perfect subtree
// that precedes it.
func jumpLeftPerfect(pos uint64) uint64 {
	msb := uint64(1) << (bitLength(pos) - 1)
	return pos - (msb - 1)
}

// HeightOf returns the zero-based height of the node at 1-based position pos.
func HeightOf(pos uint64) uint64 {
	for !allOnes(pos) {
		pos = jumpLeftPerfect(pos)
	}
	return bitLength(pos) - 1
}

// IsLeaf reports whether the node at 1-based position pos is a leaf.
func IsLeaf(pos uint64) bool {
	return HeightOf(pos) == 0
}

// jumpRightSibling returns the position of the node at the same height as
// pos, immediately to its right.
func jumpRightSibling(pos uint64) uint64 {
	return pos + (uint64(1) << (HeightOf(pos) + 1)) - 1
}

// descendLeftChild returns the position of pos's top-most left child, or
// false if pos is a leaf.
func descendLeftChild(pos uint64) (uint64, bool) {
	h := HeightOf(pos)
	if h == 0 {
		return 0, false
	}
	return pos - (uint64(1) << h), true
}

// Parent returns the 1-based position of the parent of pos within an MMR
// large enough to contain it.
func Parent(pos uint64) uint64 {
	h := HeightOf(pos)
	if HeightOf(pos+1) == h+1 {
		// pos is the right child: the parent sits immediately after it.
		return pos + 1
	}
	// pos is the left child: the parent sits past the whole right subtree.
	return pos + (uint64(1) << (h + 1))
}

// Sibling returns the 1-based position of pos's sibling (the other child of
// Parent(pos)).
func Sibling(pos uint64) uint64 {
	h := HeightOf(pos)
	if HeightOf(pos+1) == h+1 {
		return pos - (uint64(1) << (h + 1)) + 1
	}
	return pos + (uint64(1) << (h + 1)) - 1
}

// Peaks returns the 1-based positions of the mountain peaks for an MMR of
// the given size, left to right (the highest, left-most peak first). It
// returns nil if size is not a valid MMR size (a size whose next position
// would itself be an interior node with no corresponding children yet).
func Peaks(size uint64) []uint64 {
	if size == 0 {
		return nil
	}
	if HeightOf(size+1) > HeightOf(size) {
		return nil
	}

	top := uint64(1)
	for top-1 <= size {
		top <<= 1
	}
	top = (top >> 1) - 1
	if top == 0 {
		return nil
	}

	peaks := []uint64{top}
	peak := top
outer:
	for {
		peak = jumpRightSibling(peak)
		for peak > size {
			if p, ok := descendLeftChild(peak); ok {
				peak = p
				continue
			}
			break outer
		}
		peaks = append(peaks, peak)
	}
	return peaks
}

// LeafCount returns the number of leaves present in an MMR of the given
// valid size.
func LeafCount(size uint64) uint64 {
	count := uint64(0)
	for _, p := range Peaks(size) {
		count += (uint64(1) << (HeightOf(p) + 1)) >> 1
	}
	return count
}
