// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package consensus

import "math/big"

// Work is the cumulative proof-of-work total difficulty accumulated since
// genesis. Go has no u128 primitive, so it is backed by math/big, the same
// choice the rubin-protocol node store makes for its cumulative-work index
// field. Work is only ever added to or compared; it is never hashed or
// written to the wire directly (the header's own TotalDifficulty field
// keeps the teacher's original uint64 wire encoding).
type Work struct {
	v *big.Int
}

// ZeroWork is the cumulative work of the empty chain (before genesis).
func ZeroWork() Work {
	return Work{v: new(big.Int)}
}

// WorkFromDifficulty lifts a single block's Difficulty into a Work value.
func WorkFromDifficulty(d Difficulty) Work {
	return Work{v: new(big.Int).SetUint64(uint64(d))}
}

// Add returns w + other, the cumulative work after appending a block whose
// own difficulty contributes other.
func (w Work) Add(other Work) Work {
	return Work{v: new(big.Int).Add(w.bigInt(), other.bigInt())}
}

// Cmp returns -1, 0 or +1 as w is less than, equal to, or greater than
// other, the ordering used to pick the best candidate chain tip.
func (w Work) Cmp(other Work) int {
	return w.bigInt().Cmp(other.bigInt())
}

func (w Work) bigInt() *big.Int {
	if w.v == nil {
		return new(big.Int)
	}
	return w.v
}

// Bytes returns the big-endian magnitude (big.Int.Bytes), used only
// for persisting a chain index entry's cumulative work (not part of any
// consensus wire format).
func (w Work) Bytes() []byte {
	return w.bigInt().Bytes()
}

// WorkFromBytes is the inverse of Bytes.
func WorkFromBytes(b []byte) Work {
	return Work{v: new(big.Int).SetBytes(b)}
}

func (w Work) String() string {
	return w.bigInt().String()
}
