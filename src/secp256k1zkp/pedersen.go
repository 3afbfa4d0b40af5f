// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package secp256k1zkp

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	. "github.com/yoss22/bulletproofs"
)

const (
	// PedersenCommitmentSize is the length in bytes of a serialized Pedersen
	// commitment (a compressed secp256k1 point: one tag byte plus a 32-byte
	// x-coordinate).
	PedersenCommitmentSize = 33

	// MaxSignatureSize bounds a serialized excess signature.
	MaxSignatureSize = 64

	// MaxProofSize bounds a serialized Bulletproof range proof.
	MaxProofSize = 5134
)

type Commitment []byte

// Bytes implements p2p Message interface
func (c *Commitment) Bytes() []byte {
	return *c
}

// Read implements p2p Message interface
func (c *Commitment) Read(r io.Reader) error {
	_, err := io.ReadFull(r, *c)

	return err
}

// String implements String() interface
func (p Commitment) String() string {
	return fmt.Sprintf("%#v", p)
}

type RangeProof struct {
	// The proof itself, at most 5134 bytes long
	Proof []byte // max size MAX_PROOF_SIZE
	// The length of the proof
	ProofLen int
}

// NegatePoint returns the additive inverse of p on the curve: (x, p-y).
func NegatePoint(p *Point) *Point {
	return &Point{X: p.X, Y: new(big.Int).Sub(btcec.S256().P, p.Y)}
}

// SumCommitments adds the positive commitments and subtracts the negative
// ones, mirroring Grin++'s KernelSumValidator::AddCommitments(positive,
// negative). Returns the identity-like nil only if both lists are empty,
// which callers must not rely on: a kernel-sum check always has at least
// one kernel.
func SumCommitments(positive, negative []Point) *Point {
	var sum *Point
	accumulate := func(p *Point) {
		if sum == nil {
			sum = p
			return
		}
		sum = SumPoints(sum, p)
	}

	for i := range positive {
		accumulate(&positive[i])
	}
	for i := range negative {
		accumulate(NegatePoint(&negative[i]))
	}
	return sum
}

// CommitTransparent returns commit(v, 0): a Pedersen commitment to value v
// with no blinding, used for the coinbase/fee overage term in the
// kernel-sum identity.
func CommitTransparent(v uint64) *Point {
	return ScalarMulPoint(&H, new(big.Int).SetUint64(v))
}

// OffsetCommit returns commit(0, offset): the commitment the kernel
// offset contributes to the kernel-sum identity.
func OffsetCommit(offset *big.Int) *Point {
	return ScalarMulPoint(&G, offset)
}

// CompressCommitment serializes a point as a 33-byte Pedersen commitment.
func CompressCommitment(p *Point) Commitment {
	compressed := CompressPubkey(*p)
	return Commitment(compressed[:])
}

// DecompressCommitment parses a 33-byte Pedersen commitment back into a
// curve point.
func DecompressCommitment(c Commitment) (*Point, error) {
	if len(c) != PedersenCommitmentSize {
		return nil, errors.New("commitment has wrong length")
	}

	x := new(big.Int).SetBytes(c[1:])
	y := decompressPoint(c[1:])
	if y == nil {
		return nil, errors.New("commitment is not a valid curve point")
	}

	wantOdd := c[0] == TagPubkeyOdd
	if (y.Bit(0) == 1) != wantOdd {
		y = new(big.Int).Sub(btcec.S256().P, y)
	}

	return &Point{X: x, Y: y}, nil
}