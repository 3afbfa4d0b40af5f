// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package secp256k1zkp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	. "github.com/yoss22/bulletproofs"
)

const (
	// TagPubkeyEven is prepended to a compressed pubkey to signal that the y
	// coordinate is even.
	TagPubkeyEven = 0x02

	// TagPubkeyOdd is prepended to a compressed pubkey to signal that the y
	// coordinate is odd.
	TagPubkeyOdd = 0x03
)

// RandomBytes returns 32 bytes of randomness.
func RandomBytes() [32]byte {
	buf := [32]byte{}
	if _, err := rand.Read(buf[:]); err != nil {
		panic("unable to generate random int")
	}

	return buf
}

// RandomInt returns a scalar from Z_n.
func RandomInt() *big.Int {
retry:
	buf := RandomBytes()

	r := &big.Int{}
	r.SetBytes(buf[:])

	if r.Cmp(btcec.S256().N) == 1 {
		goto retry
	}

	return r
}

// Signature is an argument of knowledge that the signer possesses a private
// key.
type Signature struct {
	S big.Int
	R Point
}

// Bytes serializes the signature.
func (s Signature) Bytes() [64]byte {
	var buf [64]byte
	rx := GetB32(s.R.X)
	sB := GetB32(&s.S)
	copy(buf[0:32], rx[:])
	copy(buf[32:64], sB[:])
	return buf
}

// SignMessage convinces a verifier in zero knowledge that the signer knows
// the private key x for a public key P = x*G.
//
// The prover sends a random curve point R = k*G which acts as a blinding
// factor. The verifier issues a random challenge e. The prover returns
// s = k + ex. The verifier can then check s*G == R + e*P.
func SignMessage(publicKey Point, privateKey big.Int, message [32]byte) Signature {
	k := RandomInt()
	R := ScalarMulPoint(&G, k)

	rx := GetB32(R.X)
	compressedPubkey := CompressPubkey(publicKey)
	challenge := ComputeHash(rx[:], compressedPubkey[:], message[:])
	e := new(big.Int).SetBytes(challenge[:])

	s := Sum(k, Mul(e, &privateKey))

	return Signature{S: *s, R: *R}
}

// VerifySignature returns true if signature was produced by signing message
// with the private key for publicKey.
func VerifySignature(publicKey Point, message [32]byte, signature Signature) bool {
	rx := GetB32(signature.R.X)
	compressedPubkey := CompressPubkey(publicKey)

	challenge := ComputeHash(rx[:], compressedPubkey[:], message[:])
	e := new(big.Int).SetBytes(challenge[:])

	lhs := ScalarMulPoint(&G, &signature.S)
	rhs := SumPoints(&signature.R, ScalarMulPoint(&publicKey, e))

	return lhs.X.Cmp(rhs.X) == 0
}

// CommitValue returns the Pedersen commitment to the value v with blinding
// factor blind.
func CommitValue(blind, v *big.Int) *Point {
	return SumPoints(
		ScalarMulPoint(&G, blind),
		ScalarMulPoint(&H, v))
}

// CompressPubkey returns p as a 33-byte compressed pubkey.
func CompressPubkey(p Point) [33]byte {
	var buf [33]byte
	if p.Y.Bit(0) == 1 {
		buf[0] = TagPubkeyOdd
	} else {
		buf[0] = TagPubkeyEven
	}
	x := GetB32(p.X)
	copy(buf[1:33], x[:])
	return buf
}

// decompressPoint returns the y-coordinate for the given x coordinate on
// y² = x³ + 7.
func decompressPoint(xBytes []byte) *big.Int {
	x := new(big.Int).SetBytes(xBytes)

	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)
	x3.Add(x3, btcec.S256().Params().B)

	return ModSqrtFast(x3)
}

// DecodeSignature reads a 64-byte signature.
func DecodeSignature(signature [64]byte) Signature {
	s := new(big.Int).SetBytes(signature[32:64])

	R := new(Point)
	R.X = new(big.Int).SetBytes(signature[0:32])
	R.Y = decompressPoint(signature[0:32])

	return Signature{S: *s, R: *R}
}

// ComputeHash returns the SHA256 hash of all of the inputs.
func ComputeHash(inputs ...[]byte) [32]byte {
	hasher := sha256.New()
	for i := range inputs {
		hasher.Write(inputs[i])
	}

	var result [32]byte
	copy(result[:], hasher.Sum(nil))
	return result
}

// ComputeMessage encodes fee and lockHeight into the 32-byte message a
// kernel's excess signature signs.
func ComputeMessage(fee, lockHeight uint64) [32]byte {
	var msg [32]byte
	binary.BigEndian.PutUint64(msg[16:], fee)
	binary.BigEndian.PutUint64(msg[24:], lockHeight)
	return msg
}
