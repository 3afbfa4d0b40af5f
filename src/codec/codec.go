// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package codec implements the big-endian, length-prefixed wire encoding
// shared by headers, blocks, and the state-storage record formats. It
// generalizes the ad-hoc binary.Write/binary.Read pairs scattered through
// the teacher's consensus package into reusable Writer/Reader helpers.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dblokhin/gringo-core/src/gringerr"
)

// DefaultLimit bounds a single decoded byte-array or collection absent a
// caller-supplied limit.
const DefaultLimit = 10 << 20 // 10 MiB

// Writer accumulates an encoded message. Writes never fail (they target an
// in-memory buffer); callers use Bytes() once done.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteU8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteU16(v uint16) {
	_ = binary.Write(&w.buf, binary.BigEndian, v)
}

func (w *Writer) WriteU32(v uint32) {
	_ = binary.Write(&w.buf, binary.BigEndian, v)
}

func (w *Writer) WriteU64(v uint64) {
	_ = binary.Write(&w.buf, binary.BigEndian, v)
}

func (w *Writer) WriteI64(v int64) {
	_ = binary.Write(&w.buf, binary.BigEndian, v)
}

// WriteBytes writes a u64 length prefix followed by raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU64(uint64(len(b)))
	w.buf.Write(b)
}

// WriteFixed writes raw bytes with no length prefix, for fixed-size fields.
func (w *Writer) WriteFixed(b []byte) {
	w.buf.Write(b)
}

// WriteOptional writes the u8 presence flag followed by payload when present.
func (w *Writer) WriteOptional(present bool, payload func()) {
	if present {
		w.WriteU8(1)
		payload()
	} else {
		w.WriteU8(0)
	}
}

// WriteCount writes a u64 collection-length prefix.
func (w *Writer) WriteCount(n int) {
	w.WriteU64(uint64(n))
}

// Reader decodes a message from an io.Reader, enforcing Limit on any
// length-prefixed field.
type Reader struct {
	r     io.Reader
	Limit uint64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, Limit: DefaultLimit}
}

func (r *Reader) err(op string, err error) error {
	return gringerr.New(gringerr.Codec, op, err)
}

func (r *Reader) ReadU8() (uint8, error) {
	var v uint8
	if err := binary.Read(r.r, binary.BigEndian, &v); err != nil {
		return 0, r.err("ReadU8", err)
	}
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	var v uint16
	if err := binary.Read(r.r, binary.BigEndian, &v); err != nil {
		return 0, r.err("ReadU16", err)
	}
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	var v uint32
	if err := binary.Read(r.r, binary.BigEndian, &v); err != nil {
		return 0, r.err("ReadU32", err)
	}
	return v, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	var v uint64
	if err := binary.Read(r.r, binary.BigEndian, &v); err != nil {
		return 0, r.err("ReadU64", err)
	}
	return v, nil
}

func (r *Reader) ReadI64() (int64, error) {
	var v int64
	if err := binary.Read(r.r, binary.BigEndian, &v); err != nil {
		return 0, r.err("ReadI64", err)
	}
	return v, nil
}

// ReadFixed reads exactly n raw bytes with no length prefix.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, r.err("ReadFixed", err)
	}
	return buf, nil
}

// ReadBytes reads a u64-prefixed byte array, rejecting declared lengths
// past Limit.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if n > r.limit() {
		return nil, r.err("ReadBytes", errTooLarge)
	}
	return r.ReadFixed(int(n))
}

// ReadOptional reads the u8 presence flag and, if set, invokes decode.
func (r *Reader) ReadOptional(decode func() error) (bool, error) {
	flag, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	switch flag {
	case 0:
		return false, nil
	case 1:
		if err := decode(); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, r.err("ReadOptional", errBadOptionalFlag)
	}
}

// ReadCount reads a u64 collection-length prefix, rejecting counts past
// Limit (collections are assumed to carry at least one byte per element).
func (r *Reader) ReadCount() (uint64, error) {
	n, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if n > r.limit() {
		return 0, r.err("ReadCount", errTooLarge)
	}
	return n, nil
}

func (r *Reader) limit() uint64 {
	if r.Limit == 0 {
		return DefaultLimit
	}
	return r.Limit
}

var (
	errTooLarge        = bytesTooLargeErr{}
	errBadOptionalFlag = badOptionalFlagErr{}
)

type bytesTooLargeErr struct{}

func (bytesTooLargeErr) Error() string { return "declared length exceeds configured limit" }

type badOptionalFlagErr struct{}

func (badOptionalFlagErr) Error() string { return "optional flag is neither 0 nor 1" }
