// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package bitmapfile implements a Roaring-backed bitmap persisted to a
// single file, with delta/commit/rollback semantics so callers can stage a
// batch of set/unset operations and either flush or discard them.
package bitmapfile

import (
	"os"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dblokhin/gringo-core/src/gringerr"
)

// File is a transactional, file-backed bitmap.
type File struct {
	mu   sync.RWMutex
	path string

	// committed is the bitmap as of the last successful Commit.
	committed *roaring.Bitmap
	// delta is the working copy mutated by Set/Unset/Rewind; Commit
	// promotes it to committed and persists it, Rollback discards it.
	delta *roaring.Bitmap
}

// Load opens the bitmap file at path, creating an empty bitmap if it does
// not yet exist.
func Load(path string) (*File, error) {
	bm := roaring.New()

	if data, err := os.ReadFile(path); err == nil {
		if _, err := bm.FromBuffer(data); err != nil {
			return nil, gringerr.New(gringerr.Codec, "bitmapfile.Load", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, gringerr.New(gringerr.DbIO, "bitmapfile.Load", err)
	}

	return &File{
		path:      path,
		committed: bm,
		delta:     bm.Clone(),
	}, nil
}

// Create writes a brand-new bitmap file seeded with bits, overwriting any
// existing file at path.
func Create(path string, bits *roaring.Bitmap) (*File, error) {
	f := &File{path: path, committed: roaring.New(), delta: bits.Clone()}
	if err := f.Commit(); err != nil {
		return nil, err
	}
	return f, nil
}

// Set marks leafIndex in the working delta.
func (f *File) Set(leafIndex uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delta.Add(uint32(leafIndex))
}

// Unset clears leafIndex in the working delta.
func (f *File) Unset(leafIndex uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delta.Remove(uint32(leafIndex))
}

// IsSet reports whether leafIndex is set in the working delta.
func (f *File) IsSet(leafIndex uint64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.delta.Contains(uint32(leafIndex))
}

// GetByte returns the byte at the given byte-offset of the bitmap's dense
// representation, used by LeafSet.Root to chunk the bitmap for hashing.
func (f *File) GetByte(byteIndex uint64) byte {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var b byte
	base := byteIndex * 8
	for bit := uint64(0); bit < 8; bit++ {
		if f.delta.Contains(uint32(base + bit)) {
			b |= 1 << bit
		}
	}
	return b
}

// ToRoaring returns a snapshot copy of the working delta.
func (f *File) ToRoaring() *roaring.Bitmap {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.delta.Clone()
}

// Rewind truncates the set to bits below numLeaves, then re-adds extras
// (positions that were spent-and-restored by the blocks being unwound).
func (f *File) Rewind(numLeaves uint64, extras []uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	truncated := roaring.New()
	iter := f.delta.Iterator()
	for iter.HasNext() {
		v := iter.Next()
		if uint64(v) < numLeaves {
			truncated.Add(v)
		}
	}
	for _, e := range extras {
		truncated.Add(uint32(e))
	}
	f.delta = truncated
}

// Commit atomically persists the working delta: write to a temp file in
// the same directory, then rename over path. This is crash-safe because
// rename is atomic on POSIX filesystems.
func (f *File) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.delta.ToBytes()
	if err != nil {
		return gringerr.New(gringerr.Codec, "bitmapfile.Commit", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return gringerr.New(gringerr.DbIO, "bitmapfile.Commit", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return gringerr.New(gringerr.DbIO, "bitmapfile.Commit", err)
	}

	f.committed = f.delta.Clone()
	return nil
}

// Rollback discards the working delta, reverting to the last commit.
func (f *File) Rollback() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delta = f.committed.Clone()
}

// Path returns the underlying file path.
func (f *File) Path() string {
	return f.path
}
