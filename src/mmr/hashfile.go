// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package mmr

import (
	"os"
	"sync"

	"github.com/dblokhin/gringo-core/src/gringerr"
)

// Hash is a single MMR node hash (BLAKE2b-256).
type Hash [32]byte

// HashFile is an append-only log of 32-byte hashes, one record per node,
// addressed by 1-based node position. It follows the same
// delta/commit/rollback discipline as bitmapfile.File: Append/Rewind mutate
// an in-memory overlay over the on-disk committed prefix, and Commit is the
// only call that touches the file.
type HashFile struct {
	mu   sync.RWMutex
	path string

	f *os.File

	// committedSize is the number of records durably on disk.
	committedSize uint64
	// overlay holds records appended beyond committedSize, not yet flushed.
	overlay []Hash
	// truncateTo, when >= 0, means Rewind has asked for the on-disk prefix
	// itself to shrink; applied by Commit.
	truncateTo int64
}

// Open opens (creating if necessary) the hash log at path.
func Open(path string) (*HashFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "mmr.Open", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, gringerr.New(gringerr.DbIO, "mmr.Open", err)
	}
	if info.Size()%32 != 0 {
		f.Close()
		return nil, gringerr.New(gringerr.BadData, "mmr.Open", errTruncatedFile)
	}

	return &HashFile{
		path:          path,
		f:             f,
		committedSize: uint64(info.Size() / 32),
		truncateTo:    -1,
	}, nil
}

// Size returns the current node count, including uncommitted appends.
func (h *HashFile) Size() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size()
}

func (h *HashFile) size() uint64 {
	return h.committedSize + uint64(len(h.overlay))
}

// Get reads the hash at 1-based position pos.
func (h *HashFile) Get(pos uint64) (Hash, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if pos == 0 || pos > h.size() {
		return Hash{}, gringerr.New(gringerr.InvalidState, "mmr.Get", errOutOfRange)
	}
	if pos > h.committedSize {
		return h.overlay[pos-h.committedSize-1], nil
	}

	var hash Hash
	if _, err := h.f.ReadAt(hash[:], int64(pos-1)*32); err != nil {
		return Hash{}, gringerr.New(gringerr.DbIO, "mmr.Get", err)
	}
	return hash, nil
}

// Append writes hash at the next free position and returns that position.
func (h *HashFile) Append(hash Hash) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overlay = append(h.overlay, hash)
	return h.size(), nil
}

// Rewind discards every record at or beyond position targetSize+1, whether
// committed or not.
func (h *HashFile) Rewind(targetSize uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if targetSize >= h.size() {
		return
	}
	if targetSize >= h.committedSize {
		h.overlay = h.overlay[:targetSize-h.committedSize]
		return
	}
	h.overlay = nil
	h.truncateTo = int64(targetSize)
}

// Commit flushes the overlay (and any pending truncate) to disk.
func (h *HashFile) Commit() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.truncateTo >= 0 {
		if err := h.f.Truncate(h.truncateTo * 32); err != nil {
			return gringerr.New(gringerr.DbIO, "mmr.Commit", err)
		}
		h.committedSize = uint64(h.truncateTo)
		h.truncateTo = -1
	}

	if len(h.overlay) == 0 {
		return nil
	}

	buf := make([]byte, 0, len(h.overlay)*32)
	for _, rec := range h.overlay {
		buf = append(buf, rec[:]...)
	}
	if _, err := h.f.WriteAt(buf, int64(h.committedSize)*32); err != nil {
		return gringerr.New(gringerr.DbIO, "mmr.Commit", err)
	}
	if err := h.f.Sync(); err != nil {
		return gringerr.New(gringerr.DbIO, "mmr.Commit", err)
	}

	h.committedSize += uint64(len(h.overlay))
	h.overlay = nil
	return nil
}

// Rollback discards the overlay and any pending truncate, reverting to the
// last commit.
func (h *HashFile) Rollback() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overlay = nil
	h.truncateTo = -1
}

// Close releases the underlying file descriptor.
func (h *HashFile) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.f.Close()
}

type fileErr string

func (e fileErr) Error() string { return string(e) }

const (
	errTruncatedFile = fileErr("hash file length is not a multiple of 32 bytes")
	errOutOfRange    = fileErr("position out of range")
)
