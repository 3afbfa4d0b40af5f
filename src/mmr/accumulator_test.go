// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package mmr

import (
	"path/filepath"
	"testing"
)

func openTestAccumulator(t *testing.T) *Accumulator {
	t.Helper()
	hf, err := Open(filepath.Join(t.TempDir(), "hashes.bin"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { hf.Close() })
	return NewAccumulator(hf)
}

func leafHash(b byte) Hash {
	var h Hash
	h[0] = b
	return h
}

func TestAccumulatorAppendLeafPositions(t *testing.T) {
	a := openTestAccumulator(t)

	wantLeafPos := []uint64{1, 2, 4, 5, 8, 9, 11}
	for i, want := range wantLeafPos {
		pos, err := a.AppendLeaf(leafHash(byte(i + 1)))
		if err != nil {
			t.Fatalf("AppendLeaf #%d: %v", i, err)
		}
		if pos != want {
			t.Errorf("leaf #%d position = %d, want %d", i, pos, want)
		}
	}
	if a.Size() != 11 {
		t.Errorf("Size() = %d, want 11", a.Size())
	}
}

func TestAccumulatorRootChangesOnAppend(t *testing.T) {
	a := openTestAccumulator(t)

	empty, err := a.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if empty != (Hash{}) {
		t.Errorf("empty accumulator root = %x, want zero hash", empty)
	}

	if _, err := a.AppendLeaf(leafHash(1)); err != nil {
		t.Fatalf("AppendLeaf: %v", err)
	}
	if err := a.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	rootAfterOne, err := a.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}

	if _, err := a.AppendLeaf(leafHash(2)); err != nil {
		t.Fatalf("AppendLeaf: %v", err)
	}
	if err := a.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	rootAfterTwo, err := a.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}

	if rootAfterOne == rootAfterTwo {
		t.Errorf("root did not change after appending a second leaf")
	}
}

func TestAccumulatorRewindMatchesEarlierRoot(t *testing.T) {
	a := openTestAccumulator(t)

	for i := byte(1); i <= 3; i++ {
		if _, err := a.AppendLeaf(leafHash(i)); err != nil {
			t.Fatalf("AppendLeaf: %v", err)
		}
	}
	if err := a.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sizeAfterThree := uint64(4) // positions 1,2,3(parent),4 -> three leaves
	rootAfterThree, err := a.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	_ = rootAfterThree

	if _, err := a.AppendLeaf(leafHash(9)); err != nil {
		t.Fatalf("AppendLeaf: %v", err)
	}
	if err := a.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	a.Rewind(sizeAfterThree)
	if err := a.Commit(); err != nil {
		t.Fatalf("Commit after rewind: %v", err)
	}

	rewoundRoot, err := a.Root()
	if err != nil {
		t.Fatalf("Root after rewind: %v", err)
	}
	if rewoundRoot != rootAfterThree {
		t.Errorf("root after rewind = %x, want %x (pre-append root)", rewoundRoot, rootAfterThree)
	}
	if a.Size() != sizeAfterThree {
		t.Errorf("Size() after rewind = %d, want %d", a.Size(), sizeAfterThree)
	}
}

func TestAccumulatorRollbackDiscardsAppend(t *testing.T) {
	a := openTestAccumulator(t)

	if _, err := a.AppendLeaf(leafHash(1)); err != nil {
		t.Fatalf("AppendLeaf: %v", err)
	}
	if err := a.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	committedSize := a.Size()

	if _, err := a.AppendLeaf(leafHash(2)); err != nil {
		t.Fatalf("AppendLeaf: %v", err)
	}
	a.Rollback()

	if a.Size() != committedSize {
		t.Errorf("Size() after Rollback = %d, want %d", a.Size(), committedSize)
	}
}
