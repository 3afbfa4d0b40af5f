// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package leafset

import (
	"path/filepath"
	"testing"
)

func openTestLeafSet(t *testing.T) *LeafSet {
	t.Helper()
	s, err := Load(filepath.Join(t.TempDir(), "output.bmp"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestAddRemoveContains(t *testing.T) {
	s := openTestLeafSet(t)

	s.Add(5)
	if !s.Contains(5) {
		t.Errorf("Contains(5) = false after Add(5)")
	}
	s.Remove(5)
	if s.Contains(5) {
		t.Errorf("Contains(5) = true after Remove(5)")
	}
}

func TestRewindRestoresExtras(t *testing.T) {
	s := openTestLeafSet(t)

	s.Add(1)
	s.Add(2)
	s.Add(3)
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	s.Remove(2) // spend output 2
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Unwind the block that spent output 2: leaves at index numLeaves=3 and
	// above are dropped (leaf 3 here) and output 2 is restored as unspent.
	s.Rewind(3, []uint64{2})
	if !s.Contains(2) {
		t.Errorf("Contains(2) = false after Rewind restored it")
	}
}

func TestRootChangesWithMembership(t *testing.T) {
	s := openTestLeafSet(t)

	s.Add(0)
	s.Add(1)
	rootBefore := s.Root(2048)

	s.Remove(1)
	rootAfter := s.Root(2048)

	if rootBefore == rootAfter {
		t.Errorf("Root() did not change after removing a leaf")
	}
}

func TestRootEmptyIsDeterministic(t *testing.T) {
	s := openTestLeafSet(t)
	if s.Root(0) != s.Root(0) {
		t.Errorf("Root(0) is not deterministic")
	}
}
