// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package consensus

import "testing"

func TestWorkAddAndCmp(t *testing.T) {
	w := ZeroWork()
	w = w.Add(WorkFromDifficulty(100))
	w = w.Add(WorkFromDifficulty(50))

	other := WorkFromDifficulty(149)
	if w.Cmp(other) <= 0 {
		t.Errorf("expected 150 work > 149 work")
	}

	equal := WorkFromDifficulty(150)
	if w.Cmp(equal) != 0 {
		t.Errorf("expected 150 work == 150 work")
	}
}

func TestWorkBytesRoundTrip(t *testing.T) {
	w := WorkFromDifficulty(123456789)
	w = w.Add(WorkFromDifficulty(987654321))

	got := WorkFromBytes(w.Bytes())
	if got.Cmp(w) != 0 {
		t.Errorf("WorkFromBytes(w.Bytes()) != w")
	}
}
