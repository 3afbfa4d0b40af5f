// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import (
	"sync"
	"testing"
)

func TestSyncStatusSetSnapshot(t *testing.T) {
	var s SyncStatus

	if got := s.Snapshot(); got.State != NoSync {
		t.Fatalf("zero-value SyncStatus: state = %v, want NoSync", got.State)
	}

	s.Set(BodySync, 100, 42)
	got := s.Snapshot()
	if got.State != BodySync || got.HighestKnown != 100 || got.HighestReceived != 42 {
		t.Fatalf("Snapshot after Set: got %+v", got)
	}
}

func TestSyncStatusConcurrentAccess(t *testing.T) {
	var s SyncStatus
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set(HeaderSync, uint64(n), uint64(n))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
}

func TestSyncStateString(t *testing.T) {
	cases := map[SyncState]string{
		NoSync:        "NoSync",
		HeaderSync:    "HeaderSync",
		BodySync:      "BodySync",
		Synced:        "Synced",
		SyncState(99): "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("SyncState(%d).String() = %q, want %q", state, got, want)
		}
	}
}
