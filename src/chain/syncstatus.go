// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import "sync"

// SyncState is a coarse phase a node reports itself as being in.
type SyncState int

const (
	NoSync SyncState = iota
	HeaderSync
	BodySync
	Synced
)

func (s SyncState) String() string {
	switch s {
	case NoSync:
		return "NoSync"
	case HeaderSync:
		return "HeaderSync"
	case BodySync:
		return "BodySync"
	case Synced:
		return "Synced"
	default:
		return "Unknown"
	}
}

// SyncStatus is a mutex-guarded, pure sink: nothing in the chain manager
// reads it back to make decisions, it only exists to let an external
// collaborator (e.g. a p2p sync loop) report and query progress.
type SyncStatus struct {
	mu sync.RWMutex

	state           SyncState
	highestKnown    uint64
	highestReceived uint64
}

// Snapshot is an immutable copy of the current sync status.
type Snapshot struct {
	State           SyncState
	HighestKnown    uint64
	HighestReceived uint64
}

// Set overwrites the current sync status.
func (s *SyncStatus) Set(state SyncState, highestKnown, highestReceived uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.highestKnown = highestKnown
	s.highestReceived = highestReceived
}

// Snapshot reads the current sync status.
func (s *SyncStatus) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:           s.state,
		HighestKnown:    s.highestKnown,
		HighestReceived: s.highestReceived,
	}
}
