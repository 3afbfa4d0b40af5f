// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import "github.com/dblokhin/gringo-core/src/consensus"

// Locator is a peer's list of block hashes it knows, newest first, used to
// find the fork point between its candidate view and ours. Kept local to
// this package (rather than reusing a transport-layer type) so chain never
// depends on the p2p wire format.
type Locator struct {
	Hashes []consensus.Hash
}

// Status is the outcome of submitting a header or block to the Manager.
type Status int

const (
	// SUCCESS means the header or block was accepted and, for a block,
	// applied to the confirmed chain.
	SUCCESS Status = iota
	// ALREADY_EXISTS means the header or block was already known.
	ALREADY_EXISTS
	// ORPHANED means the block's parent is unknown; it has been buffered
	// and will be retried by ProcessNextOrphan once its parent arrives.
	ORPHANED
	// INVALID means the header or block failed a consensus check and was
	// rejected outright.
	INVALID
	// TRANSACTIONS_MISSING means a compact block could not be expanded
	// from the mempool and a full block is needed instead.
	TRANSACTIONS_MISSING
)

func (s Status) String() string {
	switch s {
	case SUCCESS:
		return "SUCCESS"
	case ALREADY_EXISTS:
		return "ALREADY_EXISTS"
	case ORPHANED:
		return "ORPHANED"
	case INVALID:
		return "INVALID"
	case TRANSACTIONS_MISSING:
		return "TRANSACTIONS_MISSING"
	default:
		return "UNKNOWN"
	}
}

// ChainType selects which of the two chain views a query targets.
type ChainType int

const (
	// Candidate is the best-known header chain, not necessarily fully
	// validated or backed by applied block state.
	Candidate ChainType = iota
	// Confirmed is the chain the TxHashSet and BlockDB are actually
	// positioned at.
	Confirmed
)
