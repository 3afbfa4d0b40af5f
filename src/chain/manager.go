// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package chain implements the chain manager: the component that owns the
// candidate (best-known headers) and confirmed (applied blocks) views of
// the chain, and is the only caller of guard.Store's locking facade. It
// replaces the teacher's single-RWMutex Chain with a manager that can
// buffer orphans, reorg the confirmed view, and keep the two views
// consistent with each other.
package chain

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dblokhin/gringo-core/src/config"
	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
	"github.com/dblokhin/gringo-core/src/guard"
	"github.com/dblokhin/gringo-core/src/storage"
	"github.com/dblokhin/gringo-core/src/txhashset"
	"github.com/dblokhin/gringo-core/src/validate"
)

// difficultyWindow mirrors the teacher's ad-hoc Chain.ProcessBlock window:
// enough blocks to cover both the difficulty-adjustment window and the
// median-time window it depends on.
const difficultyWindow = int(consensus.DifficultyAdjustWindow + consensus.MedianTimeWindow)

// Manager is the chain's single entry point for new headers and blocks.
type Manager struct {
	cfg   config.Config
	store *guard.Store
	db    *storage.BlockDB
	ths   *txhashset.TxHashSet

	// mu serializes Manager-level decisions (which view moves where). It is
	// distinct from guard.Store's locks, which serialize the underlying
	// BlockDB/TxHashSet writes those decisions trigger.
	mu sync.Mutex

	headers      *headerIndex
	candidateTip *headerEntry

	confirmedTip    consensus.Hash
	confirmedHeader *consensus.BlockHeader

	orphans *orphanPool
	sync    SyncStatus
}

// NewManager opens (or resumes) a chain manager rooted at genesis.
func NewManager(cfg config.Config, db *storage.BlockDB, ths *txhashset.TxHashSet, genesis *consensus.Block) (*Manager, error) {
	m := &Manager{
		cfg:     cfg,
		store:   guard.New(db, ths),
		db:      db,
		ths:     ths,
		headers: newHeaderIndex(),
		orphans: newOrphanPool(cfg.OrphanPoolCapacity),
	}

	genesisHash := consensus.Hash(genesis.Hash())

	confirmedTip, err := db.GetConfirmedTip()
	if err != nil {
		return nil, err
	}

	if confirmedTip == nil {
		if err := m.bootstrap(genesis, genesisHash); err != nil {
			return nil, err
		}
		confirmedTip = genesisHash
	}

	if err := m.loadAncestryInto(confirmedTip); err != nil {
		return nil, err
	}

	candidateTip, err := db.GetCandidateTip()
	if err != nil {
		return nil, err
	}
	if candidateTip == nil {
		candidateTip = confirmedTip
	}
	if err := m.loadAncestryInto(candidateTip); err != nil {
		return nil, err
	}

	m.confirmedTip = confirmedTip
	confirmedHeader, err := db.GetHeader(confirmedTip)
	if err != nil {
		return nil, err
	}
	m.confirmedHeader = confirmedHeader
	m.candidateTip = m.headers.get(candidateTip)

	return m, nil
}

// bootstrap seeds an empty database with genesis as both its confirmed and
// candidate tip.
func (m *Manager) bootstrap(genesis *consensus.Block, hash consensus.Hash) error {
	wt, err := m.db.BeginWrite()
	if err != nil {
		return err
	}
	if err := wt.PutHeader(hash, &genesis.Header); err != nil {
		wt.Rollback()
		return err
	}
	if err := wt.PutBlock(hash, genesis); err != nil {
		wt.Rollback()
		return err
	}
	if err := wt.PutHashAtHeight(genesis.Header.Height, hash); err != nil {
		wt.Rollback()
		return err
	}
	if err := wt.PutBlockSums(hash, &consensus.BlockSums{}); err != nil {
		wt.Rollback()
		return err
	}
	if err := wt.PutConfirmedTip(hash); err != nil {
		wt.Rollback()
		return err
	}
	if err := wt.PutCandidateTip(hash); err != nil {
		wt.Rollback()
		return err
	}
	return wt.Commit()
}

// loadAncestryInto walks back from hash through stored headers until it
// reaches a header already present in the in-memory candidate index (or
// genesis), populating the index along the way. It is how the Manager
// recovers the candidate view's ancestry across a restart.
func (m *Manager) loadAncestryInto(hash consensus.Hash) error {
	for {
		if m.headers.get(hash) != nil {
			return nil
		}
		header, err := m.db.GetHeader(hash)
		if err != nil {
			return err
		}
		if header == nil {
			return nil
		}
		m.headers.add(hash, header)
		if header.Height == 0 {
			return nil
		}
		hash = header.Previous
	}
}

// AddHeader validates and indexes a single header against the candidate
// view, advancing the candidate tip if it extends the best chain.
func (m *Manager) AddHeader(header *consensus.BlockHeader) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addHeaderLocked(header)
}

func (m *Manager) addHeaderLocked(header *consensus.BlockHeader) (Status, error) {
	hash := consensus.Hash(header.Hash())
	if m.headers.get(hash) != nil {
		return ALREADY_EXISTS, nil
	}

	parent := m.headers.get(header.Previous)
	if parent == nil {
		return ORPHANED, gringerr.New(gringerr.Orphaned, "chain.AddHeader", errors.New("unknown parent header"))
	}

	if err := header.Validate(); err != nil {
		return INVALID, gringerr.New(gringerr.BadData, "chain.AddHeader", err)
	}
	if !header.Timestamp.After(parent.header.Timestamp) {
		return INVALID, gringerr.New(gringerr.BadData, "chain.AddHeader", errors.New("header timestamp does not advance on parent"))
	}
	if header.TotalDifficulty != parent.header.TotalDifficulty+parent.header.POW.ToDifficulty() {
		return INVALID, gringerr.New(gringerr.BadData, "chain.AddHeader", errors.New("wrong total difficulty"))
	}

	window := m.blockListEndingAt(parent, difficultyWindow)
	// NextDifficulty reads its window latest first.
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	if minDiff := consensus.NextDifficulty(window); header.Difficulty < minDiff {
		return INVALID, gringerr.New(gringerr.BadData, "chain.AddHeader", fmt.Errorf("difficulty %d below window minimum %d", header.Difficulty, minDiff))
	}

	if err := m.persistHeader(hash, header); err != nil {
		return INVALID, err
	}

	m.headers.add(hash, header)

	if m.candidateTip == nil || headerBeats(header, hash, m.candidateTip.header, m.candidateTip.hash) {
		m.candidateTip = m.headers.get(hash)
		if err := m.persistCandidateTip(hash); err != nil {
			return INVALID, err
		}
	}

	return SUCCESS, nil
}

func (m *Manager) persistHeader(hash consensus.Hash, header *consensus.BlockHeader) error {
	wt, err := m.db.BeginWrite()
	if err != nil {
		return err
	}
	if err := wt.PutHeader(hash, header); err != nil {
		wt.Rollback()
		return err
	}
	return wt.Commit()
}

func (m *Manager) persistCandidateTip(hash consensus.Hash) error {
	wt, err := m.db.BeginWrite()
	if err != nil {
		return err
	}
	if err := wt.PutCandidateTip(hash); err != nil {
		wt.Rollback()
		return err
	}
	return wt.Commit()
}

// headerBeats reports whether (candidate, candidateHash) should replace
// (current, currentHash) as chain tip: strictly higher total difficulty
// wins; an exact tie is broken by the lexicographically lower hash.
func headerBeats(candidate *consensus.BlockHeader, candidateHash consensus.Hash, current *consensus.BlockHeader, currentHash consensus.Hash) bool {
	if candidate.TotalDifficulty != current.TotalDifficulty {
		return candidate.TotalDifficulty > current.TotalDifficulty
	}
	return bytes.Compare(candidateHash, currentHash) < 0
}

// blockListEndingAt collects up to limit headers ending at (and including)
// entry, oldest first.
func (m *Manager) blockListEndingAt(entry *headerEntry, limit int) consensus.BlockList {
	chain := make([]*headerEntry, 0, limit)
	cur := entry
	for len(chain) < limit {
		chain = append(chain, cur)
		if cur.header.Height == 0 {
			break
		}
		next := m.headers.get(cur.header.Previous)
		if next == nil {
			break
		}
		cur = next
	}

	blist := make(consensus.BlockList, len(chain))
	for i, e := range chain {
		blist[len(chain)-1-i] = consensus.Block{Header: *e.header}
	}
	return blist
}

// AddBlock validates a full block's body and, depending on where its
// parent sits, either extends the confirmed chain directly, reorgs onto it,
// or buffers the block as an orphan.
func (m *Manager) AddBlock(block *consensus.Block) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := consensus.Hash(block.Hash())

	if existing, err := m.db.GetBlock(hash); err != nil {
		return INVALID, err
	} else if existing != nil {
		return ALREADY_EXISTS, nil
	}

	status, err := m.addHeaderLocked(&block.Header)
	if status == ORPHANED {
		m.orphans.Add(hash, block)
		return ORPHANED, err
	}
	if status == INVALID {
		return status, err
	}

	if bytes.Equal(block.Header.Previous, m.confirmedTip) {
		if err := m.applyOnTip(block, hash); err != nil {
			return INVALID, err
		}
		return SUCCESS, nil
	}

	// The block does not extend the confirmed tip directly. It is only
	// actionable now if its parent is itself part of the confirmed chain
	// (an ancestor behind the tip); otherwise the parent's own block body
	// has not been applied yet and this one must wait.
	parentHeight := block.Header.Height - 1
	parentConfirmedHash, perr := m.db.GetHashAtHeight(parentHeight)
	if perr != nil {
		return INVALID, perr
	}
	if parentConfirmedHash == nil || !bytes.Equal(parentConfirmedHash, block.Header.Previous) {
		m.orphans.Add(hash, block)
		return ORPHANED, gringerr.New(gringerr.Orphaned, "chain.AddBlock", errors.New("parent block not yet confirmed"))
	}

	// Parent is a confirmed ancestor behind the tip: this block only wins
	// the chain if it out-weighs everything currently built on top of that
	// ancestor. Only worth a reorg if this block's total difficulty beats
	// the current confirmed tip.
	if block.Header.TotalDifficulty <= m.confirmedHeader.TotalDifficulty {
		m.orphans.Add(hash, block)
		return ORPHANED, gringerr.New(gringerr.Orphaned, "chain.AddBlock", errors.New("competing branch does not yet beat confirmed tip"))
	}
	if err := m.reorgAndApply(block, hash); err != nil {
		return INVALID, err
	}
	return SUCCESS, nil
}

// applyOnTip is the direct-extension path: block.Header.Previous is exactly
// the current confirmed tip.
func (m *Manager) applyOnTip(block *consensus.Block, hash consensus.Hash) error {
	wg, err := m.store.BeginWrite()
	if err != nil {
		return err
	}

	if err := m.validateAndApply(wg, block, hash); err != nil {
		wg.Rollback()
		return err
	}

	if err := wg.Commit(); err != nil {
		return err
	}

	m.confirmedTip = hash
	m.confirmedHeader = &block.Header
	m.orphans.Remove(hash)
	return nil
}

// validateAndApply runs body validation and, on success, applies block to
// the TxHashSet and BlockDB within wg's open write transaction. It does not
// commit or roll back; the caller owns wg's lifecycle.
func (m *Manager) validateAndApply(wg *guard.WriteGuard, block *consensus.Block, hash consensus.Hash) error {
	baseFee := uint64(0)
	if err := validate.SelfConsistency(block, baseFee); err != nil {
		return err
	}
	if err := validate.Coinbase(block, block.Header.Height, m.cfg.CoinbaseMaturity); err != nil {
		return err
	}

	prior, err := wg.Txn().GetBlockSums(block.Header.Previous)
	if err != nil {
		return err
	}

	var totalFees uint64
	for _, k := range block.Kernels {
		totalFees += k.Fee
	}
	overage := int64(consensus.Reward) - int64(totalFees)

	sums, err := validate.KernelSums(block.Inputs, block.Outputs, block.Kernels, overage, block.Header.TotalKernelOffset, prior)
	if err != nil {
		return err
	}

	if err := wg.ApplyBlock(block); err != nil {
		return err
	}
	if err := wg.Txn().PutBlock(hash, block); err != nil {
		return err
	}
	if err := wg.Txn().PutBlockSums(hash, sums); err != nil {
		return err
	}
	if err := wg.Txn().PutHashAtHeight(block.Header.Height, hash); err != nil {
		return err
	}
	return wg.Txn().PutConfirmedTip(hash)
}

// reorgAndApply rewinds the confirmed chain down to block's parent, then
// applies block as the new tip, all within a single write transaction so
// the switch is atomic. Grounded on rubin-protocol's store/reorg.go, but
// simplified to a single-block step: AddBlock only ever advances the
// confirmed view by one block at a time (ProcessNextOrphan replays any
// longer buffered fork one block per call), so every reorg this package
// performs only ever needs to rewind to one ancestor and apply one block.
func (m *Manager) reorgAndApply(block *consensus.Block, hash consensus.Hash) error {
	ancestorHash := block.Header.Previous
	ancestorHeader, err := m.db.GetHeader(ancestorHash)
	if err != nil {
		return err
	}
	if ancestorHeader == nil {
		return gringerr.New(gringerr.InvalidState, "chain.reorgAndApply", errors.New("fork ancestor header missing"))
	}

	wg, err := m.store.BeginWrite()
	if err != nil {
		return err
	}

	if err := m.rewindTo(wg, ancestorHash, ancestorHeader); err != nil {
		wg.Rollback()
		return err
	}
	if err := m.validateAndApply(wg, block, hash); err != nil {
		wg.Rollback()
		return err
	}
	if err := wg.Commit(); err != nil {
		return err
	}

	prevTip := m.confirmedTip
	m.confirmedTip = hash
	m.confirmedHeader = &block.Header
	m.orphans.Remove(hash)

	logrus.WithFields(logrus.Fields{
		"from":   fmt.Sprintf("%x", prevTip),
		"height": block.Header.Height,
	}).Info("chain: reorg applied")
	return nil
}

// rewindTo undoes every confirmed block above ancestorHash, restoring the
// OUTPUT_POS rows and leaf-set membership the teacher's ApplyBlock removed
// on the way up, then truncates the three MMRs to ancestorHeader's sizes.
func (m *Manager) rewindTo(wg *guard.WriteGuard, ancestorHash consensus.Hash, ancestorHeader *consensus.BlockHeader) error {
	wt := wg.Txn()

	var restoreLeaves []uint64

	cur := m.confirmedTip
	for !bytes.Equal(cur, ancestorHash) {
		header, err := wt.GetHeader(cur)
		if err != nil {
			return err
		}
		if header == nil {
			return gringerr.New(gringerr.InvalidState, "chain.rewindTo", errors.New("confirmed header missing during rewind"))
		}

		block, err := wt.GetBlock(cur)
		if err != nil {
			return err
		}
		if block == nil {
			return gringerr.New(gringerr.InvalidState, "chain.rewindTo", errors.New("confirmed block missing during rewind"))
		}

		for _, out := range block.Outputs {
			if err := wt.DeleteOutputPosition(out.Commit.Bytes()); err != nil {
				return err
			}
		}

		spent, err := wt.GetSpentOutputs(cur)
		if err != nil {
			return err
		}
		for _, s := range spent {
			if err := wt.PutOutputPosition([]byte(s.Commit), &s.Location); err != nil {
				return err
			}
			restoreLeaves = append(restoreLeaves, s.Location.LeafIndex)
		}

		if err := wt.DeleteHashAtHeight(header.Height); err != nil {
			return err
		}

		cur = header.Previous
	}

	m.ths.Rewind(ancestorHeader, restoreLeaves, restoreLeaves)
	return nil
}

// ProcessNextOrphan retries one buffered orphan whose parent header is now
// known, returning false, nil if none currently is. A retried orphan whose
// parent is known but still not confirmed (or not yet ahead of the
// confirmed tip) is re-buffered by AddBlock, and this call then returns
// false together with AddBlock's Orphaned error; any other AddBlock failure
// also returns false with that error.
func (m *Manager) ProcessNextOrphan() (bool, error) {
	m.mu.Lock()
	hash, candidate := m.orphans.FindEligible(func(parentHash consensus.Hash) bool {
		return m.headers.get(parentHash) != nil
	})
	if candidate != nil {
		m.orphans.Remove(hash)
	}
	m.mu.Unlock()

	if candidate == nil {
		return false, nil
	}

	status, err := m.AddBlock(candidate)
	if err != nil && status != SUCCESS {
		return false, err
	}
	return true, nil
}

// GetTip returns the header at the tip of the requested view.
func (m *Manager) GetTip(ct ChainType) (*consensus.BlockHeader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ct == Confirmed {
		return m.confirmedHeader, nil
	}
	if m.candidateTip == nil {
		return nil, nil
	}
	return m.candidateTip.header, nil
}

// GetBlockByHash returns the confirmed block with the given hash, if any.
func (m *Manager) GetBlockByHash(hash consensus.Hash) (*consensus.Block, error) {
	return m.db.GetBlock(hash)
}

// GetBlockByHeight returns the confirmed chain's block at height, if any.
func (m *Manager) GetBlockByHeight(height uint64) (*consensus.Block, error) {
	hash, err := m.db.GetHashAtHeight(height)
	if err != nil {
		return nil, err
	}
	if hash == nil {
		return nil, nil
	}
	return m.db.GetBlock(hash)
}

// GetBlockSums returns the persisted running balance sums for hash.
func (m *Manager) GetBlockSums(hash consensus.Hash) (*consensus.BlockSums, error) {
	return m.db.GetBlockSums(hash)
}

// GetOutputPosition returns where commitment currently sits in the output
// MMR, or nil if it is unknown or already spent.
func (m *Manager) GetOutputPosition(commitment []byte) (*consensus.OutputLocation, error) {
	return m.db.GetOutputPosition(commitment)
}

// UpdateSyncStatus overwrites the node's reported sync progress.
func (m *Manager) UpdateSyncStatus(state SyncState, highestKnown, highestReceived uint64) {
	m.sync.Set(state, highestKnown, highestReceived)
}

// SyncStatus reads the node's current sync progress.
func (m *Manager) SyncStatus() Snapshot {
	return m.sync.Snapshot()
}

// GetBlockHeaders answers a peer's locator by finding the first hash in it
// that this node recognises in its candidate view, then returning up to
// MaxBlockHeaders headers ascending from just past that point to the
// candidate tip. Returns nil if no hash in the locator is known, and an
// empty slice if the first known hash is already the candidate tip.
func (m *Manager) GetBlockHeaders(loc Locator) []*consensus.BlockHeader {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(loc.Hashes) > consensus.MaxLocators {
		loc.Hashes = loc.Hashes[:consensus.MaxLocators]
	}

	if m.candidateTip == nil {
		return nil
	}

	for _, hash := range loc.Hashes {
		known := m.headers.get(hash)
		if known == nil {
			continue
		}

		// known may sit on a branch we've since abandoned; findForkPoint
		// walks both sides back to their common ancestor so the returned
		// path always starts from a header actually in our candidate
		// chain, not from known itself.
		ancestor := m.headers.findForkPoint(m.candidateTip, known)
		path := m.headers.pathFromAncestor(m.candidateTip, ancestor)
		if len(path) > consensus.MaxBlockHeaders {
			path = path[:consensus.MaxBlockHeaders]
		}

		headers := make([]*consensus.BlockHeader, len(path))
		for i, entry := range path {
			headers[i] = entry.header
		}
		return headers
	}

	return nil
}
