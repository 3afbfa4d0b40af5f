// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package storage

import (
	bolt "go.etcd.io/bbolt"

	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
)

// WriteTxn is an open BlockDB write-transaction. bbolt already gives us a
// serializable, single-writer *bolt.Tx, so begin_write/commit/rollback map
// directly onto Begin(true)/Commit/Rollback; the only extra bookkeeping is
// buffering the headers this transaction writes so Commit can promote them
// into the 128-entry LRU cache (never the fresher values, to keep the cache
// strictly behind durable state).
type WriteTxn struct {
	db *BlockDB
	tx *bolt.Tx

	uncommitted map[hashKey]*consensus.BlockHeader
}

// BeginWrite opens a new write-transaction.
func (b *BlockDB) BeginWrite() (*WriteTxn, error) {
	tx, err := b.db.Begin(true)
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.BeginWrite", err)
	}
	return &WriteTxn{
		db:          b,
		tx:          tx,
		uncommitted: make(map[hashKey]*consensus.BlockHeader),
	}, nil
}

// Commit finalizes the transaction and promotes its buffered headers into
// the header LRU. Failure to commit is fatal to this write: the caller must
// not assume any of its puts landed.
func (t *WriteTxn) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.Commit", err)
	}
	for key, header := range t.uncommitted {
		t.db.cache.Add(key, header)
	}
	return nil
}

// Rollback discards the transaction and its buffered headers. A failed
// rollback is logged and swallowed: bbolt transactions are released on
// process exit regardless, and the caller has already decided to abandon
// this write.
func (t *WriteTxn) Rollback() {
	if err := t.tx.Rollback(); err != nil {
		logOp("storage.Rollback").WithError(err).Error("rollback failed")
	}
	t.uncommitted = nil
}

// PutHeader buffers a header write, promoted to the LRU cache on Commit.
func (t *WriteTxn) PutHeader(hash consensus.Hash, header *consensus.BlockHeader) error {
	if err := t.tx.Bucket(bucketHeader).Put(hash, header.Bytes()); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.PutHeader", err)
	}
	t.uncommitted[toHashKey(hash)] = header
	return nil
}

// GetHeader reads a header, preferring this transaction's own uncommitted
// writes (read-your-writes) before falling back to the transaction's
// consistent snapshot of the base DB.
func (t *WriteTxn) GetHeader(hash consensus.Hash) (*consensus.BlockHeader, error) {
	if h, ok := t.uncommitted[toHashKey(hash)]; ok {
		return h, nil
	}
	raw := t.tx.Bucket(bucketHeader).Get(hash)
	if raw == nil {
		return nil, nil
	}
	return decodeHeader(raw)
}

// PutBlock writes a full block within this transaction.
func (t *WriteTxn) PutBlock(hash consensus.Hash, block *consensus.Block) error {
	if err := t.tx.Bucket(bucketBlock).Put(hash, block.Bytes()); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.PutBlock", err)
	}
	return nil
}

// GetBlock reads a full block within this transaction's snapshot.
func (t *WriteTxn) GetBlock(hash consensus.Hash) (*consensus.Block, error) {
	raw := t.tx.Bucket(bucketBlock).Get(hash)
	if raw == nil {
		return nil, nil
	}
	return decodeBlock(raw)
}

// PutBlockSums writes a block's balance sums within this transaction.
func (t *WriteTxn) PutBlockSums(hash consensus.Hash, sums *consensus.BlockSums) error {
	if err := t.tx.Bucket(bucketBlockSums).Put(hash, sums.Bytes()); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.PutBlockSums", err)
	}
	return nil
}

// GetBlockSums reads a block's balance sums within this transaction's
// snapshot.
func (t *WriteTxn) GetBlockSums(hash consensus.Hash) (*consensus.BlockSums, error) {
	raw := t.tx.Bucket(bucketBlockSums).Get(hash)
	if raw == nil {
		return nil, nil
	}
	return decodeBlockSums(raw)
}

// PutOutputPosition records where commitment sits in the output MMR.
func (t *WriteTxn) PutOutputPosition(commitment []byte, loc *consensus.OutputLocation) error {
	if err := t.tx.Bucket(bucketOutputPos).Put(commitment, loc.Bytes()); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.PutOutputPosition", err)
	}
	return nil
}

// GetOutputPosition reads an output's MMR location within this
// transaction's snapshot.
func (t *WriteTxn) GetOutputPosition(commitment []byte) (*consensus.OutputLocation, error) {
	raw := t.tx.Bucket(bucketOutputPos).Get(commitment)
	if raw == nil {
		return nil, nil
	}
	return decodeOutputLocation(raw)
}

// DeleteOutputPosition drops an OUTPUT_POS row, used when rewinding past
// the block that created it.
func (t *WriteTxn) DeleteOutputPosition(commitment []byte) error {
	if err := t.tx.Bucket(bucketOutputPos).Delete(commitment); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.DeleteOutputPosition", err)
	}
	return nil
}

// PutInputBitmap writes a block's Roaring-encoded consumed-input bitmap.
//
// The reference implementation this is grounded on (GrinPlusPlus's
// BlockDBImpl::AddBlockInputBitmap) discards this write's status entirely.
// Here the error is returned and every caller is expected to propagate it,
// so a failed write aborts the surrounding block application instead of
// silently leaving the input bitmap missing.
func (t *WriteTxn) PutInputBitmap(hash consensus.Hash, roaringBytes []byte) error {
	if err := t.tx.Bucket(bucketInputBitmap).Put(hash, roaringBytes); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.PutInputBitmap", err)
	}
	return nil
}

// GetInputBitmap reads a block's raw Roaring-encoded input bitmap within
// this transaction's snapshot.
func (t *WriteTxn) GetInputBitmap(hash consensus.Hash) ([]byte, error) {
	raw := t.tx.Bucket(bucketInputBitmap).Get(hash)
	if raw == nil {
		return nil, nil
	}
	return append([]byte(nil), raw...), nil
}

// PutSpentOutputs writes the list of outputs a block's inputs consumed.
func (t *WriteTxn) PutSpentOutputs(hash consensus.Hash, list consensus.SpentOutputList) error {
	if err := t.tx.Bucket(bucketSpentOutputs).Put(hash, list.Bytes()); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.PutSpentOutputs", err)
	}
	return nil
}

// GetSpentOutputs reads the list of outputs a block's inputs consumed,
// within this transaction's snapshot.
func (t *WriteTxn) GetSpentOutputs(hash consensus.Hash) (consensus.SpentOutputList, error) {
	raw := t.tx.Bucket(bucketSpentOutputs).Get(hash)
	if raw == nil {
		return nil, nil
	}
	var list consensus.SpentOutputList
	if err := decodeSpentOutputs(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// PutHashAtHeight indexes hash as the confirmed-chain block at height.
func (t *WriteTxn) PutHashAtHeight(height uint64, hash consensus.Hash) error {
	if err := t.tx.Bucket(bucketHeightIndex).Put(heightKey(height), hash); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.PutHashAtHeight", err)
	}
	return nil
}

// DeleteHashAtHeight removes a height's confirmed-chain entry, used when
// rewinding the confirmed tip downward.
func (t *WriteTxn) DeleteHashAtHeight(height uint64) error {
	if err := t.tx.Bucket(bucketHeightIndex).Delete(heightKey(height)); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.DeleteHashAtHeight", err)
	}
	return nil
}

// GetHashAtHeight reads a height's confirmed-chain hash within this
// transaction's snapshot.
func (t *WriteTxn) GetHashAtHeight(height uint64) (consensus.Hash, error) {
	raw := t.tx.Bucket(bucketHeightIndex).Get(heightKey(height))
	if raw == nil {
		return nil, nil
	}
	return append(consensus.Hash(nil), raw...), nil
}

// PutConfirmedTip records hash as the new confirmed chain tip.
func (t *WriteTxn) PutConfirmedTip(hash consensus.Hash) error {
	return t.putMeta(metaConfirmedTip, hash)
}

// GetConfirmedTip reads the confirmed tip within this transaction's
// snapshot.
func (t *WriteTxn) GetConfirmedTip() (consensus.Hash, error) {
	return t.getMeta(metaConfirmedTip)
}

// PutCandidateTip records hash as the new best-known header tip.
func (t *WriteTxn) PutCandidateTip(hash consensus.Hash) error {
	return t.putMeta(metaCandidateTip, hash)
}

// GetCandidateTip reads the candidate tip within this transaction's
// snapshot.
func (t *WriteTxn) GetCandidateTip() (consensus.Hash, error) {
	return t.getMeta(metaCandidateTip)
}

func (t *WriteTxn) putMeta(key []byte, hash consensus.Hash) error {
	if err := t.tx.Bucket(bucketMeta).Put(key, hash); err != nil {
		return gringerr.New(gringerr.DbIO, "storage.putMeta", err)
	}
	return nil
}

func (t *WriteTxn) getMeta(key []byte) (consensus.Hash, error) {
	raw := t.tx.Bucket(bucketMeta).Get(key)
	if raw == nil {
		return nil, nil
	}
	return append(consensus.Hash(nil), raw...), nil
}
