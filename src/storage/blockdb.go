// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package storage implements BlockDB, the transactional multi-column-family
// key/value store backing the chain manager: headers, full blocks, block
// balance sums, output positions, per-block input bitmaps and per-block
// spent-output lists.
package storage

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
)

// Column families, one bbolt bucket each.
var (
	bucketHeader       = []byte("HEADER")
	bucketBlock        = []byte("BLOCK")
	bucketBlockSums    = []byte("BLOCK_SUMS")
	bucketOutputPos    = []byte("OUTPUT_POS")
	bucketInputBitmap  = []byte("INPUT_BITMAP")
	bucketSpentOutputs = []byte("SPENT_OUTPUTS")
	bucketHeightIndex  = []byte("HEIGHT_INDEX")
	bucketMeta         = []byte("META")

	allBuckets = [][]byte{
		bucketHeader, bucketBlock, bucketBlockSums,
		bucketOutputPos, bucketInputBitmap, bucketSpentOutputs,
		bucketHeightIndex, bucketMeta,
	}
)

// Meta keys, single-value rows in bucketMeta.
var (
	metaConfirmedTip = []byte("confirmed_tip")
	metaCandidateTip = []byte("candidate_tip")
)

// hashKey is a fixed-size, comparable rendition of consensus.Hash (itself a
// byte slice, and therefore unusable as a map or generic-cache key).
type hashKey [32]byte

func toHashKey(h consensus.Hash) hashKey {
	var k hashKey
	copy(k[:], h)
	return k
}

// BlockDB is the block database: a bbolt-backed KV store plus a header LRU
// cache that only ever holds committed headers: it is filled on commit and
// on a GetHeader read of the base DB, never from an open transaction.
type BlockDB struct {
	db    *bolt.DB
	cache *lru.Cache[hashKey, *consensus.BlockHeader]
}

// Open opens (creating if necessary) the BlockDB at path, sizing its header
// cache to headerCacheSize entries.
func Open(path string, headerCacheSize int) (*BlockDB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.Open", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, gringerr.New(gringerr.DbIO, "storage.Open", err)
	}

	cache, err := lru.New[hashKey, *consensus.BlockHeader](headerCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, gringerr.New(gringerr.InvalidState, "storage.Open", err)
	}

	return &BlockDB{db: db, cache: cache}, nil
}

// Close releases the underlying bbolt file.
func (b *BlockDB) Close() error {
	return b.db.Close()
}

// GetHeader reads a header outside of any open write-transaction, preferring
// the LRU cache.
func (b *BlockDB) GetHeader(hash consensus.Hash) (*consensus.BlockHeader, error) {
	key := toHashKey(hash)
	if h, ok := b.cache.Get(key); ok {
		return h, nil
	}

	var header *consensus.BlockHeader
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketHeader).Get(hash)
		if raw == nil {
			return nil
		}
		h, err := decodeHeader(raw)
		if err != nil {
			return err
		}
		header = h
		return nil
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.GetHeader", err)
	}
	if header != nil {
		b.cache.Add(key, header)
	}
	return header, nil
}

// GetBlock reads a full block outside of any open write-transaction.
func (b *BlockDB) GetBlock(hash consensus.Hash) (*consensus.Block, error) {
	var block *consensus.Block
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketBlock).Get(hash)
		if raw == nil {
			return nil
		}
		blk, err := decodeBlock(raw)
		if err != nil {
			return err
		}
		block = blk
		return nil
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.GetBlock", err)
	}
	return block, nil
}

// GetBlockSums reads the persisted balance sums for hash, outside of any
// open write-transaction.
func (b *BlockDB) GetBlockSums(hash consensus.Hash) (*consensus.BlockSums, error) {
	var sums *consensus.BlockSums
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketBlockSums).Get(hash)
		if raw == nil {
			return nil
		}
		s, err := decodeBlockSums(raw)
		if err != nil {
			return err
		}
		sums = s
		return nil
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.GetBlockSums", err)
	}
	return sums, nil
}

// GetOutputPosition reads where commitment currently sits in the output
// MMR, outside of any open write-transaction.
func (b *BlockDB) GetOutputPosition(commitment []byte) (*consensus.OutputLocation, error) {
	var loc *consensus.OutputLocation
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketOutputPos).Get(commitment)
		if raw == nil {
			return nil
		}
		l, err := decodeOutputLocation(raw)
		if err != nil {
			return err
		}
		loc = l
		return nil
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.GetOutputPosition", err)
	}
	return loc, nil
}

// GetInputBitmap reads the raw Roaring-encoded input bitmap for hash.
func (b *BlockDB) GetInputBitmap(hash consensus.Hash) ([]byte, error) {
	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketInputBitmap).Get(hash)
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.GetInputBitmap", err)
	}
	return raw, nil
}

// GetSpentOutputs reads the list of outputs hash's inputs consumed.
func (b *BlockDB) GetSpentOutputs(hash consensus.Hash) (consensus.SpentOutputList, error) {
	var list consensus.SpentOutputList
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSpentOutputs).Get(hash)
		if raw == nil {
			return nil
		}
		return decodeSpentOutputs(raw, &list)
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.GetSpentOutputs", err)
	}
	return list, nil
}

// GetHashAtHeight reads the confirmed-chain hash indexed at height, outside
// of any open write-transaction. Returns nil, nil if the height has no
// confirmed block.
func (b *BlockDB) GetHashAtHeight(height uint64) (consensus.Hash, error) {
	var hash consensus.Hash
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeightIndex).Get(heightKey(height))
		if v != nil {
			hash = append(consensus.Hash(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.GetHashAtHeight", err)
	}
	return hash, nil
}

// GetConfirmedTip reads the hash of the current confirmed chain tip, or nil
// if the database holds no confirmed block yet.
func (b *BlockDB) GetConfirmedTip() (consensus.Hash, error) {
	return b.getMeta(metaConfirmedTip)
}

// GetCandidateTip reads the hash of the current best-known (not necessarily
// confirmed) header tip, or nil if none has been recorded yet.
func (b *BlockDB) GetCandidateTip() (consensus.Hash, error) {
	return b.getMeta(metaCandidateTip)
}

func (b *BlockDB) getMeta(key []byte) (consensus.Hash, error) {
	var hash consensus.Hash
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(key)
		if v != nil {
			hash = append(consensus.Hash(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, gringerr.New(gringerr.DbIO, "storage.getMeta", err)
	}
	return hash, nil
}

// heightKey renders height as a fixed-width big-endian key so the
// HEIGHT_INDEX bucket iterates in ascending height order.
func heightKey(height uint64) []byte {
	key := make([]byte, 8)
	for i := 0; i < 8; i++ {
		key[7-i] = byte(height >> (8 * uint(i)))
	}
	return key
}

func logOp(op string) *logrus.Entry {
	return logrus.WithField("op", op)
}
