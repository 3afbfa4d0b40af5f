// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package config holds the core's on-disk layout and tunables. It does not
// parse flags or environment variables; configuration loading is an
// external collaborator's concern (spec.md Out of scope).
package config

import "path/filepath"

// Config is the core's static configuration.
type Config struct {
	// DataDir is the root directory for all on-disk state.
	DataDir string

	// CoinbaseMaturity is the number of blocks before a coinbase output can
	// be spent. 25 in tests, 1440 on mainnet.
	CoinbaseMaturity uint64

	// OrphanPoolCapacity bounds the number of buffered orphan blocks.
	OrphanPoolCapacity int

	// HeaderCacheSize is the number of headers kept in the BlockDB's LRU.
	HeaderCacheSize int

	// CodecMessageLimit bounds a single decoded message, guarding against
	// a corrupt or hostile length prefix.
	CodecMessageLimit uint64
}

// DefaultConfig returns the mainnet-shaped configuration rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:            dataDir,
		CoinbaseMaturity:   1440,
		OrphanPoolCapacity: 512,
		HeaderCacheSize:    128,
		CodecMessageLimit:  10 << 20,
	}
}

// TestConfig returns the configuration used by the end-to-end test
// scenarios in spec.md section 8, which use a much shorter maturity window.
func TestConfig(dataDir string) Config {
	c := DefaultConfig(dataDir)
	c.CoinbaseMaturity = 25
	return c
}

// ChainDBPath is the BlockDB's on-disk path.
func (c Config) ChainDBPath() string {
	return filepath.Join(c.DataDir, "CHAIN")
}

// TxHashSetPath is the root of the three PMMR subdirectories.
func (c Config) TxHashSetPath() string {
	return filepath.Join(c.DataDir, "txhashset")
}

// KernelPath is the kernel MMR's subdirectory.
func (c Config) KernelPath() string {
	return filepath.Join(c.TxHashSetPath(), "kernel")
}

// OutputPath is the output MMR's subdirectory.
func (c Config) OutputPath() string {
	return filepath.Join(c.TxHashSetPath(), "output")
}

// RangeProofPath is the range-proof MMR's subdirectory.
func (c Config) RangeProofPath() string {
	return filepath.Join(c.TxHashSetPath(), "rangeproof")
}
