// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"testing"

	"github.com/dblokhin/gringo-core/src/consensus"
)

// TestSerialiseProof checks the genesis headers carry a well-formed proof:
// ProofBytes encodes exactly ProofSize nonces of 4 bytes each.
func TestSerialiseProof(t *testing.T) {
	for name, genesis := range map[string]*consensus.Block{
		"Testnet1": &Testnet1,
		"Testnet2": &Testnet2,
		"Mainnet":  &Mainnet,
	} {
		pow := genesis.Header.POW.ProofBytes()
		if len(pow) != int(consensus.ProofSize)*4 {
			t.Errorf("%s: proof bytes len = %d, want %d", name, len(pow), int(consensus.ProofSize)*4)
		}
	}
}

// TestGenesisHash checks each genesis header hashes deterministically and
// distinctly from the others.
func TestGenesisHash(t *testing.T) {
	genesis := map[string]*consensus.Block{
		"Testnet1": &Testnet1,
		"Testnet2": &Testnet2,
		"Mainnet":  &Mainnet,
	}

	hashes := make(map[string][]byte, len(genesis))
	for name, g := range genesis {
		h := g.Hash()
		if len(h) != consensus.BlockHashSize {
			t.Errorf("%s: hash len = %d, want %d", name, len(h), consensus.BlockHashSize)
		}
		if again := g.Hash(); !bytes.Equal(h, again) {
			t.Errorf("%s: hash is not deterministic across calls", name)
		}
		hashes[name] = h
	}

	for a, ha := range hashes {
		for b, hb := range hashes {
			if a != b && bytes.Equal(ha, hb) {
				t.Errorf("genesis %s and %s hash to the same value", a, b)
			}
		}
	}
}
