// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package txhashset

import (
	"math/big"
	"path/filepath"
	"testing"

	bp "github.com/yoss22/bulletproofs"

	"github.com/dblokhin/gringo-core/src/config"
	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/secp256k1zkp"
	"github.com/dblokhin/gringo-core/src/storage"
)

func openTestSet(t *testing.T) (*TxHashSet, *storage.BlockDB, config.Config) {
	t.Helper()
	cfg := config.TestConfig(t.TempDir())
	ths, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db, err := storage.Open(cfg.ChainDBPath(), cfg.HeaderCacheSize)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return ths, db, cfg
}

// testOutput builds a structurally valid, distinct output commitment by
// scalar-multiplying the base point, the same way secp256k1zkp derives a
// public key from a private scalar.
func testOutput(seed int64) consensus.Output {
	commit := bp.ScalarMulPoint(&bp.G, big.NewInt(seed))
	return consensus.Output{
		Features: consensus.OutputFeatures(0),
		Commit:   commit,
		RangeProof: bp.BulletProof{
			Proof: []byte{byte(seed)},
		},
	}
}

func testKernel(seed int64) consensus.TxKernel {
	excess := bp.ScalarMulPoint(&bp.G, big.NewInt(seed))
	return consensus.TxKernel{
		Features: consensus.KernelFeatures(0),
		Fee:      1,
		Excess:   *excess,
	}
}

// testPOW returns a structurally valid 42-nonce proof so BlockHeader.Hash
// (which panics via logrus.Fatal on the wrong nonce count) is always safe
// to call on test headers.
func testPOW(seed uint32) consensus.Proof {
	nonces := make([]uint32, consensus.ProofSize)
	for i := range nonces {
		nonces[i] = seed + uint32(i)
	}
	return consensus.Proof{Nonces: nonces}
}

func blockWithOneOutput(height, outputMmrSize, kernelMmrSize uint64, out consensus.Output, kernel consensus.TxKernel) *consensus.Block {
	return &consensus.Block{
		Header: consensus.BlockHeader{
			Height:        height,
			OutputMmrSize: outputMmrSize,
			KernelMmrSize: kernelMmrSize,
			POW:           testPOW(uint32(height)),
		},
		Outputs: consensus.OutputList{out},
		Kernels: consensus.TxKernelList{kernel},
	}
}

func TestApplyBlockAddsOutputAndKernel(t *testing.T) {
	ths, db, _ := openTestSet(t)

	wt, err := db.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}

	out := testOutput(1)
	kernel := testKernel(1)
	block := blockWithOneOutput(1, 1, 1, out, kernel)

	if err := ths.ApplyBlock(wt, block); err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}
	if err := wt.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := ths.Commit(); err != nil {
		t.Fatalf("txhashset Commit: %v", err)
	}

	kernelSize, outputSize, rangeproofSize := ths.Sizes()
	if kernelSize != 1 || outputSize != 1 || rangeproofSize != 1 {
		t.Fatalf("Sizes() = (%d, %d, %d), want (1, 1, 1)", kernelSize, outputSize, rangeproofSize)
	}

	loc, err := db.GetOutputPosition(out.Commit.Bytes())
	if err != nil {
		t.Fatalf("GetOutputPosition: %v", err)
	}
	if loc == nil || loc.LeafIndex != 0 || loc.Height != 1 {
		t.Fatalf("GetOutputPosition = %+v, want {pos=1, leaf=0, height=1}", loc)
	}
}

func TestApplyBlockRejectsOutputMmrSizeMismatch(t *testing.T) {
	ths, db, _ := openTestSet(t)

	wt, err := db.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	defer wt.Rollback()

	block := blockWithOneOutput(1, 99, 1, testOutput(2), testKernel(2))
	if err := ths.ApplyBlock(wt, block); err == nil {
		t.Fatalf("ApplyBlock: expected output MMR size mismatch error, got nil")
	}
}

func TestApplyBlockSpendsPriorOutput(t *testing.T) {
	ths, db, _ := openTestSet(t)

	out := testOutput(3)
	wt1, err := db.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	block1 := blockWithOneOutput(1, 1, 1, out, testKernel(3))
	if err := ths.ApplyBlock(wt1, block1); err != nil {
		t.Fatalf("ApplyBlock(1): %v", err)
	}
	if err := wt1.Commit(); err != nil {
		t.Fatalf("Commit(1): %v", err)
	}
	if err := ths.Commit(); err != nil {
		t.Fatalf("txhashset Commit(1): %v", err)
	}

	wt2, err := db.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	block2 := &consensus.Block{
		Header: consensus.BlockHeader{
			Height:        2,
			OutputMmrSize: 1,
			KernelMmrSize: 2,
			POW:           testPOW(2),
		},
		Inputs:  consensus.InputList{{Features: out.Features, Commit: secp256k1zkp.Commitment(out.Commit.Bytes())}},
		Kernels: consensus.TxKernelList{testKernel(4)},
	}
	if err := ths.ApplyBlock(wt2, block2); err != nil {
		t.Fatalf("ApplyBlock(2): %v", err)
	}
	if err := wt2.Commit(); err != nil {
		t.Fatalf("Commit(2): %v", err)
	}
	if err := ths.Commit(); err != nil {
		t.Fatalf("txhashset Commit(2): %v", err)
	}

	loc, err := db.GetOutputPosition(out.Commit.Bytes())
	if err != nil {
		t.Fatalf("GetOutputPosition: %v", err)
	}
	if loc != nil {
		t.Fatalf("GetOutputPosition returned %+v after the output was spent, want nil", loc)
	}

	spent, err := db.GetSpentOutputs(consensus.Hash(block2.Hash()))
	if err != nil {
		t.Fatalf("GetSpentOutputs: %v", err)
	}
	if len(spent) != 1 {
		t.Fatalf("GetSpentOutputs returned %d entries, want 1", len(spent))
	}
}

func TestRollbackDiscardsAppend(t *testing.T) {
	ths, db, _ := openTestSet(t)

	wt, err := db.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	defer wt.Rollback()

	block := blockWithOneOutput(1, 1, 1, testOutput(5), testKernel(5))
	if err := ths.ApplyBlock(wt, block); err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}

	ths.Rollback()

	kernelSize, outputSize, rangeproofSize := ths.Sizes()
	if kernelSize != 0 || outputSize != 0 || rangeproofSize != 0 {
		t.Fatalf("Sizes() after Rollback = (%d, %d, %d), want (0, 0, 0)", kernelSize, outputSize, rangeproofSize)
	}
}

func TestRootsChangeAfterApply(t *testing.T) {
	ths, db, _ := openTestSet(t)

	before, err := ths.Roots()
	if err != nil {
		t.Fatalf("Roots: %v", err)
	}

	wt, err := db.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	block := blockWithOneOutput(1, 1, 1, testOutput(6), testKernel(6))
	if err := ths.ApplyBlock(wt, block); err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}
	if err := wt.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := ths.Commit(); err != nil {
		t.Fatalf("txhashset Commit: %v", err)
	}

	after, err := ths.Roots()
	if err != nil {
		t.Fatalf("Roots: %v", err)
	}

	if before.Output == after.Output {
		t.Errorf("output root did not change after applying a block with a new output")
	}
	if before.Kernel == after.Kernel {
		t.Errorf("kernel root did not change after applying a block with a new kernel")
	}
	if before.LeafSet == after.LeafSet {
		t.Errorf("leaf-set root did not change after applying a block with a new output")
	}
}

func TestSnapshotProducesZip(t *testing.T) {
	ths, db, cfg := openTestSet(t)

	wt, err := db.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	block := blockWithOneOutput(1, 1, 1, testOutput(7), testKernel(7))
	if err := ths.ApplyBlock(wt, block); err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}
	if err := wt.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := ths.Commit(); err != nil {
		t.Fatalf("txhashset Commit: %v", err)
	}

	zipPath, err := ths.Snapshot(&block.Header, filepath.Join(cfg.DataDir, "staging"))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if zipPath == "" {
		t.Fatalf("Snapshot returned empty path")
	}
}
