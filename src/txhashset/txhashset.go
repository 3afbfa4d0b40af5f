// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package txhashset implements the UTXO state engine: three append-only
// Merkle Mountain Range accumulators (kernel, output, range-proof) plus the
// output and range-proof leaf-sets that track which of their leaves are
// currently unspent. It is grounded on GrinPlusPlus's TxHashSetManager
// (Open/LoadFromZip/SaveSnapshot lifecycle).
package txhashset

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/dblokhin/gringo-core/src/config"
	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
	"github.com/dblokhin/gringo-core/src/leafset"
	"github.com/dblokhin/gringo-core/src/mmr"
	"github.com/dblokhin/gringo-core/src/storage"
)

// TxHashSet is the UTXO state engine, positioned at whichever header was
// last flushed to it.
type TxHashSet struct {
	cfg config.Config

	kernel     *mmr.Accumulator
	output     *mmr.Accumulator
	rangeproof *mmr.Accumulator

	outputLeaves     *leafset.LeafSet
	rangeproofLeaves *leafset.LeafSet
}

// Open opens (creating if necessary) the three hash logs and two leaf-sets
// rooted at cfg.TxHashSetPath().
func Open(cfg config.Config) (*TxHashSet, error) {
	for _, dir := range []string{cfg.KernelPath(), cfg.OutputPath(), cfg.RangeProofPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, gringerr.New(gringerr.DbIO, "txhashset.Open", err)
		}
	}

	kernelHF, err := mmr.Open(filepath.Join(cfg.KernelPath(), "pmmr_hash.bin"))
	if err != nil {
		return nil, err
	}
	outputHF, err := mmr.Open(filepath.Join(cfg.OutputPath(), "pmmr_hash.bin"))
	if err != nil {
		return nil, err
	}
	rangeproofHF, err := mmr.Open(filepath.Join(cfg.RangeProofPath(), "pmmr_hash.bin"))
	if err != nil {
		return nil, err
	}

	outputLeaves, err := leafset.Load(filepath.Join(cfg.OutputPath(), "pmmr_leaf.bin"))
	if err != nil {
		return nil, err
	}
	rangeproofLeaves, err := leafset.Load(filepath.Join(cfg.RangeProofPath(), "pmmr_leaf.bin"))
	if err != nil {
		return nil, err
	}

	return &TxHashSet{
		cfg:              cfg,
		kernel:           mmr.NewAccumulator(kernelHF),
		output:           mmr.NewAccumulator(outputHF),
		rangeproof:       mmr.NewAccumulator(rangeproofHF),
		outputLeaves:     outputLeaves,
		rangeproofLeaves: rangeproofLeaves,
	}, nil
}

// Sizes reports the current node counts of the three MMRs, used to check
// against a header's declared OutputMmrSize/KernelMmrSize.
func (t *TxHashSet) Sizes() (kernel, output, rangeproof uint64) {
	return t.kernel.Size(), t.output.Size(), t.rangeproof.Size()
}

// ApplyBlock applies a single block's inputs, outputs and kernels to the
// three MMRs and two leaf-sets, and writes the block's INPUT_BITMAP and
// SPENT_OUTPUTS rows to wt. It does not validate kernel sums; that is
// validate.KernelSums's job, run by the caller either before or after this
// call using the MMR/leaf-set state it produces.
func (t *TxHashSet) ApplyBlock(wt *storage.WriteTxn, block *consensus.Block) error {
	logrus.WithField("height", block.Header.Height).Debug("txhashset: applying block")

	spentLeaves := roaring.New()
	spent := make(consensus.SpentOutputList, 0, len(block.Inputs))
	for _, in := range block.Inputs {
		commit := []byte(in.Commit)
		loc, err := wt.GetOutputPosition(commit)
		if err != nil {
			return err
		}
		if loc == nil {
			return gringerr.New(gringerr.BadData, "txhashset.ApplyBlock", fmt.Errorf("input spends unknown output"))
		}
		if !t.outputLeaves.Contains(loc.LeafIndex) {
			return gringerr.New(gringerr.BadData, "txhashset.ApplyBlock", fmt.Errorf("input spends an already-spent output"))
		}

		t.outputLeaves.Remove(loc.LeafIndex)
		t.rangeproofLeaves.Remove(loc.LeafIndex)
		if err := wt.DeleteOutputPosition(commit); err != nil {
			return err
		}
		spentLeaves.Add(uint32(loc.LeafIndex))
		spent = append(spent, consensus.SpentOutput{
			Commit:   append([]byte(nil), in.Commit...),
			Location: *loc,
		})
	}

	for _, out := range block.Outputs {
		commit := out.Commit.Bytes()
		existing, err := wt.GetOutputPosition(commit)
		if err != nil {
			return err
		}
		if existing != nil {
			return gringerr.New(gringerr.BadData, "txhashset.ApplyBlock", fmt.Errorf("duplicate unspent commitment"))
		}

		sizeBeforeAppend := t.output.Size()
		pos, err := t.output.AppendLeaf(mmr.Hash(outputLeafHash(out)))
		if err != nil {
			return err
		}
		if _, err := t.rangeproof.AppendLeaf(mmr.Hash(rangeProofLeafHash(out))); err != nil {
			return err
		}

		leafIdx := mmr.LeafCount(sizeBeforeAppend)
		t.outputLeaves.Add(leafIdx)
		t.rangeproofLeaves.Add(leafIdx)

		if err := wt.PutOutputPosition(commit, &consensus.OutputLocation{
			MMRPosition: pos,
			LeafIndex:   leafIdx,
			Height:      block.Header.Height,
		}); err != nil {
			return err
		}
	}

	for _, k := range block.Kernels {
		if _, err := t.kernel.AppendLeaf(mmr.Hash(kernelLeafHash(k))); err != nil {
			return err
		}
	}

	kernelSize, outputSize, _ := t.Sizes()
	if outputSize != block.Header.OutputMmrSize {
		return gringerr.New(gringerr.BadData, "txhashset.ApplyBlock", fmt.Errorf("output MMR size mismatch: have %d, header wants %d", outputSize, block.Header.OutputMmrSize))
	}
	if kernelSize != block.Header.KernelMmrSize {
		return gringerr.New(gringerr.BadData, "txhashset.ApplyBlock", fmt.Errorf("kernel MMR size mismatch: have %d, header wants %d", kernelSize, block.Header.KernelMmrSize))
	}

	hash := consensus.Hash(block.Hash())
	inputBitmap, err := spentLeaves.ToBytes()
	if err != nil {
		return gringerr.New(gringerr.Codec, "txhashset.ApplyBlock", err)
	}
	if err := wt.PutInputBitmap(hash, inputBitmap); err != nil {
		return err
	}
	if err := wt.PutSpentOutputs(hash, spent); err != nil {
		return err
	}
	return nil
}

// Rewind truncates all three MMRs to the sizes recorded in target, removes
// the leaf-set membership of leaves at or beyond target's output leaf
// count, and restores the membership of the leaf indices in
// restoreOutputLeaves and restoreRangeproofLeaves. It reads nothing from
// the BlockDB; the caller supplies the restore lists.
func (t *TxHashSet) Rewind(target *consensus.BlockHeader, restoreOutputLeaves, restoreRangeproofLeaves []uint64) {
	t.kernel.Rewind(target.KernelMmrSize)
	t.output.Rewind(target.OutputMmrSize)
	t.rangeproof.Rewind(target.OutputMmrSize)

	outputLeafCount := mmr.LeafCount(target.OutputMmrSize)
	t.outputLeaves.Rewind(outputLeafCount, restoreOutputLeaves)
	t.rangeproofLeaves.Rewind(outputLeafCount, restoreRangeproofLeaves)
}

// Commit flushes all three MMRs and both leaf-sets.
func (t *TxHashSet) Commit() error {
	if err := t.kernel.Commit(); err != nil {
		return err
	}
	if err := t.output.Commit(); err != nil {
		return err
	}
	if err := t.rangeproof.Commit(); err != nil {
		return err
	}
	if err := t.outputLeaves.Commit(); err != nil {
		return err
	}
	return t.rangeproofLeaves.Commit()
}

// Rollback discards staged changes on all three MMRs and both leaf-sets.
func (t *TxHashSet) Rollback() {
	t.kernel.Rollback()
	t.output.Rollback()
	t.rangeproof.Rollback()
	t.outputLeaves.Rollback()
	t.rangeproofLeaves.Rollback()
}

// Roots is the pure function of current sizes and hash files: the four
// roots a header pins (kernel, output, range-proof, and the leaf-set
// "UTXO bitmap" commitment).
type Roots struct {
	Kernel     mmr.Hash
	Output     mmr.Hash
	RangeProof mmr.Hash
	LeafSet    mmr.Hash
}

func (t *TxHashSet) Roots() (Roots, error) {
	kernelRoot, err := t.kernel.Root()
	if err != nil {
		return Roots{}, err
	}
	outputRoot, err := t.output.Root()
	if err != nil {
		return Roots{}, err
	}
	rangeproofRoot, err := t.rangeproof.Root()
	if err != nil {
		return Roots{}, err
	}
	leafRoot := t.outputLeaves.Root(mmr.LeafCount(t.output.Size()))

	return Roots{
		Kernel:     kernelRoot,
		Output:     outputRoot,
		RangeProof: rangeproofRoot,
		LeafSet:    leafRoot,
	}, nil
}

// Snapshot copies the three MMR hash files and both leaf-set files, as
// they currently stand on disk, into a staging directory, naming each
// copied leaf file with header's short hash, and bundles the three
// subdirectories into a zip file. It returns the zip's path. The copy is
// not rewound to header: header only supplies the hash used in the names.
func (t *TxHashSet) Snapshot(header *consensus.BlockHeader, stagingDir string) (string, error) {
	hash := consensus.Hash(header.Hash())
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", gringerr.New(gringerr.DbIO, "txhashset.Snapshot", err)
	}

	for _, sub := range []string{"kernel", "output", "rangeproof"} {
		if err := os.MkdirAll(filepath.Join(stagingDir, sub), 0o755); err != nil {
			return "", gringerr.New(gringerr.DbIO, "txhashset.Snapshot", err)
		}
	}
	if err := copyFile(filepath.Join(t.cfg.KernelPath(), "pmmr_hash.bin"), filepath.Join(stagingDir, "kernel", "pmmr_hash.bin")); err != nil {
		return "", err
	}
	if err := copyFile(filepath.Join(t.cfg.OutputPath(), "pmmr_hash.bin"), filepath.Join(stagingDir, "output", "pmmr_hash.bin")); err != nil {
		return "", err
	}
	if err := copyFile(filepath.Join(t.cfg.RangeProofPath(), "pmmr_hash.bin"), filepath.Join(stagingDir, "rangeproof", "pmmr_hash.bin")); err != nil {
		return "", err
	}
	if err := copyFile(filepath.Join(t.cfg.OutputPath(), "pmmr_leaf.bin"), filepath.Join(stagingDir, "output", fmt.Sprintf("pmmr_leaf.bin.%x", hash[:6]))); err != nil {
		return "", err
	}
	if err := copyFile(filepath.Join(t.cfg.RangeProofPath(), "pmmr_leaf.bin"), filepath.Join(stagingDir, "rangeproof", fmt.Sprintf("pmmr_leaf.bin.%x", hash[:6]))); err != nil {
		return "", err
	}

	zipPath := filepath.Join(stagingDir, fmt.Sprintf("txhashset-%x.zip", hash[:6]))
	if err := zipDir(stagingDir, zipPath); err != nil {
		return "", err
	}
	return zipPath, nil
}

// LoadFromZip replaces dstDir's contents with the txhashset bundled in
// zipPath, used when fast-syncing state from a peer rather than replaying
// every historical block.
func LoadFromZip(zipPath, dstDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return gringerr.New(gringerr.DbIO, "txhashset.LoadFromZip", err)
	}
	defer r.Close()

	for _, f := range r.File {
		dst := filepath.Join(dstDir, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return gringerr.New(gringerr.DbIO, "txhashset.LoadFromZip", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return gringerr.New(gringerr.DbIO, "txhashset.LoadFromZip", err)
		}
		rc, err := f.Open()
		if err != nil {
			return gringerr.New(gringerr.Codec, "txhashset.LoadFromZip", err)
		}
		out, err := os.Create(dst)
		if err != nil {
			rc.Close()
			return gringerr.New(gringerr.DbIO, "txhashset.LoadFromZip", err)
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		out.Close()
		if copyErr != nil {
			return gringerr.New(gringerr.DbIO, "txhashset.LoadFromZip", copyErr)
		}
	}
	return nil
}

func outputLeafHash(out consensus.Output) [32]byte {
	h := out.Hash()
	var out32 [32]byte
	copy(out32[:], h)
	return out32
}

func rangeProofLeafHash(out consensus.Output) [32]byte {
	return blake2b.Sum256(out.RangeProof.Bytes())
}

func kernelLeafHash(k consensus.TxKernel) [32]byte {
	h := k.Hash()
	var out32 [32]byte
	copy(out32[:], h)
	return out32
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return gringerr.New(gringerr.DbIO, "txhashset.copyFile", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return gringerr.New(gringerr.DbIO, "txhashset.copyFile", err)
	}
	return nil
}

func zipDir(srcDir, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return gringerr.New(gringerr.DbIO, "txhashset.zipDir", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	return filepath.Walk(srcDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || path == zipPath {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
}
