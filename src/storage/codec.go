// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"

	"github.com/dblokhin/gringo-core/src/codec"
	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/gringerr"
)

func decodeHeader(raw []byte) (*consensus.BlockHeader, error) {
	h := new(consensus.BlockHeader)
	if err := h.Read(bytes.NewReader(raw)); err != nil {
		return nil, gringerr.New(gringerr.Codec, "storage.decodeHeader", err)
	}
	return h, nil
}

func decodeBlock(raw []byte) (*consensus.Block, error) {
	b := new(consensus.Block)
	if err := b.Read(bytes.NewReader(raw)); err != nil {
		return nil, gringerr.New(gringerr.Codec, "storage.decodeBlock", err)
	}
	return b, nil
}

func decodeBlockSums(raw []byte) (*consensus.BlockSums, error) {
	s := new(consensus.BlockSums)
	if err := s.Read(codec.NewReader(bytes.NewReader(raw))); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeOutputLocation(raw []byte) (*consensus.OutputLocation, error) {
	l := new(consensus.OutputLocation)
	if err := l.Read(codec.NewReader(bytes.NewReader(raw))); err != nil {
		return nil, err
	}
	return l, nil
}

func decodeSpentOutputs(raw []byte, out *consensus.SpentOutputList) error {
	return out.Read(codec.NewReader(bytes.NewReader(raw)))
}
