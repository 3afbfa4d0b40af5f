// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dblokhin/gringo-core/src/chain"
	"github.com/dblokhin/gringo-core/src/config"
	"github.com/dblokhin/gringo-core/src/storage"
	"github.com/dblokhin/gringo-core/src/txhashset"
)

func init() {
	// Output to stdout instead of the default stderr
	// Can be any io.Writer, see below for File example
	logrus.SetOutput(os.Stdout)

	// Log the debug severity or above.
	logrus.SetLevel(logrus.DebugLevel)
}

func main() {
	dataDir := flag.String("datadir", "./data", "root directory for chain and state storage")
	flag.Parse()

	cfg := config.DefaultConfig(*dataDir)

	logrus.WithField("datadir", cfg.DataDir).Info("opening block database")
	db, err := storage.Open(cfg.ChainDBPath(), cfg.HeaderCacheSize)
	if err != nil {
		logrus.WithError(err).Fatal("storage.Open")
	}
	defer db.Close()

	ths, err := txhashset.Open(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("txhashset.Open")
	}

	mgr, err := chain.NewManager(cfg, db, ths, &chain.Mainnet)
	if err != nil {
		logrus.WithError(err).Fatal("chain.NewManager")
	}

	tip, err := mgr.GetTip(chain.Confirmed)
	if err != nil {
		logrus.WithError(err).Fatal("chain.GetTip")
	}
	logrus.WithFields(logrus.Fields{
		"height":    tip.Height,
		"totalDiff": tip.TotalDifficulty,
	}).Info("chain manager ready")

	// The P2P/sync driver is an out-of-scope external collaborator (see
	// spec.md §1): it consumes Manager.AddHeader/AddBlock/GetBlockHeaders
	// over its own transport, not implemented in this module.
	select {}
}
