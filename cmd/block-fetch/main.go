// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/cmd/common"
	"github.com/blinklabs-io/ouroboros-client/ledger"
	ocommon "github.com/blinklabs-io/ouroboros-client/protocol/common"
)

type blockFetchFlags struct {
	*common.GlobalFlags
	slot uint64
	hash string
}

func main() {
	f := blockFetchFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.Uint64Var(&f.slot, "slot", 0, "slot for single block to fetch")
	f.Flagset.StringVar(&f.hash, "hash", "", "hash for single block to fetch")
	f.Parse()
	// Block-fetch only exists on node-to-node connections
	f.NodeToNode = true
	blockHash, err := hex.DecodeString(f.hash)
	if err != nil || len(blockHash) != 32 {
		common.Exit(fmt.Errorf("invalid block hash: %q", f.hash))
	}
	logger := common.NewLogger(f.GlobalFlags)
	session, err := common.CreateSession(f.GlobalFlags, logger)
	if err != nil {
		common.Exit(err)
	}
	defer func() {
		_ = session.Disconnect()
	}()
	peer, err := session.Peer()
	if err != nil {
		common.Exit(err)
	}
	blockCbor, err := peer.FetchBlock(ocommon.NewPoint(f.slot, blockHash))
	if err != nil {
		common.Exit(fmt.Errorf("failed to fetch block: %w", err))
	}
	block, err := ledger.NewBlockFromWrappedCbor(blockCbor)
	if err != nil {
		common.Exit(err)
	}
	fmt.Printf(
		"era = %s, slot = %d, block_no = %d, id = %s, txs = %d\n",
		block.Era,
		block.Slot,
		block.Number,
		block.Hash,
		len(block.TransactionBodies),
	)
	for _, tx := range block.TransactionBodies {
		fmt.Printf(
			"  tx %s: inputs = %d, outputs = %d, fee = %d\n",
			tx.Id,
			len(tx.Inputs),
			len(tx.Outputs),
			tx.Fee,
		)
	}
}
