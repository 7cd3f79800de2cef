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
	"errors"
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/cmd/common"
	"github.com/blinklabs-io/ouroboros-client/ledger"
)

type utxoQueryFlags struct {
	*common.GlobalFlags
	address string
}

func main() {
	f := utxoQueryFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.StringVar(&f.address, "addr", "", "bech32 or base58 address to query")
	f.Parse()
	if f.address == "" {
		common.Exit(errors.New("you must specify -addr"))
	}
	addrBytes, err := ledger.AddressFromText(f.address)
	if err != nil {
		common.Exit(err)
	}
	// Ledger state queries only exist on node-to-client connections
	f.NodeToNode = false
	logger := common.NewLogger(f.GlobalFlags)
	session, err := common.CreateSession(f.GlobalFlags, logger)
	if err != nil {
		common.Exit(err)
	}
	defer func() {
		_ = session.Disconnect()
	}()
	client, err := session.Client()
	if err != nil {
		common.Exit(err)
	}
	outputs, err := client.GetUtxoByAddress(addrBytes)
	if err != nil {
		common.Exit(fmt.Errorf("failed to query UTxOs: %w", err))
	}
	fmt.Printf("%d UTxOs at %s\n", len(outputs), f.address)
	for _, outputCbor := range outputs {
		output, err := ledger.DecodeTransactionOutput(outputCbor)
		if err != nil {
			logger.Warn("failed to decode output", "error", err, "cbor", fmt.Sprintf("%x", outputCbor))
			continue
		}
		fmt.Printf("  %d lovelace\n", output.Amount.Coin)
		assets := output.Amount.MultiAsset
		for _, policyId := range assets.Policies() {
			for _, assetName := range assets.Assets(policyId) {
				fmt.Printf(
					"    %d %s.%s\n",
					assets.Asset(policyId, assetName.Bytes()),
					policyId,
					assetName,
				)
			}
		}
	}
}
