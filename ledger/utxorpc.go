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

package ledger

import (
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// Utxorpc converts the block to its utxorpc representation
func (b *Block) Utxorpc() *utxorpc.Block {
	txs := make([]*utxorpc.Tx, 0, len(b.TransactionBodies))
	for idx := range b.TransactionBodies {
		txs = append(txs, b.TransactionBodies[idx].Utxorpc())
	}
	return &utxorpc.Block{
		Header: &utxorpc.BlockHeader{
			Hash:   b.Hash.Bytes(),
			Height: b.Number,
			Slot:   b.Slot,
		},
		Body: &utxorpc.BlockBody{
			Tx: txs,
		},
	}
}

// Utxorpc converts the transaction body to its utxorpc representation
func (t *TransactionBody) Utxorpc() *utxorpc.Tx {
	txi := make([]*utxorpc.TxInput, 0, len(t.Inputs))
	for _, input := range t.Inputs {
		txi = append(txi, input.Utxorpc())
	}
	txo := make([]*utxorpc.TxOutput, 0, len(t.Outputs))
	for idx := range t.Outputs {
		txo = append(txo, t.Outputs[idx].Utxorpc())
	}
	var mint []*utxorpc.Multiasset
	for _, policyId := range t.Mint.Policies() {
		ma := &utxorpc.Multiasset{
			PolicyId: policyId.Bytes(),
		}
		for _, assetName := range t.Mint.Assets(policyId) {
			ma.Assets = append(
				ma.Assets,
				&utxorpc.Asset{
					Name:     assetName.Bytes(),
					MintCoin: t.Mint.Asset(policyId, assetName.Bytes()),
				},
			)
		}
		mint = append(mint, ma)
	}
	return &utxorpc.Tx{
		Inputs:  txi,
		Outputs: txo,
		Mint:    mint,
		Fee:     t.Fee,
		Hash:    t.Id.Bytes(),
	}
}

func (i TransactionInput) Utxorpc() *utxorpc.TxInput {
	return &utxorpc.TxInput{
		TxHash:      i.TxId.Bytes(),
		OutputIndex: uint32(i.Index), // #nosec G115
	}
}

// Utxorpc converts the transaction output to its utxorpc representation
func (o *TransactionOutput) Utxorpc() *utxorpc.TxOutput {
	var assets []*utxorpc.Multiasset
	tmpAssets := o.Amount.MultiAsset
	for _, policyId := range tmpAssets.Policies() {
		ma := &utxorpc.Multiasset{
			PolicyId: policyId.Bytes(),
		}
		for _, assetName := range tmpAssets.Assets(policyId) {
			ma.Assets = append(
				ma.Assets,
				&utxorpc.Asset{
					Name:       assetName.Bytes(),
					OutputCoin: tmpAssets.Asset(policyId, assetName.Bytes()),
				},
			)
		}
		assets = append(assets, ma)
	}
	ret := &utxorpc.TxOutput{
		Address: o.Address,
		Coin:    o.Amount.Coin,
		Assets:  assets,
	}
	if o.Datum != nil && o.Datum.Type == DatumTypeHash {
		ret.Datum = &utxorpc.Datum{
			Hash: o.Datum.Data,
		}
	}
	return ret
}
