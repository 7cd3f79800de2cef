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

package ledger_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/internal/test"
	"github.com/blinklabs-io/ouroboros-client/internal/testdata"
	"github.com/blinklabs-io/ouroboros-client/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPolicyId = ledger.NewBlake2b224(
		test.DecodeHexString("29a8fb8318718bd756124f0c144f56d4b4579dc5edf2dd42d669ac61"),
	)
	testTxHashA = test.DecodeHexString("279184037d249e397d97293738370756da559718fcdefae9924834840046b37b")
	testTxHashB = test.DecodeHexString("a12a839c25a01fa5d118167db5acdbd9e38172ae8f00e5ac0a4997ef792a2007")
	testAddress = test.DecodeHexString(
		"00923d4b64e1d730a4baf3e6dc433a9686983940f458363f37aad7a1a9568b72f85522e4a17d44a45cd021b9741b55d7cbc635c911625b015e",
	)
	testDatumHash = test.DecodeHexString("b829480e5d5827d2e1bd7c89176a5ca125c30812e54be7dbdf5c47c835a17f3d")
)

type testRedeemerKey struct {
	cbor.StructAsArray
	Tag   uint
	Index uint32
}

func mustEncode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := cbor.Encode(v)
	require.NoError(t, err)
	return data
}

func outputAssets() ledger.MultiAsset[uint64] {
	return ledger.NewMultiAsset(
		map[ledger.PolicyId]map[ledger.AssetName]uint64{
			testPolicyId: {
				cbor.NewByteString([]byte("tokenA")): 100000,
				cbor.NewByteString([]byte("empty")):  0,
			},
		},
	)
}

func mintAssets() ledger.MultiAsset[int64] {
	return ledger.NewMultiAsset(
		map[ledger.PolicyId]map[ledger.AssetName]int64{
			testPolicyId: {
				cbor.NewByteString([]byte("tokenA")): 100000,
				cbor.NewByteString([]byte("burned")): -5,
				cbor.NewByteString([]byte("noop")):   0,
			},
		},
	)
}

// buildConwayTx returns a Conway transaction with a duplicated input, a map output with
// an inline datum, a mint, a redeemer map, and metadata
func buildConwayTx(t *testing.T) []byte {
	t.Helper()
	body := mustEncode(t, map[uint]any{
		0: cbor.Set{
			[]any{testTxHashA, 1},
			[]any{testTxHashB, 0},
			[]any{testTxHashA, 1},
		},
		1: []any{
			map[uint]any{
				0: testAddress,
				1: []any{uint64(5000000), outputAssets()},
				2: []any{1, cbor.WrappedCbor{0x18, 0x2a}},
			},
			[]any{testAddress, uint64(1000000), testDatumHash},
		},
		2: uint64(200000),
		9: mintAssets(),
	})
	witnessSet := mustEncode(t, map[uint]any{
		5: map[testRedeemerKey]any{
			{Tag: 1, Index: 0}: []any{cbor.RawMessage{0x18, 0x2a}, []any{1000, 2000}},
			{Tag: 0, Index: 1}: []any{cbor.RawMessage{0x01}, []any{10, 20}},
		},
	})
	auxData := mustEncode(t, map[uint]any{
		674: map[string]any{
			"msg": []any{"hello"},
		},
	})
	return mustEncode(t, []any{
		cbor.RawMessage(body),
		cbor.RawMessage(witnessSet),
		true,
		cbor.RawMessage(auxData),
	})
}

func TestDetermineTransactionEra(t *testing.T) {
	legacyOutput := []any{testAddress, uint64(1000000)}
	babbageOutput := map[uint]any{0: testAddress, 1: uint64(1000000)}
	inputs := []any{[]any{testTxHashA, 0}}
	testDefs := []struct {
		name        string
		txCbor      []byte
		expectedEra ledger.EraTag
	}{
		{
			name:        "Conway",
			txCbor:      test.DecodeHexString(testdata.ConwayTxHex),
			expectedEra: ledger.EraConway,
		},
		{
			name:        "Byron",
			txCbor:      test.DecodeHexString(testdata.ByronTxHex),
			expectedEra: ledger.EraByron,
		},
		{
			name: "Shelley",
			txCbor: mustEncode(t, []any{
				map[uint]any{0: inputs, 1: []any{legacyOutput}, 2: 1000, 3: 5000},
				map[uint]any{},
				nil,
			}),
			expectedEra: ledger.EraShelley,
		},
		{
			name: "Allegra",
			txCbor: mustEncode(t, []any{
				map[uint]any{0: inputs, 1: []any{legacyOutput}, 2: 1000, 8: 10},
				map[uint]any{},
				nil,
			}),
			expectedEra: ledger.EraAllegra,
		},
		{
			name: "Mary",
			txCbor: mustEncode(t, []any{
				map[uint]any{0: inputs, 1: []any{legacyOutput}, 2: 1000, 9: mintAssets()},
				map[uint]any{},
				nil,
			}),
			expectedEra: ledger.EraMary,
		},
		{
			name: "Alonzo",
			txCbor: mustEncode(t, []any{
				map[uint]any{0: inputs, 1: []any{legacyOutput}, 2: 1000},
				map[uint]any{},
				true,
				nil,
			}),
			expectedEra: ledger.EraAlonzo,
		},
		{
			name: "Babbage",
			txCbor: mustEncode(t, []any{
				map[uint]any{0: inputs, 1: []any{babbageOutput}, 2: 1000},
				map[uint]any{},
				true,
				nil,
			}),
			expectedEra: ledger.EraBabbage,
		},
		{
			name:        "ConwayTagged",
			txCbor:      buildConwayTx(t),
			expectedEra: ledger.EraConway,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			era, err := ledger.DetermineTransactionEra(testDef.txCbor)
			require.NoError(t, err)
			assert.Equal(t, testDef.expectedEra, era)
		})
	}
}

func TestDetermineTransactionEraInvalid(t *testing.T) {
	_, err := ledger.DetermineTransactionEra([]byte{0x01})
	assert.ErrorIs(t, err, ledger.ErrDecode)
}

func TestDecodeConwayFixture(t *testing.T) {
	tx, err := ledger.DecodeTransaction(test.DecodeHexString(testdata.ConwayTxHex))
	require.NoError(t, err)
	assert.Equal(t, ledger.EraConway, tx.Era)
	assert.Equal(t, testdata.ConwayTxId, tx.Id.String())
	require.Len(t, tx.Inputs, 1)
	assert.Equal(t, hex.EncodeToString(testTxHashA), tx.Inputs[0].TxId.String())
	assert.Equal(t, uint64(1), tx.Inputs[0].Index)
	require.Len(t, tx.Outputs, 2)
	assert.Equal(t, testAddress, tx.Outputs[0].Address)
	assert.Equal(t, uint64(11110000), tx.Outputs[0].Amount.Coin)
	assert.Equal(t, uint64(4936677124), tx.Outputs[1].Amount.Coin)
	assert.Equal(t, 1, tx.Outputs[1].Index)
	assert.Equal(t, uint64(168845), tx.Fee)
	assert.Empty(t, tx.Metadata)
	assert.Empty(t, tx.Redeemers)
	assert.Zero(t, tx.Mint.Len())
}

func TestDecodeByronTransaction(t *testing.T) {
	tx, err := ledger.DecodeTransaction(test.DecodeHexString(testdata.ByronTxHex))
	require.NoError(t, err)
	assert.Equal(t, ledger.EraByron, tx.Era)
	assert.Equal(t, testdata.ByronTxId, tx.Id.String())
	assert.Equal(t, "", tx.Metadata)
	assert.Empty(t, tx.Redeemers)
	require.Len(t, tx.Inputs, 1)
	assert.Equal(t, hex.EncodeToString(testTxHashB), tx.Inputs[0].TxId.String())
	require.Len(t, tx.Outputs, 1)
	assert.Equal(t, uint64(1000000), tx.Outputs[0].Amount.Coin)
	// Byron addresses keep their [#6.24(payload), crc] wrapping
	assert.Equal(
		t,
		"82d818584283581c6c9982e7f2b6dcc5eaa880e8014568913c8868d9f0f86eb687b2633ca101581e581c010d876783fb2b4d0d17c86df29af8d35356ed3d1827bf4744f06700001a8dc672c1",
		hex.EncodeToString(tx.Outputs[0].Address),
	)
}

func TestDecodeConwayTransaction(t *testing.T) {
	tx, err := ledger.DecodeTransaction(buildConwayTx(t))
	require.NoError(t, err)
	assert.Equal(t, ledger.EraConway, tx.Era)
	assert.Equal(t, ledger.Blake2b256Hash(tx.Raw), tx.Id)
	assert.Equal(t, uint64(200000), tx.Fee)

	// Duplicate inputs are dropped, preserving first-seen order
	require.Len(t, tx.Inputs, 2)
	assert.Equal(t, ledger.NewBlake2b256(testTxHashA), tx.Inputs[0].TxId)
	assert.Equal(t, uint64(1), tx.Inputs[0].Index)
	assert.Equal(t, ledger.NewBlake2b256(testTxHashB), tx.Inputs[1].TxId)

	require.Len(t, tx.Outputs, 2)
	output := tx.Outputs[0]
	assert.Equal(t, testAddress, output.Address)
	assert.Equal(t, uint64(5000000), output.Amount.Coin)
	// Zero quantities are not output assets
	assert.Equal(t, 1, output.Amount.MultiAsset.Len())
	assert.Equal(t, uint64(100000), output.Amount.MultiAsset.Asset(testPolicyId, []byte("tokenA")))
	require.NotNil(t, output.Datum)
	assert.Equal(t, uint8(ledger.DatumTypeData), output.Datum.Type)
	assert.Equal(t, []byte{0x18, 0x2a}, output.Datum.Data)

	legacyOutput := tx.Outputs[1]
	assert.Equal(t, 1, legacyOutput.Index)
	require.NotNil(t, legacyOutput.Datum)
	assert.Equal(t, uint8(ledger.DatumTypeHash), legacyOutput.Datum.Type)
	assert.Equal(t, testDatumHash, legacyOutput.Datum.Data)

	// Mint keeps burns but drops zero entries
	assert.Equal(t, 2, tx.Mint.Len())
	assert.Equal(t, int64(100000), tx.Mint.Asset(testPolicyId, []byte("tokenA")))
	assert.Equal(t, int64(-5), tx.Mint.Asset(testPolicyId, []byte("burned")))

	require.Len(t, tx.Redeemers, 2)
	assert.Equal(t, ledger.RedeemerTagSpend, tx.Redeemers[0].Tag)
	assert.Equal(t, uint32(1), tx.Redeemers[0].Index)
	assert.Equal(t, []byte{0x01}, tx.Redeemers[0].Data)
	assert.Equal(t, uint64(10), tx.Redeemers[0].ExUnits.Mem)
	assert.Equal(t, ledger.RedeemerTagMint, tx.Redeemers[1].Tag)
	assert.Equal(t, []byte{0x18, 0x2a}, tx.Redeemers[1].Data)
	assert.Equal(t, uint64(2000), tx.Redeemers[1].ExUnits.Steps)

	assert.JSONEq(t, `{"674":{"msg":["hello"]}}`, tx.Metadata)
}

func TestDecodeAlonzoLegacyRedeemers(t *testing.T) {
	txCbor := mustEncode(t, []any{
		map[uint]any{
			0: []any{[]any{testTxHashA, 0}},
			1: []any{[]any{testAddress, uint64(2000000)}},
			2: 1000,
		},
		map[uint]any{
			5: []any{
				[]any{0, 0, cbor.RawMessage{0x18, 0x2a}, []any{1, 2}},
			},
		},
		true,
		nil,
	})
	tx, err := ledger.DecodeTransaction(txCbor)
	require.NoError(t, err)
	assert.Equal(t, ledger.EraAlonzo, tx.Era)
	require.Len(t, tx.Redeemers, 1)
	assert.Equal(t, ledger.RedeemerTagSpend, tx.Redeemers[0].Tag)
	assert.Equal(t, []byte{0x18, 0x2a}, tx.Redeemers[0].Data)
	assert.Equal(t, uint64(1), tx.Redeemers[0].ExUnits.Mem)
	assert.Equal(t, uint64(2), tx.Redeemers[0].ExUnits.Steps)
	assert.Equal(t, "", tx.Metadata)
}

func TestTransactionBodyRawRoundTrip(t *testing.T) {
	tx, err := ledger.DecodeTransaction(buildConwayTx(t))
	require.NoError(t, err)
	// Wrap the raw body back up in a transaction without witnesses
	rebuilt := mustEncode(t, []any{
		cbor.RawMessage(tx.Raw),
		map[uint]any{},
		true,
		nil,
	})
	tx2, err := ledger.DecodeTransaction(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, tx.Id, tx2.Id)
	assert.Equal(t, tx.Inputs, tx2.Inputs)
	assert.Equal(t, tx.Outputs, tx2.Outputs)
	assert.True(t, tx.Mint.Equal(tx2.Mint))
	assert.Equal(t, tx.Raw, tx2.Raw)
}

func TestTransactionOutputRawRoundTrip(t *testing.T) {
	tx, err := ledger.DecodeTransaction(buildConwayTx(t))
	require.NoError(t, err)
	for _, output := range tx.Outputs {
		decoded, err := ledger.DecodeTransactionOutput(output.Raw)
		require.NoError(t, err)
		assert.Equal(t, output.Address, decoded.Address)
		assert.True(t, output.Amount.Equal(decoded.Amount))
		assert.Equal(t, output.Datum, decoded.Datum)
		assert.Equal(t, output.Raw, decoded.Raw)
	}
}

func TestDecodeTransactionOutputInvalid(t *testing.T) {
	_, err := ledger.DecodeTransactionOutput([]byte{0x01})
	assert.ErrorIs(t, err, ledger.ErrDecode)
	assert.ErrorIs(t, err, ledger.ErrUnknownOutputType)
}
