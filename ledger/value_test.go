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
	"testing"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOutputValue(t *testing.T, amount any) ledger.Value {
	t.Helper()
	output, err := ledger.DecodeTransactionOutput(
		mustEncode(t, []any{testAddress, amount}),
	)
	require.NoError(t, err)
	return output.Amount
}

func TestValueCoinOnly(t *testing.T) {
	value := decodeOutputValue(t, uint64(5000000))
	assert.Equal(t, uint64(5000000), value.Coin)
	assert.Equal(t, 0, value.MultiAsset.Len())
	assert.Empty(t, value.MultiAsset.Policies())
}

func TestValueWithAssets(t *testing.T) {
	value := decodeOutputValue(t, []any{uint64(5000000), outputAssets()})
	assert.Equal(t, uint64(5000000), value.Coin)
	// Zero quantities are dropped
	assert.Equal(t, 1, value.MultiAsset.Len())
	assert.Equal(t, []ledger.PolicyId{testPolicyId}, value.MultiAsset.Policies())
	assert.Equal(t, uint64(100000), value.MultiAsset.Asset(testPolicyId, []byte("tokenA")))
	assert.Equal(t, uint64(0), value.MultiAsset.Asset(testPolicyId, []byte("empty")))
	expected := ledger.Value{
		Coin: 5000000,
		MultiAsset: ledger.NewMultiAsset(
			map[ledger.PolicyId]map[ledger.AssetName]uint64{
				testPolicyId: {
					cbor.NewByteString([]byte("tokenA")): 100000,
				},
			},
		),
	}
	assert.True(t, value.Equal(expected))
	expected.Coin = 1
	assert.False(t, value.Equal(expected))
}

func TestMultiAssetOrdering(t *testing.T) {
	otherPolicy := ledger.NewBlake2b224(make([]byte, 28))
	ma := ledger.NewMultiAsset(
		map[ledger.PolicyId]map[ledger.AssetName]uint64{
			testPolicyId: {
				cbor.NewByteString([]byte("b")): 2,
				cbor.NewByteString([]byte("a")): 1,
			},
			otherPolicy: {
				cbor.NewByteString([]byte("z")): 3,
			},
		},
	)
	assert.Equal(t, []ledger.PolicyId{otherPolicy, testPolicyId}, ma.Policies())
	assets := ma.Assets(testPolicyId)
	require.Len(t, assets, 2)
	assert.Equal(t, []byte("a"), assets[0].Bytes())
	assert.Equal(t, []byte("b"), assets[1].Bytes())
	assert.Nil(t, ma.Assets(ledger.NewBlake2b224([]byte{0x01})))
	assert.Equal(t, 3, ma.Len())
}

func TestMultiAssetEqual(t *testing.T) {
	a := ledger.NewMultiAsset(
		map[ledger.PolicyId]map[ledger.AssetName]int64{
			testPolicyId: {
				cbor.NewByteString([]byte("a")): 1,
				cbor.NewByteString([]byte("b")): -2,
			},
		},
	)
	b := ledger.NewMultiAsset(a.ToMap())
	assert.True(t, a.Equal(b))
	tmpMap := a.ToMap()
	tmpMap[testPolicyId][cbor.NewByteString([]byte("b"))] = -3
	assert.False(t, a.Equal(ledger.NewMultiAsset(tmpMap)))
	// ToMap returns a copy
	assert.Equal(t, int64(-2), a.Asset(testPolicyId, []byte("b")))
}

func TestMultiAssetCbor(t *testing.T) {
	data := mustEncode(t, mintAssets())
	var decoded ledger.MultiAsset[int64]
	_, err := cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.True(t, mintAssets().Equal(decoded))
}

func TestMintKeepsNonZero(t *testing.T) {
	tx, err := ledger.DecodeTransaction(buildConwayTx(t))
	require.NoError(t, err)
	assert.Equal(t, 2, tx.Mint.Len())
	assert.Equal(t, int64(-5), tx.Mint.Asset(testPolicyId, []byte("burned")))
	assert.Equal(t, int64(100000), tx.Mint.Asset(testPolicyId, []byte("tokenA")))
}
