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
	"bytes"
	"slices"

	"github.com/blinklabs-io/ouroboros-client/cbor"
)

// PolicyId identifies a minting policy
type PolicyId = Blake2b224

// AssetName is the name of an asset within a policy
type AssetName = cbor.ByteString

// MultiAsset represents a collection of policies, assets, and quantities. It's used for
// TX outputs (uint64) and TX asset minting (int64 to allow for negative values for burning)
type MultiAsset[T int64 | uint64] struct {
	data map[PolicyId]map[AssetName]T
}

// NewMultiAsset returns a MultiAsset holding the provided data
func NewMultiAsset[T int64 | uint64](data map[PolicyId]map[AssetName]T) MultiAsset[T] {
	return MultiAsset[T]{data: data}
}

func (m *MultiAsset[T]) UnmarshalCBOR(data []byte) error {
	_, err := cbor.Decode(data, &(m.data))
	return err
}

func (m MultiAsset[T]) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(m.data)
}

// Policies returns the policy IDs in byte order
func (m MultiAsset[T]) Policies() []PolicyId {
	ret := make([]PolicyId, 0, len(m.data))
	for policyId := range m.data {
		ret = append(ret, policyId)
	}
	slices.SortFunc(ret, func(a, b PolicyId) int {
		return bytes.Compare(a[:], b[:])
	})
	return ret
}

// Assets returns the asset names under a policy in byte order
func (m MultiAsset[T]) Assets(policyId PolicyId) []AssetName {
	assets, ok := m.data[policyId]
	if !ok {
		return nil
	}
	ret := make([]AssetName, 0, len(assets))
	for assetName := range assets {
		ret = append(ret, assetName)
	}
	slices.SortFunc(ret, func(a, b AssetName) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
	return ret
}

// Asset returns the quantity of a single asset, or zero if it is not present
func (m MultiAsset[T]) Asset(policyId PolicyId, assetName []byte) T {
	policy, ok := m.data[policyId]
	if !ok {
		return 0
	}
	return policy[cbor.NewByteString(assetName)]
}

// Len returns the number of (policy, asset) entries
func (m MultiAsset[T]) Len() int {
	ret := 0
	for _, assets := range m.data {
		ret += len(assets)
	}
	return ret
}

// ToMap returns a copy of the underlying data
func (m MultiAsset[T]) ToMap() map[PolicyId]map[AssetName]T {
	ret := make(map[PolicyId]map[AssetName]T, len(m.data))
	for policyId, assets := range m.data {
		tmpAssets := make(map[AssetName]T, len(assets))
		for name, amount := range assets {
			tmpAssets[name] = amount
		}
		ret[policyId] = tmpAssets
	}
	return ret
}

// Equal compares two MultiAssets as sets of (policy, asset, quantity)
func (m MultiAsset[T]) Equal(other MultiAsset[T]) bool {
	if m.Len() != other.Len() {
		return false
	}
	for policyId, assets := range m.data {
		otherAssets := other.data[policyId]
		for name, amount := range assets {
			otherAmount, ok := otherAssets[name]
			if !ok || otherAmount != amount {
				return false
			}
		}
	}
	return true
}

// filter returns a copy with only the entries that keep returns true for. Policies left
// without assets are dropped
func (m MultiAsset[T]) filter(keep func(T) bool) MultiAsset[T] {
	ret := MultiAsset[T]{
		data: make(map[PolicyId]map[AssetName]T),
	}
	for policyId, assets := range m.data {
		for name, amount := range assets {
			if !keep(amount) {
				continue
			}
			if _, ok := ret.data[policyId]; !ok {
				ret.data[policyId] = make(map[AssetName]T)
			}
			ret.data[policyId][name] = amount
		}
	}
	return ret
}

// Value is an amount of lovelace plus any native assets
type Value struct {
	Coin       uint64
	MultiAsset MultiAsset[uint64]
}

// Equal returns true if both values hold the same coin and the same set of assets
func (v Value) Equal(other Value) bool {
	return v.Coin == other.Coin && v.MultiAsset.Equal(other.MultiAsset)
}

// decodeValue decodes either a bare coin or a [coin, multiasset] pair. Only strictly
// positive asset quantities are kept
func decodeValue(data []byte) (Value, error) {
	var ret Value
	if cbor.MajorType(data) == cbor.CborTypeUnsigned {
		if _, err := cbor.Decode(data, &ret.Coin); err != nil {
			return ret, err
		}
		return ret, nil
	}
	var tmpValue struct {
		cbor.StructAsArray
		Coin   uint64
		Assets MultiAsset[uint64]
	}
	if _, err := cbor.Decode(data, &tmpValue); err != nil {
		return ret, err
	}
	ret.Coin = tmpValue.Coin
	ret.MultiAsset = tmpValue.Assets.filter(func(amount uint64) bool {
		return amount > 0
	})
	return ret, nil
}

// decodeMint decodes a mint field, keeping only non-zero quantities
func decodeMint(data []byte) (MultiAsset[int64], error) {
	var tmpMint MultiAsset[int64]
	if _, err := cbor.Decode(data, &tmpMint); err != nil {
		return tmpMint, err
	}
	return tmpMint.filter(func(amount int64) bool {
		return amount != 0
	}), nil
}
