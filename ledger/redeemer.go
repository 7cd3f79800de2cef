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
	"fmt"
	"slices"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/plutigo/data"
)

// RedeemerTag identifies what a redeemer is attached to
type RedeemerTag uint8

const (
	RedeemerTagSpend   RedeemerTag = 0
	RedeemerTagMint    RedeemerTag = 1
	RedeemerTagCert    RedeemerTag = 2
	RedeemerTagReward  RedeemerTag = 3
	RedeemerTagVote    RedeemerTag = 4
	RedeemerTagPropose RedeemerTag = 5
)

// ExUnits is the execution budget of a script
type ExUnits struct {
	cbor.StructAsArray
	Mem   uint64
	Steps uint64
}

// Redeemer is a Plutus redeemer from a transaction witness set
type Redeemer struct {
	Tag     RedeemerTag
	Index   uint32
	Data    []byte
	ExUnits ExUnits
}

type redeemerKey struct {
	cbor.StructAsArray
	Tag   RedeemerTag
	Index uint32
}

type redeemerValue struct {
	cbor.StructAsArray
	Data    cbor.RawMessage
	ExUnits ExUnits
}

type legacyRedeemer struct {
	cbor.StructAsArray
	Tag     RedeemerTag
	Index   uint32
	Data    cbor.RawMessage
	ExUnits ExUnits
}

// decodeRedeemers decodes the redeemers field of a witness set. Both the legacy list
// and the Conway map encodings are accepted. Results are ordered by (tag, index)
func decodeRedeemers(redeemersCbor []byte) ([]Redeemer, error) {
	var ret []Redeemer
	switch cbor.MajorType(redeemersCbor) {
	case cbor.CborTypeArray:
		var tmpRedeemers []legacyRedeemer
		if _, err := cbor.Decode(redeemersCbor, &tmpRedeemers); err != nil {
			return nil, err
		}
		for _, r := range tmpRedeemers {
			ret = append(
				ret,
				Redeemer{
					Tag:     r.Tag,
					Index:   r.Index,
					Data:    r.Data,
					ExUnits: r.ExUnits,
				},
			)
		}
	case cbor.CborTypeMap:
		var tmpRedeemers map[redeemerKey]redeemerValue
		if _, err := cbor.Decode(redeemersCbor, &tmpRedeemers); err != nil {
			return nil, err
		}
		for k, v := range tmpRedeemers {
			ret = append(
				ret,
				Redeemer{
					Tag:     k.Tag,
					Index:   k.Index,
					Data:    v.Data,
					ExUnits: v.ExUnits,
				},
			)
		}
		// Map iteration order is random
		slices.SortFunc(ret, func(a, b Redeemer) int {
			if a.Tag != b.Tag {
				return int(a.Tag) - int(b.Tag)
			}
			return int(a.Index) - int(b.Index)
		})
	default:
		return nil, fmt.Errorf("unexpected redeemers encoding: CBOR type 0x%x", cbor.MajorType(redeemersCbor))
	}
	for idx := range ret {
		tmpData, err := reencodePlutusData(ret[idx].Data)
		if err != nil {
			return nil, fmt.Errorf("redeemer %d: %w", idx, err)
		}
		ret[idx].Data = tmpData
	}
	return ret, nil
}

// reencodePlutusData runs the provided CBOR through the Plutus data codec
func reencodePlutusData(dataCbor []byte) ([]byte, error) {
	tmpData, err := data.Decode(dataCbor)
	if err != nil {
		return nil, err
	}
	return data.Encode(tmpData)
}
