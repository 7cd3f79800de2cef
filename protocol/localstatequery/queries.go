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

package localstatequery

import (
	"github.com/blinklabs-io/ouroboros-client/cbor"
)

// Query types
const (
	QueryTypeBlock        = 0
	QueryTypeSystemStart  = 1
	QueryTypeChainBlockNo = 2
	QueryTypeChainPoint   = 3

	// Block query sub-types
	QueryTypeShelley  = 0
	QueryTypeHardFork = 2

	// Hard fork query sub-types
	QueryTypeHardForkEraHistory = 0
	QueryTypeHardForkCurrentEra = 1

	// Shelley query sub-types
	QueryTypeShelleyLedgerTip     = 0
	QueryTypeShelleyEpochNo       = 1
	QueryTypeShelleyUtxoByAddress = 6
)

func buildQuery(queryType int, params ...any) []any {
	ret := []any{queryType}
	if len(params) > 0 {
		ret = append(ret, params...)
	}
	return ret
}

func buildHardForkQuery(queryType int, params ...any) []any {
	ret := buildQuery(
		QueryTypeBlock,
		buildQuery(
			QueryTypeHardFork,
			buildQuery(
				queryType,
				params...,
			),
		),
	)
	return ret
}

func buildShelleyQuery(era int, queryType int, params ...any) []any {
	ret := buildQuery(
		QueryTypeBlock,
		buildQuery(
			QueryTypeShelley,
			buildQuery(
				era,
				buildQuery(
					queryType,
					params...,
				),
			),
		),
	)
	return ret
}

// SystemStartResult is the network genesis time as a year, a day of the year, and picoseconds into that day
type SystemStartResult struct {
	cbor.StructAsArray
	Year        int
	Day         int
	Picoseconds uint64
}

// UtxoId identifies a transaction output by transaction hash and output index
type UtxoId struct {
	cbor.StructAsArray
	Hash [32]byte
	Idx  uint32
}

// UTxO is a single unspent output returned by a query
type UTxO struct {
	Id UtxoId
	// OutputCbor is the transaction output with any CBOR-in-CBOR wrapping removed
	OutputCbor []byte
}
