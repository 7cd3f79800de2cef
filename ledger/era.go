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

// Package ledger decodes era-tagged Cardano blocks and transactions into an era-independent model
package ledger

import (
	"strconv"
)

// EraTag identifies the ledger era of a block or transaction
type EraTag uint8

// Era tags. EraFuture is used for anything newer than the eras we know about
const (
	EraByron   EraTag = 0
	EraShelley EraTag = 1
	EraAllegra EraTag = 2
	EraMary    EraTag = 3
	EraAlonzo  EraTag = 4
	EraBabbage EraTag = 5
	EraConway  EraTag = 6
	EraFuture  EraTag = 7
)

// Block types as used on the wire by chain-sync and block-fetch
const (
	BlockTypeByronEbb  = 0
	BlockTypeByronMain = 1
	BlockTypeShelley   = 2
	BlockTypeAllegra   = 3
	BlockTypeMary      = 4
	BlockTypeAlonzo    = 5
	BlockTypeBabbage   = 6
	BlockTypeConway    = 7
)

var eraNames = map[EraTag]string{
	EraByron:   "Byron",
	EraShelley: "Shelley",
	EraAllegra: "Allegra",
	EraMary:    "Mary",
	EraAlonzo:  "Alonzo",
	EraBabbage: "Babbage",
	EraConway:  "Conway",
	EraFuture:  "Future",
}

func (e EraTag) String() string {
	if name, ok := eraNames[e]; ok {
		return name
	}
	return "Unknown(" + strconv.Itoa(int(e)) + ")"
}

// EraById returns the era tag for a hard fork era index, mapping unknown eras to EraFuture
func EraById(eraId uint) EraTag {
	if eraId >= uint(EraFuture) {
		return EraFuture
	}
	return EraTag(eraId) // #nosec G115
}

// EraForBlockType returns the era for a wire block type. Both Byron block types map to EraByron
func EraForBlockType(blockType uint) EraTag {
	switch blockType {
	case BlockTypeByronEbb, BlockTypeByronMain:
		return EraByron
	}
	return EraById(blockType - 1)
}
