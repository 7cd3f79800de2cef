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

// Package testdata provides shared block and transaction data for tests
package testdata

import (
	_ "embed"
	"encoding/hex"
	"strings"
)

// Byron block from mainnet
// https://cexplorer.io/block/1451a0dbf16cfeddf4991a838961df1b08a68f43a19c0eb3b36cc4029c77a2d8
// Slot: 4471207
// Hash: 1451a0dbf16cfeddf4991a838961df1b08a68f43a19c0eb3b36cc4029c77a2d8
//
//go:embed byron_block.hex
var ByronBlockHex string

const (
	ByronBlockSlot   = 4471207
	ByronBlockHash   = "1451a0dbf16cfeddf4991a838961df1b08a68f43a19c0eb3b36cc4029c77a2d8"
	ByronBlockNumber = 4468973
)

// Conway transaction with one input, two outputs, and no metadata
const ConwayTxHex = "84a500d9010281825820279184037d249e397d97293738370756da559718fcdefae9924834840046b37b01018282583900923d4b64e1d730a4baf3e6dc433a9686983940f458363f37aad7a1a9568b72f85522e4a17d44a45cd021b9741b55d7cbc635c911625b015e1a00a9867082583900923d4b64e1d730a4baf3e6dc433a9686983940f458363f37aad7a1a9568b72f85522e4a17d44a45cd021b9741b55d7cbc635c911625b015e1b00000001267d7b04021a0002938d031a04e304e70800a100d9010281825820b829480e5d5827d2e1bd7c89176a5ca125c30812e54be7dbdf5c47c835a17f3d5840b13a76e7f2b19cde216fcad55ceeeb489ebab3dcf63ef1539ac4f535dece00411ee55c9b8188ef04b4aa3c72586e4a0ec9b89949367d7270fdddad3b18731403f5f6"

// ConwayTxId is the Blake2b-256 hash of the body of ConwayTxHex
const ConwayTxId = "22fbebfedc02277dd550cc774c483cb842728d090ffeba8ae2168805f651fc4c"

// Bare Byron transaction ([inputs, outputs, attributes]) with one input and one output
const ByronTxHex = "839f8200d8185824825820a12a839c25a01fa5d118167db5acdbd9e38172ae8f00e5ac0a4997ef792a200700ff9f8282d818584283581c6c9982e7f2b6dcc5eaa880e8014568913c8868d9f0f86eb687b2633ca101581e581c010d876783fb2b4d0d17c86df29af8d35356ed3d1827bf4744f06700001a8dc672c11a000f4240ffa0"

// ByronTxId is the Blake2b-256 hash of ByronTxHex
const ByronTxId = "6497b33b10fa2619c6efbd9f874ecd1c91badb10bf70850732aab45b90524d9e"

// ByronBlock returns the CBOR of the mainnet Byron block
func ByronBlock() []byte {
	return MustDecodeHex(ByronBlockHex)
}

// MustDecodeHex decodes a hex string to bytes, panicking on error.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		panic(err)
	}
	return b
}
