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
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b256Size = 32
	Blake2b224Size = 28
)

// Blake2b256 is a 32-byte hash, used for tx ids and block hashes
type Blake2b256 [Blake2b256Size]byte

// NewBlake2b256 copies the provided bytes into a Blake2b256
func NewBlake2b256(data []byte) Blake2b256 {
	var b Blake2b256
	copy(b[:], data)
	return b
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

// Blake2b224 is a 28-byte hash, used for policy ids and key hashes
type Blake2b224 [Blake2b224Size]byte

// NewBlake2b224 copies the provided bytes into a Blake2b224
func NewBlake2b224(data []byte) Blake2b224 {
	var b Blake2b224
	copy(b[:], data)
	return b
}

func (b Blake2b224) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b224) Bytes() []byte {
	return b[:]
}

// Blake2b256Hash returns the Blake2b-256 hash of the concatenation of the provided data
func Blake2b256Hash(data ...[]byte) Blake2b256 {
	// We can ignore the error return here because our fixed size/key arguments will
	// never trigger an error
	tmpHash, _ := blake2b.New256(nil)
	for _, d := range data {
		tmpHash.Write(d)
	}
	return NewBlake2b256(tmpHash.Sum(nil))
}
