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

package cbor

import (
	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	CborTypeUnsigned   uint8 = 0x00
	CborTypeNegative   uint8 = 0x20
	CborTypeByteString uint8 = 0x40
	CborTypeTextString uint8 = 0x60
	CborTypeArray      uint8 = 0x80
	CborTypeMap        uint8 = 0xa0
	CborTypeTag        uint8 = 0xc0
	CborTypeSimple     uint8 = 0xe0

	// Only the top 3 bits are used to specify the type
	CborTypeMask uint8 = 0xe0

	// Max value able to be stored in a single byte without type prefix
	CborMaxUintSimple uint8 = 0x17

	// Encoded CBOR null
	CborNull uint8 = 0xf6
)

// RawMessage is an alias for the upstream RawMessage type
type RawMessage = _cbor.RawMessage

// Tag is an alias for the upstream Tag type
type Tag = _cbor.Tag

// RawTag is an alias for the upstream RawTag type
type RawTag = _cbor.RawTag

// StructAsArray is useful for embedding and easier to remember
type StructAsArray struct {
	// Tells the CBOR decoder to convert to/from a struct and a CBOR array
	_ struct{} `cbor:",toarray"`
}

// DecodeStoreCbor can be embedded in a type to keep the original CBOR it was decoded from
type DecodeStoreCbor struct {
	cborData []byte
}

// SetCbor stores a copy of the provided CBOR data
func (d *DecodeStoreCbor) SetCbor(cborData []byte) {
	if cborData == nil {
		d.cborData = nil
		return
	}
	d.cborData = make([]byte, len(cborData))
	copy(d.cborData, cborData)
}

// Cbor returns the original CBOR for the object
func (d DecodeStoreCbor) Cbor() []byte {
	return d.cborData
}

// MajorType returns the CBOR major type bits of the first byte of the provided data
func MajorType(data []byte) uint8 {
	if len(data) == 0 {
		return 0xff
	}
	return data[0] & CborTypeMask
}

// IsNull returns true if the data is an encoded CBOR null
func IsNull(data []byte) bool {
	return len(data) == 1 && data[0] == CborNull
}
