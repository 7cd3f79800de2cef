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

package chainsync

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/cbor"
)

// Hard fork era index used in NtN headers for the Byron era
const headerEraByron = 0

// WrappedBlock represents a block returned via a NtC RollForward message
type WrappedBlock struct {
	cbor.StructAsArray
	BlockType uint
	BlockCbor cbor.RawMessage
}

// NewWrappedBlock returns a new WrappedBlock
func NewWrappedBlock(blockType uint, blockCbor []byte) *WrappedBlock {
	return &WrappedBlock{
		BlockType: blockType,
		BlockCbor: blockCbor,
	}
}

// NewWrappedBlockFromCbor decodes a WrappedBlock from the CBOR of [blockType, block]
func NewWrappedBlockFromCbor(data []byte) (*WrappedBlock, error) {
	var w WrappedBlock
	if _, err := cbor.Decode(data, &w); err != nil {
		return nil, fmt.Errorf("%s: decode wrapped block: %w", ProtocolName, err)
	}
	return &w, nil
}

// Cbor returns the CBOR of [blockType, block]
func (w *WrappedBlock) Cbor() ([]byte, error) {
	return cbor.Encode(w)
}

// WrappedHeader represents a block header returned via NtN RollForward message
type WrappedHeader struct {
	Era        uint
	byronType  uint
	byronSize  uint
	headerCbor []byte
}

// NewWrappedHeader returns a new WrappedHeader
func NewWrappedHeader(era uint, byronType uint, headerCbor []byte) *WrappedHeader {
	w := &WrappedHeader{
		Era:        era,
		byronType:  byronType,
		headerCbor: headerCbor,
	}
	// Byron headers carry a size hint for the block
	if era == headerEraByron {
		w.byronSize = uint(len(headerCbor))
	}
	return w
}

func (w *WrappedHeader) UnmarshalCBOR(data []byte) error {
	var tmpHeader struct {
		cbor.StructAsArray
		Era       uint
		HeaderRaw cbor.RawMessage
	}
	if _, err := cbor.Decode(data, &tmpHeader); err != nil {
		return err
	}
	w.Era = tmpHeader.Era
	switch w.Era {
	case headerEraByron:
		var wrappedHeaderByron wrappedHeaderByron
		if _, err := cbor.Decode(tmpHeader.HeaderRaw, &wrappedHeaderByron); err != nil {
			return err
		}
		w.byronType = wrappedHeaderByron.Metadata.Type
		w.byronSize = wrappedHeaderByron.Metadata.Size
		w.headerCbor = wrappedHeaderByron.RawHeader.Bytes()
	default:
		var wrappedCbor cbor.WrappedCbor
		if _, err := cbor.Decode(tmpHeader.HeaderRaw, &wrappedCbor); err != nil {
			return err
		}
		w.headerCbor = wrappedCbor.Bytes()
	}
	if len(w.headerCbor) == 0 {
		return errors.New("empty header")
	}
	return nil
}

func (w WrappedHeader) MarshalCBOR() ([]byte, error) {
	ret := []any{
		w.Era,
	}
	switch w.Era {
	case headerEraByron:
		tmp := []any{
			[]any{
				w.byronType,
				w.byronSize,
			},
			cbor.WrappedCbor(w.headerCbor),
		}
		ret = append(ret, tmp)
	default:
		ret = append(ret, cbor.WrappedCbor(w.headerCbor))
	}
	return cbor.Encode(ret)
}

// HeaderCbor returns the header CBOR
func (w *WrappedHeader) HeaderCbor() []byte {
	return w.headerCbor
}

// ByronType returns the block type for Byron blocks
func (w *WrappedHeader) ByronType() uint {
	return w.byronType
}

// BlockType returns the block type used by NtC chain-sync and block-fetch for the header's era
func (w *WrappedHeader) BlockType() uint {
	if w.Era == headerEraByron {
		return w.byronType
	}
	return w.Era + 1
}

type wrappedHeaderByron struct {
	cbor.StructAsArray
	Metadata struct {
		cbor.StructAsArray
		Type uint
		Size uint
	}
	RawHeader cbor.WrappedCbor
}
