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
	"errors"
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/cbor"
)

// BlockHeader holds the identifying fields of a block
type BlockHeader struct {
	Slot   uint64
	Hash   Blake2b256
	Number uint64
	Era    EraTag
}

// Block is an era-independent view of a block
type Block struct {
	BlockHeader
	// TransactionBodies are in on-chain order
	TransactionBodies []TransactionBody
}

type wrappedBlock struct {
	cbor.StructAsArray
	BlockType uint
	BlockCbor cbor.RawMessage
}

// NewBlockFromWrappedCbor decodes a [blockType, block] pair, as returned by block-fetch
// and node-to-client chain-sync
func NewBlockFromWrappedCbor(data []byte) (*Block, error) {
	var tmpBlock wrappedBlock
	if _, err := cbor.Decode(data, &tmpBlock); err != nil {
		return nil, decodeError("wrapped block", err)
	}
	return NewBlockFromCbor(tmpBlock.BlockType, tmpBlock.BlockCbor)
}

// NewBlockFromCbor decodes a block of the given wire block type
func NewBlockFromCbor(blockType uint, data []byte) (*Block, error) {
	var ret *Block
	var err error
	switch blockType {
	case BlockTypeByronEbb:
		ret, err = newByronEpochBoundaryBlock(data)
	case BlockTypeByronMain:
		ret, err = newByronMainBlock(data)
	default:
		// Block types past Conway are decoded with the post-Byron layout and tagged EraFuture
		ret, err = newShelleyFamilyBlock(EraForBlockType(blockType), data)
	}
	if err != nil {
		return nil, decodeError(
			fmt.Sprintf("%s block", EraForBlockType(blockType)),
			err,
		)
	}
	return ret, nil
}

// NewBlockHeaderFromCbor decodes a block header of the given wire block type, as carried by
// node-to-node chain-sync
func NewBlockHeaderFromCbor(blockType uint, data []byte) (*BlockHeader, error) {
	var ret *BlockHeader
	var err error
	switch blockType {
	case BlockTypeByronEbb:
		ret, err = newByronEpochBoundaryBlockHeader(data)
	case BlockTypeByronMain:
		ret, err = newByronMainBlockHeader(data)
	default:
		ret, err = newShelleyFamilyBlockHeader(EraForBlockType(blockType), data)
	}
	if err != nil {
		return nil, decodeError(
			fmt.Sprintf("%s block header", EraForBlockType(blockType)),
			err,
		)
	}
	return ret, nil
}

// newShelleyFamilyBlockHeader decodes [header_body, body_signature]. The block number and
// slot lead the header body in every post-Byron era
func newShelleyFamilyBlockHeader(era EraTag, headerCbor []byte) (*BlockHeader, error) {
	var header struct {
		cbor.StructAsArray
		Body      []cbor.RawMessage
		Signature cbor.RawMessage
	}
	if _, err := cbor.Decode(headerCbor, &header); err != nil {
		return nil, err
	}
	if len(header.Body) < 2 {
		return nil, errors.New("header body too short")
	}
	ret := &BlockHeader{
		Hash: Blake2b256Hash(headerCbor),
		Era:  era,
	}
	if _, err := cbor.Decode(header.Body[0], &ret.Number); err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	if _, err := cbor.Decode(header.Body[1], &ret.Slot); err != nil {
		return nil, fmt.Errorf("slot: %w", err)
	}
	return ret, nil
}

// newShelleyFamilyBlock decodes [header, tx_bodies, tx_witness_sets, aux_data_set, ?invalid_txs]
func newShelleyFamilyBlock(era EraTag, data []byte) (*Block, error) {
	var items []cbor.RawMessage
	if _, err := cbor.Decode(data, &items); err != nil {
		return nil, err
	}
	if len(items) < 4 {
		return nil, fmt.Errorf("unexpected block length %d", len(items))
	}
	header, err := newShelleyFamilyBlockHeader(era, items[0])
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	var txBodies []cbor.RawMessage
	if _, err := cbor.Decode(items[1], &txBodies); err != nil {
		return nil, fmt.Errorf("transaction bodies: %w", err)
	}
	var witnessSets []cbor.RawMessage
	if _, err := cbor.Decode(items[2], &witnessSets); err != nil {
		return nil, fmt.Errorf("witness sets: %w", err)
	}
	var auxData map[uint]cbor.RawMessage
	if _, err := cbor.Decode(items[3], &auxData); err != nil {
		return nil, fmt.Errorf("auxiliary data: %w", err)
	}
	ret := &Block{
		BlockHeader: *header,
	}
	for idx, bodyCbor := range txBodies {
		var witnessCbor []byte
		if idx < len(witnessSets) {
			witnessCbor = witnessSets[idx]
		}
		txBody, err := decodeTransactionBody(era, idx, bodyCbor, witnessCbor, auxData[uint(idx)]) // #nosec G115
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", idx, err)
		}
		ret.TransactionBodies = append(ret.TransactionBodies, *txBody)
	}
	return ret, nil
}
