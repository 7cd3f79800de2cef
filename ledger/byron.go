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

const (
	ByronSlotsPerEpoch = 21600

	byronInputTypeUtxo = 0
)

type byronMainBlockHeader struct {
	cbor.StructAsArray
	ProtocolMagic uint32
	PrevBlock     Blake2b256
	BodyProof     cbor.RawMessage
	ConsensusData struct {
		cbor.StructAsArray
		// [slotid, pubkey, difficulty, blocksig]
		SlotId struct {
			cbor.StructAsArray
			Epoch uint64
			Slot  uint64
		}
		PubKey     []byte
		Difficulty struct {
			cbor.StructAsArray
			Value uint64
		}
		BlockSig cbor.RawMessage
	}
	ExtraData cbor.RawMessage
}

type byronEpochBoundaryBlockHeader struct {
	cbor.StructAsArray
	ProtocolMagic uint32
	PrevBlock     Blake2b256
	BodyProof     cbor.RawMessage
	ConsensusData struct {
		cbor.StructAsArray
		Epoch      uint64
		Difficulty struct {
			cbor.StructAsArray
			Value uint64
		}
	}
	ExtraData cbor.RawMessage
}

type byronMainBlockBody struct {
	cbor.StructAsArray
	TxPayload []struct {
		cbor.StructAsArray
		Transaction cbor.RawMessage
		Witnesses   cbor.RawMessage
	}
	SscPayload cbor.RawMessage
	DlgPayload cbor.RawMessage
	UpdPayload cbor.RawMessage
}

type byronTransactionInput struct {
	cbor.StructAsArray
	Type uint
	Data cbor.WrappedCbor
}

type byronTransaction struct {
	cbor.StructAsArray
	Inputs     []byronTransactionInput
	Outputs    []cbor.RawMessage
	Attributes cbor.RawMessage
	raw        []byte
}

// decodeByronTxAux decodes either a Byron TxAux ([tx, witnesses]) or a bare Byron tx
func decodeByronTxAux(data []byte) (*byronTransaction, error) {
	var items []cbor.RawMessage
	if _, err := cbor.Decode(data, &items); err != nil {
		return nil, err
	}
	txCbor := data
	if len(items) == 2 {
		txCbor = items[0]
	}
	return decodeByronTransaction(txCbor)
}

func decodeByronTransaction(data []byte) (*byronTransaction, error) {
	var tx byronTransaction
	if _, err := cbor.Decode(data, &tx); err != nil {
		return nil, err
	}
	tx.raw = data
	return &tx, nil
}

func (t *byronTransaction) toTransactionBody(index int) (*TransactionBody, error) {
	ret := &TransactionBody{
		Id:    Blake2b256Hash(t.raw),
		Era:   EraByron,
		Index: index,
		Raw:   t.raw,
	}
	seen := make(map[TransactionInput]bool, len(t.Inputs))
	for _, input := range t.Inputs {
		if input.Type != byronInputTypeUtxo {
			return nil, fmt.Errorf("unsupported Byron input type: %d", input.Type)
		}
		var tmpInput TransactionInput
		if _, err := cbor.Decode(input.Data.Bytes(), &tmpInput); err != nil {
			return nil, err
		}
		if seen[tmpInput] {
			continue
		}
		seen[tmpInput] = true
		ret.Inputs = append(ret.Inputs, tmpInput)
	}
	for idx, outputCbor := range t.Outputs {
		output, err := decodeTransactionOutput(outputCbor, idx)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", idx, err)
		}
		ret.Outputs = append(ret.Outputs, *output)
	}
	return ret, nil
}

// byronBlockHash hashes the header as if it were wrapped in [blockType, header]
func byronBlockHash(blockType uint8, headerCbor []byte) Blake2b256 {
	return Blake2b256Hash([]byte{0x82, blockType}, headerCbor)
}

func newByronMainBlockHeader(headerCbor []byte) (*BlockHeader, error) {
	var header byronMainBlockHeader
	if _, err := cbor.Decode(headerCbor, &header); err != nil {
		return nil, err
	}
	return &BlockHeader{
		Slot: (header.ConsensusData.SlotId.Epoch * ByronSlotsPerEpoch) +
			header.ConsensusData.SlotId.Slot,
		Hash:   byronBlockHash(BlockTypeByronMain, headerCbor),
		Number: header.ConsensusData.Difficulty.Value,
		Era:    EraByron,
	}, nil
}

func newByronEpochBoundaryBlockHeader(headerCbor []byte) (*BlockHeader, error) {
	var header byronEpochBoundaryBlockHeader
	if _, err := cbor.Decode(headerCbor, &header); err != nil {
		return nil, err
	}
	return &BlockHeader{
		Slot:   header.ConsensusData.Epoch * ByronSlotsPerEpoch,
		Hash:   byronBlockHash(BlockTypeByronEbb, headerCbor),
		Number: header.ConsensusData.Difficulty.Value,
		Era:    EraByron,
	}, nil
}

func newByronMainBlock(data []byte) (*Block, error) {
	var items []cbor.RawMessage
	if _, err := cbor.Decode(data, &items); err != nil {
		return nil, err
	}
	if len(items) != 3 {
		return nil, fmt.Errorf("unexpected Byron block length %d", len(items))
	}
	header, err := newByronMainBlockHeader(items[0])
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	var body byronMainBlockBody
	if _, err := cbor.Decode(items[1], &body); err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	ret := &Block{
		BlockHeader: *header,
	}
	for idx, txPayload := range body.TxPayload {
		tx, err := decodeByronTransaction(txPayload.Transaction)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", idx, err)
		}
		txBody, err := tx.toTransactionBody(idx)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", idx, err)
		}
		ret.TransactionBodies = append(ret.TransactionBodies, *txBody)
	}
	return ret, nil
}

func newByronEpochBoundaryBlock(data []byte) (*Block, error) {
	var items []cbor.RawMessage
	if _, err := cbor.Decode(data, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("empty Byron epoch boundary block")
	}
	header, err := newByronEpochBoundaryBlockHeader(items[0])
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	// Epoch boundary blocks never contain transactions
	return &Block{
		BlockHeader: *header,
	}, nil
}
