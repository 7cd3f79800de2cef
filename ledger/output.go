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
	"github.com/blinklabs-io/plutigo/data"
)

// Datum types
const (
	DatumTypeHash = 1
	DatumTypeData = 2
)

// Datum option types within a post-Alonzo map output
const (
	datumOptionTypeHash = 0
	datumOptionTypeData = 1
)

// Datum is either a datum hash or inline datum CBOR attached to an output
type Datum struct {
	Type uint8
	Data []byte
}

// TransactionInput references an output of a previous transaction
type TransactionInput struct {
	cbor.StructAsArray
	TxId  Blake2b256
	Index uint64
}

func (i TransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TxId, i.Index)
}

// TransactionOutput is an era-independent transaction output
type TransactionOutput struct {
	Address []byte
	Amount  Value
	Index   int
	Datum   *Datum
	Raw     []byte
}

// DecodeTransactionOutput decodes a transaction output from any era. This accepts the
// output payloads returned by a local state query
func DecodeTransactionOutput(data []byte) (*TransactionOutput, error) {
	ret, err := decodeTransactionOutput(data, 0)
	if err != nil {
		return nil, decodeError("transaction output", err)
	}
	return ret, nil
}

func decodeTransactionOutput(data []byte, index int) (*TransactionOutput, error) {
	var ret *TransactionOutput
	var err error
	switch cbor.MajorType(data) {
	case cbor.CborTypeArray:
		ret, err = decodeArrayOutput(data)
	case cbor.CborTypeMap:
		ret, err = decodeMapOutput(data)
	default:
		return nil, ErrUnknownOutputType
	}
	if err != nil {
		return nil, err
	}
	ret.Index = index
	ret.Raw = data
	return ret, nil
}

// decodeArrayOutput handles Byron outputs ([address, amount]) and legacy post-Byron
// outputs ([address, value, ?datum_hash])
func decodeArrayOutput(data []byte) (*TransactionOutput, error) {
	var items []cbor.RawMessage
	if _, err := cbor.Decode(data, &items); err != nil {
		return nil, err
	}
	if len(items) < 2 || len(items) > 3 {
		return nil, fmt.Errorf("%w: unexpected array length %d", ErrUnknownOutputType, len(items))
	}
	ret := &TransactionOutput{}
	if cbor.MajorType(items[0]) == cbor.CborTypeArray {
		// Byron addresses are [#6.24(payload), crc], which we keep as-is
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: unexpected Byron output length %d", ErrUnknownOutputType, len(items))
		}
		ret.Address = items[0]
		if _, err := cbor.Decode(items[1], &ret.Amount.Coin); err != nil {
			return nil, err
		}
		return ret, nil
	}
	if _, err := cbor.Decode(items[0], &ret.Address); err != nil {
		return nil, err
	}
	amount, err := decodeValue(items[1])
	if err != nil {
		return nil, err
	}
	ret.Amount = amount
	if len(items) == 3 {
		var datumHash []byte
		if _, err := cbor.Decode(items[2], &datumHash); err != nil {
			return nil, err
		}
		ret.Datum = &Datum{
			Type: DatumTypeHash,
			Data: datumHash,
		}
	}
	return ret, nil
}

// decodeMapOutput handles post-Alonzo map outputs ({0: address, 1: value, 2: datum_option})
func decodeMapOutput(data []byte) (*TransactionOutput, error) {
	var tmpOutput struct {
		Address     []byte          `cbor:"0,keyasint"`
		Value       cbor.RawMessage `cbor:"1,keyasint"`
		DatumOption cbor.RawMessage `cbor:"2,keyasint,omitempty"`
		ScriptRef   cbor.RawMessage `cbor:"3,keyasint,omitempty"`
	}
	if _, err := cbor.Decode(data, &tmpOutput); err != nil {
		return nil, err
	}
	if tmpOutput.Value == nil {
		return nil, errors.New("output has no value")
	}
	amount, err := decodeValue(tmpOutput.Value)
	if err != nil {
		return nil, err
	}
	ret := &TransactionOutput{
		Address: tmpOutput.Address,
		Amount:  amount,
	}
	if tmpOutput.DatumOption != nil {
		datum, err := decodeDatumOption(tmpOutput.DatumOption)
		if err != nil {
			return nil, err
		}
		ret.Datum = datum
	}
	return ret, nil
}

func decodeDatumOption(datumCbor []byte) (*Datum, error) {
	datumOptionType, err := cbor.DecodeIdFromList(datumCbor)
	if err != nil {
		return nil, err
	}
	switch datumOptionType {
	case datumOptionTypeHash:
		var tmpDatumHash struct {
			cbor.StructAsArray
			Type int
			Hash []byte
		}
		if _, err := cbor.Decode(datumCbor, &tmpDatumHash); err != nil {
			return nil, err
		}
		return &Datum{
			Type: DatumTypeHash,
			Data: tmpDatumHash.Hash,
		}, nil
	case datumOptionTypeData:
		var tmpDatumData struct {
			cbor.StructAsArray
			Type     int
			DataCbor cbor.WrappedCbor
		}
		if _, err := cbor.Decode(datumCbor, &tmpDatumData); err != nil {
			return nil, err
		}
		// Make sure the inline datum is valid Plutus data
		if _, err := data.Decode(tmpDatumData.DataCbor.Bytes()); err != nil {
			return nil, fmt.Errorf("invalid inline datum: %w", err)
		}
		return &Datum{
			Type: DatumTypeData,
			Data: tmpDatumData.DataCbor.Bytes(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported datum option type: %d", datumOptionType)
	}
}
