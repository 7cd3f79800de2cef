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

// Transaction body keys
const (
	txBodyKeyInputs                = 0
	txBodyKeyOutputs               = 1
	txBodyKeyFee                   = 2
	txBodyKeyTtl                   = 3
	txBodyKeyValidityIntervalStart = 8
	txBodyKeyMint                  = 9
	txBodyKeyScriptDataHash        = 11
	txBodyKeyCollateral            = 13
	txBodyKeyCollateralReturn      = 16
	txBodyKeyTotalCollateral       = 17
	txBodyKeyReferenceInputs       = 18
	txBodyKeyVotingProcedures      = 19
	txBodyKeyProposalProcedures    = 20
	txBodyKeyCurrentTreasuryValue  = 21
	txBodyKeyDonation              = 22
)

// Witness set keys
const (
	witnessKeyRedeemers       = 5
	witnessKeyPlutusV2Scripts = 6
	witnessKeyPlutusV3Scripts = 7
)

// TransactionBody is an era-independent view of a transaction
type TransactionBody struct {
	Id        Blake2b256
	Era       EraTag
	Index     int
	Inputs    []TransactionInput
	Outputs   []TransactionOutput
	Fee       uint64
	Mint      MultiAsset[int64]
	Metadata  string
	Redeemers []Redeemer
	// Raw holds the original transaction body CBOR
	Raw []byte
}

// decodeTransactionBody decodes a post-Byron transaction body along with its witness set
// and auxiliary data, both of which may be nil
func decodeTransactionBody(
	era EraTag,
	index int,
	bodyCbor []byte,
	witnessCbor []byte,
	auxDataCbor []byte,
) (*TransactionBody, error) {
	var body map[uint]cbor.RawMessage
	if _, err := cbor.Decode(bodyCbor, &body); err != nil {
		return nil, err
	}
	ret := &TransactionBody{
		Id:    Blake2b256Hash(bodyCbor),
		Era:   era,
		Index: index,
		Raw:   bodyCbor,
	}
	inputsCbor, ok := body[txBodyKeyInputs]
	if !ok {
		return nil, errors.New("transaction body has no inputs")
	}
	inputs, err := decodeInputs(inputsCbor)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	ret.Inputs = inputs
	var outputs []cbor.RawMessage
	if _, err := cbor.Decode(body[txBodyKeyOutputs], &outputs); err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}
	for idx, outputCbor := range outputs {
		output, err := decodeTransactionOutput(outputCbor, idx)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", idx, err)
		}
		ret.Outputs = append(ret.Outputs, *output)
	}
	if feeCbor, ok := body[txBodyKeyFee]; ok {
		if _, err := cbor.Decode(feeCbor, &ret.Fee); err != nil {
			return nil, fmt.Errorf("fee: %w", err)
		}
	}
	if mintCbor, ok := body[txBodyKeyMint]; ok {
		mint, err := decodeMint(mintCbor)
		if err != nil {
			return nil, fmt.Errorf("mint: %w", err)
		}
		ret.Mint = mint
	}
	if len(witnessCbor) > 0 {
		var witnessSet map[uint]cbor.RawMessage
		if _, err := cbor.Decode(witnessCbor, &witnessSet); err != nil {
			return nil, fmt.Errorf("witness set: %w", err)
		}
		if redeemersCbor, ok := witnessSet[witnessKeyRedeemers]; ok {
			redeemers, err := decodeRedeemers(redeemersCbor)
			if err != nil {
				return nil, fmt.Errorf("redeemers: %w", err)
			}
			ret.Redeemers = redeemers
		}
	}
	// Metadata problems are never fatal
	if metadata, err := MetadataToJson(auxDataCbor); err == nil {
		ret.Metadata = metadata
	}
	return ret, nil
}

// decodeInputs decodes a list or tagged set of inputs, dropping duplicates and keeping the
// order in which they were first seen
func decodeInputs(inputsCbor []byte) ([]TransactionInput, error) {
	items, err := cbor.UnwrapSet(inputsCbor)
	if err != nil {
		return nil, err
	}
	ret := make([]TransactionInput, 0, len(items))
	seen := make(map[TransactionInput]bool, len(items))
	for _, item := range items {
		var input TransactionInput
		if _, err := cbor.Decode(item, &input); err != nil {
			return nil, err
		}
		if seen[input] {
			continue
		}
		seen[input] = true
		ret = append(ret, input)
	}
	return ret, nil
}

// DecodeTransaction decodes a standalone signed transaction from any era
func DecodeTransaction(txCbor []byte) (*TransactionBody, error) {
	era, err := DetermineTransactionEra(txCbor)
	if err != nil {
		return nil, err
	}
	if era == EraByron {
		tx, err := decodeByronTxAux(txCbor)
		if err != nil {
			return nil, decodeError("Byron transaction", err)
		}
		ret, err := tx.toTransactionBody(0)
		if err != nil {
			return nil, decodeError("Byron transaction", err)
		}
		return ret, nil
	}
	var items []cbor.RawMessage
	if _, err := cbor.Decode(txCbor, &items); err != nil {
		return nil, decodeError("transaction", err)
	}
	ret, err := decodeTransactionBody(era, 0, items[0], items[1], items[len(items)-1])
	if err != nil {
		return nil, decodeError(era.String()+" transaction", err)
	}
	return ret, nil
}

// DetermineTransactionEra works out the era of a signed transaction from its structure
func DetermineTransactionEra(txCbor []byte) (EraTag, error) {
	var items []cbor.RawMessage
	if _, err := cbor.Decode(txCbor, &items); err != nil {
		return 0, decodeError("transaction", err)
	}
	// A Byron TxAux is [tx, witnesses], and a bare Byron tx is [inputs, outputs, attributes]
	if len(items) == 2 ||
		(len(items) == 3 && cbor.MajorType(items[0]) == cbor.CborTypeArray) {
		if _, err := decodeByronTxAux(txCbor); err != nil {
			return 0, decodeError("Byron transaction", err)
		}
		return EraByron, nil
	}
	if len(items) != 3 && len(items) != 4 {
		return 0, fmt.Errorf("%w: unexpected array length %d", ErrUnknownTransactionType, len(items))
	}
	var body map[uint]cbor.RawMessage
	if _, err := cbor.Decode(items[0], &body); err != nil {
		return 0, decodeError("transaction body", err)
	}
	if len(items) == 3 {
		return shelleyMaEra(body), nil
	}
	var witnessSet map[uint]cbor.RawMessage
	if _, err := cbor.Decode(items[1], &witnessSet); err != nil {
		return 0, decodeError("witness set", err)
	}
	return alonzoFamilyEra(body, witnessSet), nil
}

// shelleyMaEra picks between Shelley, Allegra and Mary for a 3 element transaction
func shelleyMaEra(body map[uint]cbor.RawMessage) EraTag {
	if _, ok := body[txBodyKeyMint]; ok {
		return EraMary
	}
	var outputs []cbor.RawMessage
	if _, err := cbor.Decode(body[txBodyKeyOutputs], &outputs); err == nil {
		for _, output := range outputs {
			var tmpOutput []cbor.RawMessage
			if _, err := cbor.Decode(output, &tmpOutput); err != nil || len(tmpOutput) < 2 {
				continue
			}
			// Multi-asset values are [coin, assets]
			if cbor.MajorType(tmpOutput[1]) == cbor.CborTypeArray {
				return EraMary
			}
		}
	}
	_, hasTtl := body[txBodyKeyTtl]
	if _, ok := body[txBodyKeyValidityIntervalStart]; ok || !hasTtl {
		return EraAllegra
	}
	return EraShelley
}

// alonzoFamilyEra picks between Alonzo, Babbage and Conway for a 4 element transaction
func alonzoFamilyEra(body map[uint]cbor.RawMessage, witnessSet map[uint]cbor.RawMessage) EraTag {
	for _, key := range []uint{
		txBodyKeyVotingProcedures,
		txBodyKeyProposalProcedures,
		txBodyKeyCurrentTreasuryValue,
		txBodyKeyDonation,
	} {
		if _, ok := body[key]; ok {
			return EraConway
		}
	}
	if _, ok := witnessSet[witnessKeyPlutusV3Scripts]; ok {
		return EraConway
	}
	// Tagged sets and redeemer maps only appear from Conway onwards
	for _, key := range []uint{txBodyKeyInputs, txBodyKeyCollateral, txBodyKeyReferenceInputs} {
		if isTaggedSet(body[key]) {
			return EraConway
		}
	}
	for _, witnessCbor := range witnessSet {
		if isTaggedSet(witnessCbor) {
			return EraConway
		}
	}
	if cbor.MajorType(witnessSet[witnessKeyRedeemers]) == cbor.CborTypeMap {
		return EraConway
	}
	for _, key := range []uint{
		txBodyKeyCollateralReturn,
		txBodyKeyTotalCollateral,
		txBodyKeyReferenceInputs,
	} {
		if _, ok := body[key]; ok {
			return EraBabbage
		}
	}
	if _, ok := witnessSet[witnessKeyPlutusV2Scripts]; ok {
		return EraBabbage
	}
	var outputs []cbor.RawMessage
	if _, err := cbor.Decode(body[txBodyKeyOutputs], &outputs); err == nil {
		for _, output := range outputs {
			if cbor.MajorType(output) == cbor.CborTypeMap {
				return EraBabbage
			}
		}
	}
	return EraAlonzo
}

func isTaggedSet(data []byte) bool {
	if cbor.MajorType(data) != cbor.CborTypeTag {
		return false
	}
	var tmpTag cbor.RawTag
	if _, err := cbor.Decode(data, &tmpTag); err != nil {
		return false
	}
	return tmpTag.Number == cbor.CborTagSet
}
