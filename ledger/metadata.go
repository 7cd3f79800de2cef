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
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/blinklabs-io/ouroboros-client/cbor"
)

// MetadataToJson converts transaction auxiliary data to JSON. It accepts a bare metadata
// map, the [metadata, scripts] array and the #6.259 tagged map. Labels become object keys,
// byte strings become "0x" prefixed hex, and maps with keys that aren't text or integers
// become lists of {"k", "v"} pairs
func MetadataToJson(auxDataCbor []byte) (string, error) {
	metadataCbor, err := metadataFromAuxData(auxDataCbor)
	if err != nil {
		return "", err
	}
	if metadataCbor == nil {
		return "", nil
	}
	var labels map[uint64]cbor.RawMessage
	if _, err := cbor.Decode(metadataCbor, &labels); err != nil {
		return "", err
	}
	ret := make(map[string]any, len(labels))
	for label, value := range labels {
		tmpValue, err := metadatumToJson(value)
		if err != nil {
			return "", fmt.Errorf("metadata label %d: %w", label, err)
		}
		ret[strconv.FormatUint(label, 10)] = tmpValue
	}
	// encoding/json sorts map keys, which keeps the output stable
	out, err := json.Marshal(ret)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// metadataFromAuxData returns the metadata map CBOR from auxiliary data, or nil when there is none
func metadataFromAuxData(raw []byte) ([]byte, error) {
	if len(raw) == 0 || cbor.IsNull(raw) {
		return nil, nil
	}
	switch cbor.MajorType(raw) {
	case cbor.CborTypeMap:
		return raw, nil
	case cbor.CborTypeArray:
		// [transaction_metadata, auxiliary_scripts]
		var arr []cbor.RawMessage
		if _, err := cbor.Decode(raw, &arr); err != nil {
			return nil, err
		}
		if len(arr) != 2 {
			return nil, errors.New("auxiliary data array must have 2 elements")
		}
		if cbor.IsNull(arr[0]) {
			return nil, nil
		}
		return arr[0], nil
	case cbor.CborTypeTag:
		// #6.259({ ? 0 : metadata, ... })
		var tmpTag cbor.RawTag
		if _, err := cbor.Decode(raw, &tmpTag); err != nil {
			return nil, err
		}
		if tmpTag.Number != cbor.CborTagMap {
			return nil, fmt.Errorf("unexpected CBOR tag %d for auxiliary data", tmpTag.Number)
		}
		var m map[uint]cbor.RawMessage
		if _, err := cbor.Decode(tmpTag.Content, &m); err != nil {
			return nil, err
		}
		if metadataRaw, ok := m[0]; ok {
			return metadataRaw, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported auxiliary data type: 0x%x", cbor.MajorType(raw))
}

func metadatumToJson(raw []byte) (any, error) {
	switch cbor.MajorType(raw) {
	case cbor.CborTypeUnsigned, cbor.CborTypeNegative:
		n := new(big.Int)
		if _, err := cbor.Decode(raw, n); err != nil {
			return nil, err
		}
		return json.Number(n.String()), nil
	case cbor.CborTypeTextString:
		var s string
		if _, err := cbor.Decode(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case cbor.CborTypeByteString:
		var bs []byte
		if _, err := cbor.Decode(raw, &bs); err != nil {
			return nil, err
		}
		return "0x" + hex.EncodeToString(bs), nil
	case cbor.CborTypeArray:
		var items []cbor.RawMessage
		if _, err := cbor.Decode(raw, &items); err != nil {
			return nil, err
		}
		ret := make([]any, 0, len(items))
		for _, item := range items {
			tmpItem, err := metadatumToJson(item)
			if err != nil {
				return nil, err
			}
			ret = append(ret, tmpItem)
		}
		return ret, nil
	case cbor.CborTypeMap:
		return metadataMapToJson(raw)
	}
	return nil, fmt.Errorf("unsupported CBOR major type 0x%x in metadata", cbor.MajorType(raw))
}

type metadataPair struct {
	K any `json:"k"`
	V any `json:"v"`
}

// metadataMapToJson renders a map as a JSON object when every key is text or every key is
// an integer, and as a list of {"k", "v"} pairs otherwise
func metadataMapToJson(raw []byte) (any, error) {
	var rawPairs map[any]cbor.RawMessage
	if _, err := cbor.Decode(raw, &rawPairs); err != nil {
		return nil, err
	}
	textKeys := true
	intKeys := true
	ret := make([]metadataPair, 0, len(rawPairs))
	for k, v := range rawPairs {
		var tmpKey any
		if keyStr, ok := k.(string); ok {
			tmpKey = keyStr
			intKeys = false
		} else {
			textKeys = false
			keyCbor, err := cbor.Encode(k)
			if err != nil {
				return nil, err
			}
			tmpKey, err = metadatumToJson(keyCbor)
			if err != nil {
				return nil, err
			}
			if _, ok := tmpKey.(json.Number); !ok {
				intKeys = false
			}
		}
		tmpValue, err := metadatumToJson(v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, metadataPair{K: tmpKey, V: tmpValue})
	}
	if textKeys || intKeys {
		tmpMap := make(map[string]any, len(ret))
		for _, pair := range ret {
			tmpMap[fmt.Sprint(pair.K)] = pair.V
		}
		return tmpMap, nil
	}
	slices.SortFunc(ret, func(a, b metadataPair) int {
		aKey, _ := json.Marshal(a.K)
		bKey, _ := json.Marshal(b.K)
		return strings.Compare(string(aKey), string(bKey))
	})
	return ret, nil
}
