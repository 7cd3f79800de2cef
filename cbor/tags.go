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
	"fmt"
	"reflect"

	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	// Useful tag numbers
	CborTagCbor = 24
	CborTagSet  = 258
	CborTagMap  = 259
)

var customTagSet _cbor.TagSet

func init() {
	customTagSet = _cbor.NewTagSet()
	tagOpts := _cbor.TagOptions{
		EncTag: _cbor.EncTagRequired,
		DecTag: _cbor.DecTagRequired,
	}
	tags := []struct {
		contentType reflect.Type
		number      uint64
	}{
		{reflect.TypeOf(WrappedCbor{}), CborTagCbor},
		{reflect.TypeOf(Set{}), CborTagSet},
		{reflect.TypeOf(Map{}), CborTagMap},
	}
	for _, tag := range tags {
		if err := customTagSet.Add(tagOpts, tag.contentType, tag.number); err != nil {
			panic(fmt.Sprintf("failed to register CBOR tag %d: %s", tag.number, err))
		}
	}
}

// WrappedCbor corresponds to CBOR tag 24 and is used to encode nested CBOR data
type WrappedCbor []byte

// Bytes returns the nested CBOR data
func (w WrappedCbor) Bytes() []byte {
	return w[:]
}

// Set corresponds to CBOR tag 258 and is used to represent a mathematical finite set
type Set []any

// Map corresponds to CBOR tag 259 and is used to represent a map with key/value operations
type Map map[any]any

// UnwrapCbor returns the content of a tag 24 wrapper, or the data unchanged if it is not wrapped
func UnwrapCbor(data []byte) ([]byte, error) {
	if MajorType(data) != CborTypeTag {
		return data, nil
	}
	var tmpTag RawTag
	if _, err := Decode(data, &tmpTag); err != nil {
		return nil, err
	}
	if tmpTag.Number != CborTagCbor {
		return data, nil
	}
	var ret []byte
	if _, err := Decode(tmpTag.Content, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// UnwrapSet returns the items of a tag 258 set, or of a plain list
func UnwrapSet(data []byte) ([]RawMessage, error) {
	if MajorType(data) == CborTypeTag {
		var tmpTag RawTag
		if _, err := Decode(data, &tmpTag); err != nil {
			return nil, err
		}
		if tmpTag.Number != CborTagSet {
			return nil, fmt.Errorf("unexpected CBOR tag %d, expected set", tmpTag.Number)
		}
		data = tmpTag.Content
	}
	var ret []RawMessage
	if _, err := Decode(data, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}
