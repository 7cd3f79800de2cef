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
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

var (
	decMode     _cbor.DecMode
	decModeErr  error
	decModeOnce sync.Once
)

func getDecMode() (_cbor.DecMode, error) {
	decModeOnce.Do(func() {
		decOptions := _cbor.DecOptions{
			// This defaults to 32, but there are blocks in the wild using >64 nested levels
			MaxNestedLevels: 256,
			// Large blocks contain more than the default number of array elements
			MaxArrayElements: 1 << 24,
			MaxMapPairs:      1 << 24,
		}
		decMode, decModeErr = decOptions.DecModeWithTags(customTagSet)
	})
	return decMode, decModeErr
}

// Decode decodes the first CBOR item in dataBytes into dest and returns the number of bytes consumed
func Decode(dataBytes []byte, dest any) (int, error) {
	dm, err := getDecMode()
	if err != nil {
		return 0, err
	}
	dec := dm.NewDecoder(bytes.NewReader(dataBytes))
	err = dec.Decode(dest)
	return dec.NumBytesRead(), err
}

// FirstItemLength returns the length of the first complete CBOR item in data. It returns
// io.ErrUnexpectedEOF when data holds only part of an item
func FirstItemLength(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	var tmp RawMessage
	n, err := Decode(data, &tmp)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return n, nil
}

// DecodeIdFromList extracts the first item from a CBOR list. This will return the first item from the
// provided list if it's numeric and an error otherwise
func DecodeIdFromList(cborData []byte) (int, error) {
	listLen, err := ListLength(cborData)
	if err != nil {
		return 0, err
	}
	if listLen == 0 {
		return 0, errors.New("cannot return first item from empty list")
	}
	// Short lists with a small first item can be read straight from the byte slice
	if listLen < int(CborMaxUintSimple) && len(cborData) > 1 &&
		cborData[1] <= CborMaxUintSimple {
		return int(cborData[1]), nil
	}
	var tmp []RawMessage
	if _, err := Decode(cborData, &tmp); err != nil {
		return 0, err
	}
	var id uint64
	if _, err := Decode(tmp[0], &id); err != nil {
		return 0, fmt.Errorf("first list item was not numeric: %w", err)
	}
	if id > uint64(math.MaxInt) {
		return 0, errors.New("decoded numeric value too large: uint64 > int")
	}
	return int(id), nil
}

// ListLength determines the length of a CBOR list
func ListLength(cborData []byte) (int, error) {
	if len(cborData) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if cborData[0] >= CborTypeArray &&
		cborData[0] <= (CborTypeArray+CborMaxUintSimple) {
		return int(cborData[0]) - int(CborTypeArray), nil
	}
	var tmp []RawMessage
	if _, err := Decode(cborData, &tmp); err != nil {
		return 0, err
	}
	return len(tmp), nil
}

var (
	decodeGenericTypeCache      = map[reflect.Type]reflect.Type{}
	decodeGenericTypeCacheMutex sync.RWMutex
)

// DecodeGeneric decodes the specified CBOR into the destination object without using the
// destination object's UnmarshalCBOR() function
func DecodeGeneric(cborData []byte, dest any) error {
	valueDest := reflect.ValueOf(dest)
	if valueDest.Kind() != reflect.Pointer ||
		valueDest.Elem().Kind() != reflect.Struct {
		return errors.New("destination must be a pointer to a struct")
	}
	typeDest := valueDest.Elem().Type()
	decodeGenericTypeCacheMutex.RLock()
	tmpTypeDest, ok := decodeGenericTypeCache[typeDest]
	decodeGenericTypeCacheMutex.RUnlock()
	if !ok {
		tmpTypeDest = plainStructType(typeDest)
		decodeGenericTypeCacheMutex.Lock()
		decodeGenericTypeCache[typeDest] = tmpTypeDest
		decodeGenericTypeCacheMutex.Unlock()
	}
	// Decode into a method-less copy of the type, then copy the values across
	tmpDest := reflect.New(tmpTypeDest)
	if _, err := Decode(cborData, tmpDest.Interface()); err != nil {
		return err
	}
	return copier.Copy(dest, tmpDest.Interface())
}

// plainStructType builds a struct type with the exported fields of t and none of its methods
func plainStructType(t reflect.Type) reflect.Type {
	fields := []reflect.StructField{}
	for i := range t.NumField() {
		field := t.Field(i)
		if field.IsExported() && field.Name != "DecodeStoreCbor" {
			fields = append(fields, field)
		}
	}
	return reflect.StructOf(fields)
}
