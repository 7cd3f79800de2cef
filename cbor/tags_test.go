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

package cbor_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrappedCbor(t *testing.T) {
	data, err := cbor.Encode(cbor.WrappedCbor{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, "d818420102", hex.EncodeToString(data))

	var dest cbor.WrappedCbor
	_, err = cbor.Decode(data, &dest)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, dest.Bytes())
}

func TestSetEncode(t *testing.T) {
	data, err := cbor.Encode(cbor.Set{[]byte{0x01}})
	require.NoError(t, err)
	assert.Equal(t, "d90102814101", hex.EncodeToString(data))
}

func TestUnwrapCbor(t *testing.T) {
	wrapped, err := cbor.UnwrapCbor(mustHex(t, "d81843010203"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, wrapped)

	plain := mustHex(t, "43010203")
	unchanged, err := cbor.UnwrapCbor(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, unchanged)
}

func TestUnwrapSet(t *testing.T) {
	items, err := cbor.UnwrapSet(mustHex(t, "d90102820102"))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = cbor.UnwrapSet(mustHex(t, "83010203"))
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = cbor.UnwrapSet(mustHex(t, "d81843010203"))
	assert.Error(t, err)
}
