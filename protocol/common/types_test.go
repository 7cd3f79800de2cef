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

package common_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHash, _ = hex.DecodeString(
	"a9e9d1b6fd4f9a1e4db22e6c5f3b5e8d1fa7a6c1e0b3f8d9c2a5b6e7f8091a2b",
)

func TestPointEqual(t *testing.T) {
	otherHash := make([]byte, len(testHash))
	copy(otherHash, testHash)
	otherHash[0] ^= 0xff
	tests := []struct {
		name     string
		a        common.Point
		b        common.Point
		expected bool
	}{
		{
			name:     "origin equals origin",
			a:        common.NewPointOrigin(),
			b:        common.NewPointOrigin(),
			expected: true,
		},
		{
			name: "origin never equals specific point",
			a:    common.NewPointOrigin(),
			b:    common.NewPoint(35197575, testHash),
		},
		{
			name: "specific point never equals origin",
			a:    common.NewPoint(1, testHash),
			b:    common.NewPointOrigin(),
		},
		{
			name:     "same slot and hash",
			a:        common.NewPoint(35197575, testHash),
			b:        common.NewPoint(35197575, append([]byte{}, testHash...)),
			expected: true,
		},
		{
			name: "same slot different hash",
			a:    common.NewPoint(35197575, testHash),
			b:    common.NewPoint(35197575, otherHash),
		},
		{
			name: "different slot same hash",
			a:    common.NewPoint(35197575, testHash),
			b:    common.NewPoint(35197576, testHash),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.a.Equal(test.b))
			assert.Equal(t, test.expected, test.b.Equal(test.a))
		})
	}
}

func TestPointCbor(t *testing.T) {
	origin := common.NewPointOrigin()
	data, err := cbor.Encode(&origin)
	require.NoError(t, err)
	assert.Equal(t, "80", hex.EncodeToString(data))

	point := common.NewPoint(35197575, testHash)
	data, err = cbor.Encode(&point)
	require.NoError(t, err)
	assert.Equal(
		t,
		"821a0219128758"+"20"+hex.EncodeToString(testHash),
		hex.EncodeToString(data),
	)

	var decoded common.Point
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.True(t, point.Equal(decoded))

	_, err = cbor.Decode([]byte{0x80}, &decoded)
	require.NoError(t, err)
	assert.True(t, decoded.IsOrigin())

	_, err = cbor.Decode([]byte{0x81, 0x01}, &decoded)
	assert.Error(t, err)
}

func TestTipCbor(t *testing.T) {
	tip := common.Tip{
		Point:       common.NewPoint(35197575, testHash),
		BlockNumber: 8000000,
	}
	data, err := cbor.Encode(&tip)
	require.NoError(t, err)
	var decoded common.Tip
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.True(t, tip.Point.Equal(decoded.Point))
	assert.Equal(t, tip.BlockNumber, decoded.BlockNumber)
}
