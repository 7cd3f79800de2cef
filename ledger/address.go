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

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	addressHeaderTypeMask    = 0xF0
	addressHeaderNetworkMask = 0x0F

	addressNetworkMainnet = 1

	addressTypeByron      = 0b1000
	addressTypeNoneKey    = 0b1110
	addressTypeNoneScript = 0b1111
)

// ErrInvalidAddress is returned for address bytes or text that can't be interpreted
var ErrInvalidAddress = errors.New("invalid address")

// AddressToText renders raw address bytes as bech32 for Shelley-era addresses or base58
// for Byron addresses
func AddressToText(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	addrType := (raw[0] & addressHeaderTypeMask) >> 4
	if addrType == addressTypeByron {
		return base58.Encode(raw), nil
	}
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	encoded, err := bech32.Encode(addressHrp(raw[0]), convData)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return encoded, nil
}

// AddressFromText parses a bech32 or base58 address into raw address bytes
func AddressFromText(addr string) ([]byte, error) {
	if _, data, err := bech32.DecodeNoLimit(addr); err == nil {
		decoded, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		return decoded, nil
	}
	decoded := base58.Decode(addr)
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, addr)
	}
	if (decoded[0]&addressHeaderTypeMask)>>4 != addressTypeByron {
		return nil, fmt.Errorf("%w: not a Byron address: %s", ErrInvalidAddress, addr)
	}
	return decoded, nil
}

func addressHrp(header byte) string {
	addrType := (header & addressHeaderTypeMask) >> 4
	hrp := "addr"
	if addrType == addressTypeNoneKey || addrType == addressTypeNoneScript {
		hrp = "stake"
	}
	if header&addressHeaderNetworkMask != addressNetworkMainnet {
		hrp += "_test"
	}
	return hrp
}
