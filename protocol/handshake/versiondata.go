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

package handshake

import "github.com/blinklabs-io/ouroboros-client/cbor"

// Peer sharing modes
const (
	PeerSharingModeNoPeerSharing     = 0
	PeerSharingModePeerSharingPublic = 1
)

// VersionData is the negotiated per-version connection parameters
type VersionData interface {
	NetworkMagic() uint32
	// NtN only
	InitiatorOnly() bool
}

// VersionDataNtC9to14 is the bare network magic
type VersionDataNtC9to14 uint32

func NewVersionDataNtC9to14FromCbor(cborData []byte) (VersionData, error) {
	var v VersionDataNtC9to14
	_, err := cbor.Decode(cborData, &v)
	return v, err
}

func (v VersionDataNtC9to14) NetworkMagic() uint32 {
	return uint32(v)
}

func (v VersionDataNtC9to14) InitiatorOnly() bool {
	return true
}

// VersionDataNtC15andUp adds the query flag
type VersionDataNtC15andUp struct {
	cbor.StructAsArray
	CborNetworkMagic uint32
	CborQuery        bool
}

func NewVersionDataNtC15andUpFromCbor(cborData []byte) (VersionData, error) {
	var v VersionDataNtC15andUp
	_, err := cbor.Decode(cborData, &v)
	return v, err
}

func (v VersionDataNtC15andUp) NetworkMagic() uint32 {
	return v.CborNetworkMagic
}

func (v VersionDataNtC15andUp) InitiatorOnly() bool {
	return true
}

type VersionDataNtN7to10 struct {
	cbor.StructAsArray
	CborNetworkMagic  uint32
	CborInitiatorOnly bool
}

func NewVersionDataNtN7to10FromCbor(cborData []byte) (VersionData, error) {
	var v VersionDataNtN7to10
	_, err := cbor.Decode(cborData, &v)
	return v, err
}

func (v VersionDataNtN7to10) NetworkMagic() uint32 {
	return v.CborNetworkMagic
}

func (v VersionDataNtN7to10) InitiatorOnly() bool {
	return v.CborInitiatorOnly
}

// VersionDataNtN11andUp adds peer sharing and the query flag
type VersionDataNtN11andUp struct {
	cbor.StructAsArray
	CborNetworkMagic  uint32
	CborInitiatorOnly bool
	CborPeerSharing   uint
	CborQuery         bool
}

func NewVersionDataNtN11andUpFromCbor(cborData []byte) (VersionData, error) {
	var v VersionDataNtN11andUp
	_, err := cbor.Decode(cborData, &v)
	return v, err
}

func (v VersionDataNtN11andUp) NetworkMagic() uint32 {
	return v.CborNetworkMagic
}

func (v VersionDataNtN11andUp) InitiatorOnly() bool {
	return v.CborInitiatorOnly
}
