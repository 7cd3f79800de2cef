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

import (
	"github.com/blinklabs-io/ouroboros-client/protocol"
)

// ProtocolVersionNtCOffset is set on NtC version numbers on the wire
const ProtocolVersionNtCOffset = 0x8000

// NewVersionDataFromCborFunc decodes the version data for a particular protocol version
type NewVersionDataFromCborFunc func([]byte) (VersionData, error)

// ProtocolVersionMap maps protocol versions to the version data we propose for them
type ProtocolVersionMap map[uint16]VersionData

// ProtocolVersion describes what a negotiated protocol version supports
type ProtocolVersion struct {
	NewVersionDataFromCborFunc NewVersionDataFromCborFunc
	EnableConwayEra            bool
	// NtC only
	EnableLocalQueryProtocol bool
	// NtN only
	EnableKeepAliveProtocol bool
	EnableQueryParam        bool
}

// We don't bother supporting NtC protocol versions before 9 or NtN versions before 7 (when Alonzo was enabled)
var protocolVersions = map[uint16]ProtocolVersion{
	(9 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC9to14FromCbor,
		EnableLocalQueryProtocol:   true,
	},
	// added GetChainBlockNo and GetChainPoint queries
	(10 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC9to14FromCbor,
		EnableLocalQueryProtocol:   true,
	},
	(11 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC9to14FromCbor,
		EnableLocalQueryProtocol:   true,
	},
	(12 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC9to14FromCbor,
		EnableLocalQueryProtocol:   true,
	},
	(13 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC9to14FromCbor,
		EnableLocalQueryProtocol:   true,
	},
	(14 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC9to14FromCbor,
		EnableLocalQueryProtocol:   true,
	},
	// added query param to handshake
	(15 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC15andUpFromCbor,
		EnableLocalQueryProtocol:   true,
		EnableQueryParam:           true,
	},
	(16 + ProtocolVersionNtCOffset): {
		NewVersionDataFromCborFunc: NewVersionDataNtC15andUpFromCbor,
		EnableLocalQueryProtocol:   true,
		EnableQueryParam:           true,
		EnableConwayEra:            true,
	},
	7: {
		NewVersionDataFromCborFunc: NewVersionDataNtN7to10FromCbor,
		EnableKeepAliveProtocol:    true,
	},
	8: {
		NewVersionDataFromCborFunc: NewVersionDataNtN7to10FromCbor,
		EnableKeepAliveProtocol:    true,
	},
	9: {
		NewVersionDataFromCborFunc: NewVersionDataNtN7to10FromCbor,
		EnableKeepAliveProtocol:    true,
	},
	10: {
		NewVersionDataFromCborFunc: NewVersionDataNtN7to10FromCbor,
		EnableKeepAliveProtocol:    true,
	},
	// added peer sharing and query params to handshake
	11: {
		NewVersionDataFromCborFunc: NewVersionDataNtN11andUpFromCbor,
		EnableKeepAliveProtocol:    true,
		EnableQueryParam:           true,
	},
	12: {
		NewVersionDataFromCborFunc: NewVersionDataNtN11andUpFromCbor,
		EnableKeepAliveProtocol:    true,
		EnableQueryParam:           true,
		EnableConwayEra:            true,
	},
	13: {
		NewVersionDataFromCborFunc: NewVersionDataNtN11andUpFromCbor,
		EnableKeepAliveProtocol:    true,
		EnableQueryParam:           true,
		EnableConwayEra:            true,
	},
	14: {
		NewVersionDataFromCborFunc: NewVersionDataNtN11andUpFromCbor,
		EnableKeepAliveProtocol:    true,
		EnableQueryParam:           true,
		EnableConwayEra:            true,
	},
}

// GetProtocolVersionMap returns the versions we propose for the given mode, along with their version data
func GetProtocolVersionMap(
	protocolMode protocol.ProtocolMode,
	networkMagic uint32,
	initiatorOnly bool,
	queryMode bool,
) ProtocolVersionMap {
	ret := ProtocolVersionMap{}
	for version, versionInfo := range protocolVersions {
		isNtC := version >= ProtocolVersionNtCOffset
		if isNtC != (protocolMode == protocol.ProtocolModeNodeToClient) {
			continue
		}
		switch {
		case isNtC && versionInfo.EnableQueryParam:
			ret[version] = VersionDataNtC15andUp{
				CborNetworkMagic: networkMagic,
				CborQuery:        queryMode,
			}
		case isNtC:
			ret[version] = VersionDataNtC9to14(networkMagic)
		case versionInfo.EnableQueryParam:
			ret[version] = VersionDataNtN11andUp{
				CborNetworkMagic:  networkMagic,
				CborInitiatorOnly: initiatorOnly,
				CborPeerSharing:   PeerSharingModeNoPeerSharing,
				CborQuery:         queryMode,
			}
		default:
			ret[version] = VersionDataNtN7to10{
				CborNetworkMagic:  networkMagic,
				CborInitiatorOnly: initiatorOnly,
			}
		}
	}
	return ret
}

// GetProtocolVersion returns the ProtocolVersion for the given version number, and whether it's known
func GetProtocolVersion(version uint16) (ProtocolVersion, bool) {
	ret, ok := protocolVersions[version]
	return ret, ok
}
