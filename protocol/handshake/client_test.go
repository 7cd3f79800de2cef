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

package handshake_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/ouroboros-client/internal/test/ouroboros_mock"
	"github.com/blinklabs-io/ouroboros-client/muxer"
	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/handshake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func runTest(
	t *testing.T,
	mode protocol.ProtocolMode,
	networkMagic uint32,
	conversation []ouroboros_mock.ConversationEntry,
) (*handshake.Result, error) {
	t.Helper()
	mockConn := ouroboros_mock.NewConnection(
		ouroboros_mock.ProtocolRoleClient,
		conversation,
	)
	m := muxer.New(mockConn)
	cfg := handshake.NewConfig(
		handshake.WithNetworkMagic(networkMagic),
		handshake.WithTimeout(2*time.Second),
	)
	client := handshake.NewClient(
		protocol.ProtocolOptions{
			Muxer: m,
			Mode:  mode,
		},
		&cfg,
	)
	m.Start()
	result, err := client.Handshake()
	select {
	case <-mockConn.DoneChan():
	case <-time.After(2 * time.Second):
		t.Errorf("timed out waiting for mock conversation to complete")
	}
	assert.NoError(t, mockConn.Err())
	client.Stop()
	m.Stop()
	_ = mockConn.Close()
	return result, err
}

func TestClientNtCAccept(t *testing.T) {
	defer goleak.VerifyNone(t)
	proposal, err := handshake.NewMsgProposeVersions(
		handshake.GetProtocolVersionMap(
			protocol.ProtocolModeNodeToClient,
			ouroboros_mock.MockNetworkMagic,
			false,
			false,
		),
	)
	require.NoError(t, err)
	result, err := runTest(
		t,
		protocol.ProtocolModeNodeToClient,
		ouroboros_mock.MockNetworkMagic,
		[]ouroboros_mock.ConversationEntry{
			ouroboros_mock.InputEntry(
				handshake.ProtocolId,
				proposal,
				handshake.NewMsgFromCbor,
			),
			ouroboros_mock.ConversationEntryHandshakeNtCResponse,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, ouroboros_mock.MockProtocolVersionNtC, result.Version)
	assert.Equal(t, ouroboros_mock.MockNetworkMagic, result.VersionData.NetworkMagic())
}

func TestClientNtNAccept(t *testing.T) {
	defer goleak.VerifyNone(t)
	result, err := runTest(
		t,
		protocol.ProtocolModeNodeToNode,
		ouroboros_mock.MockNetworkMagic,
		[]ouroboros_mock.ConversationEntry{
			ouroboros_mock.ConversationEntryHandshakeRequestGeneric,
			ouroboros_mock.ConversationEntryHandshakeNtNResponse,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, ouroboros_mock.MockProtocolVersionNtN, result.Version)
	assert.True(t, result.VersionData.InitiatorOnly())
	versionInfo, ok := handshake.GetProtocolVersion(result.Version)
	require.True(t, ok)
	assert.True(t, versionInfo.EnableKeepAliveProtocol)
}

func TestClientRefused(t *testing.T) {
	tests := []struct {
		name     string
		reason   []any
		contains string
	}{
		{
			name: "version mismatch",
			reason: []any{
				handshake.RefuseReasonVersionMismatch,
				[]any{uint64(7), uint64(8)},
			},
			contains: "version mismatch",
		},
		{
			name: "decode error",
			reason: []any{
				handshake.RefuseReasonDecodeError,
				uint64(ouroboros_mock.MockProtocolVersionNtC),
				"bad version data",
			},
			contains: "decode error: bad version data",
		},
		{
			name: "refused",
			reason: []any{
				handshake.RefuseReasonRefused,
				uint64(ouroboros_mock.MockProtocolVersionNtC),
				"not today",
			},
			contains: "refused: not today",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)
			_, err := runTest(
				t,
				protocol.ProtocolModeNodeToClient,
				ouroboros_mock.MockNetworkMagic,
				[]ouroboros_mock.ConversationEntry{
					ouroboros_mock.ConversationEntryHandshakeRequestGeneric,
					ouroboros_mock.OutputEntry(
						handshake.ProtocolId,
						handshake.NewMsgRefuse(test.reason),
					),
				},
			)
			assert.ErrorIs(t, err, handshake.ErrHandshakeRefused)
			assert.ErrorContains(t, err, test.contains)
		})
	}
}

func TestClientUnknownVersion(t *testing.T) {
	defer goleak.VerifyNone(t)
	_, err := runTest(
		t,
		protocol.ProtocolModeNodeToClient,
		ouroboros_mock.MockNetworkMagic,
		[]ouroboros_mock.ConversationEntry{
			ouroboros_mock.ConversationEntryHandshakeRequestGeneric,
			ouroboros_mock.OutputEntry(
				handshake.ProtocolId,
				handshake.NewMsgAcceptVersion(
					99+handshake.ProtocolVersionNtCOffset,
					handshake.VersionDataNtC9to14(ouroboros_mock.MockNetworkMagic),
				),
			),
		},
	)
	assert.ErrorIs(t, err, handshake.ErrUnknownVersion)
}

func TestClientNetworkMagicMismatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	_, err := runTest(
		t,
		protocol.ProtocolModeNodeToClient,
		764824073,
		[]ouroboros_mock.ConversationEntry{
			ouroboros_mock.ConversationEntryHandshakeRequestGeneric,
			ouroboros_mock.ConversationEntryHandshakeNtCResponse,
		},
	)
	assert.ErrorIs(t, err, handshake.ErrNetworkMagicMismatch)
}

func TestProtocolVersionMap(t *testing.T) {
	ntcVersions := handshake.GetProtocolVersionMap(
		protocol.ProtocolModeNodeToClient,
		ouroboros_mock.MockNetworkMagic,
		false,
		false,
	)
	for version := uint16(9); version <= 16; version++ {
		versionData, ok := ntcVersions[version+handshake.ProtocolVersionNtCOffset]
		require.True(t, ok, "missing NtC version %d", version)
		assert.Equal(t, ouroboros_mock.MockNetworkMagic, versionData.NetworkMagic())
	}
	assert.Len(t, ntcVersions, 8)
	ntnVersions := handshake.GetProtocolVersionMap(
		protocol.ProtocolModeNodeToNode,
		ouroboros_mock.MockNetworkMagic,
		true,
		false,
	)
	for version := range ntnVersions {
		assert.Less(t, version, uint16(handshake.ProtocolVersionNtCOffset))
	}
	for version := uint16(7); version <= 14; version++ {
		versionData, ok := ntnVersions[version]
		require.True(t, ok, "missing NtN version %d", version)
		assert.True(t, versionData.InitiatorOnly())
	}
	_, ok := handshake.GetProtocolVersion(6)
	assert.False(t, ok)
}
