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

package ouroboros_mock

import (
	"testing"
	"time"

	ouroboros "github.com/blinklabs-io/ouroboros-client"
	"github.com/blinklabs-io/ouroboros-client/protocol/chainsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Basic test of conversation mock functionality
func TestBasic(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := NewConnection(
		ProtocolRoleClient,
		[]ConversationEntry{
			ConversationEntryHandshakeRequestGeneric,
			ConversationEntryHandshakeNtCResponse,
		},
	)
	session, err := ouroboros.NewSession(
		ouroboros.WithConnection(mockConn),
		ouroboros.WithNetworkMagic(MockNetworkMagic),
	)
	require.NoError(t, err)
	<-mockConn.DoneChan()
	assert.NoError(t, mockConn.Err())
	assert.NoError(t, session.Disconnect())
}

// A message that doesn't match the conversation is reported and hangs up the connection
func TestConversationMismatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := NewConnection(
		ProtocolRoleClient,
		[]ConversationEntry{
			ConversationEntryHandshakeRequestGeneric,
			ConversationEntryHandshakeNtCResponse,
			InputTypeEntry(chainsync.ProtocolIdNtC, chainsync.MessageTypeFindIntersect),
		},
	)
	session, err := ouroboros.NewSession(
		ouroboros.WithConnection(mockConn),
		ouroboros.WithNetworkMagic(MockNetworkMagic),
	)
	require.NoError(t, err)
	_, err = session.ChainSyncNext()
	assert.Error(t, err)
	select {
	case <-mockConn.DoneChan():
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for mock conversation to fail")
	}
	assert.ErrorContains(t, mockConn.Err(), "conversation entry 2")
	_ = session.Disconnect()
}
