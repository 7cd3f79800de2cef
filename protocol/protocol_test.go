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

package protocol

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/muxer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testProtocolId = 9

	testMessageTypePing     = 0
	testMessageTypePong     = 1
	testMessageTypeDone     = 2
	testMessageTypeProgress = 3
)

var (
	testStateIdle = NewState(1, "Idle")
	testStateBusy = NewState(2, "Busy")
	testStateDone = NewState(3, "Done")
)

var testStateMap = StateMap{
	testStateIdle: StateMapEntry{
		Agency: AgencyClient,
		Transitions: []StateTransition{
			{MsgType: testMessageTypePing, NewState: testStateBusy},
			{MsgType: testMessageTypeDone, NewState: testStateDone},
		},
	},
	testStateBusy: StateMapEntry{
		Agency: AgencyServer,
		Transitions: []StateTransition{
			{MsgType: testMessageTypePong, NewState: testStateIdle},
			{MsgType: testMessageTypeProgress, NewState: testStateBusy},
		},
	},
	testStateDone: StateMapEntry{
		Agency: AgencyNone,
	},
}

type testMessage struct {
	MessageBase
	Payload []byte
}

func newTestMessage(msgType uint8, payload []byte) *testMessage {
	return &testMessage{
		MessageBase: MessageBase{MessageType: msgType},
		Payload:     payload,
	}
}

func testMessageFromCbor(msgType uint, data []byte) (Message, error) {
	if msgType > testMessageTypeProgress {
		return nil, nil
	}
	var msg testMessage
	if _, err := cbor.Decode(data, &msg); err != nil {
		return nil, err
	}
	msg.SetCbor(data)
	return &msg, nil
}

type testPair struct {
	client      *Protocol
	server      *Protocol
	clientMuxer *muxer.Muxer
	serverMuxer *muxer.Muxer
	clientConn  net.Conn
	serverConn  net.Conn
	errorChan   chan error
}

func newTestPair(t *testing.T, stateMap StateMap) *testPair {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	pair := &testPair{
		clientConn:  clientConn,
		serverConn:  serverConn,
		clientMuxer: muxer.New(clientConn),
		serverMuxer: muxer.New(serverConn),
		errorChan:   make(chan error, 10),
	}
	newProtocol := func(m *muxer.Muxer, role ProtocolRole) *Protocol {
		return New(ProtocolConfig{
			Name:                "test",
			ProtocolId:          testProtocolId,
			Muxer:               m,
			ErrorChan:           pair.errorChan,
			Role:                role,
			MessageFromCborFunc: testMessageFromCbor,
			StateMap:            stateMap,
			InitialState:        testStateIdle,
		})
	}
	pair.client = newProtocol(pair.clientMuxer, ProtocolRoleClient)
	pair.server = newProtocol(pair.serverMuxer, ProtocolRoleServer)
	pair.client.Start()
	pair.server.Start()
	pair.clientMuxer.Start()
	pair.serverMuxer.Start()
	return pair
}

func (p *testPair) Close() {
	p.client.Stop()
	p.server.Stop()
	p.clientMuxer.Stop()
	p.serverMuxer.Stop()
	p.clientConn.Close()
	p.serverConn.Close()
}

func TestIsDone(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		stopped  bool
		expected bool
	}{
		{name: "initial state", state: testStateIdle},
		{name: "server agency state", state: testStateBusy},
		{name: "terminal state", state: testStateDone, expected: true},
		{name: "stopped", state: testStateBusy, stopped: true, expected: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := New(ProtocolConfig{
				StateMap:     testStateMap,
				InitialState: test.state,
			})
			if test.stopped {
				p.Stop()
			}
			assert.Equal(t, test.expected, p.IsDone())
		})
	}
}

func TestHasAgency(t *testing.T) {
	client := New(ProtocolConfig{StateMap: testStateMap, InitialState: testStateIdle, Role: ProtocolRoleClient})
	server := New(ProtocolConfig{StateMap: testStateMap, InitialState: testStateIdle, Role: ProtocolRoleServer})
	for range 3 {
		assert.True(t, client.HasAgency())
		assert.False(t, server.HasAgency())
	}
}

func TestSendRecv(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, []byte("ping"))))
	assert.Equal(t, testStateBusy, pair.client.CurrentState())
	assert.False(t, pair.client.HasAgency())

	msg, err := pair.server.RecvMessage()
	require.NoError(t, err)
	assert.Equal(t, uint8(testMessageTypePing), msg.Type())
	assert.Equal(t, []byte("ping"), msg.(*testMessage).Payload)
	assert.True(t, pair.server.HasAgency())

	require.NoError(t, pair.server.SendMessage(newTestMessage(testMessageTypePong, []byte("pong"))))
	msg, err = pair.client.RecvMessage()
	require.NoError(t, err)
	assert.Equal(t, uint8(testMessageTypePong), msg.Type())
	assert.Equal(t, testStateIdle, pair.client.CurrentState())

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypeDone, nil)))
	assert.True(t, pair.client.IsDone())
}

func TestSendRecvLargeMessage(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	payload := bytes.Repeat([]byte{0xab}, muxer.SegmentMaxPayloadLength*2+100)
	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, payload)))
	msg, err := pair.server.RecvMessage()
	require.NoError(t, err)
	assert.Equal(t, payload, msg.(*testMessage).Payload)
}

func TestMultipleMessagesInSegment(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, nil)))
	// Write two messages in a single segment directly through the server muxer
	var data []byte
	for _, msgType := range []uint8{testMessageTypeProgress, testMessageTypePong} {
		msgData, err := cbor.Encode(newTestMessage(msgType, []byte{msgType}))
		require.NoError(t, err)
		data = append(data, msgData...)
	}
	require.NoError(t, pair.serverMuxer.Send(muxer.NewSegment(testProtocolId, data, true)))

	msg, err := pair.client.RecvMessage()
	require.NoError(t, err)
	assert.Equal(t, uint8(testMessageTypeProgress), msg.Type())
	assert.False(t, pair.client.HasAgency())
	msg, err = pair.client.RecvMessage()
	require.NoError(t, err)
	assert.Equal(t, uint8(testMessageTypePong), msg.Type())
	assert.True(t, pair.client.HasAgency())
}

func TestSendWithoutAgency(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	err := pair.server.SendMessage(newTestMessage(testMessageTypePong, nil))
	assert.ErrorIs(t, err, ErrProtocolViolationAgency)

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, nil)))
	err = pair.client.SendMessage(newTestMessage(testMessageTypePing, nil))
	assert.ErrorIs(t, err, ErrProtocolViolationAgency)
}

func TestSendInvalidMessage(t *testing.T) {
	p := New(ProtocolConfig{StateMap: testStateMap, InitialState: testStateIdle, Role: ProtocolRoleClient})
	err := p.SendMessage(newTestMessage(testMessageTypePong, nil))
	assert.ErrorIs(t, err, ErrProtocolViolationInvalidMessage)
	assert.Equal(t, testStateIdle, p.CurrentState())
}

func TestRecvWithAgency(t *testing.T) {
	p := New(ProtocolConfig{StateMap: testStateMap, InitialState: testStateIdle, Role: ProtocolRoleClient})
	_, err := p.RecvMessage()
	assert.ErrorIs(t, err, ErrProtocolViolationAgency)
}

func TestRecvInvalidMessage(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, nil)))
	msgData, err := cbor.Encode(newTestMessage(testMessageTypeDone, nil))
	require.NoError(t, err)
	require.NoError(t, pair.serverMuxer.Send(muxer.NewSegment(testProtocolId, msgData, true)))
	_, err = pair.client.RecvMessage()
	assert.ErrorIs(t, err, ErrProtocolViolationInvalidMessage)
	assert.Equal(t, testStateBusy, pair.client.CurrentState())
}

func TestRecvUnknownMessageType(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, nil)))
	require.NoError(t, pair.serverMuxer.Send(muxer.NewSegment(testProtocolId, []byte{0x81, 0x10}, true)))
	_, err := pair.client.RecvMessage()
	assert.ErrorIs(t, err, ErrProtocolViolationInvalidMessage)
}

func TestRecvTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap.WithTimeout(testStateBusy, 50*time.Millisecond))
	defer pair.Close()

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, nil)))
	_, err := pair.client.RecvMessage()
	assert.ErrorIs(t, err, ErrProtocolTimeout)
	select {
	case err := <-pair.errorChan:
		assert.ErrorIs(t, err, ErrProtocolTimeout)
	default:
		t.Fatal("timeout was not reported on the error channel")
	}
}

func TestRecvAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, nil)))
	pair.client.Stop()
	_, err := pair.client.RecvMessage()
	assert.ErrorIs(t, err, ErrProtocolShuttingDown)
	err = pair.client.SendMessage(newTestMessage(testMessageTypeDone, nil))
	assert.ErrorIs(t, err, ErrProtocolShuttingDown)
}

func TestRecvConnectionClosed(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypePing, nil)))
	pair.serverConn.Close()
	_, err := pair.client.RecvMessage()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProtocolViolationInvalidMessage)
}

func TestSendCompletesBeforeStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	// A message sent right before shutdown still reaches the peer
	require.NoError(t, pair.client.SendMessage(newTestMessage(testMessageTypeDone, nil)))
	pair.client.Stop()
	pair.clientMuxer.Stop()
	msg, err := pair.server.RecvMessage()
	require.NoError(t, err)
	assert.Equal(t, uint8(testMessageTypeDone), msg.Type())
	assert.True(t, pair.server.IsDone())
}

func TestSendAfterMuxerStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	pair := newTestPair(t, testStateMap)
	defer pair.Close()

	pair.clientMuxer.Stop()
	err := pair.client.SendMessage(newTestMessage(testMessageTypePing, nil))
	assert.ErrorIs(t, err, ErrProtocolShuttingDown)
}
