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

// Package ouroboros_mock provides a scripted peer for testing mini-protocol clients over an in-memory connection
package ouroboros_mock

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"reflect"
	"sync"
	"time"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/muxer"
)

// ProtocolRole is an enum of the protocol roles
type ProtocolRole uint

// Protocol roles
const (
	ProtocolRoleNone   ProtocolRole = 0 // Default (invalid) protocol role
	ProtocolRoleClient ProtocolRole = 1 // Client protocol role
	ProtocolRoleServer ProtocolRole = 2 // Server protocol role
)

// Connection mocks an Ouroboros connection
type Connection struct {
	mockConn      net.Conn
	conn          net.Conn
	conversation  []ConversationEntry
	muxer         *muxer.Muxer
	muxerRecvChan chan *muxer.Segment
	recvBuffer    *bytes.Buffer
	doneChan      chan struct{}
	errMutex      sync.Mutex
	err           error
	onceClose     sync.Once
}

// NewConnection returns a new Connection with the provided conversation entries. The role is the role of
// the code under test
func NewConnection(
	protocolRole ProtocolRole,
	conversation []ConversationEntry,
) *Connection {
	c := &Connection{
		conversation: conversation,
		recvBuffer:   bytes.NewBuffer(nil),
		doneChan:     make(chan struct{}),
	}
	c.conn, c.mockConn = net.Pipe()
	// Start a muxer on the mocked side of the connection
	c.muxer = muxer.New(c.mockConn)
	// The muxer is for the opposite end of the connection, so we flip the protocol role
	muxerProtocolRole := muxer.ProtocolRoleResponder
	if protocolRole == ProtocolRoleServer {
		muxerProtocolRole = muxer.ProtocolRoleInitiator
	}
	// We use ProtocolUnknown to catch all inbound messages when no other protocols are registered
	c.muxerRecvChan, _ = c.muxer.RegisterProtocol(
		muxer.ProtocolUnknown,
		muxerProtocolRole,
	)
	c.muxer.Start()
	// Start async conversation handler
	go c.asyncLoop()
	return c
}

// Err returns the first conversation mismatch, if any
func (c *Connection) Err() error {
	c.errMutex.Lock()
	defer c.errMutex.Unlock()
	return c.err
}

// DoneChan returns a channel that is closed once the conversation has been fully played or has failed
func (c *Connection) DoneChan() <-chan struct{} {
	return c.doneChan
}

// Read provides a proxy to the client-side connection's Read function. This is needed to satisfy the net.Conn interface
func (c *Connection) Read(b []byte) (n int, err error) {
	return c.conn.Read(b)
}

// Write provides a proxy to the client-side connection's Write function. This is needed to satisfy the net.Conn interface
func (c *Connection) Write(b []byte) (n int, err error) {
	return c.conn.Write(b)
}

// Close closes both sides of the connection. This is needed to satisfy the net.Conn interface
func (c *Connection) Close() error {
	var err error
	c.onceClose.Do(func() {
		err = errors.Join(c.conn.Close(), c.mockConn.Close())
		// The read loop stops the muxer on the closed pipe, after handing over everything it read
		select {
		case <-c.muxer.DoneChan():
		case <-time.After(time.Second):
			c.muxer.Stop()
		}
	})
	return err
}

// LocalAddr provides a proxy to the client-side connection's LocalAddr function. This is needed to satisfy the net.Conn interface
func (c *Connection) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr provides a proxy to the client-side connection's RemoteAddr function. This is needed to satisfy the net.Conn interface
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SetDeadline provides a proxy to the client-side connection's SetDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// SetReadDeadline provides a proxy to the client-side connection's SetReadDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline provides a proxy to the client-side connection's SetWriteDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func (c *Connection) setErr(err error) {
	c.errMutex.Lock()
	defer c.errMutex.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *Connection) asyncLoop() {
	defer close(c.doneChan)
	for idx, entry := range c.conversation {
		var err error
		switch entry.Type {
		case EntryTypeInput:
			err = c.processInputEntry(entry)
		case EntryTypeOutput:
			err = c.processOutputEntry(entry)
		case EntryTypeClose:
			_ = c.Close()
			return
		default:
			err = fmt.Errorf("unknown conversation entry type: %d", entry.Type)
		}
		if err != nil {
			c.setErr(fmt.Errorf("conversation entry %d: %w", idx, err))
			// Hang up so that the code under test doesn't wait forever
			_ = c.Close()
			return
		}
	}
}

// nextMessage returns the next complete inbound message, which may span multiple segments
func (c *Connection) nextMessage() (*muxer.Segment, []byte, error) {
	var lastSegment *muxer.Segment
	for {
		if c.recvBuffer.Len() > 0 {
			msgLen, err := cbor.FirstItemLength(c.recvBuffer.Bytes())
			if err == nil {
				data := make([]byte, msgLen)
				copy(data, c.recvBuffer.Next(msgLen))
				return lastSegment, data, nil
			}
		}
		var ok bool
		select {
		case <-c.muxer.DoneChan():
			// Segments read before the hangup are still part of the conversation
			select {
			case lastSegment, ok = <-c.muxerRecvChan:
			default:
			}
		case lastSegment, ok = <-c.muxerRecvChan:
		}
		if !ok {
			return nil, nil, errors.New("connection closed while waiting for input")
		}
		c.recvBuffer.Write(lastSegment.Payload)
	}
}

func (c *Connection) processInputEntry(entry ConversationEntry) error {
	segment, data, err := c.nextMessage()
	if err != nil {
		return err
	}
	if segment != nil {
		if segment.GetProtocolId() != entry.ProtocolId {
			return fmt.Errorf(
				"input message protocol ID did not match expected value: expected %d, got %d",
				entry.ProtocolId,
				segment.GetProtocolId(),
			)
		}
		if segment.IsResponse() != entry.IsResponse {
			return fmt.Errorf(
				"input message response flag did not match expected value: expected %v, got %v",
				entry.IsResponse,
				segment.IsResponse(),
			)
		}
	}
	// Determine message type
	msgType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	if entry.InputMessage == nil {
		if entry.InputMessageType != uint(msgType) {
			return fmt.Errorf(
				"input message is not of expected type: expected %d, got %d",
				entry.InputMessageType,
				msgType,
			)
		}
		return nil
	}
	// Create Message object from CBOR
	msg, err := entry.MsgFromCborFunc(uint(msgType), data)
	if err != nil {
		return fmt.Errorf("message from CBOR error: %w", err)
	}
	if msg == nil {
		return fmt.Errorf("received unknown message type: %d", msgType)
	}
	// Compare the wire form, since the expected message won't carry the original CBOR
	expectedCbor, err := cbor.Encode(entry.InputMessage)
	if err != nil {
		return err
	}
	actualCbor, err := cbor.Encode(msg)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(expectedCbor, actualCbor) {
		return fmt.Errorf(
			"parsed message does not match expected value: got %x, expected %x",
			actualCbor,
			expectedCbor,
		)
	}
	return nil
}

func (c *Connection) processOutputEntry(entry ConversationEntry) error {
	payloadBuf := bytes.NewBuffer(nil)
	for _, msg := range entry.OutputMessages {
		// Get raw CBOR from message
		data := msg.Cbor()
		// If message has no raw CBOR, encode the message
		if data == nil {
			var err error
			data, err = cbor.Encode(msg)
			if err != nil {
				return err
			}
		}
		payloadBuf.Write(data)
	}
	segment := muxer.NewSegment(
		entry.ProtocolId,
		payloadBuf.Bytes(),
		entry.IsResponse,
	)
	if segment == nil {
		return errors.New("output messages do not fit in a single segment")
	}
	return c.muxer.Send(segment)
}
