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

// Package muxer implements the muxer/demuxer that allows multiple mini-protocols to run
// over a single connection.
//
// It's not generally intended for this package to be used outside of this library, but it's
// possible to use it to do more advanced things than the library interface allows for.
package muxer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// ProtocolUnknown is a magic number chosen to represent unknown protocols. Registering it
// catches segments for any protocol ID without its own registration
const ProtocolUnknown uint16 = 0xabcd

// ProtocolRole is an enum of the protocol roles
type ProtocolRole uint

// Protocol roles
const (
	ProtocolRoleNone      ProtocolRole = 0 // Default (invalid) protocol role
	ProtocolRoleInitiator ProtocolRole = 1 // Initiator (client) protocol role
	ProtocolRoleResponder ProtocolRole = 2 // Responder (server) protocol role
)

var (
	// ErrUnknownProtocol is reported when a segment arrives for a protocol that nobody registered
	ErrUnknownProtocol = errors.New("received message for unknown protocol")
	// ErrMuxerShutdown is returned when sending on a muxer that has been stopped
	ErrMuxerShutdown = errors.New("muxer is shut down")
)

// Muxer wraps a connection to allow running multiple mini-protocols over a single connection
type Muxer struct {
	conn          net.Conn
	sendMutex     sync.Mutex
	doneChan      chan bool
	errorChan     chan error
	errorMutex    sync.Mutex
	err           error
	protocolsLock sync.Mutex
	protocolRecvs map[uint16]map[ProtocolRole]chan *Segment
	onceStart     sync.Once
	onceStop      sync.Once
	stopped       bool
}

// New creates a new Muxer object and starts the read loop
func New(conn net.Conn) *Muxer {
	m := &Muxer{
		conn:          conn,
		doneChan:      make(chan bool),
		errorChan:     make(chan error, 10),
		protocolRecvs: make(map[uint16]map[ProtocolRole]chan *Segment),
	}
	return m
}

// ErrorChan returns the muxer error channel. It is closed when the muxer shuts down
func (m *Muxer) ErrorChan() chan error {
	return m.errorChan
}

// Err returns the error that caused the muxer to shut down, if any
func (m *Muxer) Err() error {
	m.errorMutex.Lock()
	defer m.errorMutex.Unlock()
	return m.err
}

// Start starts the muxer read loop
func (m *Muxer) Start() {
	m.onceStart.Do(func() {
		go m.readLoop()
	})
}

// Stop shuts down the muxer. It does not close the underlying connection
func (m *Muxer) Stop() {
	m.onceStop.Do(func() {
		m.errorMutex.Lock()
		m.stopped = true
		close(m.doneChan)
		close(m.errorChan)
		m.errorMutex.Unlock()
	})
}

// DoneChan returns a channel that is closed when the muxer shuts down
func (m *Muxer) DoneChan() <-chan bool {
	return m.doneChan
}

func (m *Muxer) sendError(err error) {
	m.errorMutex.Lock()
	if m.stopped {
		m.errorMutex.Unlock()
		return
	}
	m.err = err
	select {
	case m.errorChan <- err:
	default:
	}
	m.errorMutex.Unlock()
	// Stop the muxer on any error
	m.Stop()
}

// RegisterProtocol registers the provided protocol ID and role with the muxer. It returns a receive
// channel for inbound segments and a channel that is closed on shutdown. Both are nil if the muxer is
// already shut down
func (m *Muxer) RegisterProtocol(
	protocolId uint16,
	protocolRole ProtocolRole,
) (chan *Segment, chan bool) {
	select {
	case <-m.doneChan:
		return nil, nil
	default:
	}
	receiverChan := make(chan *Segment, 10)
	m.protocolsLock.Lock()
	if _, ok := m.protocolRecvs[protocolId]; !ok {
		m.protocolRecvs[protocolId] = make(map[ProtocolRole]chan *Segment)
	}
	m.protocolRecvs[protocolId][protocolRole] = receiverChan
	m.protocolsLock.Unlock()
	return receiverChan, m.doneChan
}

// Send writes the provided segment to the connection. It returns once the whole segment has been
// written, so anything sent before Stop is called has reached the connection. A write error shuts
// down the muxer
func (m *Muxer) Send(segment *Segment) error {
	select {
	case <-m.doneChan:
		return ErrMuxerShutdown
	default:
	}
	// Only one protocol can send at a time
	m.sendMutex.Lock()
	defer m.sendMutex.Unlock()
	buf := bytes.NewBuffer(make([]byte, 0, SegmentHeaderLength+len(segment.Payload)))
	if err := binary.Write(buf, binary.BigEndian, segment.SegmentHeader); err != nil {
		return err
	}
	buf.Write(segment.Payload)
	if _, err := m.conn.Write(buf.Bytes()); err != nil {
		m.sendError(err)
		return err
	}
	return nil
}

func (m *Muxer) readLoop() {
	for {
		header := SegmentHeader{}
		if err := binary.Read(m.conn, binary.BigEndian, &header); err != nil {
			m.sendError(err)
			return
		}
		segment := &Segment{
			SegmentHeader: header,
			Payload:       make([]byte, header.PayloadLength),
		}
		// ReadFull guarantees to read the expected number of bytes or return an error
		if _, err := io.ReadFull(m.conn, segment.Payload); err != nil {
			m.sendError(err)
			return
		}
		// Segments flagged as responses are answers to our initiator protocols
		protocolRole := ProtocolRoleResponder
		if segment.IsResponse() {
			protocolRole = ProtocolRoleInitiator
		}
		m.protocolsLock.Lock()
		recvChan := m.protocolRecvs[segment.GetProtocolId()][protocolRole]
		if recvChan == nil {
			// Try the "unknown protocol" receiver if we didn't find an explicit one
			recvChan = m.protocolRecvs[ProtocolUnknown][protocolRole]
		}
		m.protocolsLock.Unlock()
		if recvChan == nil {
			m.sendError(
				fmt.Errorf(
					"%w: protocol ID %d",
					ErrUnknownProtocol,
					segment.GetProtocolId(),
				),
			)
			return
		}
		// A segment already read is delivered ahead of shutdown when the receiver has room
		select {
		case recvChan <- segment:
			continue
		default:
		}
		select {
		case <-m.doneChan:
			return
		case recvChan <- segment:
		}
	}
}
