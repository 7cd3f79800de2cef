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

// Package protocol provides the common functionality for mini-protocols
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/muxer"
)

// This is completely arbitrary, but the line had to be drawn somewhere
const maxMessagesPerSegment = 20

// Size of the queue of decoded messages waiting for a RecvMessage call
const recvQueueSize = 50

// Protocol implements the base functionality of an Ouroboros mini-protocol
type Protocol struct {
	config        ProtocolConfig
	recvChan      chan *muxer.Segment
	muxerDoneChan chan bool
	recvQueue     chan recvItem
	doneChan      chan struct{}
	stateMutex    sync.Mutex
	currentState  State
	onceStart     sync.Once
	onceStop      sync.Once
}

// ProtocolConfig provides the configuration for Protocol
type ProtocolConfig struct {
	Name                string
	ProtocolId          uint16
	Muxer               *muxer.Muxer
	Logger              *slog.Logger
	ErrorChan           chan error
	Mode                ProtocolMode
	Role                ProtocolRole
	MessageFromCborFunc MessageFromCborFunc
	StateMap            StateMap
	InitialState        State
}

// ProtocolMode is an enum of the protocol modes
type ProtocolMode uint

const (
	ProtocolModeNone         ProtocolMode = 0
	ProtocolModeNodeToClient ProtocolMode = 1
	ProtocolModeNodeToNode   ProtocolMode = 2
)

// ProtocolRole is an enum of the protocol roles
type ProtocolRole uint

// Protocol roles
const (
	ProtocolRoleNone   ProtocolRole = 0 // Default (invalid) protocol role
	ProtocolRoleClient ProtocolRole = 1 // Client protocol role
	ProtocolRoleServer ProtocolRole = 2 // Server protocol role
)

// ProtocolOptions provides common arguments for all mini-protocols
type ProtocolOptions struct {
	ConnectionId string
	Muxer        *muxer.Muxer
	Logger       *slog.Logger
	ErrorChan    chan error
	Mode         ProtocolMode
	Role         ProtocolRole
	Version      uint16
}

// MessageFromCborFunc represents a function that parses a mini-protocol message
type MessageFromCborFunc func(uint, []byte) (Message, error)

type recvItem struct {
	msg Message
	err error
}

// New returns a new Protocol object
func New(config ProtocolConfig) *Protocol {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Protocol{
		config:       config,
		recvQueue:    make(chan recvItem, recvQueueSize),
		doneChan:     make(chan struct{}),
		currentState: config.InitialState,
	}
	return p
}

// Start initializes the mini-protocol
func (p *Protocol) Start() {
	p.onceStart.Do(func() {
		// Register protocol with muxer
		muxerProtocolRole := muxer.ProtocolRoleInitiator
		if p.config.Role == ProtocolRoleServer {
			muxerProtocolRole = muxer.ProtocolRoleResponder
		}
		p.recvChan, p.muxerDoneChan = p.config.Muxer.RegisterProtocol(
			p.config.ProtocolId,
			muxerProtocolRole,
		)
		if p.recvChan == nil {
			// Muxer is already shut down
			p.Stop()
			return
		}
		p.Logger().Debug("starting protocol")
		go p.recvLoop()
	})
}

// Stop shuts down the mini-protocol. Pending and future calls return ErrProtocolShuttingDown
func (p *Protocol) Stop() {
	p.onceStop.Do(func() {
		p.Logger().Debug("stopping protocol")
		close(p.doneChan)
	})
}

// DoneChan returns a channel that is closed when the protocol has shut down
func (p *Protocol) DoneChan() <-chan struct{} {
	return p.doneChan
}

// Logger returns the protocol logger, annotated with the protocol name and role
func (p *Protocol) Logger() *slog.Logger {
	role := "client"
	if p.config.Role == ProtocolRoleServer {
		role = "server"
	}
	return p.config.Logger.With(
		"component", "network",
		"protocol", p.config.Name,
		"role", role,
	)
}

// Mode returns the protocol mode
func (p *Protocol) Mode() ProtocolMode {
	return p.config.Mode
}

// Role returns the protocol role
func (p *Protocol) Role() ProtocolRole {
	return p.config.Role
}

// CurrentState returns the current protocol state
func (p *Protocol) CurrentState() State {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	return p.currentState
}

// HasAgency returns true if our side of the protocol is allowed to send the next message. It does
// not perform any I/O
func (p *Protocol) HasAgency() bool {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	return p.hasAgency(p.currentState)
}

// IsDone returns true if the protocol is stopped or has reached a terminal state
func (p *Protocol) IsDone() bool {
	select {
	case <-p.doneChan:
		return true
	default:
	}
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	entry, ok := p.config.StateMap[p.currentState]
	return ok && entry.Agency == AgencyNone
}

func (p *Protocol) hasAgency(state State) bool {
	entry, ok := p.config.StateMap[state]
	if !ok {
		return false
	}
	if p.config.Role == ProtocolRoleServer {
		return entry.Agency == AgencyServer
	}
	return entry.Agency == AgencyClient
}

// SendMessage validates the message against the current state, advances the state, and sends the message.
// It returns once the message has been written to the connection
func (p *Protocol) SendMessage(msg Message) error {
	select {
	case <-p.doneChan:
		return ErrProtocolShuttingDown
	default:
	}
	p.stateMutex.Lock()
	if !p.hasAgency(p.currentState) {
		state := p.currentState
		p.stateMutex.Unlock()
		return fmt.Errorf(
			"%w: %s: attempted to send %T without agency in state %s",
			ErrProtocolViolationAgency,
			p.config.Name,
			msg,
			state,
		)
	}
	newState, err := p.nextState(p.currentState, msg)
	if err != nil {
		p.stateMutex.Unlock()
		return err
	}
	p.currentState = newState
	p.stateMutex.Unlock()
	data := msg.Cbor()
	if data == nil {
		data, err = cbor.Encode(msg)
		if err != nil {
			return err
		}
	}
	p.Logger().Debug(
		fmt.Sprintf("sending message %T", msg),
		"message_type", msg.Type(),
		"new_state", newState.String(),
	)
	// Send message in multiple segments if it's too large for one
	for len(data) > 0 {
		segmentPayload := data
		if len(segmentPayload) > muxer.SegmentMaxPayloadLength {
			segmentPayload = data[:muxer.SegmentMaxPayloadLength]
		}
		data = data[len(segmentPayload):]
		segment := muxer.NewSegment(
			p.config.ProtocolId,
			segmentPayload,
			p.config.Role == ProtocolRoleServer,
		)
		select {
		case <-p.doneChan:
			return ErrProtocolShuttingDown
		default:
		}
		if err := p.config.Muxer.Send(segment); err != nil {
			if errors.Is(err, muxer.ErrMuxerShutdown) {
				return p.muxerErr()
			}
			return fmt.Errorf("%s: send: %w", p.config.Name, err)
		}
	}
	return nil
}

// RecvMessage waits for the next message from the peer, validates it against the current state, and
// advances the state. It fails immediately if our side holds agency, and with ErrProtocolTimeout if
// the state has a timeout that expires first
func (p *Protocol) RecvMessage() (Message, error) {
	p.stateMutex.Lock()
	state := p.currentState
	entry, ok := p.config.StateMap[state]
	ourAgency := p.hasAgency(state)
	p.stateMutex.Unlock()
	if !ok || entry.Agency == AgencyNone || ourAgency {
		return nil, fmt.Errorf(
			"%w: %s: cannot receive in state %s",
			ErrProtocolViolationAgency,
			p.config.Name,
			state,
		)
	}
	var timeoutChan <-chan time.Time
	if entry.Timeout > 0 {
		timer := time.NewTimer(entry.Timeout)
		defer timer.Stop()
		timeoutChan = timer.C
	}
	var item recvItem
	select {
	case item = <-p.recvQueue:
	default:
		item = p.waitRecv(state, entry.Timeout, timeoutChan)
	}
	if item.err != nil {
		return nil, item.err
	}
	msg := item.msg
	p.stateMutex.Lock()
	newState, err := p.nextState(p.currentState, msg)
	if err != nil {
		p.stateMutex.Unlock()
		p.sendError(err)
		return nil, err
	}
	p.currentState = newState
	p.stateMutex.Unlock()
	p.Logger().Debug(
		fmt.Sprintf("received message %T", msg),
		"message_type", msg.Type(),
		"new_state", newState.String(),
	)
	return msg, nil
}

func (p *Protocol) waitRecv(
	state State,
	timeout time.Duration,
	timeoutChan <-chan time.Time,
) recvItem {
	select {
	case <-p.doneChan:
		return recvItem{err: ErrProtocolShuttingDown}
	case <-p.muxerDoneChan:
		// The receive loop may have queued a final message or error before exiting
		select {
		case item := <-p.recvQueue:
			return item
		default:
			return recvItem{err: p.muxerErr()}
		}
	case <-timeoutChan:
		err := fmt.Errorf(
			"%w: %s: no message received in state %s within %s",
			ErrProtocolTimeout,
			p.config.Name,
			state,
			timeout,
		)
		p.sendError(err)
		return recvItem{err: err}
	case item := <-p.recvQueue:
		return item
	}
}

func (p *Protocol) nextState(currentState State, msg Message) (State, error) {
	for _, transition := range p.config.StateMap[currentState].Transitions {
		if transition.MsgType != msg.Type() {
			continue
		}
		if transition.MatchFunc != nil && !transition.MatchFunc(msg) {
			continue
		}
		return transition.NewState, nil
	}
	return State{}, fmt.Errorf(
		"%w: %s: message %T not allowed in state %s",
		ErrProtocolViolationInvalidMessage,
		p.config.Name,
		msg,
		currentState,
	)
}

// SendError reports an error on the protocol's error channel without blocking
func (p *Protocol) SendError(err error) {
	p.sendError(err)
}

func (p *Protocol) sendError(err error) {
	if p.config.ErrorChan == nil {
		return
	}
	select {
	case p.config.ErrorChan <- err:
	default:
		p.Logger().Error("dropped protocol error", "error", err)
	}
}

func (p *Protocol) muxerErr() error {
	if err := p.config.Muxer.Err(); err != nil {
		return fmt.Errorf("%s: connection failed: %w", p.config.Name, err)
	}
	return ErrProtocolShuttingDown
}

func (p *Protocol) queue(item recvItem) bool {
	select {
	case <-p.doneChan:
		return false
	case p.recvQueue <- item:
		return true
	}
}

func (p *Protocol) recvLoop() {
	recvBuffer := bytes.NewBuffer(nil)
	for {
		var segment *muxer.Segment
		select {
		case <-p.doneChan:
			return
		case <-p.muxerDoneChan:
			p.queue(recvItem{err: p.muxerErr()})
			return
		case segment = <-p.recvChan:
		}
		recvBuffer.Write(segment.Payload)
		msgCount := 0
		for recvBuffer.Len() > 0 {
			msgCount++
			if msgCount > maxMessagesPerSegment {
				err := fmt.Errorf(
					"%w: %s: too many messages in segment",
					ErrProtocolViolationInvalidMessage,
					p.config.Name,
				)
				p.sendError(err)
				p.queue(recvItem{err: err})
				return
			}
			msgLen, err := cbor.FirstItemLength(recvBuffer.Bytes())
			if err != nil {
				if errors.Is(err, io.ErrUnexpectedEOF) {
					// This is probably a multi-segment message, so wait for more data
					break
				}
				err = fmt.Errorf("%s: decode error: %w", p.config.Name, err)
				p.sendError(err)
				p.queue(recvItem{err: err})
				return
			}
			// The buffer may reuse its storage, so the message gets its own copy
			msgData := make([]byte, msgLen)
			copy(msgData, recvBuffer.Next(msgLen))
			msg, err := p.decodeMessage(msgData)
			if err != nil {
				p.sendError(err)
				p.queue(recvItem{err: err})
				return
			}
			if !p.queue(recvItem{msg: msg}) {
				return
			}
		}
		if recvBuffer.Len() == 0 {
			recvBuffer.Reset()
		}
	}
}

func (p *Protocol) decodeMessage(data []byte) (Message, error) {
	msgType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return nil, fmt.Errorf("%s: decode error: %w", p.config.Name, err)
	}
	msg, err := p.config.MessageFromCborFunc(uint(msgType), data)
	if err != nil {
		return nil, fmt.Errorf("%s: decode error: %w", p.config.Name, err)
	}
	if msg == nil {
		return nil, fmt.Errorf(
			"%w: %s: received unknown message type %d",
			ErrProtocolViolationInvalidMessage,
			p.config.Name,
			msgType,
		)
	}
	return msg, nil
}
