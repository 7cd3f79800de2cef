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

package chainsync

import (
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
)

// Message types
const (
	MessageTypeRequestNext       = 0
	MessageTypeAwaitReply        = 1
	MessageTypeRollForward       = 2
	MessageTypeRollBackward      = 3
	MessageTypeFindIntersect     = 4
	MessageTypeIntersectFound    = 5
	MessageTypeIntersectNotFound = 6
	MessageTypeDone              = 7
)

// NewMsgFromCborNtN parses a NtN ChainSync message from CBOR
func NewMsgFromCborNtN(msgType uint, data []byte) (protocol.Message, error) {
	return NewMsgFromCbor(protocol.ProtocolModeNodeToNode, msgType, data)
}

// NewMsgFromCborNtC parses a NtC ChainSync message from CBOR
func NewMsgFromCborNtC(msgType uint, data []byte) (protocol.Message, error) {
	return NewMsgFromCbor(protocol.ProtocolModeNodeToClient, msgType, data)
}

// NewMsgFromCbor parses a ChainSync message from CBOR
func NewMsgFromCbor(
	protoMode protocol.ProtocolMode,
	msgType uint,
	data []byte,
) (protocol.Message, error) {
	var ret protocol.Message
	switch msgType {
	case MessageTypeRequestNext:
		ret = &MsgRequestNext{}
	case MessageTypeAwaitReply:
		ret = &MsgAwaitReply{}
	case MessageTypeRollForward:
		if protoMode == protocol.ProtocolModeNodeToNode {
			ret = &MsgRollForwardNtN{}
		} else {
			ret = &MsgRollForwardNtC{}
		}
	case MessageTypeRollBackward:
		ret = &MsgRollBackward{}
	case MessageTypeFindIntersect:
		ret = &MsgFindIntersect{}
	case MessageTypeIntersectFound:
		ret = &MsgIntersectFound{}
	case MessageTypeIntersectNotFound:
		ret = &MsgIntersectNotFound{}
	case MessageTypeDone:
		ret = &MsgDone{}
	}
	if ret == nil {
		return nil, nil
	}
	if _, err := cbor.Decode(data, ret); err != nil {
		return nil, fmt.Errorf("%s: decode error: %w", ProtocolName, err)
	}
	// Store the raw message CBOR
	ret.SetCbor(data)
	return ret, nil
}

type MsgRequestNext struct {
	protocol.MessageBase
}

func NewMsgRequestNext() *MsgRequestNext {
	m := &MsgRequestNext{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeRequestNext,
		},
	}
	return m
}

type MsgAwaitReply struct {
	protocol.MessageBase
}

func NewMsgAwaitReply() *MsgAwaitReply {
	m := &MsgAwaitReply{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeAwaitReply,
		},
	}
	return m
}

// MsgRollForwardNtC carries a full block, wrapped as CBOR-in-CBOR
type MsgRollForwardNtC struct {
	protocol.MessageBase
	WrappedBlock cbor.WrappedCbor
	Tip          common.Tip
}

func NewMsgRollForwardNtC(
	blockType uint,
	blockCbor []byte,
	tip common.Tip,
) (*MsgRollForwardNtC, error) {
	wrappedBlock, err := NewWrappedBlock(blockType, blockCbor).Cbor()
	if err != nil {
		return nil, err
	}
	m := &MsgRollForwardNtC{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeRollForward,
		},
		WrappedBlock: wrappedBlock,
		Tip:          tip,
	}
	return m, nil
}

// Block returns the unwrapped block type and block CBOR
func (m *MsgRollForwardNtC) Block() (*WrappedBlock, error) {
	return NewWrappedBlockFromCbor(m.WrappedBlock.Bytes())
}

// MsgRollForwardNtN carries a block header. The header is unwrapped on demand, so that a header we can't
// parse doesn't break the protocol
type MsgRollForwardNtN struct {
	protocol.MessageBase
	WrappedHeader cbor.RawMessage
	Tip           common.Tip
}

func NewMsgRollForwardNtN(
	era uint,
	byronType uint,
	headerCbor []byte,
	tip common.Tip,
) (*MsgRollForwardNtN, error) {
	wrappedHeader, err := cbor.Encode(NewWrappedHeader(era, byronType, headerCbor))
	if err != nil {
		return nil, err
	}
	m := &MsgRollForwardNtN{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeRollForward,
		},
		WrappedHeader: wrappedHeader,
		Tip:           tip,
	}
	return m, nil
}

// Header returns the unwrapped block header
func (m *MsgRollForwardNtN) Header() (*WrappedHeader, error) {
	var w WrappedHeader
	if _, err := cbor.Decode(m.WrappedHeader, &w); err != nil {
		return nil, fmt.Errorf("%s: decode wrapped header: %w", ProtocolName, err)
	}
	return &w, nil
}

type MsgRollBackward struct {
	protocol.MessageBase
	Point common.Point
	Tip   common.Tip
}

func NewMsgRollBackward(point common.Point, tip common.Tip) *MsgRollBackward {
	m := &MsgRollBackward{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeRollBackward,
		},
		Point: point,
		Tip:   tip,
	}
	return m
}

type MsgFindIntersect struct {
	protocol.MessageBase
	Points []common.Point
}

func NewMsgFindIntersect(points []common.Point) *MsgFindIntersect {
	if points == nil {
		// Encode as an empty list rather than null
		points = []common.Point{}
	}
	m := &MsgFindIntersect{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeFindIntersect,
		},
		Points: points,
	}
	return m
}

type MsgIntersectFound struct {
	protocol.MessageBase
	Point common.Point
	Tip   common.Tip
}

func NewMsgIntersectFound(point common.Point, tip common.Tip) *MsgIntersectFound {
	m := &MsgIntersectFound{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeIntersectFound,
		},
		Point: point,
		Tip:   tip,
	}
	return m
}

type MsgIntersectNotFound struct {
	protocol.MessageBase
	Tip common.Tip
}

func NewMsgIntersectNotFound(tip common.Tip) *MsgIntersectNotFound {
	m := &MsgIntersectNotFound{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeIntersectNotFound,
		},
		Tip: tip,
	}
	return m
}

type MsgDone struct {
	protocol.MessageBase
}

func NewMsgDone() *MsgDone {
	m := &MsgDone{
		MessageBase: protocol.MessageBase{
			MessageType: MessageTypeDone,
		},
	}
	return m
}
