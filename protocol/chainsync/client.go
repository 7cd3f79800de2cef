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

	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
)

// Client implements the ChainSync client
type Client struct {
	*protocol.Protocol
	config *Config
	mode   protocol.ProtocolMode
	// Replies received ahead of the call that returns them
	pending []*NextResult
}

// NextResult is the outcome of a single RequestNext call
type NextResult struct {
	// Type is one of MessageTypeAwaitReply, MessageTypeRollForward, or MessageTypeRollBackward
	Type uint8
	// Point is the rollback target for MessageTypeRollBackward
	Point common.Point
	Tip   common.Tip
	// BlockType and BlockCbor are set for NtC MessageTypeRollForward
	BlockType uint
	BlockCbor []byte
	// WrappedBlockCbor is the raw [blockType, block] CBOR for NtC MessageTypeRollForward
	WrappedBlockCbor []byte
	// Header is set for NtN MessageTypeRollForward
	Header *WrappedHeader
	// DecodeErr is set for MessageTypeRollForward when the block or header couldn't be unwrapped.
	// WrappedBlockCbor still holds the raw NtC payload in that case
	DecodeErr error
}

// NewClient returns a new ChainSync client object
func NewClient(protoOptions protocol.ProtocolOptions, cfg *Config) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
		mode:   protoOptions.Mode,
	}
	// Use node-to-client protocol ID
	protocolId := ProtocolIdNtC
	msgFromCborFunc := NewMsgFromCborNtC
	if protoOptions.Mode == protocol.ProtocolModeNodeToNode {
		// Use node-to-node protocol ID
		protocolId = ProtocolIdNtN
		msgFromCborFunc = NewMsgFromCborNtN
	}
	// Update state map with timeouts
	stateMap := StateMap.WithTimeout(stateIntersect, c.config.IntersectTimeout)
	stateMap = stateMap.WithTimeout(stateCanAwait, c.config.IntersectTimeout)
	stateMap = stateMap.WithTimeout(stateMustReply, c.config.BlockTimeout)
	// Configure underlying Protocol
	protoConfig := protocol.ProtocolConfig{
		Name:                ProtocolName,
		ProtocolId:          protocolId,
		Muxer:               protoOptions.Muxer,
		Logger:              protoOptions.Logger,
		ErrorChan:           protoOptions.ErrorChan,
		Mode:                protoOptions.Mode,
		Role:                protocol.ProtocolRoleClient,
		MessageFromCborFunc: msgFromCborFunc,
		StateMap:            stateMap,
		InitialState:        stateIdle,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// Stop transitions the protocol to the Done state when we hold agency, and then shuts it down
func (c *Client) Stop() error {
	var err error
	if c.HasAgency() {
		c.Logger().Debug("calling Stop() on chain-sync client")
		err = c.SendMessage(NewMsgDone())
	}
	c.Protocol.Stop()
	return err
}

// FindIntersect asks the server for the best intersection with the provided points, which should be
// ordered newest first. A nil point with no error means that none of the points are on the server's chain
func (c *Client) FindIntersect(points []common.Point) (*common.Point, *common.Tip, error) {
	c.Logger().Debug(
		"calling FindIntersect",
		"points", len(points),
	)
	if err := c.SendMessage(NewMsgFindIntersect(points)); err != nil {
		return nil, nil, err
	}
	msg, err := c.RecvMessage()
	if err != nil {
		return nil, nil, err
	}
	switch msgResp := msg.(type) {
	case *MsgIntersectFound:
		point := msgResp.Point
		tip := msgResp.Tip
		return &point, &tip, nil
	case *MsgIntersectNotFound:
		tip := msgResp.Tip
		return nil, &tip, nil
	default:
		return nil, nil, fmt.Errorf(
			"%w: %T in response to FindIntersect",
			ErrUnexpectedMessage,
			msg,
		)
	}
}

// GetCurrentTip returns the server's current chain tip
func (c *Client) GetCurrentTip() (*common.Tip, error) {
	c.Logger().Debug("calling GetCurrentTip")
	// An empty FindIntersect never finds anything, but the reply always carries the tip
	_, tip, err := c.FindIntersect(nil)
	if err != nil {
		return nil, err
	}
	return tip, nil
}

// RequestNext moves the chain-sync cursor forward by one message. If the server holds agency, because
// it previously told us to wait, the replies it owes us are received first, and then the next update is
// requested. Replies are returned in the order they arrived, one per call, so a reply received while
// draining is returned right away and the reply to the new request is returned by the following call
// without any I/O
func (c *Client) RequestNext() (*NextResult, error) {
	if len(c.pending) > 0 {
		return c.popPending(), nil
	}
	for !c.HasAgency() {
		c.Logger().Debug("draining pending chain-sync reply")
		result, err := c.recvNext()
		if err != nil {
			return nil, err
		}
		c.pending = append(c.pending, result)
	}
	c.Logger().Debug("calling RequestNext")
	if err := c.SendMessage(NewMsgRequestNext()); err != nil {
		return nil, err
	}
	result, err := c.recvNext()
	if err != nil {
		return nil, err
	}
	if len(c.pending) == 0 {
		return result, nil
	}
	c.pending = append(c.pending, result)
	return c.popPending(), nil
}

func (c *Client) popPending() *NextResult {
	result := c.pending[0]
	c.pending[0] = nil
	c.pending = c.pending[1:]
	return result
}

func (c *Client) recvNext() (*NextResult, error) {
	msg, err := c.RecvMessage()
	if err != nil {
		return nil, err
	}
	switch msgResp := msg.(type) {
	case *MsgAwaitReply:
		return &NextResult{Type: MessageTypeAwaitReply}, nil
	case *MsgRollBackward:
		return &NextResult{
			Type:  MessageTypeRollBackward,
			Point: msgResp.Point,
			Tip:   msgResp.Tip,
		}, nil
	case *MsgRollForwardNtC:
		ret := &NextResult{
			Type:             MessageTypeRollForward,
			Tip:              msgResp.Tip,
			WrappedBlockCbor: msgResp.WrappedBlock.Bytes(),
		}
		block, err := msgResp.Block()
		if err != nil {
			ret.DecodeErr = err
			return ret, nil
		}
		ret.BlockType = block.BlockType
		ret.BlockCbor = block.BlockCbor
		return ret, nil
	case *MsgRollForwardNtN:
		ret := &NextResult{
			Type: MessageTypeRollForward,
			Tip:  msgResp.Tip,
		}
		header, err := msgResp.Header()
		if err != nil {
			ret.DecodeErr = err
			return ret, nil
		}
		ret.Header = header
		return ret, nil
	default:
		return nil, fmt.Errorf(
			"%w: %T in response to RequestNext",
			ErrUnexpectedMessage,
			msg,
		)
	}
}
