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

package blockfetch

import (
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
)

// Client implements the BlockFetch client, which requests blocks from a server
type Client struct {
	*protocol.Protocol
	config *Config
}

// NewClient returns a new BlockFetch client object
func NewClient(protoOptions protocol.ProtocolOptions, cfg *Config) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
	}
	// Update state map with timeouts
	stateMap := StateMap.WithTimeout(StateBusy, c.config.BatchStartTimeout)
	stateMap = stateMap.WithTimeout(StateStreaming, c.config.BlockTimeout)
	// Configure underlying Protocol
	protoConfig := protocol.ProtocolConfig{
		Name:                ProtocolName,
		ProtocolId:          ProtocolId,
		Muxer:               protoOptions.Muxer,
		Logger:              protoOptions.Logger,
		ErrorChan:           protoOptions.ErrorChan,
		Mode:                protoOptions.Mode,
		Role:                protocol.ProtocolRoleClient,
		MessageFromCborFunc: NewMsgFromCbor,
		StateMap:            stateMap,
		InitialState:        StateIdle,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// Stop sends ClientDone when we hold agency, and then shuts down the protocol
func (c *Client) Stop() error {
	var err error
	if c.HasAgency() {
		c.Logger().Debug("calling Stop() on block-fetch client")
		err = c.SendMessage(NewMsgClientDone())
	}
	c.Protocol.Stop()
	return err
}

// FetchSingle requests the block at the provided point and returns the raw CBOR of [blockType, block]
func (c *Client) FetchSingle(point common.Point) ([]byte, error) {
	c.Logger().Debug(
		fmt.Sprintf("calling FetchSingle(point: {Slot: %d, Hash: %x})", point.Slot, point.Hash),
	)
	blocks, err := c.GetBlockRange(point, point)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrBlockNotFound
	}
	return blocks[0], nil
}

// GetBlockRange requests all blocks between the provided points (inclusive) and returns the raw CBOR of
// [blockType, block] for each of them, in chain order. The batch is always read through to BatchDone
func (c *Client) GetBlockRange(start common.Point, end common.Point) ([][]byte, error) {
	c.Logger().Debug(
		fmt.Sprintf(
			"calling GetBlockRange(start: {Slot: %d, Hash: %x}, end: {Slot: %d, Hash: %x})",
			start.Slot,
			start.Hash,
			end.Slot,
			end.Hash,
		),
	)
	if err := c.SendMessage(NewMsgRequestRange(start, end)); err != nil {
		return nil, err
	}
	msg, err := c.RecvMessage()
	if err != nil {
		return nil, err
	}
	if _, ok := msg.(*MsgNoBlocks); ok {
		c.Logger().Debug("no blocks returned")
		return nil, ErrBlockNotFound
	}
	c.Logger().Debug("starting batch")
	var blocks [][]byte
	for {
		msg, err := c.RecvMessage()
		if err != nil {
			return nil, err
		}
		switch msgResp := msg.(type) {
		case *MsgBlock:
			c.Logger().Debug("block returned")
			blocks = append(blocks, msgResp.WrappedBlock.Bytes())
		case *MsgBatchDone:
			c.Logger().Debug("batch done")
			return blocks, nil
		default:
			return nil, fmt.Errorf(
				"%w: %s: unexpected message %T in batch",
				protocol.ErrProtocolViolationInvalidMessage,
				ProtocolName,
				msg,
			)
		}
	}
}

// DecodeWrappedBlock decodes the raw CBOR of [blockType, block] as returned by FetchSingle
func DecodeWrappedBlock(data []byte) (*WrappedBlock, error) {
	var wrappedBlock WrappedBlock
	if _, err := cbor.Decode(data, &wrappedBlock); err != nil {
		return nil, fmt.Errorf("%s: decode error: %w", ProtocolName, err)
	}
	return &wrappedBlock, nil
}
