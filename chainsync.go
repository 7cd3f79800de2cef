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

package ouroboros

import (
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/ledger"
	"github.com/blinklabs-io/ouroboros-client/protocol/chainsync"
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
)

// ChainSyncAction describes the outcome of a ChainSyncNext call
type ChainSyncAction uint8

const (
	// ChainSyncActionError means that a block or header was received but couldn't be decoded
	ChainSyncActionError ChainSyncAction = 0
	// ChainSyncActionRollForward means that the next block was received
	ChainSyncActionRollForward ChainSyncAction = 1
	// ChainSyncActionRollBackward means that the chain rolled back to the point in the response
	ChainSyncActionRollBackward ChainSyncAction = 2
	// ChainSyncActionAwait means that we are at the tip and the node will send the next update later
	ChainSyncActionAwait ChainSyncAction = 3
)

func (a ChainSyncAction) String() string {
	switch a {
	case ChainSyncActionError:
		return "Error"
	case ChainSyncActionRollForward:
		return "RollForward"
	case ChainSyncActionRollBackward:
		return "RollBackward"
	case ChainSyncActionAwait:
		return "Await"
	}
	return fmt.Sprintf("ChainSyncAction(%d)", uint8(a))
}

// NextResponse is the result of a ChainSyncNext call
type NextResponse struct {
	Action ChainSyncAction
	// Tip is nil for ChainSyncActionError and ChainSyncActionAwait
	Tip *common.Tip
	// Point is the rollback target for ChainSyncActionRollBackward
	Point *common.Point
	// Block is the decoded block for ChainSyncActionRollForward
	Block *ledger.Block
	// BlockCbor is the raw [blockType, block] CBOR when a block was received
	BlockCbor []byte
}

// FindIntersect looks for the most recent of the provided points that's also on the node's chain, and
// moves the chain-sync cursor to it. Points should be ordered newest first. A point with slot 0 stands
// for the chain origin. A nil point with no error means that no intersection was found
func (s *Session) FindIntersect(points []common.Point) (*common.Point, *common.Tip, error) {
	if err := s.checkOpen(); err != nil {
		return nil, nil, err
	}
	tmpPoints := make([]common.Point, 0, len(points))
	for _, point := range points {
		if point.Slot == 0 {
			point = common.NewPointOrigin()
		}
		tmpPoints = append(tmpPoints, point)
	}
	return s.chainSync.FindIntersect(tmpPoints)
}

// HasAgency returns true if the next chain-sync step is ours to send. It doesn't perform any I/O
func (s *Session) HasAgency() bool {
	if s.chainSync == nil {
		return false
	}
	return s.chainSync.HasAgency()
}

// ChainSyncNext advances the chain-sync cursor by one update. When the node still owes us a reply, it is
// received before the next update is requested, and the replies are returned in order over this and
// the following call. On node-to-node sessions the block body for a new header is fetched with
// block-fetch, and a failure to fetch it is returned as an error. A block or header that can't be
// decoded yields ChainSyncActionError with no error
func (s *Session) ChainSyncNext() (*NextResponse, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	result, err := s.chainSync.RequestNext()
	if err != nil {
		return nil, err
	}
	switch result.Type {
	case chainsync.MessageTypeAwaitReply:
		return &NextResponse{
			Action: ChainSyncActionAwait,
		}, nil
	case chainsync.MessageTypeRollBackward:
		point := result.Point
		tip := result.Tip
		return &NextResponse{
			Action: ChainSyncActionRollBackward,
			Tip:    &tip,
			Point:  &point,
		}, nil
	case chainsync.MessageTypeRollForward:
		if result.DecodeErr != nil {
			return s.decodeFailure("roll forward payload", result.DecodeErr, result.WrappedBlockCbor), nil
		}
		tip := result.Tip
		if result.Header != nil {
			return s.rollForwardHeader(&tip, result.Header)
		}
		return s.rollForwardBlock(&tip, result.WrappedBlockCbor), nil
	}
	return nil, fmt.Errorf("unexpected chain-sync result type %d", result.Type)
}

func (s *Session) rollForwardBlock(tip *common.Tip, wrappedBlockCbor []byte) *NextResponse {
	block, err := ledger.NewBlockFromWrappedCbor(wrappedBlockCbor)
	if err != nil {
		return s.decodeFailure("block", err, wrappedBlockCbor)
	}
	return &NextResponse{
		Action:    ChainSyncActionRollForward,
		Tip:       tip,
		Block:     block,
		BlockCbor: wrappedBlockCbor,
	}
}

func (s *Session) rollForwardHeader(tip *common.Tip, header *chainsync.WrappedHeader) (*NextResponse, error) {
	blockHeader, err := ledger.NewBlockHeaderFromCbor(header.BlockType(), header.HeaderCbor())
	if err != nil {
		return s.decodeFailure("block header", err, nil), nil
	}
	point := common.NewPoint(blockHeader.Slot, blockHeader.Hash.Bytes())
	blockCbor, err := s.blockFetch.FetchSingle(point)
	if err != nil {
		return nil, fmt.Errorf("fetch block %s: %w", point, err)
	}
	return s.rollForwardBlock(tip, blockCbor), nil
}

// decodeFailure reports a roll forward whose payload couldn't be decoded. It carries neither a block
// nor a tip, only the raw payload when there is one
func (s *Session) decodeFailure(what string, err error, rawCbor []byte) *NextResponse {
	s.logger.Warn(
		"failed to decode "+what,
		"component", "chainsync",
		"error", err,
	)
	return &NextResponse{
		Action:    ChainSyncActionError,
		BlockCbor: rawCbor,
	}
}

// GetTip returns the node's current chain tip. Node-to-client sessions read it from the ledger state
// at the tip, and node-to-node sessions ask chain-sync for it
func (s *Session) GetTip() (*common.Tip, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.mode == ModeNodeToPeer {
		return s.chainSync.GetCurrentTip()
	}
	if err := s.localStateQuery.Acquire(nil); err != nil {
		return nil, err
	}
	point, err := s.localStateQuery.GetChainPoint()
	if err != nil {
		return nil, err
	}
	blockNo, err := s.localStateQuery.GetChainBlockNo()
	if err != nil {
		return nil, err
	}
	return &common.Tip{
		Point:       *point,
		BlockNumber: blockNo,
	}, nil
}

