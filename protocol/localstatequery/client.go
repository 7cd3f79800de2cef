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

package localstatequery

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
)

// Client implements the LocalStateQuery client
type Client struct {
	*protocol.Protocol
	config *Config
}

// NewClient returns a new LocalStateQuery client object
func NewClient(protoOptions protocol.ProtocolOptions, cfg *Config) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
	}
	// Update state map with timeouts
	stateMap := StateMap.WithTimeout(stateAcquiring, c.config.AcquireTimeout)
	stateMap = stateMap.WithTimeout(stateQuerying, c.config.QueryTimeout)
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
		InitialState:        stateIdle,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// Stop releases any acquired ledger state, sends Done when we hold agency, and then shuts down the protocol
func (c *Client) Stop() error {
	var err error
	if c.HasAgency() {
		c.Logger().Debug("calling Stop() on local-state-query client")
		if c.isAcquired() {
			err = c.SendMessage(NewMsgRelease())
		}
		if err == nil {
			err = c.SendMessage(NewMsgDone())
		}
	}
	c.Protocol.Stop()
	return err
}

func (c *Client) isAcquired() bool {
	return c.CurrentState() == stateAcquired
}

// Acquire acquires the ledger state at the provided point, or at the volatile tip if the point is nil.
// If a ledger state is already acquired, it is re-acquired in place
func (c *Client) Acquire(point *common.Point) error {
	c.Logger().Debug(
		"calling Acquire",
		"point", pointString(point),
	)
	var msg protocol.Message
	switch {
	case c.isAcquired() && point == nil:
		msg = NewMsgReAcquireVolatileTip()
	case c.isAcquired():
		msg = NewMsgReAcquire(*point)
	case point == nil:
		msg = NewMsgAcquireVolatileTip()
	default:
		msg = NewMsgAcquire(*point)
	}
	if err := c.SendMessage(msg); err != nil {
		return err
	}
	resp, err := c.RecvMessage()
	if err != nil {
		return err
	}
	switch msgResp := resp.(type) {
	case *MsgAcquired:
		return nil
	case *MsgFailure:
		switch msgResp.Failure {
		case AcquireFailurePointTooOld:
			return ErrAcquireFailurePointTooOld
		case AcquireFailurePointNotOnChain:
			return ErrAcquireFailurePointNotOnChain
		default:
			return fmt.Errorf("unknown acquire failure reason: %d", msgResp.Failure)
		}
	default:
		return fmt.Errorf(
			"%w: %s: unexpected message %T in response to acquire",
			protocol.ErrProtocolViolationInvalidMessage,
			ProtocolName,
			resp,
		)
	}
}

// Release releases the currently acquired ledger state
func (c *Client) Release() error {
	c.Logger().Debug("calling Release")
	if !c.isAcquired() {
		return ErrNotAcquired
	}
	return c.SendMessage(NewMsgRelease())
}

// GetChainPoint returns the point of the acquired ledger state
func (c *Client) GetChainPoint() (*common.Point, error) {
	c.Logger().Debug("calling GetChainPoint")
	var result common.Point
	if err := c.runQuery(buildQuery(QueryTypeChainPoint), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCurrentEra returns the hard fork era index of the acquired ledger state
func (c *Client) GetCurrentEra() (int, error) {
	c.Logger().Debug("calling GetCurrentEra")
	var result int
	if err := c.runQuery(buildHardForkQuery(QueryTypeHardForkCurrentEra), &result); err != nil {
		return -1, err
	}
	return result, nil
}

// GetSystemStart returns the network genesis time
func (c *Client) GetSystemStart() (*SystemStartResult, error) {
	c.Logger().Debug("calling GetSystemStart")
	var result SystemStartResult
	if err := c.runQuery(buildQuery(QueryTypeSystemStart), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetChainBlockNo returns the block number of the acquired ledger state. The origin is reported as 0
func (c *Client) GetChainBlockNo() (uint64, error) {
	c.Logger().Debug("calling GetChainBlockNo")
	var result []uint64
	if err := c.runQuery(buildQuery(QueryTypeChainBlockNo), &result); err != nil {
		return 0, err
	}
	// The result is [0] at origin and [1, blockNo] otherwise
	if len(result) == 2 && result[0] == 1 {
		return result[1], nil
	}
	return 0, nil
}

// GetEpochNo returns the epoch of the acquired ledger state
func (c *Client) GetEpochNo() (uint64, error) {
	c.Logger().Debug("calling GetEpochNo")
	currentEra, err := c.GetCurrentEra()
	if err != nil {
		return 0, err
	}
	var result uint64
	if err := c.runShelleyQuery(
		buildShelleyQuery(currentEra, QueryTypeShelleyEpochNo),
		&result,
	); err != nil {
		return 0, err
	}
	return result, nil
}

// GetUTxOByAddress returns the unspent outputs at the provided raw addresses, ordered by output reference
func (c *Client) GetUTxOByAddress(addrs [][]byte) ([]UTxO, error) {
	c.Logger().Debug(
		"calling GetUTxOByAddress",
		"addresses", len(addrs),
	)
	currentEra, err := c.GetCurrentEra()
	if err != nil {
		return nil, err
	}
	addrSet := make(cbor.Set, 0, len(addrs))
	for _, addr := range addrs {
		addrSet = append(addrSet, addr)
	}
	var result map[UtxoId]cbor.RawMessage
	if err := c.runShelleyQuery(
		buildShelleyQuery(currentEra, QueryTypeShelleyUtxoByAddress, addrSet),
		&result,
	); err != nil {
		return nil, err
	}
	ret := make([]UTxO, 0, len(result))
	for utxoId, outputCbor := range result {
		output, err := cbor.UnwrapCbor(outputCbor)
		if err != nil {
			return nil, fmt.Errorf("%s: decode output %x#%d: %w", ProtocolName, utxoId.Hash, utxoId.Idx, err)
		}
		ret = append(
			ret,
			UTxO{
				Id:         utxoId,
				OutputCbor: output,
			},
		)
	}
	slices.SortFunc(ret, func(a, b UTxO) int {
		if n := bytes.Compare(a.Id.Hash[:], b.Id.Hash[:]); n != 0 {
			return n
		}
		return int(a.Id.Idx) - int(b.Id.Idx)
	})
	return ret, nil
}

// runQuery sends a query against the acquired ledger state and decodes the result into dest
func (c *Client) runQuery(query any, dest any) error {
	resultCbor, err := c.queryRaw(query)
	if err != nil {
		return err
	}
	if _, err := cbor.Decode(resultCbor, dest); err != nil {
		return fmt.Errorf("%s: decode query result: %w", ProtocolName, err)
	}
	return nil
}

// runShelleyQuery is like runQuery for era-specific queries, whose result is wrapped in a single element
// list on success and describes the mismatched eras otherwise
func (c *Client) runShelleyQuery(query any, dest any) error {
	var result []cbor.RawMessage
	if err := c.runQuery(query, &result); err != nil {
		return err
	}
	if len(result) != 1 {
		return ErrEraMismatch
	}
	if _, err := cbor.Decode(result[0], dest); err != nil {
		return fmt.Errorf("%s: decode query result: %w", ProtocolName, err)
	}
	return nil
}

func (c *Client) queryRaw(query any) ([]byte, error) {
	if !c.isAcquired() {
		return nil, ErrNotAcquired
	}
	if err := c.SendMessage(NewMsgQuery(query)); err != nil {
		return nil, err
	}
	resp, err := c.RecvMessage()
	if err != nil {
		return nil, err
	}
	result, ok := resp.(*MsgResult)
	if !ok {
		return nil, fmt.Errorf(
			"%w: %s: unexpected message %T in response to query",
			protocol.ErrProtocolViolationInvalidMessage,
			ProtocolName,
			resp,
		)
	}
	return result.Result, nil
}

func pointString(point *common.Point) string {
	if point == nil {
		return "tip"
	}
	return point.String()
}
