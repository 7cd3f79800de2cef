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

package txsubmission

import (
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/protocol"
)

// Client implements the TxSubmission client, which offers transactions for the server to pull
type Client struct {
	*protocol.Protocol
	config *Config
}

// NewClient returns a new TxSubmission client object
func NewClient(protoOptions protocol.ProtocolOptions, cfg *Config) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
	}
	// Update state map with timeout
	stateMap := StateMap.WithTimeout(stateIdle, c.config.IdleTimeout)
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
		InitialState:        stateInit,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// Stop sends Done when the server is blocked waiting on us, and then shuts down the protocol
func (c *Client) Stop() error {
	var err error
	if c.CurrentState() == stateTxIdsBlocking {
		c.Logger().Debug("calling Stop() on tx-submission client")
		err = c.SendMessage(NewMsgDone())
	}
	c.Protocol.Stop()
	return err
}

// SubmitTx offers a single transaction to the server and answers its requests until the server has
// pulled it. The exchange is: Init, RequestTxIds, ReplyTxIds with our transaction, RequestTxs naming it,
// ReplyTxs with the body, then a non-blocking RequestTxIds answered with an empty list. A following
// blocking RequestTxIds is answered with Done, since we have nothing left to offer. It returns the
// concatenated hashes of the transactions the server requested. Only one submission is possible per
// connection: later calls return ErrTxSubmissionDone
func (c *Client) SubmitTx(eraId uint16, txHash []byte, txBody []byte) ([]byte, error) {
	c.Logger().Debug(
		"calling SubmitTx",
		"era_id", eraId,
		"tx_hash", fmt.Sprintf("%x", txHash),
	)
	if c.IsDone() {
		return nil, ErrTxSubmissionDone
	}
	if len(txHash) != 32 {
		return nil, fmt.Errorf("invalid transaction hash length: %d", len(txHash))
	}
	txId := TxId{EraId: eraId}
	copy(txId.TxId[:], txHash)
	if err := c.SendMessage(NewMsgInit()); err != nil {
		return nil, err
	}
	// Initial request for transaction IDs, blocking or not
	if _, err := c.recvRequestTxIds(); err != nil {
		return nil, err
	}
	err := c.SendMessage(
		NewMsgReplyTxIds(
			[]TxIdAndSize{
				{
					TxId: txId,
					Size: uint32(len(txBody)), // #nosec G115
				},
			},
		),
	)
	if err != nil {
		return nil, err
	}
	// The server should now ask for the transaction itself
	msg, err := c.RecvMessage()
	if err != nil {
		return nil, err
	}
	msgRequestTxs, ok := msg.(*MsgRequestTxs)
	if !ok {
		return nil, c.unexpectedMessage(msg)
	}
	var ackedIds []byte
	for _, reqTxId := range msgRequestTxs.TxIds {
		if reqTxId.TxId != txId.TxId {
			return nil, fmt.Errorf(
				"%w: %w: %x",
				protocol.ErrProtocolViolationInvalidMessage,
				ErrUnknownTxId,
				reqTxId.TxId,
			)
		}
		ackedIds = append(ackedIds, reqTxId.TxId[:]...)
	}
	txs := make([]TxBody, 0, len(msgRequestTxs.TxIds))
	for range msgRequestTxs.TxIds {
		txs = append(txs, TxBody{EraId: eraId, TxBody: txBody})
	}
	if err := c.SendMessage(NewMsgReplyTxs(txs)); err != nil {
		return nil, err
	}
	// Acknowledge our transaction and tell the server we have nothing else
	emptyReplySent := false
	for {
		blocking, err := c.recvRequestTxIds()
		if err != nil {
			return nil, err
		}
		if blocking {
			// A blocking request with an empty mempool can only be answered with Done
			if err := c.SendMessage(NewMsgDone()); err != nil {
				return nil, err
			}
			break
		}
		if emptyReplySent {
			break
		}
		if err := c.SendMessage(NewMsgReplyTxIds(nil)); err != nil {
			return nil, err
		}
		emptyReplySent = true
	}
	return ackedIds, nil
}

func (c *Client) recvRequestTxIds() (bool, error) {
	msg, err := c.RecvMessage()
	if err != nil {
		return false, err
	}
	msgRequestTxIds, ok := msg.(*MsgRequestTxIds)
	if !ok {
		return false, c.unexpectedMessage(msg)
	}
	// The state map has already moved us into the matching blocking or non-blocking state
	expectedState := stateTxIdsNonblocking
	if msgRequestTxIds.Blocking {
		expectedState = stateTxIdsBlocking
	}
	if state := c.CurrentState(); state != expectedState {
		return false, fmt.Errorf(
			"%w: %s: in state %s after RequestTxIds(blocking: %v)",
			protocol.ErrProtocolViolationInvalidMessage,
			ProtocolName,
			state,
			msgRequestTxIds.Blocking,
		)
	}
	return msgRequestTxIds.Blocking, nil
}

func (c *Client) unexpectedMessage(msg protocol.Message) error {
	return fmt.Errorf(
		"%w: %s: unexpected message %T",
		protocol.ErrProtocolViolationInvalidMessage,
		ProtocolName,
		msg,
	)
}
