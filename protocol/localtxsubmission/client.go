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

package localtxsubmission

import (
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/protocol"
)

// RejectReason is the node's explanation for refusing a transaction. A rejection is a normal outcome
// of SubmitTx and is never reported as an error
type RejectReason struct {
	Cbor []byte
}

func (r RejectReason) String() string {
	return fmt.Sprintf("transaction rejected: CBOR reason hex: %x", r.Cbor)
}

// Client implements the LocalTxSubmission client
type Client struct {
	*protocol.Protocol
	config *Config
}

// NewClient returns a new LocalTxSubmission client object
func NewClient(protoOptions protocol.ProtocolOptions, cfg *Config) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
	}
	// Update state map with timeout
	stateMap := StateMap.WithTimeout(stateBusy, c.config.Timeout)
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

// Stop sends Done when we hold agency, and then shuts down the protocol
func (c *Client) Stop() error {
	var err error
	if c.HasAgency() {
		c.Logger().Debug("calling Stop() on local-tx-submission client")
		err = c.SendMessage(NewMsgDone())
	}
	c.Protocol.Stop()
	return err
}

// SubmitTx submits a transaction for the provided era. It returns a nil RejectReason when the node
// accepts the transaction
func (c *Client) SubmitTx(eraId uint16, tx []byte) (*RejectReason, error) {
	c.Logger().Debug(
		"calling SubmitTx",
		"era_id", eraId,
		"tx_size", len(tx),
	)
	if err := c.SendMessage(NewMsgSubmitTx(eraId, tx)); err != nil {
		return nil, err
	}
	msg, err := c.RecvMessage()
	if err != nil {
		return nil, err
	}
	switch msgResp := msg.(type) {
	case *MsgAcceptTx:
		return nil, nil
	case *MsgRejectTx:
		c.Logger().Debug("transaction rejected", "reason", fmt.Sprintf("%x", []byte(msgResp.Reason)))
		return &RejectReason{Cbor: []byte(msgResp.Reason)}, nil
	default:
		return nil, fmt.Errorf(
			"%w: %s: unexpected message %T in response to SubmitTx",
			protocol.ErrProtocolViolationInvalidMessage,
			ProtocolName,
			msg,
		)
	}
}
