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

package handshake

import (
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/protocol"
)

// Client implements the Handshake client
type Client struct {
	*protocol.Protocol
	config *Config
	mode   protocol.ProtocolMode
}

// Result is the outcome of a successful handshake
type Result struct {
	Version     uint16
	VersionData VersionData
}

// NewClient returns a new Handshake client object
func NewClient(protoOptions protocol.ProtocolOptions, cfg *Config) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
		mode:   protoOptions.Mode,
	}
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
		StateMap:            StateMap.WithTimeout(stateConfirm, c.config.Timeout),
		InitialState:        statePropose,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// Handshake proposes our supported versions and waits for the peer to accept or refuse
func (c *Client) Handshake() (*Result, error) {
	c.Start()
	versionMap := GetProtocolVersionMap(
		c.mode,
		c.config.NetworkMagic,
		c.config.InitiatorOnly,
		c.config.QueryMode,
	)
	msg, err := NewMsgProposeVersions(versionMap)
	if err != nil {
		return nil, err
	}
	if err := c.SendMessage(msg); err != nil {
		return nil, err
	}
	resp, err := c.RecvMessage()
	if err != nil {
		return nil, err
	}
	switch msgResp := resp.(type) {
	case *MsgAcceptVersion:
		return c.handleAcceptVersion(msgResp)
	case *MsgRefuse:
		return nil, c.handleRefuse(msgResp)
	default:
		return nil, fmt.Errorf(
			"%w: %s: unexpected message type %T",
			protocol.ErrProtocolViolationInvalidMessage,
			ProtocolName,
			resp,
		)
	}
}

func (c *Client) handleAcceptVersion(msg *MsgAcceptVersion) (*Result, error) {
	protoVersion, ok := GetProtocolVersion(msg.Version)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, msg.Version)
	}
	versionData, err := protoVersion.NewVersionDataFromCborFunc(msg.VersionData)
	if err != nil {
		return nil, fmt.Errorf("%s: decode version data: %w", ProtocolName, err)
	}
	if versionData.NetworkMagic() != c.config.NetworkMagic {
		return nil, fmt.Errorf(
			"%w: expected %d, peer has %d",
			ErrNetworkMagicMismatch,
			c.config.NetworkMagic,
			versionData.NetworkMagic(),
		)
	}
	c.Logger().Debug(
		"handshake complete",
		"version", msg.Version&^ProtocolVersionNtCOffset,
	)
	return &Result{
		Version:     msg.Version,
		VersionData: versionData,
	}, nil
}

func (c *Client) handleRefuse(msg *MsgRefuse) error {
	if len(msg.Reason) == 0 {
		return fmt.Errorf("%w: no reason given", ErrHandshakeRefused)
	}
	reasonType, _ := msg.Reason[0].(uint64)
	reasonText := ""
	if len(msg.Reason) > 2 {
		reasonText, _ = msg.Reason[2].(string)
	}
	switch reasonType {
	case RefuseReasonVersionMismatch:
		return fmt.Errorf("%w: %s: version mismatch", ErrHandshakeRefused, ProtocolName)
	case RefuseReasonDecodeError:
		return fmt.Errorf("%w: %s: decode error: %s", ErrHandshakeRefused, ProtocolName, reasonText)
	case RefuseReasonRefused:
		return fmt.Errorf("%w: %s: refused: %s", ErrHandshakeRefused, ProtocolName, reasonText)
	default:
		return fmt.Errorf("%w: %s: unknown reason %d", ErrHandshakeRefused, ProtocolName, reasonType)
	}
}
