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

package keepalive

import (
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/ouroboros-client/protocol"
)

// Client implements the KeepAlive client. Once started, it pings the server every Period until stopped
type Client struct {
	*protocol.Protocol
	config    *Config
	busyMutex sync.Mutex
	onceStart sync.Once
	onceStop  sync.Once
}

// NewClient returns a new KeepAlive client object
func NewClient(protoOptions protocol.ProtocolOptions, cfg *Config) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
	}
	// Update state map with timeout
	stateMap := StateMap.WithTimeout(StateServer, c.config.Timeout)
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
		InitialState:        StateClient,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// Start starts the protocol and, if a period is configured, the periodic ping loop
func (c *Client) Start() {
	c.onceStart.Do(func() {
		c.Protocol.Start()
		if c.config.Period > 0 {
			go c.pingLoop()
		}
	})
}

// Stop sends Done when we hold agency, and then shuts down the protocol and the ping loop
func (c *Client) Stop() error {
	var err error
	c.onceStop.Do(func() {
		c.busyMutex.Lock()
		defer c.busyMutex.Unlock()
		if c.HasAgency() {
			c.Logger().Debug("calling Stop() on keep-alive client")
			err = c.SendMessage(NewMsgDone())
		}
		c.Protocol.Stop()
	})
	return err
}

// KeepAlive sends a single ping and waits for the matching response
func (c *Client) KeepAlive() error {
	c.busyMutex.Lock()
	defer c.busyMutex.Unlock()
	c.Logger().Debug("sending keep-alive", "cookie", c.config.Cookie)
	if err := c.SendMessage(NewMsgKeepAlive(c.config.Cookie)); err != nil {
		return err
	}
	msg, err := c.RecvMessage()
	if err != nil {
		return err
	}
	msgResp, ok := msg.(*MsgKeepAliveResponse)
	if !ok {
		return fmt.Errorf(
			"%w: %s: unexpected message %T",
			protocol.ErrProtocolViolationInvalidMessage,
			ProtocolName,
			msg,
		)
	}
	if msgResp.Cookie != c.config.Cookie {
		return fmt.Errorf(
			"%w: expected %d but received %d",
			ErrCookieMismatch,
			c.config.Cookie,
			msgResp.Cookie,
		)
	}
	return nil
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.config.Period)
	defer ticker.Stop()
	for {
		select {
		case <-c.DoneChan():
			return
		case <-ticker.C:
		}
		if c.IsDone() {
			return
		}
		if err := c.KeepAlive(); err != nil {
			if !c.IsDone() {
				c.SendError(err)
			}
			return
		}
	}
}
