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

// Package keepalive implements the Ouroboros keep-alive protocol, which is used to detect and maintain
// liveness between nodes
package keepalive

import (
	"errors"
	"time"

	"github.com/blinklabs-io/ouroboros-client/protocol"
)

const (
	// ProtocolName is the name of the keep-alive protocol
	ProtocolName = "keep-alive"
	// ProtocolId is the unique protocol identifier for the keep-alive protocol
	ProtocolId uint16 = 8
	// DefaultKeepAlivePeriod is the default interval between keep-alive pings, in seconds
	DefaultKeepAlivePeriod = 60
	// DefaultKeepAliveTimeout is the default timeout for keep-alive responses, in seconds
	DefaultKeepAliveTimeout = 10
)

var (
	// StateClient is the protocol state where the client may send a ping
	StateClient = protocol.NewState(1, "Client")
	// StateServer is the protocol state where the client waits for the server's pong
	StateServer = protocol.NewState(2, "Server")
	// StateDone is the terminal protocol state
	StateDone = protocol.NewState(3, "Done")
)

// StateMap defines the valid state transitions for the keep-alive protocol
var StateMap = protocol.StateMap{
	StateClient: protocol.StateMapEntry{
		Agency: protocol.AgencyClient,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeKeepAlive,
				NewState: StateServer,
			},
			{
				MsgType:  MessageTypeDone,
				NewState: StateDone,
			},
		},
	},
	StateServer: protocol.StateMapEntry{
		Agency: protocol.AgencyServer,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeKeepAliveResponse,
				NewState: StateClient,
			},
		},
	},
	StateDone: protocol.StateMapEntry{
		Agency: protocol.AgencyNone,
	},
}

// ErrCookieMismatch is returned when the server answers a ping with a different cookie
var ErrCookieMismatch = errors.New("keep-alive response cookie mismatch")

// Config contains configuration options for the keep-alive protocol
type Config struct {
	Timeout time.Duration
	// Period is the interval between automatic pings. Zero disables them
	Period time.Duration
	Cookie uint16
}

// KeepAliveOptionFunc is a function that modifies a Config
type KeepAliveOptionFunc func(*Config)

// NewConfig creates a new Config with default values, applying any provided option functions
func NewConfig(options ...KeepAliveOptionFunc) Config {
	c := Config{
		Period:  DefaultKeepAlivePeriod * time.Second,
		Timeout: DefaultKeepAliveTimeout * time.Second,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithTimeout sets how long to wait for the server's response to a ping
func WithTimeout(timeout time.Duration) KeepAliveOptionFunc {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithPeriod sets the interval between automatic pings
func WithPeriod(period time.Duration) KeepAliveOptionFunc {
	return func(c *Config) {
		c.Period = period
	}
}

// WithCookie sets the cookie value sent with each ping
func WithCookie(cookie uint16) KeepAliveOptionFunc {
	return func(c *Config) {
		c.Cookie = cookie
	}
}
