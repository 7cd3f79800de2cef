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

// Package localstatequery implements the Ouroboros local-state-query protocol
package localstatequery

import (
	"time"

	"github.com/blinklabs-io/ouroboros-client/protocol"
)

// Protocol identifiers
const (
	ProtocolName        = "local-state-query"
	ProtocolId   uint16 = 7
)

var (
	stateIdle      = protocol.NewState(1, "Idle")
	stateAcquiring = protocol.NewState(2, "Acquiring")
	stateAcquired  = protocol.NewState(3, "Acquired")
	stateQuerying  = protocol.NewState(4, "Querying")
	stateDone      = protocol.NewState(5, "Done")
)

// StateMap is the local-state-query protocol state machine
var StateMap = protocol.StateMap{
	stateIdle: protocol.StateMapEntry{
		Agency: protocol.AgencyClient,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeAcquire,
				NewState: stateAcquiring,
			},
			{
				MsgType:  MessageTypeAcquireVolatileTip,
				NewState: stateAcquiring,
			},
			{
				MsgType:  MessageTypeDone,
				NewState: stateDone,
			},
		},
	},
	stateAcquiring: protocol.StateMapEntry{
		Agency: protocol.AgencyServer,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeFailure,
				NewState: stateIdle,
			},
			{
				MsgType:  MessageTypeAcquired,
				NewState: stateAcquired,
			},
		},
	},
	stateAcquired: protocol.StateMapEntry{
		Agency: protocol.AgencyClient,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeQuery,
				NewState: stateQuerying,
			},
			{
				MsgType:  MessageTypeReAcquire,
				NewState: stateAcquiring,
			},
			{
				MsgType:  MessageTypeReAcquireVolatileTip,
				NewState: stateAcquiring,
			},
			{
				MsgType:  MessageTypeRelease,
				NewState: stateIdle,
			},
		},
	},
	stateQuerying: protocol.StateMapEntry{
		Agency: protocol.AgencyServer,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeResult,
				NewState: stateAcquired,
			},
		},
	},
	stateDone: protocol.StateMapEntry{
		Agency: protocol.AgencyNone,
	},
}

// Config is used to configure the LocalStateQuery protocol instance
type Config struct {
	AcquireTimeout time.Duration
	QueryTimeout   time.Duration
}

// LocalStateQueryOptionFunc represents a function used to modify the LocalStateQuery protocol config
type LocalStateQueryOptionFunc func(*Config)

// NewConfig returns a new LocalStateQuery config object with the provided options
func NewConfig(options ...LocalStateQueryOptionFunc) Config {
	c := Config{
		AcquireTimeout: 5 * time.Second,
		QueryTimeout:   180 * time.Second,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithAcquireTimeout specifies the timeout for acquire operations
func WithAcquireTimeout(timeout time.Duration) LocalStateQueryOptionFunc {
	return func(c *Config) {
		c.AcquireTimeout = timeout
	}
}

// WithQueryTimeout specifies the timeout for a query to return a result
func WithQueryTimeout(timeout time.Duration) LocalStateQueryOptionFunc {
	return func(c *Config) {
		c.QueryTimeout = timeout
	}
}
