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
	"log/slog"
	"net"
	"time"

	"github.com/blinklabs-io/ouroboros-client/protocol/blockfetch"
	"github.com/blinklabs-io/ouroboros-client/protocol/chainsync"
	"github.com/blinklabs-io/ouroboros-client/protocol/keepalive"
	"github.com/blinklabs-io/ouroboros-client/protocol/localstatequery"
	"github.com/blinklabs-io/ouroboros-client/protocol/localtxsubmission"
	"github.com/blinklabs-io/ouroboros-client/protocol/txsubmission"
)

// SessionOptionFunc is a type that represents functions that modify the Session config
type SessionOptionFunc func(*Session)

// WithConnection specifies an existing connection to use. It's required for NewSession and
// ignored by Connect, which dials its own
func WithConnection(conn net.Conn) SessionOptionFunc {
	return func(s *Session) {
		s.conn = conn
	}
}

// WithNetwork specifies the network
func WithNetwork(network Network) SessionOptionFunc {
	return func(s *Session) {
		s.networkMagic = network.NetworkMagic
	}
}

// WithNetworkMagic specifies the network magic value
func WithNetworkMagic(networkMagic uint32) SessionOptionFunc {
	return func(s *Session) {
		s.networkMagic = networkMagic
	}
}

// WithMode specifies the session mode. The default is ModeNodeToClient
func WithMode(mode Mode) SessionOptionFunc {
	return func(s *Session) {
		s.mode = mode
	}
}

// WithNodeToNode specifies whether to use the node-to-node protocol. The default is to use node-to-client
func WithNodeToNode(nodeToNode bool) SessionOptionFunc {
	return func(s *Session) {
		if nodeToNode {
			s.mode = ModeNodeToPeer
		} else {
			s.mode = ModeNodeToClient
		}
	}
}

// WithLogger specifies the logger. Nothing is logged by default
func WithLogger(logger *slog.Logger) SessionOptionFunc {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithErrorChan specifies a channel that receives asynchronous connection and protocol errors. Errors
// are dropped when the channel is full
func WithErrorChan(errorChan chan error) SessionOptionFunc {
	return func(s *Session) {
		s.errorChan = errorChan
	}
}

// WithKeepAlive specifies whether to send periodic keep-alives on node-to-node sessions. This is
// disabled by default
func WithKeepAlive(keepAlive bool) SessionOptionFunc {
	return func(s *Session) {
		s.sendKeepAlives = keepAlive
	}
}

// WithDialTimeout specifies the timeout used by Connect when establishing the connection
func WithDialTimeout(timeout time.Duration) SessionOptionFunc {
	return func(s *Session) {
		s.dialTimeout = timeout
	}
}

// WithHandshakeTimeout specifies how long to wait for the peer to answer our version proposal
func WithHandshakeTimeout(timeout time.Duration) SessionOptionFunc {
	return func(s *Session) {
		s.handshakeTimeout = timeout
	}
}

// WithBlockFetchConfig specifies BlockFetch config
func WithBlockFetchConfig(cfg blockfetch.Config) SessionOptionFunc {
	return func(s *Session) {
		s.blockFetchConfig = &cfg
	}
}

// WithChainSyncConfig specifies ChainSync config
func WithChainSyncConfig(cfg chainsync.Config) SessionOptionFunc {
	return func(s *Session) {
		s.chainSyncConfig = &cfg
	}
}

// WithKeepAliveConfig specifies KeepAlive config
func WithKeepAliveConfig(cfg keepalive.Config) SessionOptionFunc {
	return func(s *Session) {
		s.keepAliveConfig = &cfg
	}
}

// WithLocalStateQueryConfig specifies LocalStateQuery config
func WithLocalStateQueryConfig(cfg localstatequery.Config) SessionOptionFunc {
	return func(s *Session) {
		s.localStateQueryConfig = &cfg
	}
}

// WithLocalTxSubmissionConfig specifies LocalTxSubmission config
func WithLocalTxSubmissionConfig(cfg localtxsubmission.Config) SessionOptionFunc {
	return func(s *Session) {
		s.localTxSubmissionConfig = &cfg
	}
}

// WithTxSubmissionConfig specifies TxSubmission config
func WithTxSubmissionConfig(cfg txsubmission.Config) SessionOptionFunc {
	return func(s *Session) {
		s.txSubmissionConfig = &cfg
	}
}
