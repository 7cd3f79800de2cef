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

// Package ouroboros implements a client for the Cardano node wire protocol.
//
// A Session owns a single connection to a node, either a local node-to-client socket or a
// node-to-node TCP connection to a peer. The mini-protocols for the session's mode run
// over a shared muxer and are exposed as blocking operations. Blocks and transactions are
// decoded into the era-independent model of the ledger package.
//
// A Session is not safe for concurrent use.
package ouroboros

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/ouroboros-client/muxer"
	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/blockfetch"
	"github.com/blinklabs-io/ouroboros-client/protocol/chainsync"
	"github.com/blinklabs-io/ouroboros-client/protocol/handshake"
	"github.com/blinklabs-io/ouroboros-client/protocol/keepalive"
	"github.com/blinklabs-io/ouroboros-client/protocol/localstatequery"
	"github.com/blinklabs-io/ouroboros-client/protocol/localtxsubmission"
	"github.com/blinklabs-io/ouroboros-client/protocol/txsubmission"
)

const (
	defaultDialTimeout      = 10 * time.Second
	defaultHandshakeTimeout = 5 * time.Second

	// Upper bound on writing the termination messages when disconnecting
	disconnectWriteTimeout = 5 * time.Second
)

// Mode determines which set of mini-protocols a session speaks
type Mode uint

const (
	// ModeNodeToClient talks to a local node over its unix socket
	ModeNodeToClient Mode = 1
	// ModeNodeToPeer talks to a remote node over TCP, like another node would
	ModeNodeToPeer Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeNodeToClient:
		return "node-to-client"
	case ModeNodeToPeer:
		return "node-to-node"
	}
	return fmt.Sprintf("Mode(%d)", uint(m))
}

func (m Mode) protocolMode() protocol.ProtocolMode {
	if m == ModeNodeToPeer {
		return protocol.ProtocolModeNodeToNode
	}
	return protocol.ProtocolModeNodeToClient
}

// Session is a handle on a single connection to a Cardano node
type Session struct {
	conn             net.Conn
	networkMagic     uint32
	mode             Mode
	logger           *slog.Logger
	errorChan        chan error
	protoErrorChan   chan error
	dialTimeout      time.Duration
	handshakeTimeout time.Duration
	sendKeepAlives   bool
	muxer            *muxer.Muxer
	version          uint16
	doneChan         chan struct{}
	waitGroup        sync.WaitGroup
	closeMutex       sync.Mutex
	closed           bool
	// Mini-protocols
	blockFetch              *blockfetch.Client
	blockFetchConfig        *blockfetch.Config
	chainSync               *chainsync.Client
	chainSyncConfig         *chainsync.Config
	keepAlive               *keepalive.Client
	keepAliveConfig         *keepalive.Config
	localStateQuery         *localstatequery.Client
	localStateQueryConfig   *localstatequery.Config
	localTxSubmission       *localtxsubmission.Client
	localTxSubmissionConfig *localtxsubmission.Config
	txSubmission            *txsubmission.Client
	txSubmissionConfig      *txsubmission.Config
}

func newSession(options ...SessionOptionFunc) *Session {
	s := &Session{
		mode:             ModeNodeToClient,
		protoErrorChan:   make(chan error, 10),
		dialTimeout:      defaultDialTimeout,
		handshakeTimeout: defaultHandshakeTimeout,
		doneChan:         make(chan struct{}),
	}
	// Apply provided options functions
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// NewSession returns a new Session over the connection given with WithConnection. The handshake is
// performed before returning, and the connection is closed if it fails
func NewSession(options ...SessionOptionFunc) (*Session, error) {
	s := newSession(options...)
	if s.conn == nil {
		return nil, fmt.Errorf("%w: no connection provided", ErrConnect)
	}
	if err := s.setupConnection(); err != nil {
		_ = s.conn.Close()
		return nil, err
	}
	return s, nil
}

// Connect dials the node and performs the handshake. For ModeNodeToClient the endpoint is the path
// of the node's unix socket, and for ModeNodeToPeer it's a host:port pair
func Connect(
	endpoint string,
	networkMagic uint32,
	mode Mode,
	options ...SessionOptionFunc,
) (*Session, error) {
	s := newSession(
		slices.Concat(
			options,
			[]SessionOptionFunc{
				WithNetworkMagic(networkMagic),
				WithMode(mode),
			},
		)...,
	)
	network := "unix"
	if mode == ModeNodeToPeer {
		network = "tcp"
	}
	dialer := net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.Dial(network, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, endpoint, err)
	}
	s.conn = conn
	s.logger.Debug(
		"connected",
		"component", "network",
		"endpoint", endpoint,
		"mode", mode.String(),
	)
	if err := s.setupConnection(); err != nil {
		_ = s.conn.Close()
		return nil, err
	}
	return s, nil
}

// Mode returns the session mode
func (s *Session) Mode() Mode {
	return s.mode
}

// NetworkMagic returns the network magic the session was opened with
func (s *Session) NetworkMagic() uint32 {
	return s.networkMagic
}

// ProtocolVersion returns the negotiated protocol version, without the node-to-client flag bit
func (s *Session) ProtocolVersion() uint16 {
	return s.version
}

// Client returns the node-to-client view of the session
func (s *Session) Client() (*ClientSession, error) {
	if err := s.requireMode(ModeNodeToClient); err != nil {
		return nil, err
	}
	return &ClientSession{session: s}, nil
}

// Peer returns the node-to-node view of the session
func (s *Session) Peer() (*PeerSession, error) {
	if err := s.requireMode(ModeNodeToPeer); err != nil {
		return nil, err
	}
	return &PeerSession{session: s}, nil
}

// Disconnect terminates every mini-protocol for which we hold agency, stops the muxer, and closes the
// connection. The termination messages are written in a fixed order, and each one has reached the
// connection before the muxer is stopped. Any later call on the session returns ErrSessionClosed
func (s *Session) Disconnect() error {
	s.closeMutex.Lock()
	if s.closed {
		s.closeMutex.Unlock()
		return ErrSessionClosed
	}
	s.closed = true
	s.closeMutex.Unlock()
	s.logger.Debug(
		"disconnecting",
		"component", "network",
		"mode", s.mode.String(),
	)
	// A peer that stopped reading must not hold up the disconnect
	_ = s.conn.SetWriteDeadline(time.Now().Add(disconnectWriteTimeout))
	var stopErrs []error
	for _, proto := range s.activeProtocols() {
		stopErrs = append(stopErrs, proto.Stop())
	}
	stopErr := errors.Join(stopErrs...)
	select {
	case <-s.muxer.DoneChan():
		// The connection already failed, so the termination messages had nowhere to go
		stopErr = nil
	default:
	}
	s.shutdown()
	return errors.Join(stopErr, s.conn.Close())
}

type stopper interface {
	Stop() error
}

func (s *Session) activeProtocols() []stopper {
	var ret []stopper
	if s.chainSync != nil {
		ret = append(ret, s.chainSync)
	}
	if s.blockFetch != nil {
		ret = append(ret, s.blockFetch)
	}
	if s.keepAlive != nil {
		ret = append(ret, s.keepAlive)
	}
	if s.localStateQuery != nil {
		ret = append(ret, s.localStateQuery)
	}
	if s.localTxSubmission != nil {
		ret = append(ret, s.localTxSubmission)
	}
	if s.txSubmission != nil {
		ret = append(ret, s.txSubmission)
	}
	return ret
}

// shutdown stops the background goroutines and the muxer
func (s *Session) shutdown() {
	close(s.doneChan)
	s.muxer.Stop()
	s.waitGroup.Wait()
}

func (s *Session) checkOpen() error {
	s.closeMutex.Lock()
	defer s.closeMutex.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) requireMode(mode Mode) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.mode != mode {
		return fmt.Errorf(
			"%w: requires a %s session, this is a %s session",
			ErrWrongMode,
			mode,
			s.mode,
		)
	}
	return nil
}

// setupConnection starts the muxer, performs the handshake, and starts the mini-protocols for the
// session mode
func (s *Session) setupConnection() error {
	if s.networkMagic == 0 {
		return ErrInvalidNetworkMagic
	}
	s.muxer = muxer.New(s.conn)
	// Start goroutine to pass along errors from the muxer and mini-protocols
	s.waitGroup.Add(1)
	go s.forwardErrors()
	protoOptions := protocol.ProtocolOptions{
		ConnectionId: s.conn.RemoteAddr().String(),
		Muxer:        s.muxer,
		Logger:       s.logger,
		ErrorChan:    s.protoErrorChan,
		Mode:         s.mode.protocolMode(),
		Role:         protocol.ProtocolRoleClient,
	}
	handshakeConfig := handshake.NewConfig(
		handshake.WithNetworkMagic(s.networkMagic),
		handshake.WithTimeout(s.handshakeTimeout),
	)
	handshakeClient := handshake.NewClient(protoOptions, &handshakeConfig)
	s.muxer.Start()
	result, err := handshakeClient.Handshake()
	handshakeClient.Stop()
	if err != nil {
		s.shutdown()
		if errors.Is(err, handshake.ErrNetworkMagicMismatch) {
			return fmt.Errorf("%w: %w", ErrHandshakeRefused, err)
		}
		return fmt.Errorf("handshake: %w", err)
	}
	// Provide the negotiated protocol version to the various mini-protocols
	s.version = result.Version &^ handshake.ProtocolVersionNtCOffset
	protoOptions.Version = s.version
	s.chainSync = chainsync.NewClient(protoOptions, s.chainSyncConfig)
	s.chainSync.Start()
	if s.mode == ModeNodeToPeer {
		s.blockFetch = blockfetch.NewClient(protoOptions, s.blockFetchConfig)
		s.blockFetch.Start()
		s.txSubmission = txsubmission.NewClient(protoOptions, s.txSubmissionConfig)
		s.txSubmission.Start()
		versionInfo, _ := handshake.GetProtocolVersion(result.Version)
		if versionInfo.EnableKeepAliveProtocol {
			keepAliveConfig := keepalive.NewConfig()
			if s.keepAliveConfig != nil {
				keepAliveConfig = *s.keepAliveConfig
			}
			if !s.sendKeepAlives {
				// The protocol stays available for explicit KeepAlive calls
				keepAliveConfig.Period = 0
			}
			s.keepAlive = keepalive.NewClient(protoOptions, &keepAliveConfig)
			s.keepAlive.Start()
		}
	} else {
		s.localStateQuery = localstatequery.NewClient(protoOptions, s.localStateQueryConfig)
		s.localStateQuery.Start()
		s.localTxSubmission = localtxsubmission.NewClient(protoOptions, s.localTxSubmissionConfig)
		s.localTxSubmission.Start()
	}
	s.logger.Debug(
		"handshake complete",
		"component", "network",
		"connection_id", protoOptions.ConnectionId,
		"version", s.version,
	)
	return nil
}

func (s *Session) forwardErrors() {
	defer s.waitGroup.Done()
	for {
		select {
		case <-s.doneChan:
			return
		case err, ok := <-s.muxer.ErrorChan():
			// The muxer closes its error channel on shutdown
			if !ok {
				return
			}
			s.reportError(fmt.Errorf("muxer error: %w", err))
		case err := <-s.protoErrorChan:
			s.reportError(fmt.Errorf("protocol error: %w", err))
			// Protocol errors leave the peer in an unknown state, so the connection can't be reused
			s.muxer.Stop()
		}
	}
}

func (s *Session) reportError(err error) {
	s.logger.Error(
		"session error",
		"component", "network",
		"error", err,
	)
	if s.errorChan == nil {
		return
	}
	select {
	case s.errorChan <- err:
	default:
	}
}
