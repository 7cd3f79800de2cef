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
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
	"github.com/blinklabs-io/ouroboros-client/protocol/localtxsubmission"
)

// SubmitTxResult is the outcome of a Session.SubmitTx call. RejectReason is only set on
// node-to-client sessions, and AcknowledgedTxIds only on node-to-node sessions
type SubmitTxResult struct {
	RejectReason      *localtxsubmission.RejectReason
	AcknowledgedTxIds []byte
}

// SubmitTx submits a transaction. Node-to-client sessions push it to the local node, which either
// accepts it or returns a RejectReason. Node-to-node sessions offer it to the peer through the
// tx-submission pull handshake and return the acknowledged transaction IDs. That handshake ends the
// tx-submission protocol, so a node-to-node session submits once and later calls return
// txsubmission.ErrTxSubmissionDone
func (s *Session) SubmitTx(tx []byte) (*SubmitTxResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.mode == ModeNodeToPeer {
		txIds, err := s.submitTxPeer(tx)
		if err != nil {
			return nil, err
		}
		return &SubmitTxResult{AcknowledgedTxIds: txIds}, nil
	}
	reason, err := s.submitTxLocal(tx)
	if err != nil {
		return nil, err
	}
	return &SubmitTxResult{RejectReason: reason}, nil
}

func (s *Session) submitTxLocal(tx []byte) (*localtxsubmission.RejectReason, error) {
	era, err := ledger.DetermineTransactionEra(tx)
	if err != nil {
		return nil, err
	}
	return s.localTxSubmission.SubmitTx(uint16(era), tx)
}

func (s *Session) submitTxPeer(tx []byte) ([]byte, error) {
	era, err := ledger.DetermineTransactionEra(tx)
	if err != nil {
		return nil, err
	}
	txBody, err := ledger.DecodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	return s.txSubmission.SubmitTx(uint16(era), txBody.Id.Bytes(), tx)
}

// GetUtxoByAddress returns the unspent outputs at the raw address, as of the current tip. Each entry
// is the CBOR of a transaction output, which ledger.DecodeTransactionOutput can decode
func (s *Session) GetUtxoByAddress(address []byte) ([][]byte, error) {
	if err := s.requireMode(ModeNodeToClient); err != nil {
		return nil, err
	}
	if err := s.localStateQuery.Acquire(nil); err != nil {
		return nil, err
	}
	utxos, err := s.localStateQuery.GetUTxOByAddress([][]byte{address})
	if err != nil {
		return nil, err
	}
	ret := make([][]byte, 0, len(utxos))
	for _, utxo := range utxos {
		ret = append(ret, utxo.OutputCbor)
	}
	return ret, nil
}

// FetchBlock returns the raw [blockType, block] CBOR of the block at the point
func (s *Session) FetchBlock(point common.Point) ([]byte, error) {
	if err := s.requireMode(ModeNodeToPeer); err != nil {
		return nil, err
	}
	return s.blockFetch.FetchSingle(point)
}

// KeepAlive sends a single keep-alive and waits for the reply
func (s *Session) KeepAlive() error {
	if err := s.requireMode(ModeNodeToPeer); err != nil {
		return err
	}
	if s.keepAlive == nil {
		return fmt.Errorf("keep-alive not supported by protocol version %d", s.version)
	}
	return s.keepAlive.KeepAlive()
}

// ClientSession exposes the operations of a node-to-client session
type ClientSession struct {
	session *Session
}

// Session returns the underlying session
func (c *ClientSession) Session() *Session {
	return c.session
}

// GetTip returns the chain tip of the local node
func (c *ClientSession) GetTip() (*common.Tip, error) {
	return c.session.GetTip()
}

// FindIntersect is Session.FindIntersect
func (c *ClientSession) FindIntersect(points []common.Point) (*common.Point, *common.Tip, error) {
	return c.session.FindIntersect(points)
}

// ChainSyncNext is Session.ChainSyncNext
func (c *ClientSession) ChainSyncNext() (*NextResponse, error) {
	return c.session.ChainSyncNext()
}

// HasAgency is Session.HasAgency
func (c *ClientSession) HasAgency() bool {
	return c.session.HasAgency()
}

// GetUtxoByAddress is Session.GetUtxoByAddress
func (c *ClientSession) GetUtxoByAddress(address []byte) ([][]byte, error) {
	return c.session.GetUtxoByAddress(address)
}

// SubmitTx pushes a transaction to the local node. A rejection is not an error: it's returned as a
// non-nil RejectReason
func (c *ClientSession) SubmitTx(tx []byte) (*localtxsubmission.RejectReason, error) {
	if err := c.session.checkOpen(); err != nil {
		return nil, err
	}
	return c.session.submitTxLocal(tx)
}

// Disconnect is Session.Disconnect
func (c *ClientSession) Disconnect() error {
	return c.session.Disconnect()
}

// PeerSession exposes the operations of a node-to-node session
type PeerSession struct {
	session *Session
}

// Session returns the underlying session
func (p *PeerSession) Session() *Session {
	return p.session
}

// GetTip returns the chain tip of the peer
func (p *PeerSession) GetTip() (*common.Tip, error) {
	return p.session.GetTip()
}

// FindIntersect is Session.FindIntersect
func (p *PeerSession) FindIntersect(points []common.Point) (*common.Point, *common.Tip, error) {
	return p.session.FindIntersect(points)
}

// ChainSyncNext is Session.ChainSyncNext
func (p *PeerSession) ChainSyncNext() (*NextResponse, error) {
	return p.session.ChainSyncNext()
}

// HasAgency is Session.HasAgency
func (p *PeerSession) HasAgency() bool {
	return p.session.HasAgency()
}

// FetchBlock is Session.FetchBlock
func (p *PeerSession) FetchBlock(point common.Point) ([]byte, error) {
	return p.session.FetchBlock(point)
}

// SubmitTx offers a transaction to the peer and returns the transaction IDs it acknowledged
func (p *PeerSession) SubmitTx(tx []byte) ([]byte, error) {
	if err := p.session.checkOpen(); err != nil {
		return nil, err
	}
	return p.session.submitTxPeer(tx)
}

// KeepAlive is Session.KeepAlive
func (p *PeerSession) KeepAlive() error {
	return p.session.KeepAlive()
}

// Disconnect is Session.Disconnect
func (p *PeerSession) Disconnect() error {
	return p.session.Disconnect()
}
