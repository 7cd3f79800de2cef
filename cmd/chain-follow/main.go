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

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	ouroboros "github.com/blinklabs-io/ouroboros-client"
	"github.com/blinklabs-io/ouroboros-client/cmd/common"
	ocommon "github.com/blinklabs-io/ouroboros-client/protocol/common"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
)

type chainFollowFlags struct {
	*common.GlobalFlags
	startSlot uint64
	startHash string
	blockJson bool
}

// follower tracks the most recent point so that a reconnect resumes where the last session stopped
type follower struct {
	flags    chainFollowFlags
	logger   *slog.Logger
	points   []ocommon.Point
	marshal  protojson.MarshalOptions
	reported bool
}

func main() {
	f := chainFollowFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.Uint64Var(&f.startSlot, "slot", 0, "slot of the block to start following from")
	f.Flagset.StringVar(&f.startHash, "hash", "", "hash of the block to start following from")
	f.Flagset.BoolVar(&f.blockJson, "json", false, "print each block as utxorpc JSON")
	f.Parse()
	logger := common.NewLogger(f.GlobalFlags)
	fl := &follower{
		flags:   f,
		logger:  logger,
		marshal: protojson.MarshalOptions{},
	}
	if f.startHash != "" {
		hash, err := hex.DecodeString(f.startHash)
		if err != nil {
			common.Exit(fmt.Errorf("invalid start hash: %w", err))
		}
		fl.points = []ocommon.Point{ocommon.NewPoint(f.startSlot, hash)}
	}
	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	if err := fl.run(ctx); err != nil {
		common.Exit(err)
	}
}

func newBackoff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxInterval = 30 * time.Second
	eb.MaxElapsedTime = 0
	return eb
}

// run follows the chain until the context is cancelled, reconnecting after connection failures
func (fl *follower) run(ctx context.Context) error {
	b := newBackoff()
	for {
		err := fl.follow(ctx, b)
		if ctx.Err() != nil {
			fl.logger.Info("stopping")
			return nil
		}
		if errors.Is(err, ouroboros.ErrHandshakeRefused) {
			// Retrying won't change the node's mind
			return err
		}
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		fl.logger.Warn(
			"connection lost, reconnecting",
			"error", err,
			"wait", wait.String(),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// follow runs a single session. It returns when the session fails or the context is cancelled
func (fl *follower) follow(ctx context.Context, b backoff.BackOff) error {
	errorChan := make(chan error, 10)
	session, err := common.CreateSession(
		fl.flags.GlobalFlags,
		fl.logger,
		ouroboros.WithErrorChan(errorChan),
	)
	if err != nil {
		return err
	}
	b.Reset()
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		// Disconnecting unblocks a pending ChainSyncNext
		defer func() {
			_ = session.Disconnect()
		}()
		select {
		case <-egCtx.Done():
			return nil
		case err := <-errorChan:
			return err
		}
	})
	eg.Go(func() error {
		err := fl.sync(egCtx, session)
		if egCtx.Err() != nil {
			return nil
		}
		if err == nil {
			return errors.New("chain-sync stopped")
		}
		return err
	})
	return eg.Wait()
}

func (fl *follower) sync(ctx context.Context, session *ouroboros.Session) error {
	point, tip, err := session.FindIntersect(fl.points)
	if err != nil {
		return err
	}
	if point == nil && len(fl.points) > 0 {
		return fmt.Errorf("no intersection found for %s", fl.points[0])
	}
	fl.logger.Info(
		"following chain",
		"tip_slot", tip.Point.Slot,
		"tip_block", tip.BlockNumber,
	)
	for ctx.Err() == nil {
		resp, err := session.ChainSyncNext()
		if err != nil {
			return err
		}
		fl.handle(resp)
	}
	return nil
}

func (fl *follower) handle(resp *ouroboros.NextResponse) {
	switch resp.Action {
	case ouroboros.ChainSyncActionRollForward:
		block := resp.Block
		fl.points = []ocommon.Point{ocommon.NewPoint(block.Slot, block.Hash.Bytes())}
		fl.reported = false
		if !fl.flags.blockJson {
			fmt.Printf(
				"roll forward: era = %s, slot = %d, block_no = %d, hash = %s, txs = %d\n",
				block.Era,
				block.Slot,
				block.Number,
				block.Hash,
				len(block.TransactionBodies),
			)
			return
		}
		data, err := fl.marshal.Marshal(block.Utxorpc())
		if err != nil {
			fl.logger.Error("failed to marshal block", "error", err)
			return
		}
		fmt.Println(string(data))
	case ouroboros.ChainSyncActionRollBackward:
		fl.points = []ocommon.Point{*resp.Point}
		fmt.Printf("roll backward: slot = %d, hash = %x\n", resp.Point.Slot, resp.Point.Hash)
	case ouroboros.ChainSyncActionAwait:
		if !fl.reported {
			fl.logger.Info("reached tip, waiting for new blocks")
			fl.reported = true
		}
	case ouroboros.ChainSyncActionError:
		fl.logger.Warn(
			"skipping undecodable block",
			"cbor_length", len(resp.BlockCbor),
		)
	}
}
