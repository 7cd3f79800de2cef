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

package localstatequery_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/ouroboros-client/cbor"
	"github.com/blinklabs-io/ouroboros-client/internal/test"
	"github.com/blinklabs-io/ouroboros-client/internal/test/ouroboros_mock"
	"github.com/blinklabs-io/ouroboros-client/muxer"
	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/common"
	"github.com/blinklabs-io/ouroboros-client/protocol/localstatequery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var conversationAcquire = []ouroboros_mock.ConversationEntry{
	ouroboros_mock.InputTypeEntry(
		localstatequery.ProtocolId,
		localstatequery.MessageTypeAcquireVolatileTip,
	),
	ouroboros_mock.OutputEntry(
		localstatequery.ProtocolId,
		localstatequery.NewMsgAcquired(),
	),
}

var conversationCurrentEra = append(
	append([]ouroboros_mock.ConversationEntry{}, conversationAcquire...),
	ouroboros_mock.InputEntry(
		localstatequery.ProtocolId,
		localstatequery.NewMsgQuery([]any{0, []any{2, []any{1}}}),
		localstatequery.NewMsgFromCbor,
	),
	ouroboros_mock.OutputEntry(
		localstatequery.ProtocolId,
		localstatequery.NewMsgResult([]byte{0x06}),
	),
)

func mustEncode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := cbor.Encode(v)
	require.NoError(t, err)
	return data
}

func runTest(
	t *testing.T,
	conversation []ouroboros_mock.ConversationEntry,
	innerFunc func(t *testing.T, client *localstatequery.Client),
) {
	t.Helper()
	defer goleak.VerifyNone(t)
	mockConn := ouroboros_mock.NewConnection(
		ouroboros_mock.ProtocolRoleClient,
		conversation,
	)
	m := muxer.New(mockConn)
	client := localstatequery.NewClient(
		protocol.ProtocolOptions{
			Muxer: m,
			Mode:  protocol.ProtocolModeNodeToClient,
		},
		nil,
	)
	client.Start()
	m.Start()
	innerFunc(t, client)
	select {
	case <-mockConn.DoneChan():
	case <-time.After(2 * time.Second):
		t.Errorf("timed out waiting for mock conversation to complete")
	}
	assert.NoError(t, mockConn.Err())
	client.Protocol.Stop()
	m.Stop()
	_ = mockConn.Close()
}

func TestQueryWithoutAcquire(t *testing.T) {
	runTest(
		t,
		nil,
		func(t *testing.T, client *localstatequery.Client) {
			_, err := client.GetChainPoint()
			assert.ErrorIs(t, err, localstatequery.ErrNotAcquired)
			_, err = client.GetCurrentEra()
			assert.ErrorIs(t, err, localstatequery.ErrNotAcquired)
			assert.ErrorIs(t, client.Release(), localstatequery.ErrNotAcquired)
		},
	)
}

func TestAcquireFailure(t *testing.T) {
	point := common.NewPoint(1234, test.DecodeHexString(
		"9d2c6de8c5b21c2ba8fb4c87a1d3a6f3e5de4ca2e3c5ab1f00cbb8a7b41c5a91",
	))
	runTest(
		t,
		[]ouroboros_mock.ConversationEntry{
			ouroboros_mock.InputEntry(
				localstatequery.ProtocolId,
				localstatequery.NewMsgAcquire(point),
				localstatequery.NewMsgFromCbor,
			),
			ouroboros_mock.OutputEntry(
				localstatequery.ProtocolId,
				localstatequery.NewMsgFailure(localstatequery.AcquireFailurePointTooOld),
			),
		},
		func(t *testing.T, client *localstatequery.Client) {
			err := client.Acquire(&point)
			assert.ErrorIs(t, err, localstatequery.ErrAcquireFailurePointTooOld)
			assert.True(t, client.HasAgency())
		},
	)
}

func TestReAcquire(t *testing.T) {
	conversation := append(
		append([]ouroboros_mock.ConversationEntry{}, conversationAcquire...),
		ouroboros_mock.InputTypeEntry(
			localstatequery.ProtocolId,
			localstatequery.MessageTypeReAcquireVolatileTip,
		),
		ouroboros_mock.OutputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgAcquired(),
		),
		ouroboros_mock.InputTypeEntry(
			localstatequery.ProtocolId,
			localstatequery.MessageTypeRelease,
		),
		ouroboros_mock.InputTypeEntry(
			localstatequery.ProtocolId,
			localstatequery.MessageTypeDone,
		),
	)
	runTest(
		t,
		conversation,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			require.NoError(t, client.Acquire(nil))
			require.NoError(t, client.Stop())
		},
	)
}

func TestGetChainPoint(t *testing.T) {
	expectedPoint := common.NewPoint(
		35197575,
		test.DecodeHexString(
			"9d2c6de8c5b21c2ba8fb4c87a1d3a6f3e5de4ca2e3c5ab1f00cbb8a7b41c5a91",
		),
	)
	conversation := append(
		append([]ouroboros_mock.ConversationEntry{}, conversationAcquire...),
		ouroboros_mock.InputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgQuery([]any{3}),
			localstatequery.NewMsgFromCbor,
		),
		ouroboros_mock.OutputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgResult(mustEncode(t, expectedPoint)),
		),
	)
	runTest(
		t,
		conversation,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			point, err := client.GetChainPoint()
			require.NoError(t, err)
			assert.True(t, point.Equal(expectedPoint))
		},
	)
}

func TestGetCurrentEra(t *testing.T) {
	runTest(
		t,
		conversationCurrentEra,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			era, err := client.GetCurrentEra()
			require.NoError(t, err)
			assert.Equal(t, 6, era)
		},
	)
}

func TestGetSystemStart(t *testing.T) {
	expected := localstatequery.SystemStartResult{
		Year:        2022,
		Day:         150,
		Picoseconds: 0,
	}
	conversation := append(
		append([]ouroboros_mock.ConversationEntry{}, conversationAcquire...),
		ouroboros_mock.InputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgQuery([]any{1}),
			localstatequery.NewMsgFromCbor,
		),
		ouroboros_mock.OutputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgResult(mustEncode(t, expected)),
		),
	)
	runTest(
		t,
		conversation,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			systemStart, err := client.GetSystemStart()
			require.NoError(t, err)
			assert.Equal(t, expected, *systemStart)
		},
	)
}

func TestGetChainBlockNo(t *testing.T) {
	conversation := append(
		append([]ouroboros_mock.ConversationEntry{}, conversationAcquire...),
		ouroboros_mock.InputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgQuery([]any{2}),
			localstatequery.NewMsgFromCbor,
		),
		ouroboros_mock.OutputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgResult(mustEncode(t, []any{1, 8765432})),
		),
	)
	runTest(
		t,
		conversation,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			blockNo, err := client.GetChainBlockNo()
			require.NoError(t, err)
			assert.Equal(t, uint64(8765432), blockNo)
		},
	)
}

func TestGetEpochNo(t *testing.T) {
	conversation := append(
		append([]ouroboros_mock.ConversationEntry{}, conversationCurrentEra...),
		ouroboros_mock.InputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgQuery([]any{0, []any{0, []any{6, []any{1}}}}),
			localstatequery.NewMsgFromCbor,
		),
		ouroboros_mock.OutputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgResult(mustEncode(t, []any{451})),
		),
	)
	runTest(
		t,
		conversation,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			epochNo, err := client.GetEpochNo()
			require.NoError(t, err)
			assert.Equal(t, uint64(451), epochNo)
		},
	)
}

func TestGetEpochNoEraMismatch(t *testing.T) {
	conversation := append(
		append([]ouroboros_mock.ConversationEntry{}, conversationCurrentEra...),
		ouroboros_mock.InputTypeEntry(
			localstatequery.ProtocolId,
			localstatequery.MessageTypeQuery,
		),
		ouroboros_mock.OutputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgResult(mustEncode(t, []any{"Babbage", "Conway"})),
		),
	)
	runTest(
		t,
		conversation,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			_, err := client.GetEpochNo()
			assert.ErrorIs(t, err, localstatequery.ErrEraMismatch)
		},
	)
}

func TestGetUTxOByAddress(t *testing.T) {
	testAddress := test.DecodeHexString(
		"60ecaa5702b9ae8fa7ec37fbe61a4ac485e7106d09bf14c9ec262f4762",
	)
	utxoIdA := localstatequery.UtxoId{Idx: 7}
	utxoIdA.Hash[0] = 0x01
	utxoIdB := localstatequery.UtxoId{Idx: 2}
	utxoIdB.Hash[0] = 0x02
	// Map-form output {0: addr, 1: 234567}
	outputB := mustEncode(t, map[uint]any{0: testAddress, 1: 234567})
	// Legacy array output [addr, 5000000], wrapped as CBOR-in-CBOR
	outputA := mustEncode(t, []any{testAddress, 5000000})
	resultCbor := mustEncode(
		t,
		[]any{
			map[localstatequery.UtxoId]cbor.RawMessage{
				utxoIdB: outputB,
				utxoIdA: mustEncode(t, cbor.WrappedCbor(outputA)),
			},
		},
	)
	conversation := append(
		append([]ouroboros_mock.ConversationEntry{}, conversationCurrentEra...),
		ouroboros_mock.InputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgQuery(
				[]any{0, []any{0, []any{6, []any{6, cbor.Set{testAddress}}}}},
			),
			localstatequery.NewMsgFromCbor,
		),
		ouroboros_mock.OutputEntry(
			localstatequery.ProtocolId,
			localstatequery.NewMsgResult(resultCbor),
		),
	)
	runTest(
		t,
		conversation,
		func(t *testing.T, client *localstatequery.Client) {
			require.NoError(t, client.Acquire(nil))
			utxos, err := client.GetUTxOByAddress([][]byte{testAddress})
			require.NoError(t, err)
			require.Len(t, utxos, 2)
			assert.Equal(t, utxoIdA.Hash, utxos[0].Id.Hash)
			assert.Equal(t, uint32(7), utxos[0].Id.Idx)
			assert.Equal(t, outputA, utxos[0].OutputCbor)
			assert.Equal(t, uint32(2), utxos[1].Id.Idx)
			assert.Equal(t, outputB, utxos[1].OutputCbor)
		},
	)
}
