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

package ledger_test

import (
	"testing"

	"github.com/blinklabs-io/ouroboros-client/ledger"
	"github.com/stretchr/testify/assert"
)

func TestEraById(t *testing.T) {
	assert.Equal(t, ledger.EraByron, ledger.EraById(0))
	assert.Equal(t, ledger.EraConway, ledger.EraById(6))
	assert.Equal(t, ledger.EraFuture, ledger.EraById(7))
	assert.Equal(t, ledger.EraFuture, ledger.EraById(42))
}

func TestEraForBlockType(t *testing.T) {
	tests := []struct {
		blockType uint
		era       ledger.EraTag
	}{
		{ledger.BlockTypeByronEbb, ledger.EraByron},
		{ledger.BlockTypeByronMain, ledger.EraByron},
		{ledger.BlockTypeShelley, ledger.EraShelley},
		{ledger.BlockTypeAllegra, ledger.EraAllegra},
		{ledger.BlockTypeMary, ledger.EraMary},
		{ledger.BlockTypeAlonzo, ledger.EraAlonzo},
		{ledger.BlockTypeBabbage, ledger.EraBabbage},
		{ledger.BlockTypeConway, ledger.EraConway},
		{8, ledger.EraFuture},
	}
	for _, test := range tests {
		assert.Equal(t, test.era, ledger.EraForBlockType(test.blockType))
	}
}

func TestEraString(t *testing.T) {
	assert.Equal(t, "Byron", ledger.EraByron.String())
	assert.Equal(t, "Conway", ledger.EraConway.String())
	assert.Equal(t, "Unknown(9)", ledger.EraTag(9).String())
}
