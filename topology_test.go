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

package ouroboros_test

import (
	"strings"
	"testing"

	ouroboros "github.com/blinklabs-io/ouroboros-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologyPeerAddresses(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		expected []string
	}{
		{
			name: "legacy producers",
			jsonData: `
{
  "Producers": [
    {
      "addr": "backbone.cardano.iog.io",
      "port": 3001,
      "valency": 2
    }
  ]
}
`,
			expected: []string{"backbone.cardano.iog.io:3001"},
		},
		{
			name: "p2p roots",
			jsonData: `
{
  "localRoots": [
    {
      "accessPoints": [
        {
          "address": "10.0.0.5",
          "port": 6000
        }
      ],
      "advertise": false,
      "valency": 1
    }
  ],
  "publicRoots": [
    {
      "accessPoints": [
        {
          "address": "backbone.cardano.iog.io",
          "port": 3001
        },
        {
          "address": "::1",
          "port": 3002
        }
      ],
      "advertise": false
    }
  ],
  "useLedgerAfterSlot": 99532743
}
`,
			expected: []string{
				"10.0.0.5:6000",
				"backbone.cardano.iog.io:3001",
				"[::1]:3002",
			},
		},
		{
			name:     "empty",
			jsonData: `{}`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			topology, err := ouroboros.NewTopologyConfigFromReader(
				strings.NewReader(test.jsonData),
			)
			require.NoError(t, err)
			assert.Equal(t, test.expected, topology.PeerAddresses())
		})
	}
}

func TestTopologyInvalidJson(t *testing.T) {
	_, err := ouroboros.NewTopologyConfigFromReader(strings.NewReader("{"))
	assert.ErrorContains(t, err, "parse topology")
}

func TestNetworkLookup(t *testing.T) {
	assert.Equal(t, "preview", ouroboros.NetworkByName("preview").Name)
	assert.Equal(t, uint32(1), ouroboros.NetworkByName("preprod").NetworkMagic)
	assert.Equal(
		t,
		ouroboros.NetworkInvalid,
		ouroboros.NetworkByName("nope"),
	)
	mainnet := ouroboros.NetworkByNetworkMagic(764824073)
	assert.Equal(t, "mainnet", mainnet.String())
	assert.Equal(t, uint8(ouroboros.NetworkIdMainnet), mainnet.Id)
	assert.Equal(t, "backbone.cardano.iog.io:3001", mainnet.PublicRoot())
	assert.Empty(t, ouroboros.NetworkTestnet.PublicRoot())
	assert.Equal(
		t,
		ouroboros.NetworkInvalid,
		ouroboros.NetworkByNetworkMagic(12345),
	)
}
