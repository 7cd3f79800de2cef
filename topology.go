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
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
)

// TopologyConfig is the subset of a Cardano node topology file used to find node-to-node peers
type TopologyConfig struct {
	Producers   []TopologyProducer `json:"Producers"`
	LocalRoots  []TopologyRoot     `json:"localRoots"`
	PublicRoots []TopologyRoot     `json:"publicRoots"`
}

// TopologyProducer is a peer entry in the legacy (non-P2P) topology format
type TopologyProducer struct {
	Address string `json:"addr"`
	Port    uint   `json:"port"`
}

type TopologyAccessPoint struct {
	Address string `json:"address"`
	Port    uint   `json:"port"`
}

type TopologyRoot struct {
	AccessPoints []TopologyAccessPoint `json:"accessPoints"`
	Advertise    bool                  `json:"advertise"`
	Valency      uint                  `json:"valency"`
}

func NewTopologyConfigFromFile(path string) (*TopologyConfig, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewTopologyConfigFromReader(dataFile)
}

func NewTopologyConfigFromReader(r io.Reader) (*TopologyConfig, error) {
	t := &TopologyConfig{}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	return t, nil
}

// PeerAddresses returns the host:port of every peer in the topology. Local roots come
// first, then public roots, then legacy producers
func (t *TopologyConfig) PeerAddresses() []string {
	var ret []string
	for _, roots := range [][]TopologyRoot{t.LocalRoots, t.PublicRoots} {
		for _, root := range roots {
			for _, ap := range root.AccessPoints {
				ret = append(ret, joinHostPort(ap.Address, ap.Port))
			}
		}
	}
	for _, producer := range t.Producers {
		ret = append(ret, joinHostPort(producer.Address, producer.Port))
	}
	return ret
}

func joinHostPort(host string, port uint) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}
