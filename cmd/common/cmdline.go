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

// Package common holds the command line, config, and connection handling shared by the tools
package common

import (
	"errors"
	"flag"
	"fmt"
	"os"

	ouroboros "github.com/blinklabs-io/ouroboros-client"
)

type GlobalFlags struct {
	Flagset    *flag.FlagSet
	ConfigFile string
	// Config is the result of merging the config file, environment, and flags
	Config
	flagValues   Config
	networkMagic uint
}

func NewGlobalFlags() *GlobalFlags {
	f := &GlobalFlags{
		Flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.Flagset.StringVar(
		&f.ConfigFile,
		"config",
		"",
		"path to a YAML config file",
	)
	f.Flagset.StringVar(
		&f.flagValues.Socket,
		"socket",
		"",
		"UNIX socket path to connect to",
	)
	f.Flagset.StringVar(
		&f.flagValues.Address,
		"address",
		"",
		"TCP address to connect to in address:port format",
	)
	f.Flagset.StringVar(
		&f.flagValues.Topology,
		"topology",
		"",
		"node topology file to pick a peer from when -address isn't given",
	)
	f.Flagset.BoolVar(
		&f.flagValues.NodeToNode,
		"ntn",
		false,
		"use node-to-node protocol (defaults to node-to-client)",
	)
	f.Flagset.StringVar(
		&f.flagValues.Network,
		"network",
		defaultNetwork,
		"specifies network that node is participating in",
	)
	f.Flagset.UintVar(
		&f.networkMagic,
		"network-magic",
		0,
		"specifies network magic value. this overrides the -network option",
	)
	f.Flagset.BoolVar(&f.flagValues.Debug, "debug", false, "enable debug logging")
	return f
}

// Parse parses the process arguments and exits on failure
func (f *GlobalFlags) Parse() {
	if err := f.ParseArgs(os.Args[1:]); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
}

// ParseArgs parses the provided arguments and builds the effective config. Values from the config
// file are overridden by the environment, and explicitly set flags override both
func (f *GlobalFlags) ParseArgs(args []string) error {
	if err := f.Flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse command args: %w", err)
	}
	cfg := Config{
		Network: defaultNetwork,
	}
	if f.ConfigFile != "" {
		if err := LoadConfigFromYAML(f.ConfigFile, &cfg); err != nil {
			return err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return err
	}
	f.Flagset.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "socket":
			cfg.Socket = f.flagValues.Socket
		case "address":
			cfg.Address = f.flagValues.Address
		case "topology":
			cfg.Topology = f.flagValues.Topology
		case "ntn":
			cfg.NodeToNode = f.flagValues.NodeToNode
		case "network":
			cfg.Network = f.flagValues.Network
			cfg.NetworkMagic = 0
		case "network-magic":
			cfg.NetworkMagic = uint32(f.networkMagic) // #nosec G115
		case "debug":
			cfg.Debug = f.flagValues.Debug
		}
	})
	if cfg.NetworkMagic == 0 {
		network := ouroboros.NetworkByName(cfg.Network)
		if network == ouroboros.NetworkInvalid {
			return fmt.Errorf("invalid network specified: %s", cfg.Network)
		}
		cfg.NetworkMagic = network.NetworkMagic
	}
	f.Config = cfg
	return nil
}

// Mode returns the session mode selected by -ntn
func (f *GlobalFlags) Mode() ouroboros.Mode {
	if f.NodeToNode {
		return ouroboros.ModeNodeToPeer
	}
	return ouroboros.ModeNodeToClient
}

// Endpoint returns the socket path or peer address to connect to. Node-to-node connections without
// an explicit address use the first peer in the topology file, and then the network's public root
func (f *GlobalFlags) Endpoint() (string, error) {
	if !f.NodeToNode {
		if f.Socket == "" {
			return "", errors.New("you must specify -socket for node-to-client connections")
		}
		return f.Socket, nil
	}
	if f.Address != "" {
		return f.Address, nil
	}
	if f.Topology != "" {
		topology, err := ouroboros.NewTopologyConfigFromFile(f.Topology)
		if err != nil {
			return "", err
		}
		if peers := topology.PeerAddresses(); len(peers) > 0 {
			return peers[0], nil
		}
	}
	network := ouroboros.NetworkByNetworkMagic(f.NetworkMagic)
	if root := network.PublicRoot(); root != "" {
		return root, nil
	}
	return "", errors.New("you must specify -address or -topology for node-to-node connections")
}
