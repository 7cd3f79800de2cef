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

package common

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvSocketPath   = "CARDANO_NODE_SOCKET_PATH"
	EnvAddress      = "CARDANO_NODE_ADDRESS"
	EnvNetwork      = "CARDANO_NETWORK"
	EnvNetworkMagic = "CARDANO_NETWORK_MAGIC"
)

const defaultNetwork = "preview"

// Config holds the connection settings shared by the tools
type Config struct {
	Socket       string `yaml:"socket"`
	Address      string `yaml:"address"`
	Topology     string `yaml:"topology"`
	Network      string `yaml:"network"`
	NetworkMagic uint32 `yaml:"network_magic"`
	NodeToNode   bool   `yaml:"ntn"`
	Debug        bool   `yaml:"debug"`
}

// LoadConfigFromYAML loads a config file on top of the provided config
func LoadConfigFromYAML(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", filePath, err)
	}
	return nil
}

// applyEnv overrides config values from the environment
func applyEnv(cfg *Config) error {
	if v := getEnv(EnvSocketPath); v != "" {
		cfg.Socket = v
	}
	if v := getEnv(EnvAddress); v != "" {
		cfg.Address = v
	}
	if v := getEnv(EnvNetwork); v != "" {
		cfg.Network = v
		// A named network replaces a magic from the config file
		cfg.NetworkMagic = 0
	}
	if v := getEnv(EnvNetworkMagic); v != "" {
		magic, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvNetworkMagic, err)
		}
		cfg.NetworkMagic = uint32(magic)
	}
	return nil
}

func getEnv(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return ""
}
