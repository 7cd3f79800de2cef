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
	"log/slog"
	"os"

	ouroboros "github.com/blinklabs-io/ouroboros-client"
)

// NewLogger returns a text logger on stderr, at debug level when -debug is set
func NewLogger(f *GlobalFlags) *slog.Logger {
	level := slog.LevelInfo
	if f.Debug {
		level = slog.LevelDebug
	}
	return slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	)
}

// CreateSession connects to the configured node and performs the handshake
func CreateSession(
	f *GlobalFlags,
	logger *slog.Logger,
	options ...ouroboros.SessionOptionFunc,
) (*ouroboros.Session, error) {
	endpoint, err := f.Endpoint()
	if err != nil {
		return nil, err
	}
	logger.Debug(
		"connecting",
		"endpoint", endpoint,
		"network_magic", f.NetworkMagic,
		"mode", f.Mode().String(),
	)
	session, err := ouroboros.Connect(
		endpoint,
		f.NetworkMagic,
		f.Mode(),
		append(
			[]ouroboros.SessionOptionFunc{
				ouroboros.WithLogger(logger),
				ouroboros.WithKeepAlive(true),
			},
			options...,
		)...,
	)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", endpoint, err)
	}
	return session, nil
}

// Exit prints the error and exits
func Exit(err error) {
	fmt.Printf("ERROR: %s\n", err)
	os.Exit(1)
}
