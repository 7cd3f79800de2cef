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
	"errors"

	"github.com/blinklabs-io/ouroboros-client/protocol/handshake"
)

// ErrConnect is returned when the connection to the node can't be established
var ErrConnect = errors.New("connect failed")

// ErrHandshakeRefused is returned when the peer refuses our versions or runs on another network
var ErrHandshakeRefused = handshake.ErrHandshakeRefused

// ErrWrongMode is returned when an operation is not available in the session's mode
var ErrWrongMode = errors.New("operation not available in this session mode")

// ErrSessionClosed is returned for any operation on a session after Disconnect
var ErrSessionClosed = errors.New("session is closed")

// ErrInvalidNetworkMagic is returned when no network magic was configured
var ErrInvalidNetworkMagic = errors.New("invalid network magic")
