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

package handshake

import "errors"

// ErrHandshakeRefused is returned when the peer refuses all of our proposed versions
var ErrHandshakeRefused = errors.New("handshake refused")

// ErrNetworkMagicMismatch is returned when the peer accepts with a different network magic
var ErrNetworkMagicMismatch = errors.New("network magic mismatch")

// ErrUnknownVersion is returned when the peer accepts a version that we did not propose
var ErrUnknownVersion = errors.New("peer accepted unknown protocol version")
