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

package chainsync

import "errors"

// ErrIntersectNotFound is used by callers that treat a missing intersection as a failure. FindIntersect
// itself reports it as a nil point
var ErrIntersectNotFound = errors.New("chain intersection not found")

// ErrUnexpectedMessage is returned when the server replies with a message that is legal but meaningless
// for the request
var ErrUnexpectedMessage = errors.New("unexpected chain-sync message")
