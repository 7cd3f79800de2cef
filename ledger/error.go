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

package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when raw bytes cannot be decoded as a ledger structure
	ErrDecode = errors.New("ledger decode error")

	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrUnknownOutputType      = errors.New("unknown transaction output type")
)

func decodeError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecode, what, err)
}
