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

package txsubmission

import "errors"

var (
	// ErrUnknownTxId is returned when the server requests a transaction that was never offered
	ErrUnknownTxId = errors.New("server requested a transaction that was not offered")
	// ErrTxSubmissionDone is returned by SubmitTx once a previous submission has ended the protocol
	// with Done. The protocol can't be restarted on the same connection
	ErrTxSubmissionDone = errors.New("tx-submission protocol has already finished")
)
