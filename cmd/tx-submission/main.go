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

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/ouroboros-client/cmd/common"
	"github.com/blinklabs-io/ouroboros-client/ledger"
)

type txSubmissionFlags struct {
	*common.GlobalFlags
	txFile    string
	rawTxFile string
}

func main() {
	f := txSubmissionFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.StringVar(
		&f.txFile,
		"tx-file",
		"",
		"path to the JSON transaction file to submit",
	)
	f.Flagset.StringVar(
		&f.rawTxFile,
		"raw-tx-file",
		"",
		"path to the raw transaction file to submit",
	)
	f.Parse()
	txBytes, err := loadTx(f)
	if err != nil {
		common.Exit(err)
	}
	tx, err := ledger.DecodeTransaction(txBytes)
	if err != nil {
		common.Exit(fmt.Errorf("failed to parse transaction CBOR: %w", err))
	}
	logger := common.NewLogger(f.GlobalFlags)
	session, err := common.CreateSession(f.GlobalFlags, logger)
	if err != nil {
		common.Exit(err)
	}
	result, err := session.SubmitTx(txBytes)
	if err != nil {
		_ = session.Disconnect()
		common.Exit(fmt.Errorf("failed to submit transaction: %w", err))
	}
	if err := session.Disconnect(); err != nil {
		logger.Warn("failed to close connection", "error", err)
	}
	if result.RejectReason != nil {
		common.Exit(errors.New(result.RejectReason.String()))
	}
	fmt.Printf("Successfully sent %s transaction %s\n", tx.Era, tx.Id)
}

// loadTx reads the transaction from a cardano-cli JSON envelope or a raw CBOR file. A raw file
// holding hex text is decoded as well
func loadTx(f txSubmissionFlags) ([]byte, error) {
	switch {
	case f.txFile != "":
		txData, err := os.ReadFile(f.txFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction file: %w", err)
		}
		var jsonData map[string]string
		if err := json.Unmarshal(txData, &jsonData); err != nil {
			return nil, fmt.Errorf("failed to parse transaction file: %w", err)
		}
		txBytes, err := hex.DecodeString(jsonData["cborHex"])
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		return txBytes, nil
	case f.rawTxFile != "":
		txBytes, err := os.ReadFile(f.rawTxFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction file: %w", err)
		}
		if decoded, err := hex.DecodeString(strings.TrimSpace(string(txBytes))); err == nil {
			return decoded, nil
		}
		return txBytes, nil
	}
	return nil, errors.New("you must specify one of -tx-file or -raw-tx-file")
}
