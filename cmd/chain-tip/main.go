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
	"fmt"

	"github.com/blinklabs-io/ouroboros-client/cmd/common"
)

func main() {
	f := common.NewGlobalFlags()
	f.Parse()
	logger := common.NewLogger(f)
	session, err := common.CreateSession(f, logger)
	if err != nil {
		common.Exit(err)
	}
	tip, err := session.GetTip()
	if err != nil {
		_ = session.Disconnect()
		common.Exit(err)
	}
	fmt.Print("Current chain tip:\n\n")
	fmt.Printf("Block hash: %x\n", tip.Point.Hash)
	fmt.Printf("Slot number: %d\n", tip.Point.Slot)
	fmt.Printf("Block number: %d\n", tip.BlockNumber)
	if err := session.Disconnect(); err != nil {
		common.Exit(err)
	}
}
