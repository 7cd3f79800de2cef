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

package ouroboros_mock

import (
	"github.com/blinklabs-io/ouroboros-client/protocol"
	"github.com/blinklabs-io/ouroboros-client/protocol/handshake"
)

const (
	MockNetworkMagic       uint32 = 999999
	MockProtocolVersionNtC uint16 = 14 + handshake.ProtocolVersionNtCOffset
	MockProtocolVersionNtN uint16 = 13
)

type EntryType int

const (
	EntryTypeNone   EntryType = 0
	EntryTypeInput  EntryType = 1
	EntryTypeOutput EntryType = 2
	EntryTypeClose  EntryType = 3
)

// ConversationEntry is a single step of a scripted conversation. Input entries match a message sent by
// the code under test, either by type or by full value. Output entries send one or more messages in a
// single segment
type ConversationEntry struct {
	Type             EntryType
	ProtocolId       uint16
	IsResponse       bool
	OutputMessages   []protocol.Message
	InputMessage     protocol.Message
	InputMessageType uint
	MsgFromCborFunc  protocol.MessageFromCborFunc
}

// ConversationEntryHandshakeRequestGeneric is a pre-defined conversation event that matches a generic
// handshake request from a client
var ConversationEntryHandshakeRequestGeneric = ConversationEntry{
	Type:             EntryTypeInput,
	ProtocolId:       handshake.ProtocolId,
	InputMessageType: handshake.MessageTypeProposeVersions,
}

// ConversationEntryHandshakeNtCResponse is a pre-defined conversation entry for a server NtC handshake response
var ConversationEntryHandshakeNtCResponse = ConversationEntry{
	Type:       EntryTypeOutput,
	ProtocolId: handshake.ProtocolId,
	IsResponse: true,
	OutputMessages: []protocol.Message{
		handshake.NewMsgAcceptVersion(
			MockProtocolVersionNtC,
			handshake.VersionDataNtC9to14(MockNetworkMagic),
		),
	},
}

// ConversationEntryHandshakeNtNResponse is a pre-defined conversation entry for a server NtN handshake response
var ConversationEntryHandshakeNtNResponse = ConversationEntry{
	Type:       EntryTypeOutput,
	ProtocolId: handshake.ProtocolId,
	IsResponse: true,
	OutputMessages: []protocol.Message{
		handshake.NewMsgAcceptVersion(
			MockProtocolVersionNtN,
			handshake.VersionDataNtN11andUp{
				CborNetworkMagic:  MockNetworkMagic,
				CborInitiatorOnly: true,
				CborPeerSharing:   handshake.PeerSharingModeNoPeerSharing,
			},
		),
	},
}

// ConversationEntryClose hangs up the connection
var ConversationEntryClose = ConversationEntry{
	Type: EntryTypeClose,
}

// InputEntry returns a conversation entry that expects a message with the provided value from the code under test
func InputEntry(
	protocolId uint16,
	msg protocol.Message,
	msgFromCborFunc protocol.MessageFromCborFunc,
) ConversationEntry {
	return ConversationEntry{
		Type:            EntryTypeInput,
		ProtocolId:      protocolId,
		InputMessage:    msg,
		MsgFromCborFunc: msgFromCborFunc,
	}
}

// InputTypeEntry returns a conversation entry that expects a message of the provided type from the code under test
func InputTypeEntry(protocolId uint16, msgType uint) ConversationEntry {
	return ConversationEntry{
		Type:             EntryTypeInput,
		ProtocolId:       protocolId,
		InputMessageType: msgType,
	}
}

// OutputEntry returns a conversation entry that sends the provided messages as responses in a single segment
func OutputEntry(protocolId uint16, msgs ...protocol.Message) ConversationEntry {
	return ConversationEntry{
		Type:           EntryTypeOutput,
		ProtocolId:     protocolId,
		IsResponse:     true,
		OutputMessages: msgs,
	}
}
