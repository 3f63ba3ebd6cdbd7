// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "github.com/yakcyll/dtls-client-handshake/pkg/protocol"

// Record is a single inbound message handed to ClientDriver.OnRecord by
// the external record layer, spec.md Section 6 ("Inbound interface from
// record layer"). Fragment carries the plaintext record payload; for
// ContentTypeHandshake this is one handshake fragment (possibly a
// partial message), already decrypted if Epoch > 0.
type Record struct {
	ContentType    protocol.ContentType
	Epoch          uint16
	SequenceNumber uint64
	Fragment       []byte
}

// OutboundRecord is a single record the driver wants the record layer
// to send, spec.md Section 6 ("Outbound interface to record layer").
// Message is one of *handshake.Handshake, *protocol.ChangeCipherSpec,
// *protocol.ApplicationData, or *alert.Alert.
type OutboundRecord struct {
	ContentType protocol.ContentType
	Epoch       uint16
	Message     interface{}
}

// Flight is an ordered group of OutboundRecords the record layer treats
// as one retransmission unit, spec.md Section 2/5.
type Flight struct {
	Records          []OutboundRecord
	RetransmitNeeded bool
}
