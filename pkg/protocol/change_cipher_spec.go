// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

import "errors"

var errInvalidCipherSpec = errors.New("protocol: invalid ChangeCipherSpec message")

// ChangeCipherSpec is the single-byte message that signals a switch to
// the just-negotiated cipher state, RFC 5246 Section 7.1.
type ChangeCipherSpec struct{}

// ContentType returns the content type of a ChangeCipherSpec.
func (c ChangeCipherSpec) ContentType() ContentType {
	return ContentTypeChangeCipherSpec
}

// Marshal encodes the ChangeCipherSpec message.
func (c *ChangeCipherSpec) Marshal() ([]byte, error) {
	return []byte{0x01}, nil
}

// Unmarshal populates the message from encoded data.
func (c *ChangeCipherSpec) Unmarshal(data []byte) error {
	if len(data) != 1 || data[0] != 0x01 {
		return errInvalidCipherSpec
	}
	return nil
}
