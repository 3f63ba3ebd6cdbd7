// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// MessageHelloRequest has no body; the server sends it to request that
// the client begin a new handshake, RFC 5246 Section 7.4.1.1. Per
// spec.md Section 4.2, the client driver only honors this when idle.
type MessageHelloRequest struct{}

// Type returns the Handshake Type.
func (m MessageHelloRequest) Type() Type {
	return TypeHelloRequest
}

// Marshal encodes the Handshake message.
func (m *MessageHelloRequest) Marshal() ([]byte, error) {
	return []byte{}, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageHelloRequest) Unmarshal(data []byte) error {
	if len(data) != 0 {
		return errLengthMismatch
	}
	return nil
}
