// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/yakcyll/dtls-client-handshake/pkg/protocol"

// MessageHelloVerifyRequest is sent by the server to require that the
// client demonstrate reachability at its claimed address by echoing a
// cookie, RFC 6347 Section 4.2.1.
type MessageHelloVerifyRequest struct {
	Version protocol.Version
	Cookie  []byte
}

// Type returns the Handshake Type.
func (m MessageHelloVerifyRequest) Type() Type {
	return TypeHelloVerifyRequest
}

// Marshal encodes the Handshake message.
func (m *MessageHelloVerifyRequest) Marshal() ([]byte, error) {
	out := []byte{m.Version.Major, m.Version.Minor, byte(len(m.Cookie))}
	return append(out, m.Cookie...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageHelloVerifyRequest) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errInvalidHelloVerifyRequest
	}
	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	n := int(data[2])
	if len(data) < 3+n {
		return errInvalidHelloVerifyRequest
	}
	m.Cookie = append([]byte{}, data[3:3+n]...)
	return nil
}
