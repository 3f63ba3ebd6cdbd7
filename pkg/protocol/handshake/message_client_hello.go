// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/yakcyll/dtls-client-handshake/pkg/protocol"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/extension"
)

// MessageClientHello is the first message a client sends after deciding
// to resume or negotiate a new session, RFC 5246 Section 7.4.1.2.
type MessageClientHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte
	Cookie    []byte

	CipherSuiteIDs     []uint16
	CompressionMethods []*protocol.CompressionMethod
	Extensions         []extension.Extension
}

// Type returns the Handshake Type.
func (m MessageClientHello) Type() Type {
	return TypeClientHello
}

// Marshal encodes the Handshake message.
func (m *MessageClientHello) Marshal() ([]byte, error) {
	out := make([]byte, 2, 2+RandomLength)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor

	rand := m.Random.MarshalFixed()
	out = append(out, rand[:]...)

	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)

	out = append(out, byte(len(m.Cookie)))
	out = append(out, m.Cookie...)

	cipherSuites := make([]byte, 2+2*len(m.CipherSuiteIDs))
	binary.BigEndian.PutUint16(cipherSuites, uint16(2*len(m.CipherSuiteIDs)))
	for i, id := range m.CipherSuiteIDs {
		binary.BigEndian.PutUint16(cipherSuites[2+2*i:], id)
	}
	out = append(out, cipherSuites...)

	out = append(out, byte(len(m.CompressionMethods)))
	for _, c := range m.CompressionMethods {
		out = append(out, byte(c.ID))
	}

	extensions, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}

	return append(out, extensions...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientHello) Unmarshal(data []byte) error {
	if len(data) < 2+RandomLength {
		return errBufferTooSmall
	}

	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	var random [RandomLength]byte
	copy(random[:], data[2:])
	m.Random.UnmarshalFixed(random)

	offset := 2 + RandomLength
	if len(data) <= offset {
		return errBufferTooSmall
	}
	n := int(data[offset])
	offset++
	if len(data) < offset+n {
		return errBufferTooSmall
	}
	m.SessionID = append([]byte{}, data[offset:offset+n]...)
	offset += n

	if len(data) <= offset {
		return errBufferTooSmall
	}
	n = int(data[offset])
	offset++
	if len(data) < offset+n {
		return errBufferTooSmall
	}
	m.Cookie = append([]byte{}, data[offset:offset+n]...)
	offset += n

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	cipherSuiteLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+cipherSuiteLen {
		return errBufferTooSmall
	}
	for i := 0; i+1 < cipherSuiteLen; i += 2 {
		m.CipherSuiteIDs = append(m.CipherSuiteIDs, binary.BigEndian.Uint16(data[offset+i:]))
	}
	offset += cipherSuiteLen

	if len(data) <= offset {
		return errBufferTooSmall
	}
	n = int(data[offset])
	offset++
	if len(data) < offset+n {
		return errBufferTooSmall
	}
	for _, b := range data[offset : offset+n] {
		if cm, ok := protocol.CompressionMethods()[protocol.CompressionMethodID(b)]; ok {
			m.CompressionMethods = append(m.CompressionMethods, cm)
		}
	}
	offset += n

	if len(data) <= offset {
		m.Extensions = []extension.Extension{}
		return nil
	}
	extensions, err := extension.Unmarshal(data[offset:])
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}
