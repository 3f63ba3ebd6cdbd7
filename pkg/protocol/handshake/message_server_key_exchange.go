// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/elliptic"
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/signaturehash"
)

// ecCurveTypeNamedCurve is the only ECCurveType value this core
// negotiates, RFC 8422 Section 5.4.
const ecCurveTypeNamedCurve = 3

// MessageServerKeyExchange is sent when the selected key-exchange
// algorithm requires information beyond the Certificate message,
// RFC 5246 Section 7.4.3. Its wire shape differs by algorithm, so
// IdentityHintOnly must be set by the caller before Unmarshal to select
// the PSK (identity hint only, RFC 4279 Section 3) or ECDHE_ECDSA
// (named curve + point + signature, RFC 8422 Section 5.4) parse.
type MessageServerKeyExchange struct {
	IdentityHintOnly bool

	IdentityHint []byte

	NamedCurve elliptic.CurveID
	PublicKey  []byte

	Algorithm signaturehash.Algorithm
	Signature []byte
}

// Type returns the Handshake Type.
func (m MessageServerKeyExchange) Type() Type {
	return TypeServerKeyExchange
}

// Marshal encodes the Handshake message.
func (m *MessageServerKeyExchange) Marshal() ([]byte, error) {
	if m.IdentityHintOnly {
		return append([]byte{byte(len(m.IdentityHint) >> 8), byte(len(m.IdentityHint))}, m.IdentityHint...), nil
	}

	out := []byte{ecCurveTypeNamedCurve, byte(uint16(m.NamedCurve) >> 8), byte(uint16(m.NamedCurve))}
	out = append(out, byte(len(m.PublicKey)))
	out = append(out, m.PublicKey...)
	out = append(out, byte(m.Algorithm.Hash), byte(m.Algorithm.Signature))
	out = append(out, byte(len(m.Signature)>>8), byte(len(m.Signature)))
	return append(out, m.Signature...), nil
}

// ECDHParams returns the server_ecdh_params encoding (curve type + named
// curve + public point) that is signed over client_random || server_random
// for ECDHE_ECDSA verification, RFC 8422 Section 5.4.
func (m *MessageServerKeyExchange) ECDHParams() []byte {
	out := []byte{ecCurveTypeNamedCurve, byte(uint16(m.NamedCurve) >> 8), byte(uint16(m.NamedCurve))}
	out = append(out, byte(len(m.PublicKey)))
	return append(out, m.PublicKey...)
}

// Unmarshal populates the message from encoded data.
func (m *MessageServerKeyExchange) Unmarshal(data []byte) error {
	if m.IdentityHintOnly {
		if len(data) < 2 {
			return errBufferTooSmall
		}
		n := int(data[0])<<8 | int(data[1])
		if len(data) < 2+n {
			return errBufferTooSmall
		}
		m.IdentityHint = append([]byte{}, data[2:2+n]...)
		return nil
	}

	if len(data) < 4 {
		return errBufferTooSmall
	}
	if data[0] != ecCurveTypeNamedCurve {
		return errInvalidServerKeyExchange
	}
	m.NamedCurve = elliptic.CurveID(uint16(data[1])<<8 | uint16(data[2]))

	n := int(data[3])
	offset := 4
	if len(data) < offset+n {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, data[offset:offset+n]...)
	offset += n

	if len(data) < offset+4 {
		return errBufferTooSmall
	}
	m.Algorithm = signaturehash.Algorithm{
		Hash:      signaturehash.Hash(data[offset]),
		Signature: signaturehash.Signature(data[offset+1]),
	}
	offset += 2

	sigLen := int(data[offset])<<8 | int(data[offset+1])
	offset += 2
	if len(data) < offset+sigLen {
		return errBufferTooSmall
	}
	m.Signature = append([]byte{}, data[offset:offset+sigLen]...)
	return nil
}
