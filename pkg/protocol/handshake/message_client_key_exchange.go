// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/zmap/zcrypto/tls"

// KeyExchangeAlgorithm identifies which of the three key-exchange
// strategies of spec.md Section 2 produced a ClientKeyExchange payload.
type KeyExchangeAlgorithm uint8

// KeyExchangeAlgorithm values.
const (
	KeyExchangeAlgorithmECDHE KeyExchangeAlgorithm = iota
	KeyExchangeAlgorithmPSK
	KeyExchangeAlgorithmNull
)

// MessageClientKeyExchange carries the client's contribution to the
// premaster secret, RFC 5246 Section 7.4.7. Algorithm must be set by the
// caller before Marshal/Unmarshal to select which of the three wire
// shapes applies (ECDHE point, PSK identity, or the empty NULL payload).
type MessageClientKeyExchange struct {
	Algorithm KeyExchangeAlgorithm

	// PublicKey is the client's ephemeral ECDH point (ECDHE).
	PublicKey []byte
	// IdentityHint is the PSK identity the client is asserting (PSK).
	IdentityHint []byte
}

// Type returns the Handshake Type.
func (m MessageClientKeyExchange) Type() Type {
	return TypeClientKeyExchange
}

// Marshal encodes the Handshake message.
func (m *MessageClientKeyExchange) Marshal() ([]byte, error) {
	switch m.Algorithm {
	case KeyExchangeAlgorithmECDHE:
		return append([]byte{byte(len(m.PublicKey))}, m.PublicKey...), nil
	case KeyExchangeAlgorithmPSK:
		n := len(m.IdentityHint)
		return append([]byte{byte(n >> 8), byte(n)}, m.IdentityHint...), nil
	case KeyExchangeAlgorithmNull:
		return []byte{}, nil
	default:
		return nil, errInvalidClientKeyExchange
	}
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientKeyExchange) Unmarshal(data []byte) error {
	switch m.Algorithm {
	case KeyExchangeAlgorithmECDHE:
		if len(data) < 1 {
			return errBufferTooSmall
		}
		n := int(data[0])
		if len(data) < 1+n {
			return errBufferTooSmall
		}
		m.PublicKey = append([]byte{}, data[1:1+n]...)
		return nil
	case KeyExchangeAlgorithmPSK:
		if len(data) < 2 {
			return errBufferTooSmall
		}
		n := int(data[0])<<8 | int(data[1])
		if len(data) < 2+n {
			return errBufferTooSmall
		}
		m.IdentityHint = append([]byte{}, data[2:2+n]...)
		return nil
	case KeyExchangeAlgorithmNull:
		if len(data) != 0 {
			return errLengthMismatch
		}
		return nil
	default:
		return errInvalidClientKeyExchange
	}
}

// MakeLog renders this ClientKeyExchange as the zcrypto handshake-log
// shape used by ClientDriver.HandshakeLog.
func (m *MessageClientKeyExchange) MakeLog() *tls.ClientKeyExchange {
	ret := &tls.ClientKeyExchange{}
	raw, err := m.Marshal()
	if err != nil {
		return ret
	}
	ret.Raw = raw
	return ret
}
