// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/zmap/zcrypto/tls"

// MessageCertificate carries the peer's X.509 chain (RFC 5246
// Section 7.4.2) or, when Raw Public Keys were negotiated, a single
// SubjectPublicKeyInfo (RFC 7250 Section 3). RawPublicKey must be set by
// the caller before Unmarshal to select which wire shape to decode,
// since the two forms are not self-describing.
type MessageCertificate struct {
	Certificate  [][]byte
	RawPublicKey bool
}

// Type returns the Handshake Type.
func (m MessageCertificate) Type() Type {
	return TypeCertificate
}

// Marshal encodes the Handshake message.
func (m *MessageCertificate) Marshal() ([]byte, error) {
	if m.RawPublicKey {
		if len(m.Certificate) != 1 {
			return nil, errLengthMismatch
		}
		return append(putUint24New(len(m.Certificate[0])), m.Certificate[0]...), nil
	}

	var certsRaw []byte
	for _, cert := range m.Certificate {
		certsRaw = append(certsRaw, putUint24New(len(cert))...)
		certsRaw = append(certsRaw, cert...)
	}
	return append(putUint24New(len(certsRaw)), certsRaw...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificate) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errBufferTooSmall
	}

	if m.RawPublicKey {
		n := int(uint24(data[0:3]))
		if len(data) < 3+n {
			return errBufferTooSmall
		}
		m.Certificate = [][]byte{append([]byte{}, data[3:3+n]...)}
		return nil
	}

	totalLen := int(uint24(data[0:3]))
	data = data[3:]
	if len(data) < totalLen {
		return errBufferTooSmall
	}
	data = data[:totalLen]

	m.Certificate = nil
	for len(data) > 0 {
		if len(data) < 3 {
			return errBufferTooSmall
		}
		n := int(uint24(data[0:3]))
		if len(data) < 3+n {
			return errBufferTooSmall
		}
		m.Certificate = append(m.Certificate, append([]byte{}, data[3:3+n]...))
		data = data[3+n:]
	}
	return nil
}

// MakeLog renders this Certificate as the zcrypto handshake-log shape
// used by ClientDriver.HandshakeLog. It reports the presented chain as
// raw DER, leaf first; parsing into zcrypto's own certificate shape is
// left to the log's consumer.
func (m *MessageCertificate) MakeLog() *tls.Certificates {
	ret := &tls.Certificates{}
	for _, der := range m.Certificate {
		ret.Chain = append(ret.Chain, append([]byte{}, der...))
	}
	return ret
}

func putUint24New(v int) []byte {
	b := make([]byte, 3)
	putUint24(b, uint32(v))
	return b
}
