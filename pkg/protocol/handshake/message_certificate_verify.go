// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/signaturehash"
	"github.com/zmap/zcrypto/tls"
)

// MessageCertificateVerify lets a client that presented a certificate
// prove possession of the corresponding private key by signing the
// handshake transcript so far, RFC 5246 Section 7.4.8.
type MessageCertificateVerify struct {
	Algorithm signaturehash.Algorithm
	Signature []byte
}

// Type returns the Handshake Type.
func (m MessageCertificateVerify) Type() Type {
	return TypeCertificateVerify
}

// Marshal encodes the Handshake message.
func (m *MessageCertificateVerify) Marshal() ([]byte, error) {
	out := []byte{byte(m.Algorithm.Hash), byte(m.Algorithm.Signature)}
	out = append(out, byte(len(m.Signature)>>8), byte(len(m.Signature)))
	return append(out, m.Signature...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificateVerify) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return errBufferTooSmall
	}
	m.Algorithm = signaturehash.Algorithm{
		Hash:      signaturehash.Hash(data[0]),
		Signature: signaturehash.Signature(data[1]),
	}
	n := int(data[2])<<8 | int(data[3])
	if len(data) < 4+n {
		return errBufferTooSmall
	}
	m.Signature = append([]byte{}, data[4:4+n]...)
	return nil
}

// MakeLog renders this CertificateVerify as the zcrypto handshake-log
// shape used by ClientDriver.HandshakeLog.
func (m *MessageCertificateVerify) MakeLog() *tls.CertificateVerify {
	ret := &tls.CertificateVerify{}
	ret.Signature = append([]byte{}, m.Signature...)
	return ret
}
