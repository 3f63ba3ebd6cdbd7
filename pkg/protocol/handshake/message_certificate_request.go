// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/yakcyll/dtls-client-handshake/pkg/crypto/signaturehash"

// ClientCertificateTypeID identifies the kind of certificate the server
// will accept from the client, RFC 5246 Section 7.4.4.
type ClientCertificateTypeID uint8

// ClientCertificateTypeID values this core can present.
const (
	ClientCertificateTypeECDSASign ClientCertificateTypeID = 64
)

// MessageCertificateRequest is sent by a server that wants the client to
// authenticate itself with a certificate, RFC 5246 Section 7.4.4.
type MessageCertificateRequest struct {
	CertificateTypes        []ClientCertificateTypeID
	SignatureHashAlgorithms []signaturehash.Algorithm
}

// Type returns the Handshake Type.
func (m MessageCertificateRequest) Type() Type {
	return TypeCertificateRequest
}

// Marshal encodes the Handshake message.
func (m *MessageCertificateRequest) Marshal() ([]byte, error) {
	out := []byte{byte(len(m.CertificateTypes))}
	for _, t := range m.CertificateTypes {
		out = append(out, byte(t))
	}

	algLen := 2 * len(m.SignatureHashAlgorithms)
	out = append(out, byte(algLen>>8), byte(algLen))
	for _, a := range m.SignatureHashAlgorithms {
		out = append(out, byte(a.Hash), byte(a.Signature))
	}

	// distinguished_names: always empty, this core never matches on CA DN.
	return append(out, 0x00, 0x00), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificateRequest) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	offset := 1
	if len(data) < offset+n {
		return errBufferTooSmall
	}
	for _, b := range data[offset : offset+n] {
		m.CertificateTypes = append(m.CertificateTypes, ClientCertificateTypeID(b))
	}
	offset += n

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	algLen := int(data[offset])<<8 | int(data[offset+1])
	offset += 2
	if len(data) < offset+algLen {
		return errBufferTooSmall
	}
	for i := 0; i+1 < algLen; i += 2 {
		m.SignatureHashAlgorithms = append(m.SignatureHashAlgorithms, signaturehash.Algorithm{
			Hash:      signaturehash.Hash(data[offset+i]),
			Signature: signaturehash.Signature(data[offset+i+1]),
		})
	}
	// distinguished_names is ignored; this core never matches on CA DN.
	return nil
}
