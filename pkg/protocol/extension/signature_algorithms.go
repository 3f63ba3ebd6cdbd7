// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/binary"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/signaturehash"
)

// SignatureAlgorithms is the ClientHello extension listing the
// signature/hash algorithm pairs the client supports, used to select the
// CertificateVerify algorithm and to validate a server's
// CertificateRequest, RFC 5246 Section 7.4.1.4.1.
type SignatureAlgorithms struct {
	SignatureHashAlgorithms []signaturehash.Algorithm
}

// TypeValue returns the extension type.
func (s SignatureAlgorithms) TypeValue() TypeValue {
	return SignatureAlgorithmsTypeValue
}

// Marshal encodes the extension.
func (s *SignatureAlgorithms) Marshal() ([]byte, error) {
	out := make([]byte, 2, 2+2*len(s.SignatureHashAlgorithms))
	binary.BigEndian.PutUint16(out, uint16(2*len(s.SignatureHashAlgorithms)))
	for _, a := range s.SignatureHashAlgorithms {
		out = append(out, byte(a.Hash), byte(a.Signature))
	}
	return out, nil
}

// Unmarshal populates the extension from encoded data.
func (s *SignatureAlgorithms) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) < n {
		return errBufferTooSmall
	}
	for i := 0; i+1 < n; i += 2 {
		s.SignatureHashAlgorithms = append(s.SignatureHashAlgorithms, signaturehash.Algorithm{
			Hash:      signaturehash.Hash(data[i]),
			Signature: signaturehash.Signature(data[i+1]),
		})
	}
	return nil
}
