// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/binary"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/elliptic"
)

// SupportedEllipticCurves is the ClientHello extension listing the named
// curves the client is willing to use, RFC 8422 Section 5.1.1.
type SupportedEllipticCurves struct {
	EllipticCurves []elliptic.CurveID
}

// TypeValue returns the extension type.
func (s SupportedEllipticCurves) TypeValue() TypeValue {
	return SupportedEllipticCurvesTypeValue
}

// Marshal encodes the extension.
func (s *SupportedEllipticCurves) Marshal() ([]byte, error) {
	out := make([]byte, 2, 2+2*len(s.EllipticCurves))
	binary.BigEndian.PutUint16(out, uint16(2*len(s.EllipticCurves)))
	for _, c := range s.EllipticCurves {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(c))
		out = append(out, b...)
	}
	return out, nil
}

// Unmarshal populates the extension from encoded data.
func (s *SupportedEllipticCurves) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) < n {
		return errBufferTooSmall
	}
	for i := 0; i+1 < n; i += 2 {
		s.EllipticCurves = append(s.EllipticCurves, elliptic.CurveID(binary.BigEndian.Uint16(data[i:i+2])))
	}
	return nil
}
