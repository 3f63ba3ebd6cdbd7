// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "github.com/yakcyll/dtls-client-handshake/pkg/crypto/elliptic"

// SupportedPointFormats is the ClientHello extension listing the EC
// point encodings the client accepts, RFC 8422 Section 5.1.2.
type SupportedPointFormats struct {
	PointFormats []elliptic.CurvePointFormat
}

// TypeValue returns the extension type.
func (s SupportedPointFormats) TypeValue() TypeValue {
	return SupportedPointFormatsTypeValue
}

// Marshal encodes the extension.
func (s *SupportedPointFormats) Marshal() ([]byte, error) {
	out := make([]byte, 1, 1+len(s.PointFormats))
	out[0] = byte(len(s.PointFormats))
	for _, f := range s.PointFormats {
		out = append(out, byte(f))
	}
	return out, nil
}

// Unmarshal populates the extension from encoded data.
func (s *SupportedPointFormats) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}
	for _, b := range data[1 : 1+n] {
		s.PointFormats = append(s.PointFormats, elliptic.CurvePointFormat(b))
	}
	return nil
}
