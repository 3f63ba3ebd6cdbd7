// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package extension implements the ClientHello/ServerHello extensions
// this core negotiates: supported elliptic curves and point formats
// (RFC 8422), signature algorithms (RFC 5246 Section 7.4.1.4.1), and
// certificate type (RFC 7250 Raw Public Keys).
package extension

import (
	"encoding/binary"
	"errors"
)

var (
	errBufferTooSmall = errors.New("extension: buffer too small to contain extension")
	errInvalidData    = errors.New("extension: invalid extension data")
)

// TypeValue is the wire identifier of an extension, RFC 5246 Section 7.4.1.4.
type TypeValue uint16

// Extension type values used by this core.
const (
	SupportedEllipticCurvesTypeValue TypeValue = 10
	SupportedPointFormatsTypeValue   TypeValue = 11
	SignatureAlgorithmsTypeValue     TypeValue = 13
	ClientCertificateTypeTypeValue   TypeValue = 19
	ServerCertificateTypeTypeValue   TypeValue = 20
)

// Extension is a single ClientHello/ServerHello extension.
type Extension interface {
	TypeValue() TypeValue
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Marshal encodes a list of extensions into the wire format of the
// extensions block that trails ClientHello/ServerHello (a uint16 total
// length followed by type/length/value triples).
func Marshal(extensions []Extension) ([]byte, error) {
	var body []byte
	for _, e := range extensions {
		raw, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		header := make([]byte, 4)
		binary.BigEndian.PutUint16(header[0:2], uint16(e.TypeValue()))
		binary.BigEndian.PutUint16(header[2:4], uint16(len(raw)))
		body = append(body, header...)
		body = append(body, raw...)
	}

	out := make([]byte, 2, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(len(body)))
	return append(out, body...), nil
}

// Unmarshal decodes an extensions block into the list of extension types
// this core understands; unrecognized extensions are skipped, matching
// the teacher's permissive ServerHello handling.
func Unmarshal(data []byte) ([]Extension, error) {
	if len(data) < 2 {
		return nil, errBufferTooSmall
	}
	totalLen := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) < totalLen {
		return nil, errBufferTooSmall
	}
	data = data[:totalLen]

	out := []Extension{}
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, errInvalidData
		}
		typeValue := TypeValue(binary.BigEndian.Uint16(data[0:2]))
		length := int(binary.BigEndian.Uint16(data[2:4]))
		if len(data) < 4+length {
			return nil, errInvalidData
		}
		body := data[4 : 4+length]
		data = data[4+length:]

		ext := newExtension(typeValue)
		if ext == nil {
			continue
		}
		if err := ext.Unmarshal(body); err != nil {
			return nil, err
		}
		out = append(out, ext)
	}
	return out, nil
}

func newExtension(t TypeValue) Extension {
	switch t {
	case SupportedEllipticCurvesTypeValue:
		return &SupportedEllipticCurves{}
	case SupportedPointFormatsTypeValue:
		return &SupportedPointFormats{}
	case SignatureAlgorithmsTypeValue:
		return &SignatureAlgorithms{}
	case ClientCertificateTypeTypeValue:
		return &ClientCertificateType{}
	case ServerCertificateTypeTypeValue:
		return &ServerCertificateType{}
	default:
		return nil
	}
}
