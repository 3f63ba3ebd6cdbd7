// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// CertificateType is the wire identifier of a certificate encoding,
// RFC 7250 Section 2.
type CertificateType uint8

// CertificateType values, RFC 7250 Section 2.
const (
	CertificateTypeX509          CertificateType = 0
	CertificateTypeRawPublicKey  CertificateType = 2
)

// ClientCertificateType is the ClientHello extension by which the client
// advertises which certificate encodings it can send, RFC 7250 Section 3.
type ClientCertificateType struct {
	// CertificateTypes is the ordered, most-preferred-first list sent in
	// ClientHello. Selected is the single type echoed back by the server
	// in ServerHello; it is populated only when parsing a ServerHello's
	// copy of this extension.
	CertificateTypes []CertificateType
	Selected         *CertificateType
}

// TypeValue returns the extension type.
func (c ClientCertificateType) TypeValue() TypeValue {
	return ClientCertificateTypeTypeValue
}

// Marshal encodes the extension. A non-nil Selected always takes
// precedence, matching how a server's ServerHello echoes a single byte
// while a ClientHello carries the full preference list.
func (c *ClientCertificateType) Marshal() ([]byte, error) {
	if c.Selected != nil {
		return []byte{byte(*c.Selected)}, nil
	}
	out := make([]byte, 1, 1+len(c.CertificateTypes))
	out[0] = byte(len(c.CertificateTypes))
	for _, t := range c.CertificateTypes {
		out = append(out, byte(t))
	}
	return out, nil
}

// Unmarshal populates the extension from encoded data. A single-byte
// body (as sent by a server) is decoded into Selected; a length-prefixed
// list (as sent by a client) is decoded into CertificateTypes.
func (c *ClientCertificateType) Unmarshal(data []byte) error {
	if len(data) == 1 {
		t := CertificateType(data[0])
		c.Selected = &t
		return nil
	}
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}
	for _, b := range data[1 : 1+n] {
		c.CertificateTypes = append(c.CertificateTypes, CertificateType(b))
	}
	return nil
}

// FirstEquals reports whether the extension's first entry (the server's
// Selected value if present, else the first advertised type) equals t —
// the test spec.md Section 4.2 uses to decide RPK applies.
func (c *ClientCertificateType) FirstEquals(t CertificateType) bool {
	if c == nil {
		return false
	}
	if c.Selected != nil {
		return *c.Selected == t
	}
	return len(c.CertificateTypes) > 0 && c.CertificateTypes[0] == t
}

// ServerCertificateType is the server-direction counterpart of
// ClientCertificateType, RFC 7250 Section 3. It shares the same wire
// shape, so it is implemented as a type-distinct alias rather than a
// duplicate struct.
type ServerCertificateType struct {
	ClientCertificateType
}

// TypeValue returns the extension type.
func (s ServerCertificateType) TypeValue() TypeValue {
	return ServerCertificateTypeTypeValue
}
