// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/ecdsa"
	"crypto/x509"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/ciphersuite"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol"
)

// Session is the long-lived negotiated state of one DTLS association,
// spec.md Section 3. It is created before the handshake begins, mutated
// exclusively by ClientDriver for the handshake's duration, and handed
// to the record layer once Active becomes true.
type Session struct {
	Version           protocol.Version
	SessionID         []byte
	CipherSuite       *ciphersuite.CipherSuite
	CompressionMethod *protocol.CompressionMethod

	ReadEpoch  uint16
	WriteEpoch uint16

	MasterSecret []byte

	// PeerIdentity is the X.500 principal of the server's leaf
	// certificate, set only when ECDHE_ECDSA/X.509 was negotiated. It is
	// left empty for Raw Public Keys (no identity is derived from the
	// key) and for PSK/NULL.
	PeerIdentity string

	// PeerCertificate is the server's leaf certificate, set only when
	// ECDHE_ECDSA/X.509 was negotiated.
	PeerCertificate *x509.Certificate
	// PeerECDSAPublicKey is the key ServerKeyExchange's signature is
	// verified against, set for both X.509 and Raw Public Key forms.
	PeerECDSAPublicKey *ecdsa.PublicKey

	SendRawPublicKey    bool
	ReceiveRawPublicKey bool

	Active bool
}

// AdvanceReadEpoch increments the read epoch, spec.md Section 3
// ("read and write epochs advance independently but each
// monotonically"), triggered by an inbound ChangeCipherSpec.
func (s *Session) AdvanceReadEpoch() {
	s.ReadEpoch++
}

// AdvanceWriteEpoch increments the write epoch, triggered by the
// client's own outbound ChangeCipherSpec.
func (s *Session) AdvanceWriteEpoch() {
	s.WriteEpoch++
}
