// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package elliptic implements the named-curve ECDHE primitive injected
// into the ECDHE_ECDSA key-exchange strategy. It hides the concrete
// curve behind a single Curve interface so the driver never branches on
// which curve was negotiated beyond dispatching to it.
package elliptic

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"
)

// CurveID is the IANA "Supported Groups" identifier for a named curve,
// RFC 8422 Section 5.1.1.
type CurveID uint16

// Named curves this core can negotiate.
const (
	P256   CurveID = 23
	P384   CurveID = 24
	X25519 CurveID = 29
)

func (c CurveID) String() string {
	switch c {
	case P256:
		return "P-256"
	case P384:
		return "P-384"
	case X25519:
		return "X25519"
	default:
		return "Unknown"
	}
}

// CurvePointFormat is the wire identifier for an EC point encoding,
// RFC 8422 Section 5.1.2. This core only ever offers Uncompressed.
type CurvePointFormat uint8

// CurvePointFormatUncompressed is the only point format this core offers.
const CurvePointFormatUncompressed CurvePointFormat = 0

var errUnsupportedCurve = errors.New("elliptic: unsupported named curve")

// Curve is the ECDH primitive the ECDHE_ECDSA strategy is built against,
// matching the "Interface to ECDH primitive" of spec.md Section 6.
type Curve interface {
	// NewKeypair generates an ephemeral key pair on this curve, returning
	// the private scalar and the wire-encoded public point.
	NewKeypair() (private []byte, public []byte, err error)
	// ComputeSecret derives the shared X-coordinate from a local private
	// scalar and a peer's wire-encoded public point.
	ComputeSecret(private []byte, peerPublic []byte) ([]byte, error)
}

// CurveByID returns the Curve implementation for a named curve, or an
// error if the curve is unknown to this core (spec.md Section 4.2,
// ServerKeyExchange handling: "fail HandshakeFailure if the curve is
// unknown").
func CurveByID(id CurveID) (Curve, error) {
	switch id {
	case X25519:
		return ecdhCurve{ecdh.X25519()}, nil
	case P256:
		return ecdhCurve{ecdh.P256()}, nil
	case P384:
		return ecdhCurve{ecdh.P384()}, nil
	default:
		return nil, errUnsupportedCurve
	}
}

// ecdhCurve adapts the standard library's crypto/ecdh to the Curve
// interface, so X25519 and the NIST curves share one implementation.
type ecdhCurve struct {
	curve ecdh.Curve
}

func (e ecdhCurve) NewKeypair() ([]byte, []byte, error) {
	key, err := e.curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return key.Bytes(), key.PublicKey().Bytes(), nil
}

func (e ecdhCurve) ComputeSecret(private []byte, peerPublic []byte) ([]byte, error) {
	priv, err := e.curve.NewPrivateKey(private)
	if err != nil {
		return nil, err
	}
	pub, err := e.curve.NewPublicKey(peerPublic)
	if err != nil {
		return nil, err
	}
	return priv.ECDH(pub)
}
