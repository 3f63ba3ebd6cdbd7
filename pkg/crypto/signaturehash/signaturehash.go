// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package signaturehash negotiates the signature-and-hash algorithm pair
// used to sign/verify ServerKeyExchange and CertificateVerify,
// RFC 5246 Section 7.4.1.4.1.
package signaturehash

import (
	"crypto"
	"errors"
)

// Hash identifies a hash algorithm by its TLS wire value.
type Hash uint8

// Hash algorithms, RFC 5246 Section 7.4.1.4.1.
const (
	HashSHA256 Hash = 4
	HashSHA384 Hash = 5
	HashSHA512 Hash = 6
)

// Signature identifies a signature algorithm by its TLS wire value.
type Signature uint8

// Signature algorithms this core can verify. RSA is intentionally
// omitted: spec.md scopes certificate-based auth to ECDSA only.
const (
	SignatureECDSA Signature = 3
)

// Algorithm is a single signature_algorithms entry (hash, signature).
type Algorithm struct {
	Hash      Hash
	Signature Signature
}

var errNoCommonAlgorithms = errors.New("signaturehash: no mutually supported signature/hash algorithms")

// CryptoHash returns the crypto.Hash corresponding to a.Hash.
func (a Algorithm) CryptoHash() (crypto.Hash, error) {
	switch a.Hash {
	case HashSHA256:
		return crypto.SHA256, nil
	case HashSHA384:
		return crypto.SHA384, nil
	case HashSHA512:
		return crypto.SHA512, nil
	default:
		return 0, errNoCommonAlgorithms
	}
}

// defaultAlgorithms is the client's offered list, most preferred first.
func defaultAlgorithms() []Algorithm {
	return []Algorithm{
		{Hash: HashSHA256, Signature: SignatureECDSA},
		{Hash: HashSHA384, Signature: SignatureECDSA},
		{Hash: HashSHA512, Signature: SignatureECDSA},
	}
}

// ParseSignatureSchemes returns the set of signature/hash algorithms this
// client will offer. A caller-supplied list is validated against what
// this core can actually verify; insecureHashes additionally allows
// SHA-1 had this core implemented it (reserved for parity with the
// teacher's config surface, currently always false-equivalent since
// SHA-1 is never added to the supported set).
func ParseSignatureSchemes(requested []Algorithm, _ bool) ([]Algorithm, error) {
	if len(requested) == 0 {
		return defaultAlgorithms(), nil
	}

	supported := make(map[Algorithm]bool)
	for _, a := range defaultAlgorithms() {
		supported[a] = true
	}

	var out []Algorithm
	for _, a := range requested {
		if supported[a] {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil, errNoCommonAlgorithms
	}
	return out, nil
}

// SelectFromOffered returns the first algorithm in offered (the server's
// CertificateRequest list, preference order preserved) that is present
// in local (the client's configured/supported list). It returns
// ok == false if the client cannot honor any algorithm the server
// offered — the caller must treat that as HandshakeFailure per
// spec.md Section 9 (signature-algorithm capability matching).
func SelectFromOffered(offered, local []Algorithm) (Algorithm, bool) {
	localSet := make(map[Algorithm]bool, len(local))
	for _, a := range local {
		localSet[a] = true
	}
	for _, a := range offered {
		if localSet[a] {
			return a, true
		}
	}
	return Algorithm{}, false
}
