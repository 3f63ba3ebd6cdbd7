// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ciphersuite implements the AEAD cipher suites this core
// negotiates: TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8 and
// TLS_PSK_WITH_AES_128_CCM_8, both defined by RFC 7251.
package ciphersuite

import (
	"crypto/sha256"
	"errors"
	"hash"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/prf"
)

// ID is the two-byte cipher suite identifier, RFC 5246 Section 7.4.1.2.
type ID uint16

// Cipher suite IDs this core can negotiate, RFC 7251 Section 6.
const (
	TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8 ID = 0xC0AC //nolint:stylecheck,revive
	TLS_PSK_WITH_AES_128_CCM_8         ID = 0xC0A8 //nolint:stylecheck,revive
)

var errNotInitialized = errors.New("ciphersuite: attempted to use cipher suite before init")

// KeyExchangeAlgorithm identifies the key agreement a suite performs.
type KeyExchangeAlgorithm uint8

// KeyExchangeAlgorithm values.
const (
	KeyExchangeECDHE KeyExchangeAlgorithm = iota
	KeyExchangePSK
	KeyExchangeNull
)

// AuthenticationType identifies how a suite authenticates the server.
type AuthenticationType uint8

// AuthenticationType values.
const (
	AuthenticationCertificate AuthenticationType = iota
	AuthenticationPSK
)

const (
	aes128KeyLength = 16
	ccmSaltLength   = 4
	ccmMACLength    = 0
)

// CipherSuite describes one negotiable DTLS 1.2 cipher suite and, once
// initialized with key material, performs record encryption/decryption.
type CipherSuite struct {
	id          ID
	keyExchange KeyExchangeAlgorithm
	auth        AuthenticationType
	aead        *CCM
}

// Suite constructs the CipherSuite descriptor for a given ID. It returns
// false if the ID is not one this core supports.
func Suite(id ID) (*CipherSuite, bool) {
	switch id {
	case TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8:
		return &CipherSuite{id: id, keyExchange: KeyExchangeECDHE, auth: AuthenticationCertificate}, true
	case TLS_PSK_WITH_AES_128_CCM_8:
		return &CipherSuite{id: id, keyExchange: KeyExchangePSK, auth: AuthenticationPSK}, true
	default:
		return nil, false
	}
}

// ID returns the cipher suite's wire identifier.
func (c *CipherSuite) ID() ID { return c.id }

// KeyExchangeAlgorithm returns the suite's key-exchange algorithm.
func (c *CipherSuite) KeyExchangeAlgorithm() KeyExchangeAlgorithm { return c.keyExchange }

// AuthenticationType returns how the suite authenticates the server.
func (c *CipherSuite) AuthenticationType() AuthenticationType { return c.auth }

// PRFHash returns the PRF hash function this suite uses for master
// secret/key block/verify_data derivation. All suites in RFC 7251 use
// SHA-256.
func (c *CipherSuite) PRFHash() func() hash.Hash { return sha256.New }

// KeyLength returns the AES key length in bytes.
func (c *CipherSuite) KeyLength() int { return aes128KeyLength }

// IVLength returns the implicit (salt) portion of the CCM nonce.
func (c *CipherSuite) IVLength() int { return ccmSaltLength }

// MACLength returns the MAC key length; zero for AEAD suites, since
// authentication is integral to the AEAD construction.
func (c *CipherSuite) MACLength() int { return ccmMACLength }

// Init derives the AEAD keys from the master secret via
// prf.GenerateEncryptionKeys and prepares the suite for Encrypt/Decrypt.
func (c *CipherSuite) Init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error {
	keys, err := prf.GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom, c.MACLength(), c.KeyLength(), c.IVLength(), c.PRFHash())
	if err != nil {
		return err
	}

	var localKey, localIV, remoteKey, remoteIV []byte
	if isClient {
		localKey, localIV = keys.ClientWriteKey, keys.ClientWriteIV
		remoteKey, remoteIV = keys.ServerWriteKey, keys.ServerWriteIV
	} else {
		localKey, localIV = keys.ServerWriteKey, keys.ServerWriteIV
		remoteKey, remoteIV = keys.ClientWriteKey, keys.ClientWriteIV
	}

	aead, err := NewCCM(localKey, localIV, remoteKey, remoteIV)
	if err != nil {
		return err
	}
	c.aead = aead
	return nil
}

// IsInitialized reports whether Init has already derived key material.
func (c *CipherSuite) IsInitialized() bool {
	return c.aead != nil
}

// Encrypt seals an outbound record's payload. header carries the epoch,
// sequence number, content type and version that, together with the
// payload length, form the CCM additional data, RFC 6347 Section 4.1.2.1 /
// RFC 7251.
func (c *CipherSuite) Encrypt(header RecordHeader, payload []byte) ([]byte, error) {
	if !c.IsInitialized() {
		return nil, errNotInitialized
	}
	return c.aead.Encrypt(header, payload)
}

// Decrypt opens an inbound record's payload.
func (c *CipherSuite) Decrypt(header RecordHeader, payload []byte) ([]byte, error) {
	if !c.IsInitialized() {
		return nil, errNotInitialized
	}
	return c.aead.Decrypt(header, payload)
}
