// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package prf implements the TLS 1.2 pseudorandom function (RFC 5246
// Section 5) and the handful of derived values the client driver needs
// from it: the premaster secret, the master secret, the key block, and
// both directions' verify_data.
package prf

import (
	"crypto/hmac"
	"errors"
	"hash"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/elliptic"
)

var errPRFHashOperationNotSet = errors.New("prf: hash function not set")

const (
	masterSecretLength      = 48
	verifyDataLength        = 12
	masterSecretLabel       = "master secret"
	keyExpansionLabel       = "key expansion"
	clientFinishedLabel     = "client finished"
	serverFinishedLabel     = "server finished"
)

// PreMasterSecret computes the ECDHE premaster secret as the raw
// X-coordinate of the shared point, RFC 8422 Section 5.10.
func PreMasterSecret(publicKey, privateKey []byte, curve elliptic.Curve) ([]byte, error) {
	return curve.ComputeSecret(privateKey, publicKey)
}

// PSKPreMasterSecret builds the RFC 4279 Section 2 premaster secret:
// uint16(len(Z)) || Z || uint16(len(psk)) || psk, where Z is an
// all-zero buffer the same length as the PSK.
func PSKPreMasterSecret(psk []byte) []byte {
	out := make([]byte, 0, 4+2*len(psk))
	out = append(out, byte(len(psk)>>8), byte(len(psk)))
	out = append(out, make([]byte, len(psk))...)
	out = append(out, byte(len(psk)>>8), byte(len(psk)))
	out = append(out, psk...)
	return out
}

// pHash implements P_hash(secret, seed) of RFC 5246 Section 5, expanding
// to the requested number of bytes.
func pHash(secret, seed []byte, requestedLength int, hashFunc func() hash.Hash) ([]byte, error) {
	hmacHash := hmac.New(hashFunc, secret)

	var err error
	writeOrPanic := func(w interface{ Write([]byte) (int, error) }, p []byte) {
		if _, werr := w.Write(p); werr != nil {
			err = werr
		}
	}

	writeOrPanic(hmacHash, seed)
	if err != nil {
		return nil, err
	}
	aCurrent := hmacHash.Sum(nil)

	out := make([]byte, 0, requestedLength)
	for len(out) < requestedLength {
		hmacHash.Reset()
		writeOrPanic(hmacHash, aCurrent)
		writeOrPanic(hmacHash, seed)
		if err != nil {
			return nil, err
		}
		out = append(out, hmacHash.Sum(nil)...)

		hmacHash.Reset()
		writeOrPanic(hmacHash, aCurrent)
		if err != nil {
			return nil, err
		}
		aCurrent = hmacHash.Sum(nil)
	}

	return out[:requestedLength], nil
}

// MasterSecret derives the 48-byte master secret from the premaster
// secret, RFC 5246 Section 8.1:
//
//	master_secret = PRF(pre_master_secret, "master secret",
//	                     ClientHello.random + ServerHello.random)
func MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, hashFunc func() hash.Hash) ([]byte, error) {
	seed := append(append([]byte(masterSecretLabel), clientRandom...), serverRandom...)
	return pHash(preMasterSecret, seed, masterSecretLength, hashFunc)
}

// EncryptionKeys holds the key block derived from the master secret,
// RFC 5246 Section 6.3. MAC keys are empty for the AEAD cipher suites
// this core negotiates (TLS_*_CCM_8), which derive authentication
// entirely from the AEAD construction.
type EncryptionKeys struct {
	MasterSecret   []byte
	ClientMACKey   []byte
	ServerMACKey   []byte
	ClientWriteKey []byte
	ServerWriteKey []byte
	ClientWriteIV  []byte
	ServerWriteIV  []byte
}

// GenerateEncryptionKeys expands the master secret into the key block:
//
//	key_block = PRF(SecurityParameters.master_secret,
//	                 "key expansion",
//	                 SecurityParameters.server_random +
//	                 SecurityParameters.client_random)
func GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom []byte, macLen, keyLen, ivLen int, hashFunc func() hash.Hash) (*EncryptionKeys, error) {
	seed := append(append([]byte(keyExpansionLabel), serverRandom...), clientRandom...)
	keyBlockLen := 2*macLen + 2*keyLen + 2*ivLen
	keyBlock, err := pHash(masterSecret, seed, keyBlockLen, hashFunc)
	if err != nil {
		return nil, err
	}

	offset := 0
	clientMACKey := keyBlock[offset : offset+macLen]
	offset += macLen
	serverMACKey := keyBlock[offset : offset+macLen]
	offset += macLen
	clientWriteKey := keyBlock[offset : offset+keyLen]
	offset += keyLen
	serverWriteKey := keyBlock[offset : offset+keyLen]
	offset += keyLen
	clientWriteIV := keyBlock[offset : offset+ivLen]
	offset += ivLen
	serverWriteIV := keyBlock[offset : offset+ivLen]

	return &EncryptionKeys{
		MasterSecret:   masterSecret,
		ClientMACKey:   clientMACKey,
		ServerMACKey:   serverMACKey,
		ClientWriteKey: clientWriteKey,
		ServerWriteKey: serverWriteKey,
		ClientWriteIV:  clientWriteIV,
		ServerWriteIV:  serverWriteIV,
	}, nil
}

// VerifyDataClient computes the client's verify_data, RFC 5246
// Section 7.4.9:
//
//	PRF(master_secret, "client finished", Hash(handshake_messages))
func VerifyDataClient(masterSecret, handshakeBodies []byte, hashFunc func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, clientFinishedLabel, hashFunc)
}

// VerifyDataServer computes the server's expected verify_data with the
// "server finished" label, used by the client driver to validate the
// server's Finished message (spec.md Section 4.4).
func VerifyDataServer(masterSecret, handshakeBodies []byte, hashFunc func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, serverFinishedLabel, hashFunc)
}

func verifyData(masterSecret, handshakeBodies []byte, label string, hashFunc func() hash.Hash) ([]byte, error) {
	if hashFunc == nil {
		return nil, errPRFHashOperationNotSet
	}
	h := hashFunc()
	if _, err := h.Write(handshakeBodies); err != nil {
		return nil, err
	}
	seed := append([]byte(label), h.Sum(nil)...)
	return pHash(masterSecret, seed, verifyDataLength, hashFunc)
}
