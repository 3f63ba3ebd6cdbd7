// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/ecdsa"
	"crypto/x509"
	"net"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/ciphersuite"
)

const defaultMaxFragmentLength = 1200

// PSKStore resolves the identity this client asserts to a given peer
// and the symmetric key bound to a resolved identity, spec.md Section 6
// ("Interface to PSK store"). Unlike the teacher's single PSKCallback,
// this splits identity resolution out so it can be keyed by peer
// address, matching RFC 4279's client role.
type PSKStore interface {
	// GetIdentity returns the identity this client should assert to
	// addr. ok is false if this store has no identity for that peer.
	GetIdentity(addr net.Addr) (identity string, ok bool)
	// GetKey returns the shared key for a previously resolved identity.
	GetKey(identity string) (key []byte, ok bool)
}

// TrustStore verifies a certificate chain presented by the server,
// spec.md Section 6 ("Interface to trust store").
type TrustStore interface {
	Verify(chain []*x509.Certificate) error
}

// HandshakeConfig is the immutable, validated bundle of cipher-suite
// preferences, long-term credentials, trust anchors, and fragmentation
// limit the client driver is built against, spec.md Section 3. It is
// constructed exclusively by Builder.Build and is safe to share across
// drivers.
type HandshakeConfig struct {
	endpoint net.Addr

	cipherSuites       []ciphersuite.ID
	explicitSuiteList  bool

	privateKey  *ecdsa.PrivateKey
	publicKey   *ecdsa.PublicKey
	certificate [][]byte
	sendRawKey  bool

	pskStore   PSKStore
	trustStore TrustStore

	maxFragmentLength int
}

// Endpoint returns the remote address this config was built for.
func (c *HandshakeConfig) Endpoint() net.Addr { return c.endpoint }

// CipherSuites returns the ordered, non-empty list of cipher suites the
// driver will offer, most preferred first.
func (c *HandshakeConfig) CipherSuites() []ciphersuite.ID { return c.cipherSuites }

// HasIdentity reports whether an ECDSA long-term identity was configured.
func (c *HandshakeConfig) HasIdentity() bool { return c.privateKey != nil }

// PrivateKey returns the client's long-term ECDSA private key, or nil.
func (c *HandshakeConfig) PrivateKey() *ecdsa.PrivateKey { return c.privateKey }

// PublicKey returns the client's long-term ECDSA public key, or nil.
func (c *HandshakeConfig) PublicKey() *ecdsa.PublicKey { return c.publicKey }

// Certificate returns the client's X.509 chain (DER-encoded), or nil
// when only a raw public key was configured.
func (c *HandshakeConfig) Certificate() [][]byte { return c.certificate }

// SendRawPublicKey reports whether the client should present its
// identity as a Raw Public Key (RFC 7250) rather than an X.509 chain.
func (c *HandshakeConfig) SendRawPublicKey() bool { return c.sendRawKey }

// PSKStore returns the configured PSK store, or nil.
func (c *HandshakeConfig) PSKStore() PSKStore { return c.pskStore }

// TrustStore returns the configured trust store, or nil.
func (c *HandshakeConfig) TrustStore() TrustStore { return c.trustStore }

// MaxFragmentLength returns the configured per-record handshake fragment
// size limit. ClientDriver does not read it: it emits each outbound
// handshake message whole and leaves fragmentation to the record layer.
func (c *HandshakeConfig) MaxFragmentLength() int { return c.maxFragmentLength }

// Builder builds a HandshakeConfig, enforcing the invariants of
// spec.md Section 4.1. A Builder is single-use: call Build once.
type Builder struct {
	cfg *HandshakeConfig
	err *ConfigError
}

// NewBuilder starts building a HandshakeConfig for the given endpoint.
func NewBuilder(endpoint net.Addr) *Builder {
	return &Builder{cfg: &HandshakeConfig{
		endpoint:          endpoint,
		maxFragmentLength: defaultMaxFragmentLength,
	}}
}

// SupportedCipherSuites overrides the default cipher-suite derivation
// with an explicit, preference-ordered list. Fails InvalidArg if list
// is empty or contains a cipher suite this core treats as a null
// placeholder (none of ciphersuite.Suite's recognized IDs are null, so
// an unrecognized ID is rejected the same way).
func (b *Builder) SupportedCipherSuites(list []ciphersuite.ID) *Builder {
	if b.err != nil {
		return b
	}
	if len(list) == 0 {
		b.err = newInvalidArg(errEmptyCipherSuiteList)
		return b
	}
	for _, id := range list {
		if _, ok := ciphersuite.Suite(id); !ok {
			b.err = newInvalidArg(errNullCipherSuite)
			return b
		}
	}
	b.cfg.cipherSuites = append([]ciphersuite.ID{}, list...)
	b.cfg.explicitSuiteList = true
	return b
}

// Identity configures an ECDSA long-term key pair and, optionally, the
// X.509 chain to present for it. Both privateKey and publicKey must be
// non-nil; fails InvalidArg otherwise. sendRawKey selects whether the
// client presents certChain (RFC 5246) or its raw public key
// (RFC 7250) in the Certificate message.
func (b *Builder) Identity(privateKey *ecdsa.PrivateKey, publicKey *ecdsa.PublicKey, certChain [][]byte, sendRawKey bool) *Builder {
	if b.err != nil {
		return b
	}
	if privateKey == nil || publicKey == nil {
		b.err = newInvalidArg(errIdentityKeyMismatch)
		return b
	}
	b.cfg.privateKey = privateKey
	b.cfg.publicKey = publicKey
	b.cfg.certificate = certChain
	b.cfg.sendRawKey = sendRawKey
	return b
}

// PSKStore enables PSK-family cipher suites, resolved against store.
func (b *Builder) PSKStore(store PSKStore) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.pskStore = store
	return b
}

// TrustStore sets the anchors against which a server's X.509 chain is
// verified.
func (b *Builder) TrustStore(store TrustStore) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.trustStore = store
	return b
}

// MaxFragmentLength overrides the default per-record handshake fragment
// size limit.
func (b *Builder) MaxFragmentLength(n int) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.maxFragmentLength = n
	return b
}

// Build validates the accumulated setters and returns the immutable
// HandshakeConfig, or the first ConfigError encountered (by a setter,
// or by the credential-satisfiability check below), spec.md Section 4.1.
func (b *Builder) Build() (*HandshakeConfig, error) {
	if b.err != nil {
		return nil, b.err
	}

	if !b.cfg.explicitSuiteList {
		b.cfg.cipherSuites = defaultCipherSuites(b.cfg.HasIdentity(), b.cfg.pskStore != nil)
		if len(b.cfg.cipherSuites) == 0 {
			return nil, newInvalidState(errNoSatisfiableCipherSuite)
		}
	}

	for _, id := range b.cfg.cipherSuites {
		suite, _ := ciphersuite.Suite(id)
		if !b.cfg.satisfies(suite) {
			return nil, newInvalidState(errNoSatisfiableCipherSuite)
		}
	}

	return b.cfg, nil
}

// satisfies reports whether c's configured credentials can drive suite,
// spec.md Section 3's invariant ("every suite ... is satisfiable by
// the configured credentials").
func (c *HandshakeConfig) satisfies(suite *ciphersuite.CipherSuite) bool {
	switch suite.KeyExchangeAlgorithm() {
	case ciphersuite.KeyExchangePSK:
		return c.pskStore != nil
	case ciphersuite.KeyExchangeECDHE:
		return c.HasIdentity()
	default:
		return true
	}
}

// defaultCipherSuites derives the default preference list from which
// credentials are configured, spec.md Section 4.1: ECDHE preferred
// over PSK when both are available.
func defaultCipherSuites(hasIdentity, hasPSK bool) []ciphersuite.ID {
	var out []ciphersuite.ID
	if hasIdentity {
		out = append(out, ciphersuite.TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8)
	}
	if hasPSK {
		out = append(out, ciphersuite.TLS_PSK_WITH_AES_128_CCM_8)
	}
	return out
}
