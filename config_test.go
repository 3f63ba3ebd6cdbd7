// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"net"
	"reflect"
	"testing"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/ciphersuite"
)

type staticPSKStore struct {
	identity string
	key      []byte
}

func (s *staticPSKStore) GetIdentity(net.Addr) (string, bool) { return s.identity, true }
func (s *staticPSKStore) GetKey(identity string) ([]byte, bool) {
	if identity != s.identity {
		return nil, false
	}
	return s.key, true
}

func testEndpoint() net.Addr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 4433}
}

func testIdentity(t *testing.T) (*ecdsa.PrivateKey, *ecdsa.PublicKey) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate identity: %v", err)
	}
	return priv, &priv.PublicKey
}

func TestBuilderPSKOnlyDefaultSuites(t *testing.T) {
	cfg, err := NewBuilder(testEndpoint()).
		PSKStore(&staticPSKStore{identity: "ID", key: []byte("KEY")}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []ciphersuite.ID{ciphersuite.TLS_PSK_WITH_AES_128_CCM_8}
	if !reflect.DeepEqual(cfg.CipherSuites(), want) {
		t.Errorf("CipherSuites: got %v, want %v", cfg.CipherSuites(), want)
	}
}

func TestBuilderECDHEOnlyDefaultSuites(t *testing.T) {
	priv, pub := testIdentity(t)
	cfg, err := NewBuilder(testEndpoint()).
		Identity(priv, pub, nil, false).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []ciphersuite.ID{ciphersuite.TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8}
	if !reflect.DeepEqual(cfg.CipherSuites(), want) {
		t.Errorf("CipherSuites: got %v, want %v", cfg.CipherSuites(), want)
	}
}

func TestBuilderBothCredentialsPrefersECDHE(t *testing.T) {
	priv, pub := testIdentity(t)
	cfg, err := NewBuilder(testEndpoint()).
		Identity(priv, pub, nil, false).
		PSKStore(&staticPSKStore{identity: "ID", key: []byte("KEY")}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []ciphersuite.ID{
		ciphersuite.TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8,
		ciphersuite.TLS_PSK_WITH_AES_128_CCM_8,
	}
	if !reflect.DeepEqual(cfg.CipherSuites(), want) {
		t.Errorf("CipherSuites: got %v, want %v", cfg.CipherSuites(), want)
	}
}

func TestBuilderExplicitECDHESuiteWithoutIdentityFails(t *testing.T) {
	_, err := NewBuilder(testEndpoint()).
		SupportedCipherSuites([]ciphersuite.ID{ciphersuite.TLS_ECDHE_ECDSA_WITH_AES_128_CCM_8}).
		Build()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != InvalidState {
		t.Fatalf("Build: got %v, want InvalidState ConfigError", err)
	}
}

func TestBuilderNullOrEmptySuiteListFailsInvalidArg(t *testing.T) {
	_, err := NewBuilder(testEndpoint()).
		SupportedCipherSuites(nil).
		Build()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != InvalidArg {
		t.Fatalf("Build (empty list): got %v, want InvalidArg ConfigError", err)
	}

	_, err = NewBuilder(testEndpoint()).
		SupportedCipherSuites([]ciphersuite.ID{0xFFFF}).
		Build()
	if !errors.As(err, &cfgErr) || cfgErr.Kind != InvalidArg {
		t.Fatalf("Build (null suite): got %v, want InvalidArg ConfigError", err)
	}
}
