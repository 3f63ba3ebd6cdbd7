// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"errors"
	"fmt"

	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/alert"
)

// Sentinel configuration errors, surfaced directly from Builder.Build.
var (
	errEmptyCipherSuiteList     = errors.New("dtls: supported cipher suite list must not be empty")
	errNullCipherSuite          = errors.New("dtls: null cipher suite is not a valid configuration choice")
	errIdentityKeyMismatch      = errors.New("dtls: identity requires both a private key and a public key/certificate")
	errNoSatisfiableCipherSuite = errors.New("dtls: no configured cipher suite is satisfiable by the supplied credentials")
)

// ConfigError reports a problem building a HandshakeConfig: either a
// single bad argument to a setter (InvalidArg) or a builder whose
// overall state can't produce a usable config (InvalidState),
// spec.md Section 7.
type ConfigError struct {
	Kind ConfigErrorKind
	Err  error
}

// ConfigErrorKind distinguishes the two ConfigError variants.
type ConfigErrorKind uint8

// ConfigErrorKind values.
const (
	InvalidArg ConfigErrorKind = iota
	InvalidState
)

func (e *ConfigError) Error() string {
	switch e.Kind {
	case InvalidArg:
		return fmt.Sprintf("dtls: invalid argument: %v", e.Err)
	case InvalidState:
		return fmt.Sprintf("dtls: invalid configuration state: %v", e.Err)
	default:
		return fmt.Sprintf("dtls: config error: %v", e.Err)
	}
}

func (e *ConfigError) Unwrap() error { return e.Err }

func newInvalidArg(err error) *ConfigError   { return &ConfigError{Kind: InvalidArg, Err: err} }
func newInvalidState(err error) *ConfigError { return &ConfigError{Kind: InvalidState, Err: err} }

// HandshakeErrorKind classifies why a handshake was aborted, spec.md
// Section 7.
type HandshakeErrorKind uint8

// HandshakeErrorKind values.
const (
	HandshakeFailureKind HandshakeErrorKind = iota
	DecryptErrorKind
	CertificateErrorKind
	MalformedMessageKind
)

// HandshakeError is returned by ClientDriver.Start/OnRecord when the
// handshake cannot continue. It always carries the alert.Description
// that was (or would be) sent on the wire, RFC 5246 Section 7.2.
type HandshakeError struct {
	Kind        HandshakeErrorKind
	Description alert.Description
	Err         error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("dtls: handshake failure (%s): %v", e.Description, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

func newHandshakeError(kind HandshakeErrorKind, desc alert.Description, err error) *HandshakeError {
	return &HandshakeError{Kind: kind, Description: desc, Err: err}
}

// AlertError wraps a fatal alert.Alert received from the peer so it can
// be returned as the terminal error of a handshake, spec.md Section 7
// ("All fatal alerts close the handshake").
type AlertError struct {
	Alert alert.Alert
}

func (e *AlertError) Error() string {
	return fmt.Sprintf("dtls: received %s", e.Alert.String())
}
