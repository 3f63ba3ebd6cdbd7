// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"errors"
	"fmt"
)

var (
	errBufferTooSmall            = errors.New("handshake: buffer too small to contain message")
	errCipherSuiteUnset          = errors.New("handshake: cipher suite ID unset")
	errCompressionMethodUnset    = errors.New("handshake: compression method unset")
	errInvalidCompressionMethod  = errors.New("handshake: invalid or unsupported compression method")
	errInvalidHelloVerifyRequest = errors.New("handshake: invalid HelloVerifyRequest")
	errInvalidClientKeyExchange  = errors.New("handshake: invalid ClientKeyExchange")
	errInvalidServerKeyExchange  = errors.New("handshake: invalid ServerKeyExchange")
	errInvalidFragmentRange      = errors.New("handshake: fragment range outside of message bounds")
	errLengthMismatch            = errors.New("handshake: data length does not match expected length")
)

func errUnknownMessageType(t Type) error {
	return fmt.Errorf("handshake: unknown message type %s", t)
}
