// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"net"

	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

// strategy is the shared output contract of the three key-exchange
// variants of spec.md Section 2: each produces a premaster secret and a
// ClientKeyExchange payload. Strategies are pure over a borrowed
// context and hold no back-pointer to ClientDriver, per spec.md
// Section 9 ("Cyclic references ... avoided by making strategies pure
// over a borrowed context").
type strategy interface {
	// clientKeyExchange builds this strategy's ClientKeyExchange message
	// and computes the premaster secret, given the peer address (for PSK
	// identity resolution) and the server's key-exchange parameters
	// gathered during the handshake so far.
	clientKeyExchange(peerAddr net.Addr, serverKeyExchange *handshake.MessageServerKeyExchange) (*handshake.MessageClientKeyExchange, []byte, error)
}

// strategyFor selects the key-exchange strategy for a negotiated cipher
// suite's KeyExchangeAlgorithm, wired against the resources the config
// makes available.
func strategyFor(cfg *HandshakeConfig) map[handshake.KeyExchangeAlgorithm]strategy {
	return map[handshake.KeyExchangeAlgorithm]strategy{
		handshake.KeyExchangeAlgorithmECDHE: &ecdheECDSAStrategy{},
		handshake.KeyExchangeAlgorithmPSK:   &pskStrategy{cfg: cfg},
		handshake.KeyExchangeAlgorithmNull:  &nullStrategy{},
	}
}
