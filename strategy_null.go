// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"net"

	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

// nullStrategy implements the NULL key-exchange path, spec.md
// Section 4.3: an empty ClientKeyExchange payload and an empty
// premaster secret. Neither cipher suite that ciphersuite.Suite
// recognizes uses KeyExchangeNull, so no suite the driver can negotiate
// selects this strategy.
type nullStrategy struct{}

func (s *nullStrategy) clientKeyExchange(net.Addr, *handshake.MessageServerKeyExchange) (*handshake.MessageClientKeyExchange, []byte, error) {
	return &handshake.MessageClientKeyExchange{
		Algorithm: handshake.KeyExchangeAlgorithmNull,
	}, []byte{}, nil
}
