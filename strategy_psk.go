// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"errors"
	"net"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/prf"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/alert"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

var errPSKLookupFailed = errors.New("dtls: no PSK identity/key available for peer")

// pskStrategy implements the PSK key-exchange path, spec.md Section 4.3:
// the client resolves its identity and shared key from cfg.PSKStore
// against the peer address, and constructs the premaster secret per
// RFC 4279 Section 2.
type pskStrategy struct {
	cfg *HandshakeConfig
}

func (s *pskStrategy) clientKeyExchange(peerAddr net.Addr, _ *handshake.MessageServerKeyExchange) (*handshake.MessageClientKeyExchange, []byte, error) {
	store := s.cfg.PSKStore()
	if store == nil {
		return nil, nil, newHandshakeError(HandshakeFailureKind, alert.HandshakeFailure, errPSKLookupFailed)
	}

	identity, ok := store.GetIdentity(peerAddr)
	if !ok {
		return nil, nil, newHandshakeError(HandshakeFailureKind, alert.HandshakeFailure, errPSKLookupFailed)
	}
	key, ok := store.GetKey(identity)
	if !ok {
		return nil, nil, newHandshakeError(HandshakeFailureKind, alert.HandshakeFailure, errPSKLookupFailed)
	}

	return &handshake.MessageClientKeyExchange{
		Algorithm:    handshake.KeyExchangeAlgorithmPSK,
		IdentityHint: []byte(identity),
	}, prf.PSKPreMasterSecret(key), nil
}
