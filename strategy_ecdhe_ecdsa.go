// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"net"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/elliptic"
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/prf"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/alert"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

// ecdheECDSAStrategy implements the ECDHE_ECDSA key-exchange path,
// spec.md Section 4.3: the client generates an ephemeral key pair on
// the server-chosen named curve, computes the shared X-coordinate as
// the premaster secret, and sends its own ephemeral point.
type ecdheECDSAStrategy struct{}

func (s *ecdheECDSAStrategy) clientKeyExchange(_ net.Addr, serverKeyExchange *handshake.MessageServerKeyExchange) (*handshake.MessageClientKeyExchange, []byte, error) {
	curve, err := elliptic.CurveByID(serverKeyExchange.NamedCurve)
	if err != nil {
		return nil, nil, newHandshakeError(HandshakeFailureKind, alert.HandshakeFailure, err)
	}

	priv, pub, err := curve.NewKeypair()
	if err != nil {
		return nil, nil, newHandshakeError(HandshakeFailureKind, alert.HandshakeFailure, err)
	}

	preMasterSecret, err := prf.PreMasterSecret(serverKeyExchange.PublicKey, priv, curve)
	if err != nil {
		return nil, nil, newHandshakeError(HandshakeFailureKind, alert.HandshakeFailure, err)
	}

	return &handshake.MessageClientKeyExchange{
		Algorithm: handshake.KeyExchangeAlgorithmECDHE,
		PublicKey: pub,
	}, preMasterSecret, nil
}
