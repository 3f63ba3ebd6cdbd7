// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package dtls implements the client-side DTLS 1.2 handshake driver:
// the configuration contract, the transcript, the three key-exchange
// strategies (ECDHE_ECDSA, PSK, NULL), the reassembly/ordering buffer,
// and the ClientDriver state machine that ties them together.
//
// The driver is message-driven and performs no I/O of its own: it
// consumes Records handed to it by an external record layer and
// returns Flights of outbound records for that layer to send and
// retransmit. RFC 6347 (DTLS 1.2) and RFC 5246 (TLS 1.2) define the
// wire protocol; RFC 7250 adds Raw Public Keys, RFC 4279 adds PSK, and
// RFC 7251 defines the two AES-CCM_8 cipher suites this core
// negotiates.
package dtls
