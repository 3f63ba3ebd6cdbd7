// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// Canonical encodes a Handshake message the way it contributes to the
// handshake transcript/hash: a 1-byte type plus a 3-byte length followed
// by the message body, with the DTLS-only message_seq/fragment fields of
// Header stripped, RFC 6347 Section 4.2.6 ("the entire content of each
// DTLS handshake message ... is used in the same order as with TLS").
func Canonical(h *Handshake) ([]byte, error) {
	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4, 4+len(body))
	out[0] = byte(h.Message.Type())
	putUint24(out[1:4], uint32(len(body)))
	return append(out, body...), nil
}
