// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"hash"

	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

// transcript is the append-only byte buffer of every handshake message
// exchanged so far, in canonical (TLS-style) encoding, spec.md Section 2
// ("Transcript buffer") and Section 3's append-exactly-once invariant.
// It is owned exclusively by ClientDriver and discarded at session
// activation.
type transcript struct {
	buf []byte
}

// append adds h's canonical encoding to the transcript. Callers are
// responsible for ensuring this happens exactly once per accepted
// message, never on retransmit or duplicate.
func (t *transcript) append(h *handshake.Handshake) error {
	enc, err := handshake.Canonical(h)
	if err != nil {
		return err
	}
	t.buf = append(t.buf, enc...)
	return nil
}

// appendRaw appends already-canonical bytes as they are. ClientDriver
// does not call it: its own outbound messages go through append.
func (t *transcript) appendRaw(b []byte) {
	t.buf = append(t.buf, b...)
}

// bytes returns the transcript's current contents. The caller must not
// mutate the returned slice.
func (t *transcript) bytes() []byte {
	return t.buf
}

// sum hashes the transcript with hashFunc. ClientDriver uses it for the
// CertificateVerify signature input (hashed with the selected signature
// algorithm's hash), spec.md Section 4.3; Finished verify_data is
// computed by the prf package from bytes() instead.
func (t *transcript) sum(hashFunc func() hash.Hash) []byte {
	h := hashFunc()
	h.Write(t.buf) //nolint:errcheck // hash.Hash.Write never errors
	return h.Sum(nil)
}
