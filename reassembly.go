// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"sort"

	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

// fragmentSpan is one received byte range of a fragmented handshake
// message, RFC 6347 Section 4.2.3.
type fragmentSpan struct {
	offset uint32
	data   []byte
}

// messageAssembly accumulates the fragments of a single message_seq
// until its full byte range is covered, tolerating overlapping
// fragments the way the teacher's fragmentBuffer does (spec.md
// Section 4.5's supplemented note).
type messageAssembly struct {
	msgType   handshake.Type
	totalLen  uint32
	spans     []fragmentSpan
}

// covered reports whether the accumulated spans cover [0, totalLen)
// with no gaps.
func (m *messageAssembly) covered() bool {
	if m.totalLen == 0 {
		return true
	}
	sorted := append([]fragmentSpan{}, m.spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].offset < sorted[j].offset })

	var next uint32
	for _, s := range sorted {
		if s.offset > next {
			return false
		}
		end := s.offset + uint32(len(s.data))
		if end > next {
			next = end
		}
	}
	return next >= m.totalLen
}

// assemble concatenates the covered spans into the full message body.
func (m *messageAssembly) assemble() []byte {
	out := make([]byte, m.totalLen)
	for _, s := range m.spans {
		copy(out[s.offset:], s.data)
	}
	return out
}

// assembledMessage is a fully-reassembled but not-yet-decoded handshake
// message: a header plus its complete body. Decoding is left to the
// caller because a handful of message types (Certificate,
// ServerKeyExchange, ClientKeyExchange) are not self-describing on the
// wire — the driver must set a mode flag from session/negotiation
// context before calling Message.Unmarshal.
type assembledMessage struct {
	Header handshake.Header
	Body   []byte
}

// reassembler is the combination of spec.md's ReassemblyState (per-
// message_seq fragment accumulators) and PendingMessages (messages
// fully assembled but not yet processable because an earlier
// message_seq is still outstanding). It is a pure value owned by
// ClientDriver — no goroutine, no I/O — per spec.md Section 4.5's
// restructuring note.
type reassembler struct {
	inProgress map[uint16]*messageAssembly
	pending    map[uint16]assembledMessage
	accepted   map[uint16]handshake.Type
}

func newReassembler() *reassembler {
	return &reassembler{
		inProgress: make(map[uint16]*messageAssembly),
		pending:    make(map[uint16]assembledMessage),
		accepted:   make(map[uint16]handshake.Type),
	}
}

// isRetransmission reports whether msgSeq has already been accepted,
// spec.md Section 3's retransmission-discard invariant.
func (r *reassembler) isRetransmission(msgSeq uint16) bool {
	_, ok := r.accepted[msgSeq]
	return ok
}

// push feeds one handshake fragment (header plus exactly
// header.FragmentLength bytes of body) into the reassembler. When the
// fragment completes its message, the fully assembled assembledMessage
// is returned with ok == true; otherwise ok is false and the fragment
// has been buffered for later completion.
func (r *reassembler) push(header handshake.Header, fragmentBody []byte) (assembledMessage, bool) {
	msgSeq := header.MessageSequence

	if r.isRetransmission(msgSeq) {
		return assembledMessage{}, false
	}

	if header.FragmentOffset == 0 && header.FragmentLength == header.Length {
		return assembledMessage{Header: header, Body: fragmentBody}, true
	}

	asm, ok := r.inProgress[msgSeq]
	if !ok {
		asm = &messageAssembly{msgType: header.Type, totalLen: header.Length}
		r.inProgress[msgSeq] = asm
	}
	asm.spans = append(asm.spans, fragmentSpan{offset: header.FragmentOffset, data: fragmentBody})

	if !asm.covered() {
		return assembledMessage{}, false
	}

	delete(r.inProgress, msgSeq)
	full := handshake.Header{
		Type:            asm.msgType,
		Length:          asm.totalLen,
		MessageSequence: msgSeq,
		FragmentOffset:  0,
		FragmentLength:  asm.totalLen,
	}
	return assembledMessage{Header: full, Body: asm.assemble()}, true
}

// markAccepted records msgSeq as accepted (appended to the transcript
// and state-transitioned), so future records with the same msgSeq are
// recognized as retransmissions.
func (r *reassembler) markAccepted(msgSeq uint16, t handshake.Type) {
	r.accepted[msgSeq] = t
}

// park buffers a fully-assembled message that arrived out of turn.
func (r *reassembler) park(m assembledMessage) {
	r.pending[m.Header.MessageSequence] = m
}

// takePending removes and returns the parked message for msgSeq, if
// any. Per spec.md Section 9's design note, a drained message is
// removed from the pending buffer exactly once: the caller deletes the
// entry (via this call) before reprocessing it in its drain loop.
func (r *reassembler) takePending(msgSeq uint16) (assembledMessage, bool) {
	m, ok := r.pending[msgSeq]
	if ok {
		delete(r.pending, msgSeq)
	}
	return m, ok
}

// anyPending reports whether some parked message exists at all,
// regardless of sequence number; used to decide whether a drain pass is
// worth attempting after processing a record.
func (r *reassembler) anyPending() bool {
	return len(r.pending) > 0
}
