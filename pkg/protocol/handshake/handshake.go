// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/yakcyll/dtls-client-handshake/pkg/protocol"

// Message is the body of a single handshake message, dispatched on Type().
type Message interface {
	Type() Type
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Handshake pairs a Header with its decoded Message body and implements
// protocol.Content so it can travel as a record payload.
type Handshake struct {
	Header  Header
	Message Message
}

// ContentType returns the record-layer content type of a Handshake.
func (h Handshake) ContentType() protocol.ContentType {
	return protocol.ContentTypeHandshake
}

// Marshal encodes the full Handshake message (header + body).
func (h *Handshake) Marshal() ([]byte, error) {
	if h.Header.FragmentLength != 0 && h.Header.FragmentLength != h.Header.Length {
		return marshalFragment(h)
	}

	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	h.Header.Type = h.Message.Type()
	h.Header.Length = uint32(len(body))
	h.Header.FragmentOffset = 0
	h.Header.FragmentLength = uint32(len(body))

	rawHeader, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(rawHeader, body...), nil
}

func marshalFragment(h *Handshake) ([]byte, error) {
	rawHeader, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}
	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}
	return append(rawHeader, body...), nil
}

// Unmarshal populates the Handshake from a single, already-reassembled
// fragment (FragmentOffset == 0 && FragmentLength == Length).
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}

	if len(data) < HeaderLength+int(h.Header.FragmentLength) {
		return errBufferTooSmall
	}

	msg, err := newMessage(h.Header.Type)
	if err != nil {
		return err
	}

	if err := msg.Unmarshal(data[HeaderLength : HeaderLength+int(h.Header.FragmentLength)]); err != nil {
		return err
	}

	h.Message = msg
	return nil
}

func newMessage(t Type) (Message, error) {
	switch t {
	case TypeHelloRequest:
		return &MessageHelloRequest{}, nil
	case TypeClientHello:
		return &MessageClientHello{}, nil
	case TypeServerHello:
		return &MessageServerHello{}, nil
	case TypeHelloVerifyRequest:
		return &MessageHelloVerifyRequest{}, nil
	case TypeCertificate:
		return &MessageCertificate{}, nil
	case TypeServerKeyExchange:
		return &MessageServerKeyExchange{}, nil
	case TypeCertificateRequest:
		return &MessageCertificateRequest{}, nil
	case TypeServerHelloDone:
		return &MessageServerHelloDone{}, nil
	case TypeCertificateVerify:
		return &MessageCertificateVerify{}, nil
	case TypeClientKeyExchange:
		return &MessageClientKeyExchange{}, nil
	case TypeFinished:
		return &MessageFinished{}, nil
	default:
		return nil, errUnknownMessageType(t)
	}
}
