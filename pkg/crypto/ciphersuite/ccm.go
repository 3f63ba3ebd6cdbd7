// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
)

// AES-CCM_8 parameters, RFC 6655 Section 6 / RFC 7251: an 8-byte
// authentication tag, an 8-byte explicit (per-record) nonce, and a
// 4-byte implicit salt carried in the derived write IV.
const (
	ccmTagLength      = 8
	ccmNonceLength    = 12
	ccmExplicitLength = 8
)

var (
	errNotEnoughRoomForNonce = errors.New("ciphersuite: buffer not long enough to contain nonce")
	errDecryptPacket         = errors.New("ciphersuite: failed to decrypt packet")
	errInvalidCCMTagLength   = errors.New("ciphersuite: unsupported CCM tag length")
)

// RecordHeader carries the fields this core's AEAD additional data is
// built from, RFC 5246 Section 6.2.3.3: the 64-bit (epoch||sequence)
// number, content type, protocol version, and plaintext length.
type RecordHeader struct {
	Epoch           uint16
	SequenceNumber  uint64 // low 48 bits significant
	ContentType     byte
	ProtocolVersion [2]byte
}

func (h RecordHeader) sequenceBytes() [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint16(b[0:2], h.Epoch)
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, h.SequenceNumber)
	copy(b[2:8], seq[2:8])
	return b
}

func additionalData(h RecordHeader, payloadLength int) []byte {
	seq := h.sequenceBytes()
	out := make([]byte, 0, 13)
	out = append(out, seq[:]...)
	out = append(out, h.ContentType)
	out = append(out, h.ProtocolVersion[:]...)
	out = append(out, byte(payloadLength>>8), byte(payloadLength))
	return out
}

// CCM provides AES-CCM_8 sealing/opening of DTLS records, RFC 3610 as
// profiled by RFC 6655/RFC 7251. crypto/cipher has no CCM mode (only
// GCM), and no CCM implementation appears anywhere in the example
// corpus, so this builds the construction directly on crypto/aes: a
// CBC-MAC over the formatted B0/associated-data/payload blocks for
// authentication, and counter-mode encryption for confidentiality,
// exactly as RFC 3610 Section 2 defines the two passes.
type CCM struct {
	localBlock, remoteBlock     cipher.Block
	localWriteIV, remoteWriteIV []byte
}

// NewCCM derives local/remote AES-CCM_8 state from the key block.
func NewCCM(localKey, localWriteIV, remoteKey, remoteWriteIV []byte) (*CCM, error) {
	localBlock, err := aes.NewCipher(localKey)
	if err != nil {
		return nil, err
	}
	remoteBlock, err := aes.NewCipher(remoteKey)
	if err != nil {
		return nil, err
	}
	return &CCM{
		localBlock:    localBlock,
		remoteBlock:   remoteBlock,
		localWriteIV:  localWriteIV,
		remoteWriteIV: remoteWriteIV,
	}, nil
}

// Encrypt seals payload under header's additional data, returning the
// 8-byte explicit nonce prefix concatenated with ciphertext||tag, the
// wire layout RFC 7251 defines for CCM_8 records.
func (c *CCM) Encrypt(header RecordHeader, payload []byte) ([]byte, error) {
	explicitNonce := make([]byte, ccmExplicitLength)
	if _, err := rand.Read(explicitNonce); err != nil {
		return nil, err
	}

	nonce := make([]byte, 0, ccmNonceLength)
	nonce = append(nonce, c.localWriteIV[:4]...)
	nonce = append(nonce, explicitNonce...)

	ad := additionalData(header, len(payload))
	sealed, err := ccmSeal(c.localBlock, nonce, payload, ad, ccmTagLength)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(explicitNonce)+len(sealed))
	out = append(out, explicitNonce...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt opens an inbound CCM_8 record. in is the explicit nonce
// followed by ciphertext||tag.
func (c *CCM) Decrypt(header RecordHeader, in []byte) ([]byte, error) {
	if len(in) <= ccmExplicitLength+ccmTagLength {
		return nil, errNotEnoughRoomForNonce
	}

	nonce := make([]byte, 0, ccmNonceLength)
	nonce = append(nonce, c.remoteWriteIV[:4]...)
	nonce = append(nonce, in[:ccmExplicitLength]...)

	ad := additionalData(header, len(in)-ccmExplicitLength-ccmTagLength)
	out, err := ccmOpen(c.remoteBlock, nonce, in[ccmExplicitLength:], ad, ccmTagLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDecryptPacket, err) //nolint:errorlint
	}
	return out, nil
}

// ccmSeal implements the RFC 3610 generation-encryption process: a
// CBC-MAC over B0 || formatted associated data || payload produces the
// authentication value, which is then masked by counter-mode keystream
// block S0, RFC 3610 Section 2.2/2.3.
func ccmSeal(block cipher.Block, nonce, payload, ad []byte, tagLength int) ([]byte, error) {
	if tagLength != 8 && tagLength != 16 {
		return nil, errInvalidCCMTagLength
	}

	mac, err := ccmMAC(block, nonce, payload, ad, tagLength)
	if err != nil {
		return nil, err
	}

	ctr := ccmCounter(block, nonce)
	ciphertext := make([]byte, len(payload))
	ctr.XORKeyStream(ciphertext, payload)

	s0 := make([]byte, aes.BlockSize)
	counter0 := ccmCounterBlock(nonce, 0)
	block.Encrypt(s0, counter0)
	tag := make([]byte, tagLength)
	for i := range tag {
		tag[i] = mac[i] ^ s0[i]
	}

	return append(ciphertext, tag...), nil
}

// ccmOpen reverses ccmSeal and verifies the recovered tag in constant
// time before returning the plaintext.
func ccmOpen(block cipher.Block, nonce, in, ad []byte, tagLength int) ([]byte, error) {
	if len(in) < tagLength {
		return nil, errDecryptPacket
	}
	ciphertext := in[:len(in)-tagLength]
	tag := in[len(in)-tagLength:]

	ctr := ccmCounter(block, nonce)
	plaintext := make([]byte, len(ciphertext))
	ctr.XORKeyStream(plaintext, ciphertext)

	mac, err := ccmMAC(block, nonce, plaintext, ad, tagLength)
	if err != nil {
		return nil, err
	}

	s0 := make([]byte, aes.BlockSize)
	counter0 := ccmCounterBlock(nonce, 0)
	block.Encrypt(s0, counter0)

	expected := make([]byte, tagLength)
	for i := range expected {
		expected[i] = mac[i] ^ s0[i]
	}

	var diff byte
	for i := range expected {
		diff |= expected[i] ^ tag[i]
	}
	if diff != 0 {
		return nil, errDecryptPacket
	}
	return plaintext, nil
}

// ccmMAC computes the raw CBC-MAC (pre-masking) over B0, the encoded
// associated-data length and bytes, and the payload, zero-padded to
// block boundaries, RFC 3610 Section 2.2.
func ccmMAC(block cipher.Block, nonce, payload, ad []byte, tagLength int) ([]byte, error) {
	b0 := make([]byte, aes.BlockSize)
	var flags byte
	if len(ad) > 0 {
		flags |= 0x40
	}
	flags |= byte((tagLength - 2) / 2 << 3)
	flags |= 2 // L - 1, with L = 3 (3-byte length field, 12-byte nonce)
	b0[0] = flags
	copy(b0[1:1+len(nonce)], nonce)
	payloadLen := len(payload)
	b0[aes.BlockSize-2] = byte(payloadLen >> 8)
	b0[aes.BlockSize-1] = byte(payloadLen)

	y := make([]byte, aes.BlockSize)
	block.Encrypt(y, b0)

	cbcXOR := func(blk []byte) {
		for i := 0; i < aes.BlockSize; i++ {
			y[i] ^= blk[i]
		}
		block.Encrypt(y, y)
	}

	if len(ad) > 0 {
		adLenField := make([]byte, 2)
		binary.BigEndian.PutUint16(adLenField, uint16(len(ad)))
		buf := append(adLenField, ad...)
		for len(buf)%aes.BlockSize != 0 {
			buf = append(buf, 0)
		}
		for i := 0; i < len(buf); i += aes.BlockSize {
			cbcXOR(buf[i : i+aes.BlockSize])
		}
	}

	padded := append([]byte{}, payload...)
	for len(padded)%aes.BlockSize != 0 {
		padded = append(padded, 0)
	}
	for i := 0; i < len(padded); i += aes.BlockSize {
		cbcXOR(padded[i : i+aes.BlockSize])
	}

	return y, nil
}

// ccmCounterBlock builds the RFC 3610 counter-mode block Ctr_i for the
// given nonce and block index.
func ccmCounterBlock(nonce []byte, index uint16) []byte {
	ctr := make([]byte, aes.BlockSize)
	ctr[0] = 2 // L - 1
	copy(ctr[1:1+len(nonce)], nonce)
	binary.BigEndian.PutUint16(ctr[aes.BlockSize-2:], index)
	return ctr
}

// ccmCounter returns a stdlib CTR stream keyed on Ctr_1, the first
// counter-mode block after the MAC-masking block Ctr_0.
func ccmCounter(block cipher.Block, nonce []byte) cipher.Stream {
	iv := ccmCounterBlock(nonce, 1)
	return cipher.NewCTR(block, iv)
}
