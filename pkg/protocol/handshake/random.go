// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"crypto/rand"
	"time"
)

// RandomLength is the length of a Random structure, RFC 5246 Section 7.4.1.2.
const RandomLength = 32

const randomBytesLength = 28

// Random carries the gmt_unix_time + random_bytes pair exchanged in
// ClientHello/ServerHello, RFC 5246 Section 7.4.1.2.
type Random struct {
	GMTUnixTime time.Time
	RandomBytes [randomBytesLength]byte
}

// Populate fills the Random with the current time and cryptographically
// random bytes, as the client does once per handshake attempt.
func (r *Random) Populate() error {
	r.GMTUnixTime = time.Now()
	_, err := rand.Read(r.RandomBytes[:])
	return err
}

// MarshalFixed encodes the Random into its fixed 32-byte wire form.
func (r *Random) MarshalFixed() [RandomLength]byte {
	var out [RandomLength]byte
	binaryPutUint32(out[0:4], uint32(r.GMTUnixTime.Unix()))
	copy(out[4:], r.RandomBytes[:])
	return out
}

// UnmarshalFixed populates the Random from its fixed 32-byte wire form.
func (r *Random) UnmarshalFixed(data [RandomLength]byte) {
	r.GMTUnixTime = time.Unix(int64(binaryUint32(data[0:4])), 0)
	copy(r.RandomBytes[:], data[4:])
}

func binaryPutUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func binaryUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
