// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"bytes"
	"testing"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/ciphersuite"
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/prf"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

func marshalHandshake(t *testing.T, msgSeq uint16, msg handshake.Message) []byte {
	t.Helper()
	h := &handshake.Handshake{
		Header:  handshake.Header{MessageSequence: msgSeq},
		Message: msg,
	}
	raw, err := h.Marshal()
	if err != nil {
		t.Fatalf("marshal %T: %v", msg, err)
	}
	return raw
}

func TestHelloVerifyRequestRoundTrip(t *testing.T) {
	cfg, err := NewBuilder(testEndpoint()).
		PSKStore(&staticPSKStore{identity: "ID", key: []byte("KEY")}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	driver := NewClientDriver(cfg, &Session{}, nil)
	flight1, err := driver.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	ch1 := flight1.Records[0].Message.(*handshake.Handshake).Message.(*handshake.MessageClientHello)
	if len(ch1.Cookie) != 0 {
		t.Fatalf("initial ClientHello carries a cookie: %x", ch1.Cookie)
	}
	originalRandom := ch1.Random

	hvr := &handshake.MessageHelloVerifyRequest{Version: protocol.Version1_2, Cookie: []byte("abcd1234")}
	rec := Record{ContentType: protocol.ContentTypeHandshake, Fragment: marshalHandshake(t, 0, hvr)}

	flight2, err := driver.OnRecord(rec)
	if err != nil {
		t.Fatalf("OnRecord(HelloVerifyRequest): %v", err)
	}
	if flight2 == nil || !flight2.RetransmitNeeded {
		t.Fatalf("expected a retransmit-needed flight, got %+v", flight2)
	}

	ch2 := flight2.Records[0].Message.(*handshake.Handshake).Message.(*handshake.MessageClientHello)
	if !bytes.Equal(ch2.Cookie, hvr.Cookie) {
		t.Errorf("cookie: got %x, want %x", ch2.Cookie, hvr.Cookie)
	}
	if ch2.Random != originalRandom {
		t.Errorf("random changed across HelloVerifyRequest round-trip: got %+v, want %+v", ch2.Random, originalRandom)
	}

	h2 := flight2.Records[0].Message.(*handshake.Handshake)
	raw, err := h2.Marshal()
	if err != nil {
		t.Fatalf("marshal second ClientHello flight: %v", err)
	}
	if h2.Header.FragmentLength != h2.Header.Length || h2.Header.FragmentLength != uint32(len(raw)-handshake.HeaderLength) {
		t.Errorf("fragment length mismatch after marshal: FragmentLength=%d Length=%d body=%d",
			h2.Header.FragmentLength, h2.Header.Length, len(raw)-handshake.HeaderLength)
	}
	if h2.Header.MessageSequence != 1 {
		t.Errorf("message_seq not bumped across HelloVerifyRequest round-trip: got %d, want 1", h2.Header.MessageSequence)
	}
	if driver.expectedServerSeq != 1 {
		t.Errorf("expectedServerSeq not tracking server's own numbering: got %d, want 1", driver.expectedServerSeq)
	}
}

// TestHelloVerifyRequestThenActivation exercises the full cookie
// round-trip through to session activation: the server's
// HelloVerifyRequest is its message_seq 0, so the ServerHello that
// follows the cookie is numbered message_seq 1, not 0 (RFC 6347
// Section 4.2.2).
func TestHelloVerifyRequestThenActivation(t *testing.T) {
	const identity = "ID"
	key := []byte("shared-secret-key")

	cfg, err := NewBuilder(testEndpoint()).
		PSKStore(&staticPSKStore{identity: identity, key: key}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	session := &Session{}
	driver := NewClientDriver(cfg, session, nil)
	if _, err := driver.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	hvr := &handshake.MessageHelloVerifyRequest{Version: protocol.Version1_2, Cookie: []byte("abcd1234")}
	if _, err := driver.OnRecord(Record{
		ContentType: protocol.ContentTypeHandshake,
		Fragment:    marshalHandshake(t, 0, hvr),
	}); err != nil {
		t.Fatalf("OnRecord(HelloVerifyRequest): %v", err)
	}

	compressionNull := protocol.CompressionMethods()[protocol.CompressionMethodNull]
	suiteID := uint16(ciphersuite.TLS_PSK_WITH_AES_128_CCM_8)
	serverHello := &handshake.MessageServerHello{
		Version:           protocol.Version1_2,
		SessionID:         []byte{},
		CipherSuiteID:     &suiteID,
		CompressionMethod: compressionNull,
	}
	if err := serverHello.Random.Populate(); err != nil {
		t.Fatalf("populate server random: %v", err)
	}

	if flight, err := driver.OnRecord(Record{
		ContentType: protocol.ContentTypeHandshake,
		Fragment:    marshalHandshake(t, 1, serverHello),
	}); err != nil || flight != nil {
		t.Fatalf("OnRecord(ServerHello): flight=%+v err=%v", flight, err)
	}

	helloDone := &handshake.MessageServerHelloDone{}
	flight, err := driver.OnRecord(Record{
		ContentType: protocol.ContentTypeHandshake,
		Fragment:    marshalHandshake(t, 2, helloDone),
	})
	if err != nil {
		t.Fatalf("OnRecord(ServerHelloDone): %v", err)
	}
	if flight == nil || !flight.RetransmitNeeded {
		t.Fatalf("expected flight 2 with retransmit needed, got %+v", flight)
	}
	if session.MasterSecret == nil {
		t.Fatal("master secret was not derived")
	}

	serverVerifyData, err := prf.VerifyDataServer(session.MasterSecret, driver.serverExpectedTranscript, session.CipherSuite.PRFHash())
	if err != nil {
		t.Fatalf("compute server verify_data: %v", err)
	}
	serverFinished := &handshake.MessageFinished{VerifyData: serverVerifyData}

	flight3, err := driver.OnRecord(Record{
		ContentType: protocol.ContentTypeHandshake,
		Fragment:    marshalHandshake(t, 3, serverFinished),
	})
	if err != nil {
		t.Fatalf("OnRecord(server Finished): %v", err)
	}
	if !session.Active {
		t.Fatal("session did not activate on a valid server Finished after a HelloVerifyRequest round-trip")
	}
	if flight3 != nil {
		t.Fatalf("expected no queued application-data record, got %+v", flight3)
	}
}

func TestPSKHandshakeToActivation(t *testing.T) {
	const identity = "ID"
	key := []byte("shared-secret-key")

	cfg, err := NewBuilder(testEndpoint()).
		PSKStore(&staticPSKStore{identity: identity, key: key}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	session := &Session{}
	driver := NewClientDriver(cfg, session, nil)
	driver.QueueApplicationData([]byte("ping"))

	if _, err := driver.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	compressionNull := protocol.CompressionMethods()[protocol.CompressionMethodNull]
	suiteID := uint16(ciphersuite.TLS_PSK_WITH_AES_128_CCM_8)

	serverHello := &handshake.MessageServerHello{
		Version:           protocol.Version1_2,
		SessionID:         []byte{},
		CipherSuiteID:     &suiteID,
		CompressionMethod: compressionNull,
	}
	if err := serverHello.Random.Populate(); err != nil {
		t.Fatalf("populate server random: %v", err)
	}

	if flight, err := driver.OnRecord(Record{
		ContentType: protocol.ContentTypeHandshake,
		Fragment:    marshalHandshake(t, 0, serverHello),
	}); err != nil || flight != nil {
		t.Fatalf("OnRecord(ServerHello): flight=%+v err=%v", flight, err)
	}

	helloDone := &handshake.MessageServerHelloDone{}
	flight, err := driver.OnRecord(Record{
		ContentType: protocol.ContentTypeHandshake,
		Fragment:    marshalHandshake(t, 1, helloDone),
	})
	if err != nil {
		t.Fatalf("OnRecord(ServerHelloDone): %v", err)
	}
	if flight == nil || !flight.RetransmitNeeded {
		t.Fatalf("expected flight 2 with retransmit needed, got %+v", flight)
	}

	var sawCKE, sawCCS, sawFinished bool
	for _, rec := range flight.Records {
		switch msg := rec.Message.(type) {
		case *handshake.Handshake:
			switch body := msg.Message.(type) {
			case *handshake.MessageClientKeyExchange:
				sawCKE = true
				if body.Algorithm != handshake.KeyExchangeAlgorithmPSK {
					t.Errorf("ClientKeyExchange algorithm: got %v, want PSK", body.Algorithm)
				}
				if string(body.IdentityHint) != identity {
					t.Errorf("PSK identity hint: got %q, want %q", body.IdentityHint, identity)
				}
			case *handshake.MessageFinished:
				sawFinished = true
			}
		case *protocol.ChangeCipherSpec:
			sawCCS = true
		}
	}
	if !sawCKE || !sawCCS || !sawFinished {
		t.Fatalf("flight 2 missing expected records: CKE=%v CCS=%v Finished=%v", sawCKE, sawCCS, sawFinished)
	}

	if session.MasterSecret == nil {
		t.Fatal("master secret was not derived")
	}

	serverVerifyData, err := prf.VerifyDataServer(session.MasterSecret, driver.serverExpectedTranscript, session.CipherSuite.PRFHash())
	if err != nil {
		t.Fatalf("compute server verify_data: %v", err)
	}
	serverFinished := &handshake.MessageFinished{VerifyData: serverVerifyData}

	flight3, err := driver.OnRecord(Record{
		ContentType: protocol.ContentTypeHandshake,
		Fragment:    marshalHandshake(t, 2, serverFinished),
	})
	if err != nil {
		t.Fatalf("OnRecord(server Finished): %v", err)
	}
	if !session.Active {
		t.Fatal("session did not activate on a valid server Finished")
	}
	if flight3 == nil || len(flight3.Records) != 1 {
		t.Fatalf("expected one queued application-data record, got %+v", flight3)
	}
	appData, ok := flight3.Records[0].Message.(*protocol.ApplicationData)
	if !ok {
		t.Fatalf("expected ApplicationData record, got %T", flight3.Records[0].Message)
	}
	if string(appData.Data) != "ping" {
		t.Errorf("queued application data: got %q, want %q", appData.Data, "ping")
	}
}

func TestDuplicateServerHelloIgnored(t *testing.T) {
	cfg, err := NewBuilder(testEndpoint()).
		PSKStore(&staticPSKStore{identity: "ID", key: []byte("KEY")}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	driver := NewClientDriver(cfg, &Session{}, nil)
	if _, err := driver.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	compressionNull := protocol.CompressionMethods()[protocol.CompressionMethodNull]
	suiteID := uint16(ciphersuite.TLS_PSK_WITH_AES_128_CCM_8)
	serverHello := &handshake.MessageServerHello{
		Version:           protocol.Version1_2,
		SessionID:         []byte{},
		CipherSuiteID:     &suiteID,
		CompressionMethod: compressionNull,
	}
	if err := serverHello.Random.Populate(); err != nil {
		t.Fatalf("populate server random: %v", err)
	}
	rec := Record{ContentType: protocol.ContentTypeHandshake, Fragment: marshalHandshake(t, 0, serverHello)}

	if _, err := driver.OnRecord(rec); err != nil {
		t.Fatalf("first OnRecord(ServerHello): %v", err)
	}
	lenAfterFirst := len(driver.transcript.bytes())
	stateAfterFirst := driver.state

	if flight, err := driver.OnRecord(rec); err != nil || flight != nil {
		t.Fatalf("duplicate OnRecord(ServerHello): flight=%+v err=%v", flight, err)
	}
	if len(driver.transcript.bytes()) != lenAfterFirst {
		t.Errorf("transcript grew on duplicate ServerHello: got %d bytes, want %d", len(driver.transcript.bytes()), lenAfterFirst)
	}
	if driver.state != stateAfterFirst {
		t.Errorf("state changed on duplicate ServerHello: got %v, want %v", driver.state, stateAfterFirst)
	}
}
