// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/subtle"
	"crypto/x509"
	"errors"

	"github.com/pion/logging"
	"github.com/zmap/zcrypto/tls"

	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/ciphersuite"
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/elliptic"
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/prf"
	"github.com/yakcyll/dtls-client-handshake/pkg/crypto/signaturehash"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/alert"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/extension"
	"github.com/yakcyll/dtls-client-handshake/pkg/protocol/handshake"
)

// statePreStart is a reserved state value (outside RFC 5246 Section 7.4's
// handshake type range) standing in for "no message processed or
// emitted yet", spec.md Section 4.2 ("Initial state: pre-start").
const statePreStart handshake.Type = 0xff

var (
	errUnexpectedMessage   = errors.New("dtls: unexpected handshake message for current state")
	errUnsupportedAlgoSet  = errors.New("dtls: no offered CertificateRequest signature algorithm is supportable")
	errVerifyDataMismatch  = errors.New("dtls: server Finished verify_data mismatch")
	errKeyExchangeSig      = errors.New("dtls: ServerKeyExchange signature verification failed")
	errUnsupportedContent  = errors.New("dtls: record content type not handled by the client driver")
	errHandshakeClosed     = errors.New("dtls: handshake already closed by a fatal alert")
	errCertificateMismatch = errors.New("dtls: server public key is not an ECDSA key")
)

// ClientDriver is the client-side DTLS 1.2 handshake state machine,
// spec.md Section 4.2. It performs no I/O: Start and OnRecord return
// Flights for an external record layer to send and retransmit.
type ClientDriver struct {
	cfg     *HandshakeConfig
	session *Session
	log     logging.LeveledLogger

	transcript  transcript
	reassembler *reassembler

	state  handshake.Type
	closed bool

	outboundMessageSeq uint16
	expectedServerSeq  uint16

	clientHello         *handshake.Handshake
	clientHelloAppended bool
	clientRandom        handshake.Random
	serverRandom        handshake.Random

	certificateRequest *handshake.MessageCertificateRequest
	selectedCertAlgo   signaturehash.Algorithm

	serverKeyExchange *handshake.MessageServerKeyExchange
	keyExchangeAlgo   handshake.KeyExchangeAlgorithm

	serverExpectedTranscript []byte

	pendingApplicationData []byte

	// Retained decoded messages and secrets, used by nothing but
	// HandshakeLog: the handshake itself only needs each of these
	// transiently.
	serverHelloMsg       *handshake.MessageServerHello
	peerCertificateMsg   *handshake.MessageCertificate
	clientCertificateMsg *handshake.MessageCertificate
	clientKeyExchangeMsg *handshake.MessageClientKeyExchange
	certificateVerifyMsg *handshake.MessageCertificateVerify
	clientFinishedMsg    *handshake.MessageFinished
	serverFinishedMsg    *handshake.MessageFinished
	preMasterSecret      []byte
}

// NewClientDriver creates a ClientDriver bound to cfg and session.
// loggerFactory follows the teacher's convention: a nil factory falls
// back to logging.NewDefaultLoggerFactory().
func NewClientDriver(cfg *HandshakeConfig, session *Session, loggerFactory logging.LoggerFactory) *ClientDriver {
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}
	return &ClientDriver{
		cfg:         cfg,
		session:     session,
		log:         loggerFactory.NewLogger("dtls"),
		reassembler: newReassembler(),
		state:       statePreStart,
	}
}

// QueueApplicationData sets the payload to be emitted as the first
// application-data record once the handshake activates, spec.md
// Section 4.4 ("emit the queued application-data record").
func (d *ClientDriver) QueueApplicationData(data []byte) {
	d.pendingApplicationData = data
}

// Start builds and returns the initial ClientHello flight, spec.md
// Section 4.2.
func (d *ClientDriver) Start() (*Flight, error) {
	if err := d.clientRandom.Populate(); err != nil {
		return nil, newHandshakeError(HandshakeFailureKind, alert.InternalError, err)
	}

	exts := d.clientHelloExtensions()

	cipherSuiteIDs := make([]uint16, len(d.cfg.CipherSuites()))
	for i, id := range d.cfg.CipherSuites() {
		cipherSuiteIDs[i] = uint16(id)
	}

	msg := &handshake.MessageClientHello{
		Version:            protocol.Version1_2,
		Random:             d.clientRandom,
		SessionID:          []byte{},
		Cookie:             []byte{},
		CipherSuiteIDs:     cipherSuiteIDs,
		CompressionMethods: protocol.DefaultCompressionMethods(),
		Extensions:         exts,
	}

	h := &handshake.Handshake{
		Header: handshake.Header{
			Type:            handshake.TypeClientHello,
			MessageSequence: d.outboundMessageSeq,
		},
		Message: msg,
	}
	d.outboundMessageSeq++

	d.clientHello = h
	d.state = handshake.TypeClientHello
	d.log.Tracef("[handshake] -> %s", handshake.TypeClientHello)

	return &Flight{
		Records:          []OutboundRecord{{ContentType: protocol.ContentTypeHandshake, Epoch: d.session.WriteEpoch, Message: h}},
		RetransmitNeeded: true,
	}, nil
}

// clientHelloExtensions builds the extension set this core offers,
// spec.md Section 4.2 (cipher suite/RPK wiring) restricted to the
// three key-exchange modes of spec.md Section 2.
func (d *ClientDriver) clientHelloExtensions() []extension.Extension {
	exts := []extension.Extension{
		&extension.SupportedEllipticCurves{EllipticCurves: defaultCurves()},
		&extension.SupportedPointFormats{PointFormats: defaultPointFormats()},
	}

	algos, _ := signaturehash.ParseSignatureSchemes(nil, false)
	exts = append(exts, &extension.SignatureAlgorithms{SignatureHashAlgorithms: algos})

	clientCertType := extension.CertificateTypeX509
	if d.cfg.SendRawPublicKey() {
		clientCertType = extension.CertificateTypeRawPublicKey
	}
	exts = append(exts,
		&extension.ClientCertificateType{CertificateTypes: []extension.CertificateType{clientCertType}},
		&extension.ServerCertificateType{ClientCertificateType: extension.ClientCertificateType{
			CertificateTypes: []extension.CertificateType{extension.CertificateTypeX509, extension.CertificateTypeRawPublicKey},
		}},
	)
	return exts
}

// defaultCurves is the named-curve preference list offered in
// SupportedEllipticCurves, most preferred first.
func defaultCurves() []elliptic.CurveID {
	return []elliptic.CurveID{elliptic.X25519, elliptic.P256, elliptic.P384}
}

// defaultPointFormats is the EC point format list this core offers;
// it only ever implements the uncompressed form.
func defaultPointFormats() []elliptic.CurvePointFormat {
	return []elliptic.CurvePointFormat{elliptic.CurvePointFormatUncompressed}
}

// OnRecord drives the state machine from one inbound Record, spec.md
// Section 4.2/6.
func (d *ClientDriver) OnRecord(rec Record) (*Flight, error) {
	if d.closed {
		return nil, errHandshakeClosed
	}

	switch rec.ContentType {
	case protocol.ContentTypeAlert:
		return d.onAlert(rec)
	case protocol.ContentTypeChangeCipherSpec:
		d.session.AdvanceReadEpoch()
		d.log.Tracef("<- ChangeCipherSpec (epoch: %d)", d.session.ReadEpoch)
		return nil, nil
	case protocol.ContentTypeHandshake:
		return d.onHandshakeRecord(rec)
	default:
		return nil, d.fail(HandshakeFailureKind, alert.HandshakeFailure, errUnsupportedContent)
	}
}

func (d *ClientDriver) onAlert(rec Record) (*Flight, error) {
	var a alert.Alert
	if err := a.Unmarshal(rec.Fragment); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	if a.IsFatal() {
		d.closed = true
		return nil, &AlertError{Alert: a}
	}
	d.log.Debugf("<- %s", a.String())
	return nil, nil
}

func (d *ClientDriver) onHandshakeRecord(rec Record) (*Flight, error) {
	var header handshake.Header
	if err := header.Unmarshal(rec.Fragment); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	body := rec.Fragment[handshake.HeaderLength : handshake.HeaderLength+int(header.FragmentLength)]

	msg, complete := d.reassembler.push(header, append([]byte{}, body...))
	if !complete {
		return nil, nil
	}

	return d.process(msg)
}

// process decodes and dispatches one fully-assembled handshake message,
// then drains any now-processable parked messages, spec.md Section 4.2
// ("Queued-message drain").
func (d *ClientDriver) process(msg assembledMessage) (*Flight, error) {
	if msg.Header.Type == handshake.TypeHelloVerifyRequest {
		return d.onHelloVerifyRequest(msg)
	}

	if msg.Header.MessageSequence != d.expectedServerSeq {
		d.reassembler.park(msg)
		return nil, nil
	}

	flight, err := d.dispatch(msg)
	if err != nil {
		return nil, err
	}
	d.expectedServerSeq++
	d.reassembler.markAccepted(msg.Header.MessageSequence, msg.Header.Type)

	for d.reassembler.anyPending() {
		next, ok := d.reassembler.takePending(d.expectedServerSeq)
		if !ok {
			break
		}
		nextFlight, err := d.dispatch(next)
		if err != nil {
			return nil, err
		}
		d.expectedServerSeq++
		d.reassembler.markAccepted(next.Header.MessageSequence, next.Header.Type)
		if nextFlight != nil {
			flight = nextFlight
		}
	}

	return flight, nil
}

func (d *ClientDriver) onHelloVerifyRequest(msg assembledMessage) (*Flight, error) {
	if d.state != handshake.TypeClientHello {
		return nil, nil
	}

	m := &handshake.MessageHelloVerifyRequest{}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}

	clientHello := d.clientHello.Message.(*handshake.MessageClientHello)
	clientHello.Cookie = m.Cookie
	d.clientHello.Header.MessageSequence = d.outboundMessageSeq
	d.outboundMessageSeq++

	// RFC 6347 Section 4.2.2: the HelloVerifyRequest is the server's own
	// message_seq 0; the ServerHello that follows the cookie is message_seq 1.
	d.expectedServerSeq = msg.Header.MessageSequence + 1

	d.log.Tracef("[handshake] -> %s (cookie set)", handshake.TypeClientHello)

	return &Flight{
		Records:          []OutboundRecord{{ContentType: protocol.ContentTypeHandshake, Epoch: d.session.WriteEpoch, Message: d.clientHello}},
		RetransmitNeeded: true,
	}, nil
}

// dispatch decodes and handles exactly one handshake message whose turn
// has arrived, spec.md Section 4.2's accepted-transitions table.
func (d *ClientDriver) dispatch(msg assembledMessage) (*Flight, error) {
	switch msg.Header.Type {
	case handshake.TypeServerHello:
		return d.onServerHello(msg)
	case handshake.TypeCertificate:
		return d.onCertificate(msg)
	case handshake.TypeServerKeyExchange:
		return d.onServerKeyExchange(msg)
	case handshake.TypeCertificateRequest:
		return d.onCertificateRequest(msg)
	case handshake.TypeServerHelloDone:
		return d.onServerHelloDone(msg)
	case handshake.TypeFinished:
		return d.onFinished(msg)
	case handshake.TypeHelloRequest:
		return d.onHelloRequest(msg)
	default:
		return nil, d.fail(HandshakeFailureKind, alert.UnexpectedMessage, errUnexpectedMessage)
	}
}

func (d *ClientDriver) appendTranscript(msg assembledMessage, decoded handshake.Message) error {
	if !d.clientHelloAppended {
		if err := d.transcript.append(d.clientHello); err != nil {
			return err
		}
		d.clientHelloAppended = true
	}
	h := &handshake.Handshake{
		Header: handshake.Header{
			Type:            msg.Header.Type,
			Length:          msg.Header.Length,
			MessageSequence: msg.Header.MessageSequence,
			FragmentOffset:  0,
			FragmentLength:  msg.Header.Length,
		},
		Message: decoded,
	}
	return d.transcript.append(h)
}

func (d *ClientDriver) onServerHello(msg assembledMessage) (*Flight, error) {
	m := &handshake.MessageServerHello{}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	if m.CipherSuiteID == nil {
		return nil, d.fail(HandshakeFailureKind, alert.HandshakeFailure, errUnexpectedMessage)
	}

	suite, ok := ciphersuite.Suite(ciphersuite.ID(*m.CipherSuiteID))
	if !ok {
		return nil, d.fail(HandshakeFailureKind, alert.HandshakeFailure, errUnexpectedMessage)
	}

	if err := d.appendTranscript(msg, m); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}

	d.session.Version = m.Version
	d.session.SessionID = m.SessionID
	d.session.CipherSuite = suite
	d.session.CompressionMethod = m.CompressionMethod

	for _, e := range m.Extensions {
		switch ext := e.(type) {
		case *extension.ClientCertificateType:
			d.session.SendRawPublicKey = ext.FirstEquals(extension.CertificateTypeRawPublicKey)
		case *extension.ServerCertificateType:
			d.session.ReceiveRawPublicKey = ext.FirstEquals(extension.CertificateTypeRawPublicKey)
		}
	}

	switch suite.KeyExchangeAlgorithm() {
	case ciphersuite.KeyExchangePSK:
		d.keyExchangeAlgo = handshake.KeyExchangeAlgorithmPSK
	case ciphersuite.KeyExchangeNull:
		d.keyExchangeAlgo = handshake.KeyExchangeAlgorithmNull
	default:
		d.keyExchangeAlgo = handshake.KeyExchangeAlgorithmECDHE
	}

	d.serverRandom = m.Random
	d.serverHelloMsg = m
	d.state = handshake.TypeServerHello
	d.log.Tracef("<- %s", handshake.TypeServerHello)
	return nil, nil
}

func (d *ClientDriver) onCertificate(msg assembledMessage) (*Flight, error) {
	m := &handshake.MessageCertificate{RawPublicKey: d.session.ReceiveRawPublicKey}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	if err := d.appendTranscript(msg, m); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}

	if d.session.ReceiveRawPublicKey {
		pub, err := x509.ParsePKIXPublicKey(m.Certificate[0])
		if err != nil {
			return nil, d.fail(CertificateErrorKind, alert.BadCertificate, err)
		}
		ecdsaPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return nil, d.fail(CertificateErrorKind, alert.UnsupportedCertificate, errCertificateMismatch)
		}
		d.session.PeerECDSAPublicKey = ecdsaPub
	} else {
		chain := make([]*x509.Certificate, 0, len(m.Certificate))
		for _, der := range m.Certificate {
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				return nil, d.fail(CertificateErrorKind, alert.BadCertificate, err)
			}
			chain = append(chain, cert)
		}
		if len(chain) == 0 {
			return nil, d.fail(CertificateErrorKind, alert.NoCertificate, errCertificateMismatch)
		}
		if d.cfg.TrustStore() != nil {
			if err := d.cfg.TrustStore().Verify(chain); err != nil {
				return nil, d.fail(CertificateErrorKind, alert.CertificateUnknown, err)
			}
		}
		ecdsaPub, ok := chain[0].PublicKey.(*ecdsa.PublicKey)
		if !ok {
			return nil, d.fail(CertificateErrorKind, alert.UnsupportedCertificate, errCertificateMismatch)
		}
		d.session.PeerCertificate = chain[0]
		d.session.PeerECDSAPublicKey = ecdsaPub
		d.session.PeerIdentity = chain[0].Subject.String()
	}

	d.peerCertificateMsg = m
	d.state = handshake.TypeCertificate
	d.log.Tracef("<- %s", handshake.TypeCertificate)
	return nil, nil
}

func (d *ClientDriver) onServerKeyExchange(msg assembledMessage) (*Flight, error) {
	if d.keyExchangeAlgo == handshake.KeyExchangeAlgorithmNull {
		return nil, d.fail(HandshakeFailureKind, alert.UnexpectedMessage, errUnexpectedMessage)
	}

	m := &handshake.MessageServerKeyExchange{IdentityHintOnly: d.keyExchangeAlgo == handshake.KeyExchangeAlgorithmPSK}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	if err := d.appendTranscript(msg, m); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}

	if d.keyExchangeAlgo == handshake.KeyExchangeAlgorithmECDHE {
		if err := d.verifyServerKeyExchangeSignature(m); err != nil {
			return nil, d.fail(HandshakeFailureKind, alert.DecryptError, err)
		}
	}

	d.serverKeyExchange = m
	d.state = handshake.TypeServerKeyExchange
	d.log.Tracef("<- %s", handshake.TypeServerKeyExchange)
	return nil, nil
}

func (d *ClientDriver) verifyServerKeyExchangeSignature(m *handshake.MessageServerKeyExchange) error {
	if d.session.PeerECDSAPublicKey == nil {
		return errCertificateMismatch
	}
	cryptoHash, err := m.Algorithm.CryptoHash()
	if err != nil {
		return err
	}
	clientRandom := d.clientRandom.MarshalFixed()
	serverRandom := d.serverRandom.MarshalFixed()

	h := cryptoHash.New()
	h.Write(clientRandom[:]) //nolint:errcheck
	h.Write(serverRandom[:]) //nolint:errcheck
	h.Write(m.ECDHParams())  //nolint:errcheck

	if !ecdsa.VerifyASN1(d.session.PeerECDSAPublicKey, h.Sum(nil), m.Signature) {
		return errKeyExchangeSig
	}
	return nil
}

func (d *ClientDriver) onCertificateRequest(msg assembledMessage) (*Flight, error) {
	m := &handshake.MessageCertificateRequest{}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	if err := d.appendTranscript(msg, m); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}

	local, _ := signaturehash.ParseSignatureSchemes(nil, false)
	algo, ok := signaturehash.SelectFromOffered(m.SignatureHashAlgorithms, local)
	if !ok {
		return nil, d.fail(HandshakeFailureKind, alert.HandshakeFailure, errUnsupportedAlgoSet)
	}

	d.certificateRequest = m
	d.selectedCertAlgo = algo
	d.state = handshake.TypeCertificateRequest
	d.log.Tracef("<- %s", handshake.TypeCertificateRequest)
	return nil, nil
}

func (d *ClientDriver) onServerHelloDone(msg assembledMessage) (*Flight, error) {
	m := &handshake.MessageServerHelloDone{}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	if err := d.appendTranscript(msg, m); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}

	var records []OutboundRecord

	sendingCertificate := d.certificateRequest != nil && d.cfg.HasIdentity()
	if d.certificateRequest != nil {
		cert := d.clientCertificateMessage()
		d.clientCertificateMsg = cert
		h := d.nextOutboundHandshake(cert)
		if err := d.transcript.append(h); err != nil {
			return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
		}
		records = append(records, OutboundRecord{ContentType: protocol.ContentTypeHandshake, Epoch: d.session.WriteEpoch, Message: h})
		d.log.Tracef("[handshake] -> %s", handshake.TypeCertificate)
	}

	strat := strategyFor(d.cfg)[d.keyExchangeAlgo]
	cke, preMasterSecret, err := strat.clientKeyExchange(d.cfg.Endpoint(), d.serverKeyExchange)
	if err != nil {
		return nil, err
	}
	d.clientKeyExchangeMsg = cke
	d.preMasterSecret = preMasterSecret
	ckeHandshake := d.nextOutboundHandshake(cke)
	if err := d.transcript.append(ckeHandshake); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	records = append(records, OutboundRecord{ContentType: protocol.ContentTypeHandshake, Epoch: d.session.WriteEpoch, Message: ckeHandshake})
	d.log.Tracef("[handshake] -> %s", handshake.TypeClientKeyExchange)

	clientRandom := d.clientRandom.MarshalFixed()
	serverRandom := d.serverRandom.MarshalFixed()
	suite := d.session.CipherSuite

	masterSecret, err := prf.MasterSecret(preMasterSecret, clientRandom[:], serverRandom[:], suite.PRFHash())
	if err != nil {
		return nil, d.fail(HandshakeFailureKind, alert.InternalError, err)
	}
	d.session.MasterSecret = masterSecret

	if sendingCertificate {
		verify, err := d.certificateVerifyMessage()
		if err != nil {
			return nil, d.fail(HandshakeFailureKind, alert.InternalError, err)
		}
		d.certificateVerifyMsg = verify
		verifyHandshake := d.nextOutboundHandshake(verify)
		if err := d.transcript.append(verifyHandshake); err != nil {
			return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
		}
		records = append(records, OutboundRecord{ContentType: protocol.ContentTypeHandshake, Epoch: d.session.WriteEpoch, Message: verifyHandshake})
		d.log.Tracef("[handshake] -> %s", handshake.TypeCertificateVerify)
	}

	if err := suite.Init(masterSecret, clientRandom[:], serverRandom[:], true); err != nil {
		return nil, d.fail(HandshakeFailureKind, alert.InternalError, err)
	}

	records = append(records, OutboundRecord{ContentType: protocol.ContentTypeChangeCipherSpec, Epoch: d.session.WriteEpoch, Message: &protocol.ChangeCipherSpec{}})
	d.session.AdvanceWriteEpoch()
	d.log.Tracef("[handshake] -> ChangeCipherSpec (epoch: %d)", d.session.WriteEpoch)

	verifyData, err := prf.VerifyDataClient(masterSecret, d.transcript.bytes(), suite.PRFHash())
	if err != nil {
		return nil, d.fail(HandshakeFailureKind, alert.InternalError, err)
	}
	finished := &handshake.MessageFinished{VerifyData: verifyData}
	d.clientFinishedMsg = finished
	finishedHandshake := d.nextOutboundHandshake(finished)
	if err := d.transcript.append(finishedHandshake); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	d.serverExpectedTranscript = append([]byte{}, d.transcript.bytes()...)

	records = append(records, OutboundRecord{ContentType: protocol.ContentTypeHandshake, Epoch: d.session.WriteEpoch, Message: finishedHandshake})
	d.log.Tracef("[handshake] -> %s", handshake.TypeFinished)

	d.state = handshake.TypeServerHelloDone
	return &Flight{Records: records, RetransmitNeeded: true}, nil
}

// nextOutboundHandshake wraps msg in a Handshake with the next
// client-assigned message_seq, the way the teacher's flightVal helpers
// sequence a flight's outbound messages.
func (d *ClientDriver) nextOutboundHandshake(msg handshake.Message) *handshake.Handshake {
	h := &handshake.Handshake{
		Header:  handshake.Header{Type: msg.Type(), MessageSequence: d.outboundMessageSeq},
		Message: msg,
	}
	d.outboundMessageSeq++
	return h
}

// clientCertificateMessage builds the Certificate message to send in
// response to a CertificateRequest, spec.md Section 4.3: the
// configured chain or raw public key, or an empty Certificate if no
// identity was configured (RFC 5246 Section 7.4.6).
func (d *ClientDriver) clientCertificateMessage() *handshake.MessageCertificate {
	if !d.cfg.HasIdentity() {
		return &handshake.MessageCertificate{RawPublicKey: d.session.SendRawPublicKey}
	}
	if d.session.SendRawPublicKey {
		der, err := x509.MarshalPKIXPublicKey(d.cfg.PublicKey())
		if err != nil {
			return &handshake.MessageCertificate{RawPublicKey: true}
		}
		return &handshake.MessageCertificate{RawPublicKey: true, Certificate: [][]byte{der}}
	}
	return &handshake.MessageCertificate{Certificate: d.cfg.Certificate()}
}

// certificateVerifyMessage signs the transcript accumulated so far with
// the client's long-term private key, proving possession for the
// Certificate just sent, RFC 5246 Section 7.4.8.
func (d *ClientDriver) certificateVerifyMessage() (*handshake.MessageCertificateVerify, error) {
	cryptoHash, err := d.selectedCertAlgo.CryptoHash()
	if err != nil {
		return nil, err
	}
	digest := d.transcript.sum(cryptoHash.New)
	sig, err := ecdsa.SignASN1(rand.Reader, d.cfg.PrivateKey(), digest)
	if err != nil {
		return nil, err
	}
	return &handshake.MessageCertificateVerify{Algorithm: d.selectedCertAlgo, Signature: sig}, nil
}

func (d *ClientDriver) onFinished(msg assembledMessage) (*Flight, error) {
	m := &handshake.MessageFinished{}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}

	suite := d.session.CipherSuite
	expected, err := prf.VerifyDataServer(d.session.MasterSecret, d.serverExpectedTranscript, suite.PRFHash())
	if err != nil {
		return nil, d.fail(HandshakeFailureKind, alert.InternalError, err)
	}
	if subtle.ConstantTimeCompare(expected, m.VerifyData) != 1 {
		return nil, d.fail(DecryptErrorKind, alert.DecryptError, errVerifyDataMismatch)
	}

	d.log.Tracef("<- %s", handshake.TypeFinished)
	d.serverFinishedMsg = m
	d.session.Active = true
	d.state = handshake.TypeFinished
	d.transcript = transcript{}

	if d.pendingApplicationData == nil {
		return nil, nil
	}
	return &Flight{
		Records: []OutboundRecord{{
			ContentType: protocol.ContentTypeApplicationData,
			Epoch:       d.session.WriteEpoch,
			Message:     &protocol.ApplicationData{Data: d.pendingApplicationData},
		}},
	}, nil
}

func (d *ClientDriver) onHelloRequest(msg assembledMessage) (*Flight, error) {
	m := &handshake.MessageHelloRequest{}
	if err := m.Unmarshal(msg.Body); err != nil {
		return nil, d.fail(MalformedMessageKind, alert.DecodeError, err)
	}
	if !d.session.Active {
		return nil, nil
	}
	return d.Start()
}

// HandshakeLog renders the negotiated handshake as a zcrypto
// tls.ServerHandshake snapshot, built from the same per-message MakeLog
// helpers the teacher's Conn.GetHandshakeLog assembles from its
// handshake cache. It returns nil before a ServerHello has arrived.
func (d *ClientDriver) HandshakeLog() *tls.ServerHandshake {
	if d.serverHelloMsg == nil {
		return nil
	}

	hsLog := &tls.ServerHandshake{}
	hsLog.ServerHello = d.serverHelloMsg.MakeLog()

	if d.peerCertificateMsg != nil {
		hsLog.ServerCertificates = d.peerCertificateMsg.MakeLog()
	}
	if d.clientCertificateMsg != nil {
		hsLog.ClientCertificate = d.clientCertificateMsg.MakeLog()
	}
	if d.clientKeyExchangeMsg != nil {
		hsLog.ClientKeyExchange = d.clientKeyExchangeMsg.MakeLog()
	}
	if d.certificateVerifyMsg != nil {
		hsLog.ClientCertificateVerify = d.certificateVerifyMsg.MakeLog()
	}
	if d.clientFinishedMsg != nil {
		hsLog.ClientFinished = d.clientFinishedMsg.MakeLog()
	}
	if d.serverFinishedMsg != nil {
		hsLog.ServerFinished = d.serverFinishedMsg.MakeLog()
	}

	if d.session.MasterSecret != nil {
		hsLog.KeyMaterial = &tls.KeyMaterial{
			MasterSecret: &tls.MasterSecret{
				Value:  d.session.MasterSecret,
				Length: len(d.session.MasterSecret),
			},
		}
		if d.preMasterSecret != nil {
			hsLog.KeyMaterial.PreMasterSecret = &tls.PreMasterSecret{
				Value:  d.preMasterSecret,
				Length: len(d.preMasterSecret),
			}
		}
	}

	return hsLog
}

func (d *ClientDriver) fail(kind HandshakeErrorKind, desc alert.Description, err error) error {
	d.closed = true
	return newHandshakeError(kind, desc, err)
}
