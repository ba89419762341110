// Package client talks to a reservation server over one persistent
// connection and projects its responses into display rows.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go-pharmacy-reservation/internal/wire"

	"github.com/sirupsen/logrus"
)

// livenessWait bounds the read IsConnected uses to notice a closed peer.
const livenessWait = time.Millisecond

var (
	ErrNotConnected     = errors.New("not connected")
	ErrConnectionClosed = errors.New("server closed the connection")
)

// TransportError reports a connection that is missing or failed mid
// exchange. The session is disconnected when one is returned.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a server that closed the stream or answered with
// something that is not a response envelope. The session is disconnected
// when one is returned.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Session owns one connection to the server and allows one request in
// flight at a time. It never reconnects on its own.
type Session struct {
	addr    string
	timeout time.Duration
	log     *logrus.Logger

	mu    sync.Mutex
	conn  net.Conn
	token string
}

// NewSession prepares a session for addr. timeout bounds each dial and
// round trip; zero means no limit.
func NewSession(addr string, timeout time.Duration, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{addr: addr, timeout: timeout, log: log}
}

// Connect dials the server. Connecting an open session is a no-op.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return &TransportError{Op: "connect", Err: err}
	}
	s.conn = conn
	s.log.Debugf("Connected to %s", s.addr)
	return nil
}

// IsConnected reports whether the session holds a connection the server
// has not closed. The server never writes unprompted, so a short read that
// times out means the connection is idle; EOF, a reset or stray bytes mean
// it is gone and the session disconnects. A peer that vanished without
// closing still reads as connected until the next request fails.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return false
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(livenessWait)); err != nil {
		s.closeLocked()
		return false
	}
	var buf [1]byte
	_, err := s.conn.Read(buf[:])
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if err := s.conn.SetReadDeadline(time.Time{}); err != nil {
			s.closeLocked()
			return false
		}
		return true
	}
	s.log.Debugf("Connection to %s lost: %v", s.addr, err)
	s.closeLocked()
	return false
}

// Disconnect closes the connection. The session token survives so a later
// Connect can resume without logging in again.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// SetToken attaches a session token to every later request.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the current session token, if any.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SendRequest writes one request envelope and waits for its response.
func (s *Session) SendRequest(envelope []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundTripLocked(envelope)
}

func (s *Session) roundTripLocked(envelope []byte) ([]byte, error) {
	if s.conn == nil {
		return nil, &TransportError{Op: "send", Err: ErrNotConnected}
	}
	if s.timeout > 0 {
		if err := s.conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
			s.closeLocked()
			return nil, &TransportError{Op: "send", Err: err}
		}
	}
	if err := wire.WriteFrame(s.conn, envelope); err != nil {
		s.closeLocked()
		return nil, &TransportError{Op: "send", Err: err}
	}
	reply, err := wire.ReadFrame(s.conn)
	if err != nil {
		s.closeLocked()
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil, &ProtocolError{Err: ErrConnectionClosed}
		case errors.Is(err, wire.ErrFrameTooLarge):
			return nil, &ProtocolError{Err: err}
		default:
			return nil, &TransportError{Op: "receive", Err: err}
		}
	}
	return reply, nil
}

// Send encodes action and params, attaching the session token when one is
// set, and decodes the response.
func (s *Session) Send(action string, params ...wire.Param) (*wire.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && action != wire.ActionLogin && action != wire.ActionRegister {
		params = append(params[:len(params):len(params)], wire.String(wire.ParamToken, s.token))
	}
	reply, err := s.roundTripLocked(wire.EncodeRequest(action, params...))
	if err != nil {
		return nil, err
	}
	response, err := wire.DecodeResponse(reply)
	if err != nil {
		s.closeLocked()
		return nil, &ProtocolError{Err: err}
	}
	if !response.OK() {
		s.log.Debugf("%s failed: %s", action, response.Message)
	}
	return response, nil
}
