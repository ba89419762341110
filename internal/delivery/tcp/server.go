package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go-pharmacy-reservation/config"
	"go-pharmacy-reservation/internal/wire"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxConnections = 256
	acceptRetryDelay      = 50 * time.Millisecond
	shutdownPollInterval  = 50 * time.Millisecond
	writeTimeout          = 10 * time.Second
)

var ErrServerClosed = errors.New("tcp: server closed")

// Server accepts framed request envelopes over TCP. Each connection is
// served by one worker from a bounded pool and handles its requests in
// order; connections beyond the pool size are refused with a FAILURE.
type Server struct {
	addr        string
	router      *Router
	log         *logrus.Logger
	idleTimeout time.Duration
	pool        *ants.Pool

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]net.Conn
	wg       sync.WaitGroup
	closing  atomic.Bool
}

func NewServer(addr string, cfg config.ServerConfig, router *Router, log *logrus.Logger) (*Server, error) {
	size := cfg.MaxConnections
	if size <= 0 {
		size = defaultMaxConnections
	}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			log.Errorf("Connection worker panic: %v", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return &Server{
		addr:        addr,
		router:      router,
		log:         log,
		idleTimeout: cfg.IdleTimeout,
		pool:        pool,
		conns:       make(map[string]net.Conn),
	}, nil
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Shutdown is
// called. It returns nil in both cases.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closing.Load() {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.closeListener()
		case <-stop:
		}
	}()

	s.log.Infof("TCP server listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closing.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warnf("Failed to accept connection: %+v", err)
			time.Sleep(acceptRetryDelay)
			continue
		}
		s.dispatch(ctx, conn)
	}
}

func (s *Server) dispatch(ctx context.Context, conn net.Conn) {
	sess := NewSession(conn.RemoteAddr().String())
	s.track(sess, conn)
	s.wg.Add(1)

	err := s.pool.Submit(func() {
		defer s.wg.Done()
		defer s.untrack(sess)
		s.serveConn(ctx, sess, conn)
	})
	if err != nil {
		s.wg.Done()
		s.untrack(sess)
		s.log.Warnf("Refusing connection from %s: %v", sess.RemoteAddr, err)
		s.refuse(conn)
	}
}

// refuse answers the first request slot with a busy FAILURE and hangs up.
func (s *Server) refuse(conn net.Conn) {
	defer conn.Close()
	reply, err := wire.EncodeResponse(wire.Failure("server busy, try again later"))
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	wire.WriteFrame(conn, reply)
}

func (s *Server) serveConn(ctx context.Context, sess *Session, conn net.Conn) {
	defer conn.Close()
	log := s.log.WithFields(logrus.Fields{"session": sess.ID, "remote": sess.RemoteAddr})
	log.Debug("Connection opened")

	for !s.closing.Load() {
		if s.idleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		payload, err := wire.ReadFrame(conn)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				log.Debug("Connection closed by peer")
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Debug("Connection idle, closing")
			case errors.Is(err, wire.ErrFrameTooLarge):
				log.Warnf("Oversized request: %v", err)
				s.write(conn, wire.Failure(err.Error()))
			default:
				log.Warnf("Failed to read request: %+v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Time{})

		if err := s.write(conn, s.router.Dispatch(ctx, sess, payload)); err != nil {
			log.Debugf("Failed to write response: %v", err)
			return
		}
	}
}

func (s *Server) write(conn net.Conn, response *wire.Response) error {
	reply, err := wire.EncodeResponse(response)
	if err != nil {
		s.log.Warnf("Failed to encode response: %+v", err)
		if reply, err = wire.EncodeResponse(wire.Failure(internalErrorMessage)); err != nil {
			return err
		}
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return wire.WriteFrame(conn, reply)
}

func (s *Server) track(sess *Session, conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[sess.ID] = conn
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, sess.ID)
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

// expireReads unblocks every connection waiting for its next request.
// Requests already being handled finish and are answered first.
func (s *Server) expireReads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, conn := range s.conns {
		conn.SetReadDeadline(now)
	}
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
}

// ActiveConnections reports how many connections are being served.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown stops accepting connections and waits for open ones to finish
// their current request. When ctx expires first, remaining connections
// are closed and ctx's error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.closing.Swap(true) {
		return nil
	}
	s.closeListener()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()
	defer s.pool.Release()

	for {
		s.expireReads()
		select {
		case <-done:
			s.log.Info("TCP server stopped")
			return nil
		case <-ctx.Done():
			s.closeConns()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
