// Package server implements the FrameKV TCP server: an accept loop that
// runs one frame-handling goroutine per client connection against a
// shared store.
package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/qwerin/framekv-go/internal/command"
	"github.com/qwerin/framekv-go/internal/frameio"
	"github.com/qwerin/framekv-go/internal/resp"
	"github.com/qwerin/framekv-go/internal/store"
	"github.com/qwerin/framekv-go/internal/telemetry/logger"
	"github.com/qwerin/framekv-go/internal/telemetry/metric"
	"github.com/qwerin/framekv-go/pkg/cmap"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the TCP address to accept clients on.
	Addr string
	// ReadTimeout bounds reading a command once its first byte arrived.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration
	// IdleTimeout bounds idle gaps between commands.
	IdleTimeout time.Duration
	// RateLimit is the maximum commands per second per client IP.
	// Zero disables rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    1000,
	}
}

// Server accepts client connections and serves GET/SET commands from a
// shared store.
type Server struct {
	cfg      *Config
	store    store.Store
	log      logger.Logger
	metrics  *metric.Registry
	limiters *cmap.Map[*rate.Limiter]

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	connMu sync.Mutex
	conns  map[*frameio.Conn]struct{}
}

// New creates a server. metrics may be nil to disable instrumentation.
func New(cfg *Config, st store.Store, log logger.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		log:      log,
		metrics:  metrics,
		limiters: cmap.New[*rate.Limiter](),
		conns:    make(map[*frameio.Conn]struct{}),
	}
}

// Start binds the listener and begins accepting connections. The accept
// loop runs until Shutdown is called or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return err
	}
	s.ln = ln
	s.log.Info("server listening", "addr", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.log.Error("accept loop error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight handlers
// to finish, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

	// Kick handlers out of blocking reads so the wait below can finish.
	s.connMu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(frameio.NewConn(nc))
		}()
	}
}

// serveConn runs the per-connection loop: read one frame, interpret it
// as a command, apply it to the store, write exactly one response.
// Command-level failures answer with an error frame and keep the session
// alive; protocol-level failures end it.
func (s *Server) serveConn(c *frameio.Conn) {
	s.connMu.Lock()
	s.conns[c] = struct{}{}
	s.connMu.Unlock()
	defer func() {
		c.Close()
		s.connMu.Lock()
		delete(s.conns, c)
		s.connMu.Unlock()
	}()

	// The shutdown sweep may have run between Accept and registration.
	if !s.running.Load() {
		return
	}

	c.SetTimeouts(s.cfg.IdleTimeout, s.cfg.ReadTimeout, s.cfg.WriteTimeout)

	log := s.log.With("conn", ulid.Make().String(), "remote", c.RemoteAddr().String())
	log.Debug("connection opened")

	if s.metrics != nil {
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
		defer s.metrics.ConnectionsActive.Dec()
	}

	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		limiter = s.limiterFor(c.RemoteAddr())
	}

	for {
		frame, err := c.ReadFrame()
		if err != nil {
			s.logReadError(log, c, err)
			return
		}
		if frame == nil {
			log.Debug("connection closed by peer")
			return
		}

		if limiter != nil && !limiter.Allow() {
			if werr := c.WriteFrame(resp.Error("ERR rate limit exceeded")); werr != nil {
				return
			}
			continue
		}

		if err := c.WriteFrame(s.dispatch(log, *frame)); err != nil {
			log.Debug("write error", "error", err)
			return
		}
	}
}

// dispatch turns one request frame into one response frame.
func (s *Server) dispatch(log logger.Logger, frame resp.Frame) resp.Frame {
	cmd, err := command.FromFrame(frame)
	if err != nil {
		s.countCommand("invalid", "error")
		log.Debug("bad command", "error", err)
		return resp.Error("ERR " + err.Error())
	}

	switch cmd := cmd.(type) {
	case command.Get:
		value, ok := s.store.Get(cmd.Key)
		s.countCommand("GET", "ok")
		if !ok {
			return resp.Null()
		}
		return resp.Bulk(value)

	case command.Set:
		s.store.Set(cmd.Key, cmd.Value)
		s.countCommand("SET", "ok")
		s.updateKeysGauge()
		return resp.Simple("OK")

	case command.Unknown:
		// The name is attacker-chosen; keep it out of the label set.
		s.countCommand("unknown", "error")
		log.Debug("unknown command", "name", cmd.Name)
		return resp.Error("ERR unknown command '" + cmd.Name + "'")

	default:
		// The command set is closed; this is unreachable.
		return resp.Error("ERR internal error")
	}
}

func (s *Server) logReadError(log logger.Logger, c *frameio.Conn, err error) {
	switch {
	case errors.Is(err, frameio.ErrPeerReset):
		log.Debug("peer closed mid-frame", "error", err)
	case errors.Is(err, resp.ErrMalformed), errors.Is(err, resp.ErrLimitExceeded):
		if s.metrics != nil {
			s.metrics.ProtocolErrors.Inc()
		}
		log.Warn("protocol error", "error", err)
		// Best effort: tell the peer why before dropping it.
		_ = c.WriteFrame(resp.Error("ERR protocol error: " + err.Error()))
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Debug("connection timed out")
			return
		}
		log.Debug("read error", "error", err)
	}
}

func (s *Server) limiterFor(addr net.Addr) *rate.Limiter {
	ip := addr.String()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	limiter, _ := s.limiters.GetOrSet(ip, rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateLimit))
	return limiter
}

func (s *Server) countCommand(name, outcome string) {
	if s.metrics != nil {
		s.metrics.CommandsTotal.WithLabelValues(name, outcome).Inc()
	}
}

func (s *Server) updateKeysGauge() {
	if s.metrics == nil {
		return
	}
	if counter, ok := s.store.(interface{ Len() int }); ok {
		s.metrics.KeysStored.Set(float64(counter.Len()))
	}
}
