package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/marmos91/brokerd/internal/logger"
	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/events"
	"github.com/marmos91/brokerd/pkg/broker/gate"
	"github.com/marmos91/brokerd/pkg/broker/names"
	"github.com/marmos91/brokerd/pkg/broker/router"
)

// Config holds the transport settings.
type Config struct {
	// Listen is the TCP address to listen on, e.g. ":7070".
	Listen string

	// MaxConnections caps concurrently served connections. Zero means
	// unlimited. Connections beyond the cap are closed immediately.
	MaxConnections int

	// ReadTimeout bounds waiting for one inbound message. Zero disables.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing one reply. Zero disables.
	WriteTimeout time.Duration

	// IdleTimeout is applied as the read deadline when ReadTimeout is
	// zero, disconnecting silent peers.
	IdleTimeout time.Duration
}

// Server accepts broker connections and dispatches their messages through
// the access gate and the command router.
type Server struct {
	cfg      Config
	gate     *gate.Gate
	router   *router.Router
	recorder *events.Recorder

	listener net.Listener
	conns    sync.WaitGroup
	slots    chan struct{}
}

// New creates a server. recorder may be nil to disable audit events.
func New(cfg Config, g *gate.Gate, r *router.Router, recorder *events.Recorder) *Server {
	if recorder == nil {
		recorder = events.NewRecorder(nil, events.RecorderConfig{})
	}

	var slots chan struct{}
	if cfg.MaxConnections > 0 {
		slots = make(chan struct{}, cfg.MaxConnections)
	}

	return &Server{
		cfg:      cfg,
		gate:     g,
		router:   r,
		recorder: recorder,
		slots:    slots,
	}
}

// Serve listens and accepts connections until ctx is cancelled. Each
// connection is served on its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	s.listener = listener
	logger.Info("broker listening on %s", listener.Addr())

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		tcpConn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				logger.Debug("accept error: %v", err)
				continue
			}
		}

		if !s.acquireSlot() {
			logger.Warn("connection limit reached, rejecting %s", tcpConn.RemoteAddr())
			_ = tcpConn.Close()
			continue
		}

		c := &conn{server: s, conn: tcpConn}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			defer s.releaseSlot()
			c.serve(ctx)
		}()
	}
}

// Shutdown waits for in-flight connections to finish, up to the context's
// deadline. The listener must already be closed (Serve returned).
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the listener; Serve returns shortly after.
func (s *Server) Stop() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) acquireSlot() bool {
	if s.slots == nil {
		return true
	}
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) releaseSlot() {
	if s.slots != nil {
		<-s.slots
	}
}

// dispatch resolves one message to its result. External messages pass
// through the access gate first; internal ones go straight to the router.
// The sender identity is validated for both, because it becomes a path
// segment downstream.
func (s *Server) dispatch(ctx context.Context, msg *Message) *command.Result {
	if msg.Command == nil {
		return command.Errorf(command.CodeBadRequest, "Invalid Request: Message has no Command Object")
	}

	tenantID := ""
	if msg.Sender != nil {
		tenantID = msg.Sender.ID
	}

	s.recorder.CommandReceived(tenantID, msg.Command.Command)
	result := s.resolve(ctx, tenantID, msg)
	s.recorder.CommandResult(tenantID, msg.Command.Command, result)
	return result
}

func (s *Server) resolve(ctx context.Context, tenantID string, msg *Message) *command.Result {
	if msg.Command.Command == command.CmdAccess {
		return s.gate.HandleAccess(ctx, tenantID)
	}

	if msg.External {
		granted, reject := s.gate.Authorize(ctx, tenantID)
		if !granted {
			return reject
		}
	} else if !names.IsValidTenantID(tenantID) {
		return command.Errorf(command.CodeBadRequest, "Invalid Request: Sender has no valid identity")
	}

	return s.router.ProcessCommand(ctx, tenantID, msg.Command)
}
