package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/marmos91/brokerd/internal/logger"
	"github.com/marmos91/brokerd/pkg/broker/command"
)

// maxMessageBytes bounds one newline-delimited message. Large enough for
// any legal write (file contents are capped well below this by callers),
// small enough to stop a hostile peer from ballooning memory.
const maxMessageBytes = 8 << 20

// Message is the inbound wire envelope.
type Message struct {
	// ID correlates the reply with the request; echoed back verbatim.
	ID json.RawMessage `json:"id,omitempty"`

	// Sender identifies the calling tenant.
	Sender *Sender `json:"sender,omitempty"`

	// External marks messages from untrusted callers, which must pass the
	// access gate.
	External bool `json:"external,omitempty"`

	// Command is the request payload.
	Command *command.Command `json:"Command,omitempty"`
}

// Sender carries the caller identity supplied by the transport.
type Sender struct {
	ID string `json:"id"`
}

// Reply is the outbound wire envelope.
type Reply struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result *command.Result `json:"result"`
}

type conn struct {
	server *Server
	conn   net.Conn
}

// serve reads newline-delimited JSON messages until the peer disconnects,
// a deadline fires, or ctx is cancelled.
func (c *conn) serve(ctx context.Context) {
	defer c.conn.Close()
	logger.Debug("new connection from %s", c.conn.RemoteAddr())

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessageBytes)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.setReadDeadline(); err != nil {
			return
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && err != io.EOF {
				logger.Debug("connection %s read error: %v", c.conn.RemoteAddr(), err)
			}
			return
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if err := c.handleMessage(ctx, line); err != nil {
			logger.Debug("connection %s: %v", c.conn.RemoteAddr(), err)
			return
		}
	}
}

// handleMessage decodes one message, dispatches it, and writes the reply.
// A decode failure is answered rather than dropped, so callers always get
// an envelope back.
func (c *conn) handleMessage(ctx context.Context, line []byte) error {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		logger.Debug("malformed message from %s: %v", c.conn.RemoteAddr(), err)
		return c.sendReply(&Reply{
			Result: command.Errorf(command.CodeBadRequest, "Invalid Request: malformed message"),
		})
	}

	result := c.server.dispatch(ctx, &msg)
	return c.sendReply(&Reply{ID: msg.ID, Result: result})
}

func (c *conn) setReadDeadline() error {
	timeout := c.server.cfg.ReadTimeout
	if timeout == 0 {
		timeout = c.server.cfg.IdleTimeout
	}
	if timeout == 0 {
		return nil
	}
	return c.conn.SetReadDeadline(time.Now().Add(timeout))
}

func (c *conn) sendReply(reply *Reply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		// The reply envelope is built from marshal-safe types; failing here
		// is a programming error worth surfacing loudly.
		return fmt.Errorf("encode reply: %w", err)
	}

	if timeout := c.server.cfg.WriteTimeout; timeout != 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}
