package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"sync"

	"github.com/berrythewa/clipdeck/pkg/utils"
)

// Handler processes one request and produces the reply.
type Handler func(*Request) *Response

// Server owns the unix listener, dispatches requests to the handler, and
// fans pushed events out to subscribed connections.
type Server struct {
	path    string
	handler Handler
	logger  *utils.Logger

	mu   sync.Mutex
	ln   net.Listener
	subs map[net.Conn]*json.Encoder
}

// NewServer builds a server listening on the given socket path.
func NewServer(path string, handler Handler, logger *utils.Logger) *Server {
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}
	return &Server{
		path:    path,
		handler: handler,
		logger:  logger,
		subs:    make(map[net.Conn]*json.Encoder),
	}
}

// Serve accepts connections until the context is cancelled. A stale socket
// from a crashed run is removed first.
func (s *Server) Serve(ctx context.Context) error {
	os.Remove(s.path)
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	defer os.Remove(s.path)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			s.logger.Warn("IPC accept failed", "error", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var req Request
	if err := dec.Decode(&req); err != nil {
		enc.Encode(Errorf("invalid request: " + err.Error()))
		conn.Close()
		return
	}

	if req.Command == CmdSubscribe {
		s.serveSubscriber(conn, dec, enc)
		return
	}

	resp := s.handler(&req)
	if err := enc.Encode(resp); err != nil {
		s.logger.Debug("Failed to write IPC response", "error", err)
	}
	conn.Close()
}

// serveSubscriber keeps the connection open and streams events until the
// peer disconnects.
func (s *Server) serveSubscriber(conn net.Conn, dec *json.Decoder, enc *json.Encoder) {
	if err := enc.Encode(OK(nil)); err != nil {
		conn.Close()
		return
	}

	s.mu.Lock()
	s.subs[conn] = enc
	s.mu.Unlock()
	s.logger.Debug("Presentation client subscribed")

	// Block until the peer hangs up; subscribers send nothing further.
	var discard json.RawMessage
	for dec.Decode(&discard) == nil {
	}

	s.mu.Lock()
	delete(s.subs, conn)
	s.mu.Unlock()
	conn.Close()
}

// Broadcast pushes an event to every subscriber, dropping connections whose
// writes fail.
func (s *Server) Broadcast(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, enc := range s.subs {
		if err := enc.Encode(ev); err != nil {
			delete(s.subs, conn)
			conn.Close()
		}
	}
}
