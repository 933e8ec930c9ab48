package ipc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"lyrad/internal/config"
)

// Server answers status and tunable-attribute requests over a unix
// socket. Attribute writes take effect on the next poll tick; they are
// not persisted to the config file.
type Server struct {
	socketPath string
	version    string
	cfg        *config.Config
	polling    func() bool
	log        *slog.Logger

	listener  net.Listener
	startedAt time.Time

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
	running atomic.Bool
	stopc   chan struct{}
}

// NewServer creates an IPC server. polling reports whether the poll
// loop is currently scheduled (it pauses across suspend).
func NewServer(socketPath, version string, cfg *config.Config, polling func() bool, log *slog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		version:    version,
		cfg:        cfg,
		polling:    polling,
		log:        log,
		conns:      make(map[net.Conn]struct{}),
		stopc:      make(chan struct{}),
	}
}

// Start begins listening on the unix socket.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o660); err != nil {
		listener.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	s.listener = listener
	s.startedAt = time.Now()
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("ipc server listening", "socket", s.socketPath)
	return nil
}

// Stop shuts the server down and waits for connection handlers to
// finish.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	close(s.stopc)
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	os.Remove(s.socketPath)
	return nil
}

// SocketPath returns the socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopc:
				return
			default:
				if !errors.Is(err, net.ErrClosed) {
					s.log.Warn("accept failed", "error", err)
				}
				continue
			}
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		msg, err := ReadMessage(conn)
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
					s.log.Debug("connection read failed", "error", err)
				}
			}
			return
		}

		resp := s.processMessage(msg)
		if resp == nil {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := resp.Write(conn); err != nil {
			return
		}
	}
}

func (s *Server) processMessage(msg *Message) *Message {
	id := msg.Header.RequestID

	switch msg.Header.Type {
	case MsgPing:
		return NewMessage(MsgPong, id, nil)

	case MsgStatusRequest:
		return s.handleStatus(id)

	case MsgGetAttrs:
		return s.handleGetAttrs(id)

	case MsgSetAttr:
		return s.handleSetAttr(id, msg.Payload)

	default:
		return NewErrorMessage(id, ErrInvalidRequest,
			fmt.Sprintf("unknown message type 0x%04x", uint16(msg.Header.Type)))
	}
}

func (s *Server) handleStatus(id uint32) *Message {
	sx, sy := s.cfg.MouseSpeed()
	resp := &StatusResponse{
		Version:        s.version,
		StartedAt:      s.startedAt,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		Polling:        s.polling(),
		Device:         s.cfg.DevicePath(),
		MouseSpeedX:    sx,
		MouseSpeedY:    sy,
		PollIntervalMs: int(s.cfg.PollInterval() / time.Millisecond),
	}
	m, err := NewResponse(MsgStatusResponse, id, resp)
	if err != nil {
		return NewErrorMessage(id, ErrInternalError, err.Error())
	}
	return m
}

func (s *Server) handleGetAttrs(id uint32) *Message {
	sx, sy := s.cfg.MouseSpeed()
	resp := &GetAttrsResponse{Attrs: map[string]int{
		AttrMouseSpeedX:    sx,
		AttrMouseSpeedY:    sy,
		AttrPollIntervalMs: int(s.cfg.PollInterval() / time.Millisecond),
	}}
	m, err := NewResponse(MsgGetAttrsResp, id, resp)
	if err != nil {
		return NewErrorMessage(id, ErrInternalError, err.Error())
	}
	return m
}

func (s *Server) handleSetAttr(id uint32, payload []byte) *Message {
	var req SetAttrRequest
	if err := Decode(payload, &req); err != nil {
		return NewErrorMessage(id, ErrInvalidRequest, "invalid set request")
	}

	var err error
	switch req.Name {
	case AttrMouseSpeedX:
		err = s.cfg.SetMouseSpeedX(req.Value)
	case AttrMouseSpeedY:
		err = s.cfg.SetMouseSpeedY(req.Value)
	case AttrPollIntervalMs:
		err = s.cfg.SetPollIntervalMs(req.Value)
	default:
		return NewErrorMessage(id, ErrUnknownAttr, fmt.Sprintf("unknown attribute %q", req.Name))
	}

	if err != nil {
		return NewErrorMessage(id, ErrOutOfRange, err.Error())
	}

	s.log.Info("attribute updated", "attr", req.Name, "value", req.Value)
	m, mErr := NewResponse(MsgSetAttrResp, id, &SetAttrResponse{Success: true})
	if mErr != nil {
		return NewErrorMessage(id, ErrInternalError, mErr.Error())
	}
	return m
}
