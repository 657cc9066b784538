package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/lastwatched/internal/ports"
	"go.uber.org/zap"
)

// Server is the provider host: it listens on a Unix socket and answers
// file-manager requests through a ports.ShellHost. Each request is handled
// independently; the server keeps no watched state.
type Server struct {
	host     ports.ShellHost
	iconPath string
	listener net.Listener
	sockPath string
	started  time.Time
	log      *zap.Logger

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a provider host server. A nil logger discards logs.
func NewServer(host ports.ShellHost, sockPath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		host:       host,
		sockPath:   sockPath,
		log:        log,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
	if info, err := host.OverlayInfo(0); err == nil {
		s.iconPath = info.IconPath
	}
	return s
}

// Start begins listening on the Unix socket. A socket file nobody answers on
// is treated as stale and removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("provider host already running at %s", s.sockPath)
		}
		s.log.Info("removing stale socket", zap.String("socket", s.sockPath))
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener, waits for open connections and removes the
// socket file. Safe to call more than once.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock an idle read when the server stops.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-s.done:
			conn.Close()
		case <-connDone:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			s.writeResponse(conn, Response{ID: req.ID, Result: struct{}{}})
			return
		}

		s.writeResponse(conn, s.handleRequest(req))
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodIsMember:
		return s.handleIsMember(req)
	case MethodOverlayInfo:
		return s.handleOverlayInfo(req)
	case MethodVerbs:
		return s.handleVerbs(req)
	case MethodInvoke:
		return s.handleInvoke(req)
	case MethodProperty:
		return s.handleProperty(req)
	case MethodHealth:
		return s.handleHealth(req)
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams re-marshals the generic params into dst.
func decodeParams(req Request, dst interface{}) error {
	data, err := json.Marshal(req.Params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func errorResponse(id string, err error) Response {
	return Response{ID: id, Error: err.Error(), Code: codeOf(err)}
}

func (s *Server) handleIsMember(req Request) Response {
	var params PathParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid is_member params"}
	}
	m := s.host.IsMember(params.Path)
	return Response{ID: req.ID, Result: IsMemberResult{Membership: m.String()}}
}

func (s *Server) handleOverlayInfo(req Request) Response {
	var params OverlayInfoParams
	if req.Params != nil {
		if err := decodeParams(req, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid overlay_info params"}
		}
	}
	info, err := s.host.OverlayInfo(params.BufLen)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{ID: req.ID, Result: info}
}

func (s *Server) handleVerbs(req Request) Response {
	var params PathParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid verbs params"}
	}
	verbs := s.host.Verbs(params.Path)
	if verbs == nil {
		verbs = []ports.Verb{}
	}
	return Response{ID: req.ID, Result: VerbsResult{Verbs: verbs}}
}

func (s *Server) handleInvoke(req Request) Response {
	var params InvokeParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid invoke params"}
	}
	if err := s.host.InvokeCommand(params.Verb, params.Path); err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{ID: req.ID, Result: struct{}{}}
}

func (s *Server) handleProperty(req Request) Response {
	var params PropertyParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid property params"}
	}
	v, err := s.host.Property(params.Path, params.Key)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{ID: req.ID, Result: PropertyResult{Value: v}}
}

func (s *Server) handleHealth(req Request) Response {
	return Response{
		ID: req.ID,
		Result: HealthResult{
			Status: "ok",
			Uptime: time.Since(s.started).Round(time.Second).String(),
			Icon:   s.iconPath,
		},
	}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Warn("marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
