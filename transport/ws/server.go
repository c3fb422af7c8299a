package ws

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
)

func serverUpgradeHandler(srv *Server) func(http.ResponseWriter, *http.Request) {
	upgrader := websocketUpgrader()

	return func(w http.ResponseWriter, r *http.Request) {
		logger := srv.logger.With(
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("path", r.URL.Path),
		)

		logger.Debug("handling websocket upgrade")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("upgrade failed", slog.Any("err", err))
			return
		}

		defer conn.Close()

		sess := newSession(conn, logger)
		srv.c <- sess
		sess.process(r.Context())
	}
}

type ServerConfig struct {
	Addr string
	Path string
}

// Server accepts WebSocket connections and hands each one over as a
// Session on Channel.
type Server struct {
	logger   *slog.Logger
	config   ServerConfig
	c        chan *Session
	port     int
	http     *http.Server
	mux      *http.ServeMux
	listener net.Listener
}

// Channel delivers newly accepted sessions.
func (s *Server) Channel() <-chan *Session {
	return s.c
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Port returns the bound TCP port, useful with Addr ":0" in tests.
func (s *Server) Port() int {
	return s.port
}

// Handle registers an additional HTTP handler on the server's mux,
// e.g. a metrics endpoint.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Run binds the listener and starts serving. It returns once the
// server is accepting connections.
func (s *Server) Run(ctx context.Context) error {
	var err error
	s.listener, err = net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	if tcpAddr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
		s.logger = slog.Default().With(
			slog.String("transport", "websocket"),
			slog.String("component", "server"),
			slog.String("addr", tcpAddr.String()),
		)
	}

	s.logger.Info("listening")

	ready := make(chan struct{})
	serveErr := make(chan error, 1)
	go func() {
		close(ready)
		if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ready:
		return nil
	case err := <-serveErr:
		return err
	}
}

func NewServer(config ServerConfig) *Server {
	s := &Server{
		logger: slog.Default().With(
			slog.String("transport", "websocket"),
			slog.String("component", "server"),
		),
		config: config,
		c:      make(chan *Session, 1),
		mux:    http.NewServeMux(),
	}

	path := config.Path
	if path == "" {
		path = "/ws"
	}
	s.mux.HandleFunc(path, serverUpgradeHandler(s))

	s.http = &http.Server{
		Addr:    s.config.Addr,
		Handler: s.mux,
	}

	return s
}
