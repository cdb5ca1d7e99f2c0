package server

import (
	"fmt"
	"net"
	"sync"

	"gopkg.in/op/go-logging.v1"

	"postbox/internal/log"
	"postbox/internal/server/config"
	"postbox/internal/store"
	"postbox/internal/worker"
)

// Server accepts connections and dispatches the postbox protocol.
type Server struct {
	worker.Worker

	cfg        *config.Config
	logBackend *log.Backend
	log        *logging.Logger

	sessions  *store.SessionStore
	accounts  *store.AccountStore
	mailboxes *store.MailboxStore

	listener net.Listener

	connLock sync.Mutex
	conns    map[uint64]net.Conn
	connID   uint64
}

// New constructs a Server from cfg. Call Start to begin accepting.
func New(cfg *config.Config) (*Server, error) {
	backend, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:        cfg,
		logBackend: backend,
		log:        backend.GetLogger("server"),
		sessions:   store.NewSessionStore(),
		accounts:   store.NewAccountStore(),
		mailboxes:  store.NewMailboxStore(),
		conns:      make(map[uint64]net.Conn),
	}, nil
}

// Start binds the listen address and launches the accept loop.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Address, err)
	}
	s.listener = l
	s.Go(s.acceptWorker)
	return nil
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Halt stops accepting, releases parked fetches, closes every live
// connection, and waits for all handlers to return.
func (s *Server) Halt() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.mailboxes.Close()

	s.connLock.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.connLock.Unlock()

	s.Worker.Halt()
	s.log.Notice("Shutdown complete.")
}

func (s *Server) acceptWorker() {
	addr := s.listener.Addr()
	s.log.Noticef("Listening on: %v", addr)
	defer s.log.Noticef("Stopping listening on: %v", addr)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.HaltCh():
			default:
				if e, ok := err.(net.Error); ok && e.Temporary() {
					continue
				}
				s.log.Errorf("accept failure: %v", err)
			}
			return
		}
		s.log.Debugf("Accepted new connection: %v", conn.RemoteAddr())
		s.onNewConn(conn)
	}
}

func (s *Server) onNewConn(conn net.Conn) {
	s.connLock.Lock()
	s.connID++
	id := s.connID
	s.conns[id] = conn
	s.connLock.Unlock()

	s.Go(func() {
		defer func() {
			s.connLock.Lock()
			delete(s.conns, id)
			s.connLock.Unlock()
		}()
		newConnection(s, conn, id).run()
	})
}
