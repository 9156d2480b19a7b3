package arbiter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/jwerle/cgi-arbiter/protocol"
	"github.com/jwerle/cgi-arbiter/transport"
)

// NewServer create a server calling handler for every accepted connection.
// handler runs before any inbound data is delivered.
func NewServer(handler func(*Conn), options ...Option) *Server {
	s := &Server{
		connHolder: newConnHolder(),
		handler:    handler,
		ws:         &websocket.Upgrader{},
		options:    defaultOptions(),
	}
	s.options.Apply(options)
	s.log = s.options.logger().WithField("Name", "Server")
	return s
}

type Server struct {
	*connHolder
	handler func(*Conn)
	ws      *websocket.Upgrader
	options *Options
	log     *log.Entry

	lock      sync.Mutex
	closed    bool
	listeners []net.Listener
	servers   []*http.Server
}

func (s *Server) Options() *Options {
	return s.options
}

// Serve accept connections from l until it is closed.
func (s *Server) Serve(l net.Listener) error {
	if !s.track(l) {
		l.Close()
		return net.ErrClosed
	}
	s.log.Infof("listening on %s %s", l.Addr().Network(), l.Addr())

	for {
		c, err := l.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.serveConn(c, addrString(c.RemoteAddr()), func(options ...transport.Option) *transport.Conn {
			return transport.New(c, options...)
		})
	}
}

func (s *Server) RunTcp(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// RunUnix serve on a unix socket, replacing a stale socket file.
func (s *Server) RunUnix(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

func (s *Server) RegisterWs(path string, mux *http.ServeMux) {
	mux.HandleFunc(path, s.wsAccept)
}

// RunWs serve websocket connections, addr is a url like ws://+:8080/websocket
func (s *Server) RunWs(addr string) error {
	u, err := url.Parse(addr)
	if err != nil {
		return err
	}

	port := u.Port()
	if len(port) == 0 {
		switch u.Scheme {
		case "ws":
			port = ":80"
		case "wss":
			port = ":443"
		default:
			return fmt.Errorf("url %s is invalid", addr)
		}
	} else {
		port = ":" + port
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	s.RegisterWs(path, mux)
	hs := &http.Server{Addr: port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return net.ErrClosed
	}
	s.servers = append(s.servers, hs)
	s.lock.Unlock()

	s.log.Infof("listening on %s%s", port, path)
	err = hs.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) wsAccept(w http.ResponseWriter, r *http.Request) {
	wsc, err := s.ws.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade error %v", err)
		return
	}
	s.serveConn(wsc.UnderlyingConn(), r.RemoteAddr, func(options ...transport.Option) *transport.Conn {
		return transport.NewWebSocket(wsc, options...)
	})
}

func (s *Server) serveConn(raw net.Conn, remote string, newTransport func(...transport.Option) *transport.Conn) {
	if s.isClosed() {
		raw.Close()
		return
	}

	id := uuid.NewString()
	entry := s.log.WithFields(log.Fields{"ConnID": id, "Remote": remote})
	options := append([]transport.Option{
		transport.WithID(id),
		transport.WithConnectEvent(s.options.Handshake),
		transport.WithLogger(entry),
	}, s.options.TransportOptions...)
	t := newTransport(options...)

	protocolOptions := append([]protocol.Option{protocol.WithLogger(entry)}, s.options.ProtocolOptions...)
	protocol.Create(func(p *protocol.Protocol) {
		c := &Conn{id: id, remote: remote, created: time.Now(), protocol: p, t: t, entry: entry}
		s.AddConn(c)
		entry.Info("accept")

		go func() {
			<-t.Done()
			s.RemoveConn(c)
			entry.Info("connection closed")
			if s.options.ConnectionClosedEvent != nil {
				s.options.ConnectionClosedEvent(c)
			}
		}()

		if s.options.ConnectionEstablishedEvent != nil {
			s.options.ConnectionEstablishedEvent(c)
		}
		if s.handler != nil {
			s.handler(c)
		}
	}, protocolOptions...)(t)
}

// Close stop listening and drop every live connection.
func (s *Server) Close() error {
	s.lock.Lock()
	s.closed = true
	listeners := s.listeners
	servers := s.servers
	s.listeners, s.servers = nil, nil
	s.lock.Unlock()

	var errs []error
	for _, l := range listeners {
		if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	for _, hs := range servers {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := hs.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	for _, c := range s.GetConns() {
		c.Close()
	}
	return errors.Join(errs...)
}

func (s *Server) track(l net.Listener) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return false
	}
	s.listeners = append(s.listeners, l)
	return true
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

func (s *Server) isClosed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}
