package arbiter

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jwerle/cgi-arbiter/protocol"
	"github.com/jwerle/cgi-arbiter/transport"
)

// Conn is one framed connection held by a Server or returned by Dial.
type Conn struct {
	id       string
	remote   string
	created  time.Time
	protocol *protocol.Protocol
	t        *transport.Conn
	entry    *log.Entry
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Remote() string {
	return c.remote
}

func (c *Conn) Created() time.Time {
	return c.created
}

func (c *Conn) Protocol() *protocol.Protocol {
	return c.protocol
}

// Done is closed once the underlying transport has shut down.
func (c *Conn) Done() <-chan struct{} {
	return c.t.Done()
}

// Err returns the transport failure that ended the connection, if any.
func (c *Conn) Err() error {
	return c.t.Err()
}

func (c *Conn) log() *log.Entry {
	if c.entry == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return c.entry
}

// Close drop the connection immediately; use Protocol().End to finish gracefully.
func (c *Conn) Close() error {
	return c.t.Close()
}

type ConnHolder interface {
	// GetConn get connection by id
	GetConn(id string) *Conn

	// GetConns get all live connections
	GetConns() []*Conn

	// AddConn add a connection into holder
	AddConn(conn *Conn)

	// RemoveConn remove connection from holder
	RemoveConn(conn *Conn)
}

func newConnHolder() *connHolder {
	return &connHolder{
		conns: map[string]*Conn{},
	}
}

type connHolder struct {
	lock  sync.RWMutex
	conns map[string]*Conn
}

func (h *connHolder) AddConn(c *Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.conns[c.id] = c
}

func (h *connHolder) RemoveConn(c *Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.conns, c.id)
}

func (h *connHolder) GetConn(id string) *Conn {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.conns[id]
}

func (h *connHolder) GetConns() []*Conn {
	h.lock.RLock()
	defer h.lock.RUnlock()

	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}
