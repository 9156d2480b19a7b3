package arbiter

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/jwerle/cgi-arbiter/protocol"
	"github.com/jwerle/cgi-arbiter/transport"
)

// Dial connect to a tcp://, unix://, ws:// or wss:// address. The dialed
// transport announces connect, so the handshake is the first thing sent.
// fn, when not nil, runs after the handshake is queued and before inbound
// data is delivered; subscribe to events there.
func Dial(ctx context.Context, a string, fn func(*Conn), options ...Option) (*Conn, error) {
	ops := defaultOptions()
	ops.Apply(options)

	u, err := url.Parse(a)
	if err != nil {
		return nil, err
	}

	var (
		remote string
		build  func(...transport.Option) *transport.Conn
	)
	switch u.Scheme {
	case "tcp", "unix":
		address := u.Host
		if u.Scheme == "unix" {
			address = u.Path
		}
		var d net.Dialer
		nc, err := d.DialContext(ctx, u.Scheme, address)
		if err != nil {
			return nil, err
		}
		remote = addrString(nc.RemoteAddr())
		build = func(options ...transport.Option) *transport.Conn {
			return transport.New(nc, options...)
		}
	case "ws", "wss":
		wsc, _, err := websocket.DefaultDialer.DialContext(ctx, a, ops.RequestHeader)
		if err != nil {
			return nil, err
		}
		remote = addrString(wsc.RemoteAddr())
		build = func(options ...transport.Option) *transport.Conn {
			return transport.NewWebSocket(wsc, options...)
		}
	default:
		return nil, fmt.Errorf("not support connection: %v", a)
	}
	id := uuid.NewString()
	entry := ops.logger().WithFields(log.Fields{"Name": "Client", "ConnID": id, "Remote": remote})
	t := build(append([]transport.Option{
		transport.WithID(id),
		transport.WithConnectEvent(true),
		transport.WithLogger(entry),
	}, ops.TransportOptions...)...)

	var conn *Conn
	protocolOptions := append([]protocol.Option{protocol.WithLogger(entry)}, ops.ProtocolOptions...)
	protocol.Create(func(p *protocol.Protocol) {
		conn = &Conn{id: id, remote: remote, created: time.Now(), protocol: p, t: t, entry: entry}
		if fn != nil {
			fn(conn)
		}
	}, protocolOptions...)(t)

	entry.Info("connected")
	if ops.ConnectionEstablishedEvent != nil {
		ops.ConnectionEstablishedEvent(conn)
	}
	if ops.ConnectionClosedEvent != nil {
		go func() {
			<-t.Done()
			ops.ConnectionClosedEvent(conn)
		}()
	}
	return conn, nil
}
