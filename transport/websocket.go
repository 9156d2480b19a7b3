// Package transport
package transport

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// NewWebSocket expose a websocket connection as a byte stream Source.
// Binary messages are concatenated; a close frame from the peer ends the stream.
func NewWebSocket(c *websocket.Conn, options ...Option) *Conn {
	return New(&wsConn{Conn: c}, options...)
}

type wsConn struct {
	*websocket.Conn
	reader io.Reader
}

func (ws *wsConn) Read(buf []byte) (int, error) {
	for {
		if ws.reader == nil {
			_, r, err := ws.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			ws.reader = r
		}

		n, err := ws.reader.Read(buf)
		if err == io.EOF {
			ws.reader = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (ws *wsConn) Write(buf []byte) (int, error) {
	err := ws.Conn.WriteMessage(websocket.BinaryMessage, buf)
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}

// CloseWrite send a normal close frame, the peer answers with its own
// close frame which ends our read side.
func (ws *wsConn) CloseWrite() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return ws.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func (ws *wsConn) RemoteAddr() net.Addr {
	return ws.Conn.RemoteAddr()
}

func (ws *wsConn) Close() error {
	err := ws.Conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
