package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketEcho(t *testing.T) {
	ended := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsc, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		c := NewWebSocket(wsc)
		c.On(Data, func(chunk []byte) {
			c.Write(chunk)
		})
		c.On(End, func([]byte) {
			close(ended)
		})
		c.Start()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.BinaryMessage, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "ping" {
		t.Fatalf("echo = %q, want ping", msg)
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	client.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))

	select {
	case <-ended:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not see end")
	}
}
