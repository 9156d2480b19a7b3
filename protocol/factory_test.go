package protocol

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/jwerle/cgi-arbiter/transport"
)

func TestCreateWrapsEachSource(t *testing.T) {
	var got []*Protocol
	handler := Create(func(p *Protocol) {
		got = append(got, p)
	}, WithVersion(3))

	a, b := newSource(), newSource()
	handler(a)
	handler(b)

	if len(got) != 2 {
		t.Fatalf("callbacks = %d, want 2", len(got))
	}
	if got[0].Source() != a || got[1].Source() != b {
		t.Fatal("protocols not bound to their sources")
	}
	if got[0].ID() == got[1].ID() {
		t.Fatal("protocol ids must differ")
	}
	if got[0].Version() != 3 {
		t.Fatalf("version = %d, want 3", got[0].Version())
	}
}

func TestCreateHandshakePrecedesCallbackWrites(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	handler := Create(func(p *Protocol) {
		p.Write("hello")
	})
	handler(transport.New(local, transport.WithConnectEvent(true)))

	remote.SetReadDeadline(time.Now().Add(5 * time.Second))
	r := bufio.NewReader(remote)
	if err := ReadHandshake(r); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	frame, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	args, err := Decode(frame)
	if err != nil || string(args[0]) != "hello" {
		t.Fatalf("frame = %q, %v; want hello", args, err)
	}
}

func TestLocalPassThrough(t *testing.T) {
	l := Local()
	var got []string
	l.On(transport.Data, func(chunk []byte) { got = append(got, string(chunk)) })

	l.Write([]byte("raw"))
	if len(got) != 1 || got[0] != "raw" {
		t.Fatalf("data = %q, want [raw]", got)
	}
}

func TestProtocolOverLocalLoopsFrames(t *testing.T) {
	l := Local()
	p := New(l, WithDecoder(), WithHandshakeExpected())
	got := messages(p)

	l.Connect()
	p.Write("echo")

	if len(*got) != 1 || (*got)[0] != "echo" {
		t.Fatalf("messages = %q, want [echo]", *got)
	}
	if string(p.Read(0)) != Handshake {
		t.Fatal("first looped chunk should be the handshake")
	}
}
