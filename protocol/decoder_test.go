package protocol

import (
	"errors"
	"testing"

	"github.com/jwerle/cgi-arbiter/transport"
)

func messages(p *Protocol) *[]string {
	var got []string
	p.On(transport.Message, func(payload []byte) {
		got = append(got, string(payload))
	})
	return &got
}

func TestDecoderReassemblesAcrossChunks(t *testing.T) {
	src := newSource()
	p := New(src, WithDecoder(), WithHandshakeExpected())
	got := messages(p)

	var stream []byte
	stream = append(stream, Handshake...)
	stream = append(stream, mustEncode(t, "one")...)
	stream = append(stream, mustEncode(t, "two")...)

	// split at awkward offsets: inside the handshake, a length prefix and a body
	for _, cut := range [][2]int{{0, 4}, {4, 12}, {12, 14}, {14, 20}, {20, len(stream)}} {
		src.Emit(transport.Data, stream[cut[0]:cut[1]])
	}

	if len(*got) != 2 || (*got)[0] != "one" || (*got)[1] != "two" {
		t.Fatalf("messages = %q, want [one two]", *got)
	}
	// raw chunks are still queued untouched
	if n := p.Buffered(); n != 5 {
		t.Fatalf("buffered = %d, want 5", n)
	}
	if err := p.DecodeErr(); err != nil {
		t.Fatalf("decode err: %v", err)
	}
}

func TestDecoderWithoutHandshake(t *testing.T) {
	src := newSource()
	p := New(src, WithDecoder())
	got := messages(p)

	a := mustEncode(t, "a")
	b := mustEncode(t, "b")
	src.Emit(transport.Data, append(append([]byte{}, a...), b...))

	if len(*got) != 2 || (*got)[0] != "a" || (*got)[1] != "b" {
		t.Fatalf("messages = %q, want [a b]", *got)
	}
}

func TestDecoderStopsOnBadHandshake(t *testing.T) {
	src := newSource()
	p := New(src, WithDecoder(), WithHandshakeExpected())
	got := messages(p)

	src.Emit(transport.Data, []byte("GOODBYE\n"))
	src.Emit(transport.Data, mustEncode(t, "late"))

	if len(*got) != 0 {
		t.Fatalf("messages = %q, want none", *got)
	}
	if !errors.Is(p.DecodeErr(), ErrHandshake) {
		t.Fatalf("decode err = %v, want ErrHandshake", p.DecodeErr())
	}
	if p.Buffered() != 2 {
		t.Fatalf("raw chunks must still be queued, buffered = %d", p.Buffered())
	}
}

func TestDecoderMaxMessageSize(t *testing.T) {
	src := newSource()
	p := New(src, WithDecoder(), WithMaxMessageSize(2))
	got := messages(p)

	src.Emit(transport.Data, mustEncode(t, "toolong"))
	if len(*got) != 0 {
		t.Fatalf("messages = %q, want none", *got)
	}
	var decErr *DecodingError
	if !errors.As(p.DecodeErr(), &decErr) {
		t.Fatalf("decode err = %v, want DecodingError", p.DecodeErr())
	}
}

func TestNoMessagesWithoutDecoder(t *testing.T) {
	src := newSource()
	p := New(src)
	got := messages(p)
	src.Emit(transport.Data, mustEncode(t, "raw"))
	if len(*got) != 0 {
		t.Fatalf("messages = %q, want none", *got)
	}
	if p.DecodeErr() != nil {
		t.Fatal("unexpected decode error")
	}
}
