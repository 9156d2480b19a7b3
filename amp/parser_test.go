package amp

import (
	"errors"
	"testing"
)

func collect(t *testing.T, p *Parser, chunks ...[]byte) [][][]byte {
	t.Helper()
	var msgs [][][]byte
	for _, c := range chunks {
		if err := p.Feed(c, func(args [][]byte) { msgs = append(msgs, args) }); err != nil {
			t.Fatalf("feed: %v", err)
		}
	}
	return msgs
}

func TestParserByteAtATime(t *testing.T) {
	a, _ := Encode([][]byte{[]byte("first")})
	b, _ := Encode([][]byte{[]byte("second"), []byte("x")})
	stream := append(append([]byte{}, a...), b...)

	p := NewParser()
	var chunks [][]byte
	for i := range stream {
		chunks = append(chunks, stream[i:i+1])
	}
	msgs := collect(t, p, chunks...)

	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if string(msgs[0][0]) != "first" {
		t.Fatalf("msg[0] = %q", msgs[0][0])
	}
	if len(msgs[1]) != 2 || string(msgs[1][0]) != "second" || string(msgs[1][1]) != "x" {
		t.Fatalf("msg[1] = %q", msgs[1])
	}
	if p.Pending() {
		t.Fatal("parser still pending after complete messages")
	}
}

func TestParserCoalescedChunk(t *testing.T) {
	a, _ := Encode([][]byte{[]byte("a")})
	empty, _ := Encode([][]byte{{}})
	none, _ := Encode(nil)
	stream := append(append(append([]byte{}, a...), empty...), none...)

	msgs := collect(t, NewParser(), stream)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	if len(msgs[1]) != 1 || len(msgs[1][0]) != 0 {
		t.Fatalf("empty arg message = %q", msgs[1])
	}
	if len(msgs[2]) != 0 {
		t.Fatalf("zero arg message = %q", msgs[2])
	}
}

func TestParserPartialMessagePending(t *testing.T) {
	a, _ := Encode([][]byte{[]byte("partial")})
	p := NewParser()
	msgs := collect(t, p, a[:6])
	if len(msgs) != 0 {
		t.Fatalf("messages = %d, want 0", len(msgs))
	}
	if !p.Pending() {
		t.Fatal("expected pending partial message")
	}
	msgs = collect(t, p, a[6:])
	if len(msgs) != 1 || string(msgs[0][0]) != "partial" {
		t.Fatalf("messages = %q", msgs)
	}
}

func TestParserVersionErrorSticks(t *testing.T) {
	p := NewParser()
	err := p.Feed([]byte("HANDSHAKE\n"), func([][]byte) {})
	if !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
	good, _ := Encode([][]byte{[]byte("ok")})
	if err := p.Feed(good, func([][]byte) { t.Fatal("unexpected message") }); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected sticky ErrVersion, got %v", err)
	}
	if !errors.Is(p.Err(), ErrVersion) {
		t.Fatalf("Err() = %v", p.Err())
	}
}

func TestParserArgTooLarge(t *testing.T) {
	p := NewParser()
	p.MaxArgSize = 4
	big, _ := Encode([][]byte{[]byte("too big")})
	err := p.Feed(big, func([][]byte) {})
	if !errors.Is(err, ErrArgTooLarge) {
		t.Fatalf("expected ErrArgTooLarge, got %v", err)
	}
}
