// Package protocol frames application payloads over a raw byte stream.
//
// A Protocol wraps a transport.Source. On connect it writes the Handshake
// token, unframed. Every Write is wrapped in a single element amp array.
// Inbound bytes are queued raw, exactly as the transport delivered them;
// Read hands them back in FIFO order and Decode turns a complete frame
// back into its payload. WithDecoder adds automatic reassembly on top.
package protocol

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jwerle/cgi-arbiter/transport"
)

var ErrEnded = errors.New("protocol: write after end")

type Protocol struct {
	id      string
	version byte
	source  transport.Source
	options *Options
	events  transport.Emitter
	log     *log.Entry

	handshakeOnce sync.Once

	lock    sync.Mutex
	queue   *queue
	ended   bool
	decoder *decoder
}

// New wrap source and subscribe to its lifecycle events. The source is
// referenced, not owned: closing it stays with the caller.
func New(source transport.Source, options ...Option) *Protocol {
	ops := defaultOptions()
	ops.Apply(options)
	if ops.Version == 0 {
		ops.Version = DefaultVersion
	}

	p := &Protocol{
		id:      uuid.NewString(),
		version: ops.Version,
		source:  source,
		options: ops,
		queue:   newQueue(),
	}
	if ops.Decode {
		p.decoder = newDecoder(ops.ExpectHandshake, ops.MaxMessageSize)
	}

	entry := ops.Logger
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	p.log = entry.WithFields(log.Fields{
		"Name":    "Protocol",
		"ID":      p.id,
		"Version": p.version,
	})

	source.On(transport.Connect, p.onConnect)
	source.On(transport.Data, p.onData)
	source.On(transport.Readable, p.onReadable)
	source.On(transport.End, p.onEnd)
	return p
}

func (p *Protocol) ID() string {
	return p.id
}

func (p *Protocol) Version() byte {
	return p.version
}

func (p *Protocol) Source() transport.Source {
	return p.source
}

// On subscribe to Data, Readable, End or Message. Connect is consumed
// by the adapter and never re-emitted.
func (p *Protocol) On(ev transport.Event, l transport.Listener) {
	p.events.On(ev, l)
}

// Read pop the oldest raw chunk, or nil when nothing is buffered. The
// size hint is accepted for reader compatibility and ignored: chunks are
// returned whole.
func (p *Protocol) Read(sizeHint int) []byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.queue.Pop()
}

// Buffered returns the number of chunks waiting to be read.
func (p *Protocol) Buffered() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.queue.Len()
}

// Write encode payload and hand the frame to the transport, returning
// its flow control hint.
func (p *Protocol) Write(payload interface{}) (bool, error) {
	buf, err := p.Encode(payload)
	if err != nil {
		return false, err
	}

	if p.isEnded() {
		return false, ErrEnded
	}
	ok, err := p.source.Write(buf)
	if err != nil && p.isEnded() {
		// End won the race to the source
		return false, ErrEnded
	}
	return ok, err
}

func (p *Protocol) isEnded() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.ended
}

// End send payload as a final frame, when given, and end the transport.
// A nil payload ends without a frame; pass []byte{} for an empty frame.
func (p *Protocol) End(payload interface{}) error {
	var buf []byte
	if payload != nil {
		var err error
		if buf, err = p.Encode(payload); err != nil {
			return err
		}
	}

	p.lock.Lock()
	if p.ended {
		p.lock.Unlock()
		return ErrEnded
	}
	p.ended = true
	p.lock.Unlock()

	p.log.Debug("end")
	return p.source.End(buf)
}

func (p *Protocol) Encode(payload interface{}) ([]byte, error) {
	return Encode(payload)
}

func (p *Protocol) Decode(buf []byte) ([][]byte, error) {
	return Decode(buf)
}

// DecodeErr returns the error that stopped automatic decoding, if any.
func (p *Protocol) DecodeErr() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.decoder == nil {
		return nil
	}
	return p.decoder.err
}

func (p *Protocol) onConnect([]byte) {
	p.handshakeOnce.Do(func() {
		p.log.Debug("connect, sending handshake")
		if _, err := p.source.Write([]byte(Handshake)); err != nil {
			p.log.Warnf("handshake write err: %v", err)
		}
	})
}

func (p *Protocol) onData(chunk []byte) {
	p.lock.Lock()
	p.queue.Push(chunk)
	p.lock.Unlock()

	p.events.Emit(transport.Data, chunk)
	if p.decoder != nil {
		p.decode(chunk)
	}
}

func (p *Protocol) onReadable([]byte) {
	p.events.Emit(transport.Readable, nil)
}

func (p *Protocol) onEnd([]byte) {
	p.log.Debug("source end")
	p.events.Emit(transport.End, nil)
}

func (p *Protocol) decode(chunk []byte) {
	var msgs [][]byte
	p.lock.Lock()
	failed := p.decoder.err != nil
	err := p.decoder.feed(chunk, func(payload []byte) {
		msgs = append(msgs, payload)
	})
	p.lock.Unlock()

	for _, m := range msgs {
		p.events.Emit(transport.Message, m)
	}
	if err != nil && !failed {
		p.log.Warnf("decode err: %v", err)
	}
}
