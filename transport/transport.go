// Package transport
package transport

import (
	"errors"
	"io"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("transport: closed")

// Source is the byte stream a protocol adapter wraps. It announces its
// lifecycle through Connect, Data, Readable and End events.
type Source interface {
	On(ev Event, l Listener)

	// Write queue bytes, the bool reports whether more writes are welcome
	Write(p []byte) (bool, error)

	// End write optional final bytes and close the writing side
	End(p []byte) error
}

// Handler is called once for each new connection.
type Handler func(Source)

type closeWriter interface {
	CloseWrite() error
}

type remoteAddresser interface {
	RemoteAddr() net.Addr
}

// New turn a raw connection into an event emitting Source. Nothing is
// read or written until Start is called.
func New(c io.ReadWriteCloser, options ...Option) *Conn {
	ops := defaultOptions()
	ops.Apply(options)
	if ops.WriteQueue < 1 {
		ops.WriteQueue = defaultWriteQueue
	}
	if ops.ReadBufferSize < 1 {
		ops.ReadBufferSize = defaultReadBufferSize
	}

	t := &Conn{
		c:       c,
		options: ops,
		sendCh:  make(chan []byte, ops.WriteQueue),
		done:    make(chan struct{}),
	}

	entry := ops.Logger
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	t.log = entry.WithFields(log.Fields{
		"Name":   "Transport",
		"ID":     ops.ID,
		"Remote": t.RemoteAddr(),
	})
	return t
}

type Conn struct {
	Emitter
	c       io.ReadWriteCloser
	options *Options
	sendCh  chan []byte
	done    chan struct{}
	log     *log.Entry

	lock      sync.Mutex
	ended     bool
	openOnce  sync.Once
	startOnce sync.Once
	closeOnce sync.Once

	pumpLock  sync.Mutex
	readDone  bool
	writeDone bool
	err       error
}

func (t *Conn) ID() string {
	return t.options.ID
}

func (t *Conn) RemoteAddr() string {
	if ra, ok := t.c.(remoteAddresser); ok && ra.RemoteAddr() != nil {
		return ra.RemoteAddr().String()
	}
	return ""
}

// Open emit Connect when configured. Writes made by Connect listeners are
// queued ahead of anything written later.
func (t *Conn) Open() {
	t.openOnce.Do(func() {
		if t.options.ConnectEvent {
			t.log.Debug("connect")
			t.Emit(Connect, nil)
		}
	})
}

// Start open the connection if needed and run the read and write pumps.
// Listeners must be registered before Start.
func (t *Conn) Start() {
	t.startOnce.Do(func() {
		t.Open()
		go t.readPump()
		go t.writePump()
	})
}

func (t *Conn) Write(p []byte) (bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.ended {
		return false, ErrClosed
	}
	if err := t.enqueue(p); err != nil {
		return false, err
	}
	return len(t.sendCh) < cap(t.sendCh), nil
}

func (t *Conn) End(p []byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.ended {
		return ErrClosed
	}
	t.ended = true

	var err error
	if len(p) > 0 {
		err = t.enqueue(p)
	}
	close(t.sendCh)
	return err
}

func (t *Conn) enqueue(p []byte) error {
	buf := make([]byte, len(p))
	copy(buf, p)
	select {
	case t.sendCh <- buf:
		return nil
	case <-t.done:
		return ErrClosed
	}
}

// Close tear down the connection without flushing pending writes.
func (t *Conn) Close() error {
	return t.shutdown(nil)
}

// Done is closed once the connection is fully shut down.
func (t *Conn) Done() <-chan struct{} {
	return t.done
}

// Err returns the first read or write failure, if any.
func (t *Conn) Err() error {
	t.pumpLock.Lock()
	defer t.pumpLock.Unlock()
	return t.err
}

func (t *Conn) readPump() {
	buf := make([]byte, t.options.ReadBufferSize)
	for {
		n, err := t.c.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.log.Debugf("read %d bytes", n)
			t.Emit(Data, chunk)
			t.Emit(Readable, nil)
		}
		if err == nil {
			continue
		}

		if errors.Is(err, io.EOF) {
			t.log.Debug("end")
			t.Emit(End, nil)
			// peer finished, finish our side once pending writes are flushed
			t.End(nil)
			t.finish(true)
			return
		}

		select {
		case <-t.done:
		default:
			t.log.Warnf("read err: %v", err)
			t.setErr(err)
		}
		t.Emit(End, nil)
		t.shutdown(err)
		return
	}
}

func (t *Conn) writePump() {
	for {
		select {
		case <-t.done:
			return
		case buf, ok := <-t.sendCh:
			if !ok {
				t.finish(false)
				return
			}
			if _, err := t.c.Write(buf); err != nil {
				t.log.Warnf("write err: %v", err)
				t.setErr(err)
				t.shutdown(err)
				return
			}
		}
	}
}

// finish record that one direction completed cleanly and close the
// connection once both have.
func (t *Conn) finish(read bool) {
	t.pumpLock.Lock()
	if read {
		t.readDone = true
	} else {
		t.writeDone = true
	}
	both := t.readDone && t.writeDone
	t.pumpLock.Unlock()

	if both {
		t.shutdown(nil)
		return
	}
	if !read {
		if cw, ok := t.c.(closeWriter); ok {
			if err := cw.CloseWrite(); err == nil {
				return
			}
		}
		t.shutdown(nil)
	}
}

func (t *Conn) setErr(err error) {
	t.pumpLock.Lock()
	defer t.pumpLock.Unlock()
	if t.err == nil {
		t.err = err
	}
}

func (t *Conn) shutdown(cause error) (err error) {
	t.closeOnce.Do(func() {
		if cause != nil {
			t.log.Debugf("shutdown: %v", cause)
		}
		close(t.done)
		err = t.c.Close()
	})
	return
}
