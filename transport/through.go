package transport

import "sync"

// NewThrough create a pass-through Source: every write is emitted as
// Data on the same stream, nothing is framed.
func NewThrough() *Through {
	return &Through{}
}

type Through struct {
	Emitter
	lock  sync.Mutex
	ended bool
}

// Connect emit Connect to listeners, standing in for a dialed socket.
func (t *Through) Connect() {
	t.Emit(Connect, nil)
}

func (t *Through) Write(p []byte) (bool, error) {
	t.lock.Lock()
	ended := t.ended
	t.lock.Unlock()
	if ended {
		return false, ErrClosed
	}
	t.Emit(Data, p)
	t.Emit(Readable, nil)
	return true, nil
}

func (t *Through) End(p []byte) error {
	if len(p) > 0 {
		if _, err := t.Write(p); err != nil {
			return err
		}
	}

	t.lock.Lock()
	if t.ended {
		t.lock.Unlock()
		return ErrClosed
	}
	t.ended = true
	t.lock.Unlock()

	t.Emit(End, nil)
	return nil
}
