package protocol

import (
	"github.com/jwerle/cgi-arbiter/amp"
)

// decoder reassembles frames split or coalesced across transport chunks,
// optionally skipping the peer handshake first.
type decoder struct {
	handshake bool
	matched   int
	parser    *amp.Parser
	err       error
}

func newDecoder(expectHandshake bool, maxMessageSize int) *decoder {
	parser := amp.NewParser()
	if maxMessageSize > 0 {
		parser.MaxArgSize = maxMessageSize
	}
	return &decoder{
		handshake: expectHandshake,
		parser:    parser,
	}
}

func (d *decoder) feed(chunk []byte, fn func(payload []byte)) error {
	if d.err != nil {
		return d.err
	}

	if d.handshake {
		n := min(len(Handshake)-d.matched, len(chunk))
		if string(chunk[:n]) != Handshake[d.matched:d.matched+n] {
			d.err = &DecodingError{Err: ErrHandshake}
			return d.err
		}
		d.matched += n
		chunk = chunk[n:]
		if d.matched < len(Handshake) {
			return nil
		}
		d.handshake = false
	}

	err := d.parser.Feed(chunk, func(args [][]byte) {
		// only single element frames carry a payload
		if len(args) > 0 {
			fn(args[0])
		}
	})
	if err != nil {
		d.err = &DecodingError{Err: err}
	}
	return d.err
}
