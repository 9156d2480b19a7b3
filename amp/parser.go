package amp

import (
	"encoding/binary"
)

// DefaultMaxArgSize bounds the allocation made for a single argument.
const DefaultMaxArgSize = 8 * 1024 * 1024

type state int

const (
	awaitMeta state = iota
	awaitLength
	awaitBody
)

// Parser reassembles messages from a byte stream that may split or
// coalesce them arbitrarily.
type Parser struct {
	MaxArgSize int

	state   state
	argc    int
	args    [][]byte
	length  [LengthLen]byte
	lengthN int
	need    int
	body    []byte
	err     error
}

func NewParser() *Parser {
	return &Parser{MaxArgSize: DefaultMaxArgSize}
}

// Feed consumes chunk and calls fn once for every completed message, in
// stream order. After the first error the parser is stuck and returns the
// same error from every call.
func (p *Parser) Feed(chunk []byte, fn func(args [][]byte)) error {
	if p.err != nil {
		return p.err
	}

	for {
		switch p.state {
		case awaitMeta:
			if len(chunk) == 0 {
				return nil
			}
			meta := chunk[0]
			chunk = chunk[1:]
			if meta>>4 != Version {
				return p.fail(ErrVersion)
			}
			p.argc = int(meta & 0x0f)
			p.args = make([][]byte, 0, p.argc)
			p.state = awaitLength

		case awaitLength:
			if len(p.args) == p.argc {
				args := p.args
				p.reset()
				fn(args)
				continue
			}
			n := copy(p.length[p.lengthN:], chunk)
			p.lengthN += n
			chunk = chunk[n:]
			if p.lengthN < LengthLen {
				return nil
			}
			l := binary.BigEndian.Uint32(p.length[:])
			if p.MaxArgSize > 0 && uint64(l) > uint64(p.MaxArgSize) {
				return p.fail(ErrArgTooLarge)
			}
			p.need = int(l)
			p.body = make([]byte, 0, p.need)
			p.lengthN = 0
			p.state = awaitBody

		case awaitBody:
			n := min(p.need-len(p.body), len(chunk))
			p.body = append(p.body, chunk[:n]...)
			chunk = chunk[n:]
			if len(p.body) < p.need {
				return nil
			}
			p.args = append(p.args, p.body)
			p.body = nil
			p.state = awaitLength
		}
	}
}

// Pending reports whether a partially received message is buffered.
func (p *Parser) Pending() bool {
	return p.state != awaitMeta
}

func (p *Parser) Err() error {
	return p.err
}

func (p *Parser) reset() {
	p.state = awaitMeta
	p.argc = 0
	p.args = nil
	p.lengthN = 0
	p.need = 0
	p.body = nil
}

func (p *Parser) fail(err error) error {
	p.reset()
	p.err = err
	return err
}
