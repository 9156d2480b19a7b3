package protocol

import (
	"github.com/jwerle/cgi-arbiter/transport"
)

type opener interface {
	Open()
}

type starter interface {
	Start()
}

// Create returns a connection callback that wraps every new source in a
// Protocol and passes it to fn. Sources with an Open method are opened
// before fn runs so the handshake precedes anything fn writes; sources
// with a Start method are started after fn has subscribed.
func Create(fn func(*Protocol), options ...Option) transport.Handler {
	return func(source transport.Source) {
		p := New(source, options...)
		if o, ok := source.(opener); ok {
			o.Open()
		}
		fn(p)
		if s, ok := source.(starter); ok {
			s.Start()
		}
	}
}

// Local returns a pass-through stream with no framing applied.
func Local() *transport.Through {
	return transport.NewThrough()
}
