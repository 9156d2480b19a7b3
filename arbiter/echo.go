package arbiter

import (
	"errors"

	"github.com/jwerle/cgi-arbiter/protocol"
	"github.com/jwerle/cgi-arbiter/transport"
)

// Echo return a handler writing every inbound payload back as a frame and
// ending the connection once the peer ends. With decoded set the protocol
// must carry protocol.WithDecoder and payloads arrive as Message events;
// otherwise every readable chunk is taken as one whole frame.
func Echo(decoded bool) func(*Conn) {
	return func(c *Conn) {
		p := c.Protocol()
		if decoded {
			p.On(transport.Message, func(payload []byte) {
				echo(c, payload)
			})
			// payloads come from Message, the raw copies are not needed
			p.On(transport.Readable, func([]byte) {
				for p.Read(0) != nil {
				}
			})
		} else {
			p.On(transport.Readable, func([]byte) {
				for chunk := p.Read(0); chunk != nil; chunk = p.Read(0) {
					args, err := p.Decode(chunk)
					if err != nil {
						c.log().Warnf("echo drop chunk: %v", err)
						continue
					}
					if len(args) > 0 {
						echo(c, args[0])
					}
				}
			})
		}
		p.On(transport.End, func([]byte) {
			if err := p.End(nil); err != nil && !errors.Is(err, protocol.ErrEnded) {
				c.log().Debugf("echo end: %v", err)
			}
		})
	}
}

func echo(c *Conn, payload []byte) {
	if _, err := c.Protocol().Write(payload); err != nil {
		c.log().Warnf("echo write: %v", err)
	}
}
