// Package arbiter
package arbiter

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/jwerle/cgi-arbiter/protocol"
	"github.com/jwerle/cgi-arbiter/transport"
)

type Option = func(*Options)

type ConnEvent = func(*Conn)

// WithHandshake make accepted connections announce connect, so the
// server side writes the handshake too. Dialed connections always do.
func WithHandshake(enable bool) Option {
	return func(op *Options) {
		op.Handshake = enable
	}
}

func WithProtocolOptions(options ...protocol.Option) Option {
	return func(op *Options) {
		op.ProtocolOptions = append(op.ProtocolOptions, options...)
	}
}

func WithTransportOptions(options ...transport.Option) Option {
	return func(op *Options) {
		op.TransportOptions = append(op.TransportOptions, options...)
	}
}

// WithRequestHeader set extra headers sent when dialing a websocket
func WithRequestHeader(h http.Header) Option {
	return func(op *Options) {
		op.RequestHeader = h
	}
}

func WithConnectionEstablishedEvent(f ConnEvent) Option {
	return func(op *Options) {
		op.ConnectionEstablishedEvent = f
	}
}

func WithConnectionClosedEvent(f ConnEvent) Option {
	return func(op *Options) {
		op.ConnectionClosedEvent = f
	}
}

func WithLogger(entry *log.Entry) Option {
	return func(op *Options) {
		op.Logger = entry
	}
}

type Options struct {
	Handshake                  bool
	ProtocolOptions            []protocol.Option
	TransportOptions           []transport.Option
	RequestHeader              http.Header
	ConnectionEstablishedEvent ConnEvent
	ConnectionClosedEvent      ConnEvent
	Logger                     *log.Entry
}

func (op *Options) Apply(options []Option) {
	for _, f := range options {
		f(op)
	}
}

func (op *Options) logger() *log.Entry {
	if op.Logger != nil {
		return op.Logger
	}
	return log.NewEntry(log.StandardLogger())
}

func defaultOptions() *Options {
	return &Options{}
}
