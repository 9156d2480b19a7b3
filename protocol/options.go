package protocol

import (
	log "github.com/sirupsen/logrus"
)

// DefaultVersion is used when no version, or version 0, is configured.
const DefaultVersion byte = 0x1

type Option = func(*Options)

// WithVersion set the adapter version, it is kept locally and never sent
func WithVersion(v byte) Option {
	return func(op *Options) {
		op.Version = v
	}
}

func WithLogger(entry *log.Entry) Option {
	return func(op *Options) {
		op.Logger = entry
	}
}

// WithDecoder decode inbound frames as they arrive and emit a Message event per payload
func WithDecoder() Option {
	return func(op *Options) {
		op.Decode = true
	}
}

// WithHandshakeExpected strip the peer handshake token before decoding frames
func WithHandshakeExpected() Option {
	return func(op *Options) {
		op.ExpectHandshake = true
	}
}

func WithMaxMessageSize(n int) Option {
	return func(op *Options) {
		op.MaxMessageSize = n
	}
}

// WithSerialization set the codec used by WriteValue and DecodeValue
func WithSerialization(e string) Option {
	return func(op *Options) {
		op.SerializationType = e
	}
}

func WithExchanger(e Exchanger) Option {
	return func(op *Options) {
		op.Exchanger = e
	}
}

type Options struct {
	Version           byte
	Logger            *log.Entry
	Decode            bool
	ExpectHandshake   bool
	MaxMessageSize    int
	SerializationType string
	Exchanger         Exchanger
}

func (op *Options) Apply(options []Option) {
	for _, f := range options {
		f(op)
	}
}

func defaultOptions() *Options {
	return &Options{
		Version:           DefaultVersion,
		SerializationType: "json",
	}
}
