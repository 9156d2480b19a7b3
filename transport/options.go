package transport

import (
	log "github.com/sirupsen/logrus"
)

type Option = func(*Options)

// WithID set connection id used in log fields
func WithID(id string) Option {
	return func(op *Options) {
		op.ID = id
	}
}

// WithConnectEvent emit Connect once Start is called, the way a dialed socket does
func WithConnectEvent(emit bool) Option {
	return func(op *Options) {
		op.ConnectEvent = emit
	}
}

func WithReadBufferSize(n int) Option {
	return func(op *Options) {
		op.ReadBufferSize = n
	}
}

// WithWriteQueue set how many pending writes are buffered before Write reports backpressure.
// Values below one fall back to the default
func WithWriteQueue(n int) Option {
	return func(op *Options) {
		op.WriteQueue = n
	}
}

func WithLogger(entry *log.Entry) Option {
	return func(op *Options) {
		op.Logger = entry
	}
}

type Options struct {
	ID             string
	ConnectEvent   bool
	ReadBufferSize int
	WriteQueue     int
	Logger         *log.Entry
}

func (op *Options) Apply(options []Option) {
	for _, f := range options {
		f(op)
	}
}

const (
	defaultReadBufferSize = 16 * 1024
	defaultWriteQueue     = 64
)

func defaultOptions() *Options {
	return &Options{
		ReadBufferSize: defaultReadBufferSize,
		WriteQueue:     defaultWriteQueue,
	}
}
