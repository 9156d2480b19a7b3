package protocol

import "context"

// Exchanger drives a higher level request/response cycle over a Protocol.
// The framing layer defines no such cycle itself.
type Exchanger interface {
	Exchange(ctx context.Context, p *Protocol) error
}

type ExchangeFunc func(ctx context.Context, p *Protocol) error

func (f ExchangeFunc) Exchange(ctx context.Context, p *Protocol) error {
	return f(ctx, p)
}

// Exchange run the configured Exchanger; without one it does nothing.
func (p *Protocol) Exchange(ctx context.Context) error {
	if p.options.Exchanger == nil {
		return nil
	}
	return p.options.Exchanger.Exchange(ctx, p)
}
