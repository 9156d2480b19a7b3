package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwerle/cgi-arbiter/arbiter"
	"github.com/jwerle/cgi-arbiter/protocol"
	"github.com/jwerle/cgi-arbiter/transport"
)

func sendCmd() *cobra.Command {
	var (
		addr      string
		handshake bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send <message>...",
		Short: "Send each argument as a frame and print the replies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return send(ctx, addr, handshake, args)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "tcp://127.0.0.1:8443", "Server address (tcp://, unix://, ws://, wss://)")
	cmd.Flags().BoolVar(&handshake, "handshake", false, "Expect a handshake from the server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up waiting for replies after this long")
	return cmd
}

func send(ctx context.Context, addr string, handshake bool, messages []string) error {
	protocolOptions := []protocol.Option{protocol.WithDecoder()}
	if handshake {
		protocolOptions = append(protocolOptions, protocol.WithHandshakeExpected())
	}

	var (
		once    sync.Once
		replied = make(chan struct{})
		count   int
	)
	c, err := arbiter.Dial(ctx, addr, func(c *arbiter.Conn) {
		p := c.Protocol()
		p.On(transport.Message, func(payload []byte) {
			fmt.Fprintln(os.Stdout, string(payload))
			count++
			if count == len(messages) {
				once.Do(func() { close(replied) })
			}
		})
		p.On(transport.End, func([]byte) {
			once.Do(func() { close(replied) })
		})
	}, arbiter.WithProtocolOptions(protocolOptions...))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer c.Close()

	p := c.Protocol()
	for _, m := range messages {
		if _, err := p.Write(m); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}

	select {
	case <-replied:
	case <-ctx.Done():
		return fmt.Errorf("waiting for replies: %w", ctx.Err())
	}
	if err := p.End(nil); err != nil {
		return err
	}

	select {
	case <-c.Done():
	case <-ctx.Done():
	}
	if err := p.DecodeErr(); err != nil {
		return err
	}
	return c.Err()
}
