package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jwerle/cgi-arbiter/arbiter"
	"github.com/jwerle/cgi-arbiter/config"
	"github.com/jwerle/cgi-arbiter/logging"
	"github.com/jwerle/cgi-arbiter/protocol"
	"github.com/jwerle/cgi-arbiter/transport"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		flags      = config.Default()
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an echo server writing every frame back to its sender",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = overlay(cmd, loaded, flags)
				if !cmd.Flags().Changed("log-level") && !cmd.Flags().Changed("log-format") {
					if err := logging.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
						return err
					}
				}
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML config file")
	f.StringVar(&flags.Tcp, "tcp", flags.Tcp, "TCP listen address, empty to disable")
	f.StringVar(&flags.Unix, "unix", flags.Unix, "Unix socket path")
	f.StringVar(&flags.Ws, "ws", flags.Ws, "Websocket url such as ws://+:9090/websocket")
	f.IntVar(&flags.Version, "version", flags.Version, "Protocol version")
	f.BoolVar(&flags.Handshake, "handshake", flags.Handshake, "Send the handshake to accepted connections")
	f.BoolVar(&flags.Decode, "decode", flags.Decode, "Reassemble frames across chunks")
	f.StringVar(&flags.Serialization, "serialization", flags.Serialization, "Payload serialization for typed values")
	f.IntVar(&flags.ReadBuffer, "read-buffer", flags.ReadBuffer, "Read buffer size in bytes")
	f.IntVar(&flags.WriteQueue, "write-queue", flags.WriteQueue, "Pending write queue depth")
	return cmd
}

// overlay apply the flags set on the command line over a loaded config.
func overlay(cmd *cobra.Command, cfg, flags config.Config) config.Config {
	changed := cmd.Flags().Changed
	if changed("tcp") {
		cfg.Tcp = flags.Tcp
	}
	if changed("unix") {
		cfg.Unix = flags.Unix
	}
	if changed("ws") {
		cfg.Ws = flags.Ws
	}
	if changed("version") {
		cfg.Version = flags.Version
	}
	if changed("handshake") {
		cfg.Handshake = flags.Handshake
	}
	if changed("decode") {
		cfg.Decode = flags.Decode
	}
	if changed("serialization") {
		cfg.Serialization = flags.Serialization
	}
	if changed("read-buffer") {
		cfg.ReadBuffer = flags.ReadBuffer
	}
	if changed("write-queue") {
		cfg.WriteQueue = flags.WriteQueue
	}
	return cfg
}

func serverOptions(cfg config.Config) []arbiter.Option {
	protocolOptions := []protocol.Option{
		protocol.WithVersion(byte(cfg.Version)),
		protocol.WithSerialization(cfg.Serialization),
	}
	if cfg.Decode {
		protocolOptions = append(protocolOptions, protocol.WithDecoder(), protocol.WithHandshakeExpected())
	}
	return []arbiter.Option{
		arbiter.WithHandshake(cfg.Handshake),
		arbiter.WithProtocolOptions(protocolOptions...),
		arbiter.WithTransportOptions(
			transport.WithReadBufferSize(cfg.ReadBuffer),
			transport.WithWriteQueue(cfg.WriteQueue),
		),
		arbiter.WithConnectionEstablishedEvent(func(c *arbiter.Conn) {
			log.WithField("Remote", c.Remote()).Infof("connection %s established", c.ID())
		}),
	}
}

func serve(cfg config.Config) error {
	s := arbiter.NewServer(arbiter.Echo(cfg.Decode), serverOptions(cfg)...)

	errCh := make(chan error, 3)
	run := func(name string, fn func(string) error, addr string) {
		if addr == "" {
			return
		}
		go func() {
			if err := fn(addr); err != nil {
				errCh <- fmt.Errorf("%s %s: %w", name, addr, err)
			}
		}()
	}
	run("tcp", s.RunTcp, cfg.Tcp)
	run("unix", s.RunUnix, cfg.Unix)
	run("ws", s.RunWs, cfg.Ws)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	var err error
	select {
	case sig := <-sigCh:
		log.Infof("received %v, shutting down", sig)
	case err = <-errCh:
		log.Errorf("listener failed: %v", err)
	}
	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
