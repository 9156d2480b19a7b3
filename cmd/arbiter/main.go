// Command arbiter serves and exercises framed connections.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jwerle/cgi-arbiter/logging"
)

var (
	logLevelFlag  string
	logFormatFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "arbiter",
		Short:        "Length-prefixed message framing over tcp, unix and websocket",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(os.Stderr, logLevelFlag, logFormatFlag)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", logging.FormatAuto, "Log format (auto, text, json)")

	rootCmd.AddCommand(
		serveCmd(),
		sendCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
