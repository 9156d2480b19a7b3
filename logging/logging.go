// Package logging configures the process wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Configure set level and formatter of the standard logger writing to out.
// The auto format picks text on a terminal and json otherwise.
func Configure(out io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}

	f, err := formatter(out, format)
	if err != nil {
		return err
	}

	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(f)
	return nil
}

func formatter(out io.Writer, format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatAuto:
		if isTerminal(out) {
			return &log.TextFormatter{FullTimestamp: true}, nil
		}
		return &log.JSONFormatter{}, nil
	case FormatText:
		return &log.TextFormatter{FullTimestamp: true, DisableColors: !isTerminal(out)}, nil
	case FormatJSON:
		return &log.JSONFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
