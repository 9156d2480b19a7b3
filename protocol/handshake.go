package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Handshake is written verbatim, unframed, once the transport connects.
const Handshake = "HANDSHAKE\n"

var ErrHandshake = errors.New("protocol: handshake mismatch")

// ReadHandshake consume the peer handshake token from r.
func ReadHandshake(r io.Reader) error {
	buf := make([]byte, len(Handshake))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read handshake: %w", err)
	}
	if string(buf) != Handshake {
		return ErrHandshake
	}
	return nil
}
