// Package amp implements the abstract message protocol array encoding.
//
// A message is a single meta byte holding the version in its high nibble
// and the argument count in its low nibble, followed by argc pairs of a
// big endian uint32 length and that many bytes:
//
//	  0        1 2 3 4     <length>    ...
//	+------------+----------+------------+
//	| <ver/argc> | <length> | <data>     | additional arguments
//	+------------+----------+------------+
package amp

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	Version   byte = 1
	MaxArgs        = 15
	MetaLen        = 1
	LengthLen      = 4
)

var (
	ErrTooManyArgs = errors.New("amp: too many arguments")
	ErrArgTooLarge = errors.New("amp: argument too large")
	ErrEmpty       = errors.New("amp: empty message")
	ErrVersion     = errors.New("amp: unsupported version")
	ErrShortLength = errors.New("amp: short argument length")
	ErrShortArg    = errors.New("amp: short argument value")
	ErrTrailing    = errors.New("amp: trailing bytes after message")
)

// Meta packs version and argc into the leading byte.
func Meta(argc int) byte {
	return Version<<4 | byte(argc)&0x0f
}

// Size returns the encoded length of args.
func Size(args [][]byte) int {
	n := MetaLen
	for _, a := range args {
		n += LengthLen + len(a)
	}
	return n
}

func Encode(args [][]byte) ([]byte, error) {
	if len(args) > MaxArgs {
		return nil, ErrTooManyArgs
	}
	for _, a := range args {
		if uint64(len(a)) > math.MaxUint32 {
			return nil, ErrArgTooLarge
		}
	}

	buf := make([]byte, Size(args))
	buf[0] = Meta(len(args))
	off := MetaLen
	for _, a := range args {
		binary.BigEndian.PutUint32(buf[off:], uint32(len(a)))
		off += LengthLen
		off += copy(buf[off:], a)
	}
	return buf, nil
}

// Decode parses exactly one message. The returned arguments do not alias b.
func Decode(b []byte) ([][]byte, error) {
	if len(b) < MetaLen {
		return nil, ErrEmpty
	}
	if b[0]>>4 != Version {
		return nil, ErrVersion
	}

	argc := int(b[0] & 0x0f)
	args := make([][]byte, 0, argc)
	off := MetaLen
	for i := 0; i < argc; i++ {
		if len(b)-off < LengthLen {
			return nil, ErrShortLength
		}
		l := binary.BigEndian.Uint32(b[off:])
		off += LengthLen
		if uint64(len(b)-off) < uint64(l) {
			return nil, ErrShortArg
		}
		arg := make([]byte, l)
		copy(arg, b[off:off+int(l)])
		off += int(l)
		args = append(args, arg)
	}

	if off != len(b) {
		return nil, ErrTrailing
	}
	return args, nil
}
