package uridecode

import (
	"bytes"
	"errors"
)

// ErrBadEscape is returned on a percent-sign not followed by two hexadecimal digits. The
// caller decides which parsing error it turns into.
var ErrBadEscape = errors.New("invalid urlencoded sequence")

// halfbyte maps a hex digit into its value + 1. Zero marks a non-hex character.
var halfbyte = [256]byte{
	'0': 0x1, '1': 0x2, '2': 0x3, '3': 0x4, '4': 0x5,
	'5': 0x6, '6': 0x7, '7': 0x8, '8': 0x9, '9': 0xa,
	'a': 0xb, 'b': 0xc, 'c': 0xd, 'd': 0xe, 'e': 0xf, 'f': 0x10,
	'A': 0xb, 'B': 0xc, 'C': 0xd, 'D': 0xe, 'E': 0xf, 'F': 0x10,
}

// Decode normalizes the URI by translating escaped characters into their
// true form. The result is appended to buff, unless there was nothing to decode at
// all: in that case src itself is returned.
func Decode(src, buff []byte) ([]byte, error) {
	return decode(src, buff, false)
}

// DecodeQuery works the same way Decode does, but additionally treats '+' as a space,
// as the application/x-www-form-urlencoded rules require for query components.
func DecodeQuery(src, buff []byte) ([]byte, error) {
	return decode(src, buff, true)
}

func decode(src, buff []byte, plusAsSpace bool) ([]byte, error) {
	if bytes.IndexByte(src, '%') == -1 && (!plusAsSpace || bytes.IndexByte(src, '+') == -1) {
		return src, nil
	}

	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '%':
			if i+2 >= len(src) {
				return nil, ErrBadEscape
			}

			hi, lo := halfbyte[src[i+1]], halfbyte[src[i+2]]
			if hi == 0 || lo == 0 {
				return nil, ErrBadEscape
			}

			buff = append(buff, (hi-1)<<4|(lo-1))
			i += 2
		case '+':
			if plusAsSpace {
				c = ' '
			}

			buff = append(buff, c)
		default:
			buff = append(buff, c)
		}
	}

	return buff, nil
}
