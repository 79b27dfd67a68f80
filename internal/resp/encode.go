package resp

import (
	"fmt"
	"strconv"
	"strings"
)

// Append encodes f and appends the wire bytes to dst.
//
// Append is the exact inverse of Decode: for any frame it accepts,
// Decode(Append(nil, f)) yields an equal frame consuming every byte.
// Encoding fails if a Simple or Error payload contains CR or LF, since
// those would corrupt the line framing.
func Append(dst []byte, f Frame) ([]byte, error) {
	switch f.Type {
	case TypeSimple:
		if strings.ContainsAny(f.Str, "\r\n") {
			return dst, fmt.Errorf("%w: simple string contains line terminator", ErrMalformed)
		}
		dst = append(dst, '+')
		dst = append(dst, f.Str...)
		return append(dst, '\r', '\n'), nil

	case TypeError:
		if strings.ContainsAny(f.Str, "\r\n") {
			return dst, fmt.Errorf("%w: error string contains line terminator", ErrMalformed)
		}
		dst = append(dst, '-')
		dst = append(dst, f.Str...)
		return append(dst, '\r', '\n'), nil

	case TypeInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, f.Int, 10)
		return append(dst, '\r', '\n'), nil

	case TypeBulk:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(f.Bulk)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, f.Bulk...)
		return append(dst, '\r', '\n'), nil

	case TypeNull:
		return append(dst, "$-1\r\n"...), nil

	case TypeArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(f.Array)), 10)
		dst = append(dst, '\r', '\n')
		var err error
		for _, elem := range f.Array {
			if dst, err = Append(dst, elem); err != nil {
				return dst, err
			}
		}
		return dst, nil

	default:
		return dst, fmt.Errorf("%w: cannot encode frame type %d", ErrMalformed, f.Type)
	}
}

// Encode returns the wire bytes for f.
func Encode(f Frame) ([]byte, error) {
	return Append(nil, f)
}
