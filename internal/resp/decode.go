package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in an array frame.
	// Commands have <4 elements; this provides ample headroom.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk payload (512KB).
	MaxBulkLen = 512 * 1024

	// MaxLineLen limits the length of a single CRLF-terminated line (4KB).
	MaxLineLen = 4 * 1024
)

var (
	// ErrIncomplete reports that the buffer does not yet hold a full frame.
	// It is a retry signal, not a failure: read more bytes and call Decode
	// again on the grown buffer.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrMalformed reports bytes that can never become a valid frame.
	ErrMalformed = errors.New("resp: malformed frame")

	// ErrLimitExceeded reports a frame that exceeds a protocol limit.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Decode extracts one frame from the front of buf and returns the number
// of bytes it occupies.
//
// Decode never consumes bytes on failure: when it returns ErrIncomplete
// the buffer is untouched and the same call can be retried once more
// bytes have arrived. ErrMalformed and ErrLimitExceeded are terminal for
// the stream that produced buf.
func Decode(buf []byte) (Frame, int, error) {
	if len(buf) == 0 {
		return Frame{}, 0, ErrIncomplete
	}

	switch buf[0] {
	case '+':
		line, n, err := decodeLine(buf[1:])
		if err != nil {
			return Frame{}, 0, err
		}
		return Simple(string(line)), 1 + n, nil

	case '-':
		line, n, err := decodeLine(buf[1:])
		if err != nil {
			return Frame{}, 0, err
		}
		return Error(string(line)), 1 + n, nil

	case ':':
		line, n, err := decodeLine(buf[1:])
		if err != nil {
			return Frame{}, 0, err
		}
		v, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return Frame{}, 0, fmt.Errorf("%w: invalid integer %q", ErrMalformed, line)
		}
		return Integer(v), 1 + n, nil

	case '$':
		return decodeBulk(buf)

	case '*':
		return decodeArray(buf)

	default:
		return Frame{}, 0, fmt.Errorf("%w: unknown marker %q", ErrMalformed, buf[0])
	}
}

func decodeBulk(buf []byte) (Frame, int, error) {
	length, headerLen, err := decodeLength(buf[1:])
	if err != nil {
		return Frame{}, 0, err
	}
	headerLen++ // marker byte

	switch {
	case length == -1:
		// Null bulk: no payload follows the header.
		return Null(), headerLen, nil
	case length < -1:
		return Frame{}, 0, fmt.Errorf("%w: invalid bulk length %d", ErrMalformed, length)
	case length > MaxBulkLen:
		return Frame{}, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, length, MaxBulkLen)
	}

	total := headerLen + length + 2
	if len(buf) < total {
		return Frame{}, 0, ErrIncomplete
	}
	if buf[total-2] != '\r' || buf[total-1] != '\n' {
		return Frame{}, 0, fmt.Errorf("%w: bulk payload not CRLF terminated", ErrMalformed)
	}

	// Copy the payload so the frame does not alias the caller's buffer,
	// which is reused between reads.
	payload := make([]byte, length)
	copy(payload, buf[headerLen:headerLen+length])
	return Bulk(payload), total, nil
}

func decodeArray(buf []byte) (Frame, int, error) {
	count, headerLen, err := decodeLength(buf[1:])
	if err != nil {
		return Frame{}, 0, err
	}
	headerLen++

	switch {
	case count == -1:
		return Null(), headerLen, nil
	case count < -1:
		return Frame{}, 0, fmt.Errorf("%w: invalid array length %d", ErrMalformed, count)
	case count > MaxArrayLen:
		return Frame{}, 0, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, count, MaxArrayLen)
	}

	elems := make([]Frame, 0, count)
	offset := headerLen
	for i := 0; i < count; i++ {
		elem, n, err := Decode(buf[offset:])
		if err != nil {
			// Incomplete propagates untouched: the whole array is retried
			// once the missing element bytes arrive.
			return Frame{}, 0, err
		}
		elems = append(elems, elem)
		offset += n
	}
	return Frame{Type: TypeArray, Array: elems}, offset, nil
}

// decodeLine extracts one CRLF-terminated line, returning the line without
// its terminator and the number of bytes consumed including it.
func decodeLine(buf []byte) ([]byte, int, error) {
	limit := len(buf)
	if limit > MaxLineLen {
		limit = MaxLineLen
	}

	idx := bytes.IndexByte(buf[:limit], '\r')
	if idx == -1 {
		if bytes.IndexByte(buf[:limit], '\n') != -1 {
			return nil, 0, fmt.Errorf("%w: bare LF in line", ErrMalformed)
		}
		if len(buf) > MaxLineLen {
			return nil, 0, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, MaxLineLen)
		}
		return nil, 0, ErrIncomplete
	}
	if bytes.IndexByte(buf[:idx], '\n') != -1 {
		return nil, 0, fmt.Errorf("%w: bare LF in line", ErrMalformed)
	}
	if idx+1 >= len(buf) {
		return nil, 0, ErrIncomplete
	}
	if buf[idx+1] != '\n' {
		return nil, 0, fmt.Errorf("%w: CR not followed by LF", ErrMalformed)
	}
	return buf[:idx], idx + 2, nil
}

// decodeLength extracts an ASCII decimal header line ("<n>\r\n").
func decodeLength(buf []byte) (int, int, error) {
	line, n, err := decodeLine(buf)
	if err != nil {
		return 0, 0, err
	}
	v, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid length %q", ErrMalformed, line)
	}
	return v, n, nil
}
