// Package resp implements the framed wire protocol spoken by FrameKV.
//
// The protocol is a RESP subset: every frame is a self-delimited unit
// carrying one typed value. Frames are decoded incrementally from a
// growable buffer, so a partially received frame never consumes bytes.
package resp

import (
	"fmt"
	"strconv"
)

// Type identifies a frame variant. The values are the wire marker bytes,
// except Null which has no marker of its own ($-1 on the wire).
type Type byte

const (
	TypeSimple  Type = '+'
	TypeError   Type = '-'
	TypeInteger Type = ':'
	TypeBulk    Type = '$'
	TypeArray   Type = '*'
	TypeNull    Type = 0
)

// Frame is one unit of the wire protocol.
//
// Exactly one payload field is meaningful, selected by Type. A Simple or
// Error payload must not contain CR or LF; Bulk payloads may contain
// arbitrary bytes because their length is explicit on the wire.
type Frame struct {
	Type  Type
	Str   string
	Int   int64
	Bulk  []byte
	Array []Frame
}

// Simple returns a simple string frame.
func Simple(s string) Frame { return Frame{Type: TypeSimple, Str: s} }

// Error returns an error frame.
func Error(s string) Frame { return Frame{Type: TypeError, Str: s} }

// Integer returns an integer frame.
func Integer(n int64) Frame { return Frame{Type: TypeInteger, Int: n} }

// Bulk returns a bulk frame carrying b. The slice is not copied.
func Bulk(b []byte) Frame { return Frame{Type: TypeBulk, Bulk: b} }

// BulkString returns a bulk frame carrying s.
func BulkString(s string) Frame { return Frame{Type: TypeBulk, Bulk: []byte(s)} }

// Null returns the null frame, the absence of a value.
func Null() Frame { return Frame{Type: TypeNull} }

// Array returns an array frame wrapping elems.
func Array(elems ...Frame) Frame { return Frame{Type: TypeArray, Array: elems} }

// Equal reports whether two frames carry the same value.
func (f Frame) Equal(other Frame) bool {
	if f.Type != other.Type {
		return false
	}
	switch f.Type {
	case TypeSimple, TypeError:
		return f.Str == other.Str
	case TypeInteger:
		return f.Int == other.Int
	case TypeBulk:
		return string(f.Bulk) == string(other.Bulk)
	case TypeArray:
		if len(f.Array) != len(other.Array) {
			return false
		}
		for i := range f.Array {
			if !f.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	case TypeNull:
		return true
	}
	return false
}

// Text returns the textual payload of a Simple or Bulk frame.
// The second return is false for any other variant.
func (f Frame) Text() (string, bool) {
	switch f.Type {
	case TypeSimple:
		return f.Str, true
	case TypeBulk:
		return string(f.Bulk), true
	}
	return "", false
}

// String renders the frame for logs and test failures, not for the wire.
func (f Frame) String() string {
	switch f.Type {
	case TypeSimple:
		return "simple(" + f.Str + ")"
	case TypeError:
		return "error(" + f.Str + ")"
	case TypeInteger:
		return "integer(" + strconv.FormatInt(f.Int, 10) + ")"
	case TypeBulk:
		return fmt.Sprintf("bulk(%q)", f.Bulk)
	case TypeArray:
		return fmt.Sprintf("array(len=%d)", len(f.Array))
	case TypeNull:
		return "null"
	}
	return fmt.Sprintf("frame(type=%d)", f.Type)
}
