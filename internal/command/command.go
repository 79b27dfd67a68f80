// Package command interprets decoded wire frames as store operations.
//
// The supported surface is deliberately small: GET and SET on a single
// key. Anything else parses to Unknown so the serving loop can answer
// with an error frame instead of dropping the connection.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qwerin/framekv-go/internal/resp"
)

var (
	// ErrNotArray reports a command frame that is not an array.
	ErrNotArray = errors.New("command: frame is not an array")

	// ErrArity reports a recognized command with the wrong number of
	// arguments.
	ErrArity = errors.New("command: wrong number of arguments")

	// ErrBadName reports a command whose leading element carries no text.
	ErrBadName = errors.New("command: name is not a string")
)

// Command is one decoded operation. The concrete types are Get, Set and
// Unknown; the set is closed.
type Command interface {
	isCommand()
}

// Get reads the value stored under Key.
type Get struct {
	Key string
}

// Set stores Value under Key, overwriting any existing entry.
type Set struct {
	Key   string
	Value []byte
}

// Unknown carries an operation name outside the supported set. It is a
// valid parse result, not an error: the handler decides how to respond.
type Unknown struct {
	Name string
}

func (Get) isCommand()     {}
func (Set) isCommand()     {}
func (Unknown) isCommand() {}

// FromFrame interprets f as a command.
//
// Only array frames are accepted. The first element names the operation,
// matched case-insensitively; arity and element kinds are validated here
// rather than deferred to the store.
func FromFrame(f resp.Frame) (Command, error) {
	if f.Type != resp.TypeArray {
		return nil, fmt.Errorf("%w: got %v", ErrNotArray, f)
	}
	if len(f.Array) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrBadName)
	}

	name, ok := f.Array[0].Text()
	if !ok {
		return nil, fmt.Errorf("%w: got %v", ErrBadName, f.Array[0])
	}

	switch strings.ToUpper(name) {
	case "GET":
		if len(f.Array) != 2 {
			return nil, fmt.Errorf("%w: GET takes 1 argument, got %d", ErrArity, len(f.Array)-1)
		}
		key, ok := f.Array[1].Text()
		if !ok {
			return nil, fmt.Errorf("%w: GET key must be a string, got %v", ErrArity, f.Array[1])
		}
		return Get{Key: key}, nil

	case "SET":
		if len(f.Array) != 3 {
			return nil, fmt.Errorf("%w: SET takes 2 arguments, got %d", ErrArity, len(f.Array)-1)
		}
		key, ok := f.Array[1].Text()
		if !ok {
			return nil, fmt.Errorf("%w: SET key must be a string, got %v", ErrArity, f.Array[1])
		}
		value, ok := valueBytes(f.Array[2])
		if !ok {
			return nil, fmt.Errorf("%w: SET value must be a bulk string, got %v", ErrArity, f.Array[2])
		}
		return Set{Key: key, Value: value}, nil

	default:
		return Unknown{Name: name}, nil
	}
}

// valueBytes extracts the payload of a bulk or simple element.
func valueBytes(f resp.Frame) ([]byte, bool) {
	switch f.Type {
	case resp.TypeBulk:
		return f.Bulk, true
	case resp.TypeSimple:
		return []byte(f.Str), true
	}
	return nil, false
}
