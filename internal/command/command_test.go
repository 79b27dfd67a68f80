package command

import (
	"errors"
	"testing"

	"github.com/qwerin/framekv-go/internal/resp"
)

func TestFromFrame_Get(t *testing.T) {
	tests := []struct {
		name  string
		frame resp.Frame
		want  string
	}{
		{
			name:  "bulk name and key",
			frame: resp.Array(resp.BulkString("GET"), resp.BulkString("mykey")),
			want:  "mykey",
		},
		{
			name:  "lowercase name",
			frame: resp.Array(resp.BulkString("get"), resp.BulkString("k")),
			want:  "k",
		},
		{
			name:  "mixed case name",
			frame: resp.Array(resp.BulkString("GeT"), resp.BulkString("k")),
			want:  "k",
		},
		{
			name:  "simple string elements",
			frame: resp.Array(resp.Simple("GET"), resp.Simple("k")),
			want:  "k",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := FromFrame(tt.frame)
			if err != nil {
				t.Fatalf("FromFrame() error = %v", err)
			}
			get, ok := cmd.(Get)
			if !ok {
				t.Fatalf("FromFrame() = %T, want Get", cmd)
			}
			if get.Key != tt.want {
				t.Errorf("Key = %q, want %q", get.Key, tt.want)
			}
		})
	}
}

func TestFromFrame_Set(t *testing.T) {
	frame := resp.Array(
		resp.BulkString("SET"),
		resp.BulkString("k"),
		resp.Bulk([]byte{0x00, 0x0d, 0x0a, 0xff}),
	)

	cmd, err := FromFrame(frame)
	if err != nil {
		t.Fatalf("FromFrame() error = %v", err)
	}
	set, ok := cmd.(Set)
	if !ok {
		t.Fatalf("FromFrame() = %T, want Set", cmd)
	}
	if set.Key != "k" {
		t.Errorf("Key = %q, want %q", set.Key, "k")
	}
	if string(set.Value) != string([]byte{0x00, 0x0d, 0x0a, 0xff}) {
		t.Errorf("Value = %v, want binary payload preserved", set.Value)
	}
}

func TestFromFrame_Unknown(t *testing.T) {
	frame := resp.Array(resp.BulkString("FLUSHALL"))

	cmd, err := FromFrame(frame)
	if err != nil {
		t.Fatalf("FromFrame() error = %v, unknown commands must not fail", err)
	}
	unknown, ok := cmd.(Unknown)
	if !ok {
		t.Fatalf("FromFrame() = %T, want Unknown", cmd)
	}
	if unknown.Name != "FLUSHALL" {
		t.Errorf("Name = %q, want %q", unknown.Name, "FLUSHALL")
	}
}

func TestFromFrame_UnknownKeepsOriginalCase(t *testing.T) {
	cmd, err := FromFrame(resp.Array(resp.BulkString("hGetAll"), resp.BulkString("k")))
	if err != nil {
		t.Fatalf("FromFrame() error = %v", err)
	}
	unknown, ok := cmd.(Unknown)
	if !ok {
		t.Fatalf("FromFrame() = %T, want Unknown", cmd)
	}
	if unknown.Name != "hGetAll" {
		t.Errorf("Name = %q, want original spelling", unknown.Name)
	}
}

func TestFromFrame_Errors(t *testing.T) {
	tests := []struct {
		name    string
		frame   resp.Frame
		wantErr error
	}{
		{
			name:    "not an array",
			frame:   resp.Simple("GET"),
			wantErr: ErrNotArray,
		},
		{
			name:    "bulk but not array",
			frame:   resp.BulkString("GET k"),
			wantErr: ErrNotArray,
		},
		{
			name:    "null frame",
			frame:   resp.Null(),
			wantErr: ErrNotArray,
		},
		{
			name:    "empty array",
			frame:   resp.Array(),
			wantErr: ErrBadName,
		},
		{
			name:    "integer command name",
			frame:   resp.Array(resp.Integer(1)),
			wantErr: ErrBadName,
		},
		{
			name:    "GET with no key",
			frame:   resp.Array(resp.BulkString("GET")),
			wantErr: ErrArity,
		},
		{
			name:    "GET with extra argument",
			frame:   resp.Array(resp.BulkString("GET"), resp.BulkString("k"), resp.BulkString("x")),
			wantErr: ErrArity,
		},
		{
			name:    "GET with integer key",
			frame:   resp.Array(resp.BulkString("GET"), resp.Integer(1)),
			wantErr: ErrArity,
		},
		{
			name:    "SET missing value",
			frame:   resp.Array(resp.BulkString("SET"), resp.BulkString("k")),
			wantErr: ErrArity,
		},
		{
			name:    "SET with extra argument",
			frame:   resp.Array(resp.BulkString("SET"), resp.BulkString("k"), resp.BulkString("v"), resp.BulkString("x")),
			wantErr: ErrArity,
		},
		{
			name:    "SET with integer value",
			frame:   resp.Array(resp.BulkString("SET"), resp.BulkString("k"), resp.Integer(9)),
			wantErr: ErrArity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := FromFrame(tt.frame)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromFrame() error = %v, want %v", err, tt.wantErr)
			}
			if cmd != nil {
				t.Errorf("FromFrame() = %v, want nil command on error", cmd)
			}
		})
	}
}
