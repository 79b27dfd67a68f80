package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/qwerin/framekv-go/internal/resp"
)

// RawCommand returns the raw command, which sends an arbitrary command
// frame and prints whatever the server replies. Useful for poking at the
// wire protocol directly.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Send an arbitrary command frame and print the reply",
		ArgsUsage: "NAME [ARG...]",
		Action:    rawAction,
	}
}

func rawAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("raw requires at least a command NAME")
	}

	elems := make([]resp.Frame, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		elems = append(elems, resp.BulkString(arg))
	}

	conn, err := connect(c)
	if err != nil {
		return err
	}
	defer conn.Close()

	reply, err := conn.Do(resp.Array(elems...))
	if err != nil {
		return fmt.Errorf("raw %q: %w", c.Args().First(), err)
	}

	printReply(c, reply)
	return nil
}

// printReply renders a reply frame the way redis-cli does: errors are
// prefixed, nulls are explicit, bulk bytes pass through untouched.
func printReply(c *cli.Context, reply resp.Frame) {
	switch reply.Type {
	case resp.TypeSimple:
		fmt.Fprintln(c.App.Writer, reply.Str)
	case resp.TypeError:
		fmt.Fprintln(c.App.Writer, "(error) "+reply.Str)
	case resp.TypeInteger:
		fmt.Fprintf(c.App.Writer, "(integer) %d\n", reply.Int)
	case resp.TypeNull:
		fmt.Fprintln(c.App.Writer, "(nil)")
	case resp.TypeBulk:
		c.App.Writer.Write(reply.Bulk)
		fmt.Fprintln(c.App.Writer)
	default:
		fmt.Fprintln(c.App.Writer, reply.String())
	}
}
