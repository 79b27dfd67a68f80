package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value under a key",
		ArgsUsage: "KEY VALUE",
		Action:    setAction,
	}
}

func setAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("set requires KEY and VALUE arguments")
	}
	key := c.Args().Get(0)
	value := c.Args().Get(1)

	conn, err := connect(c)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Set(key, []byte(value)); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}
