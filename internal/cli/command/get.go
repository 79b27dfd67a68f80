package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch the value stored under a key",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

func getAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("get requires exactly one KEY argument")
	}
	key := c.Args().First()

	conn, err := connect(c)
	if err != nil {
		return err
	}
	defer conn.Close()

	value, found, err := conn.Get(key)
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}
	if !found {
		fmt.Fprintln(c.App.Writer, "(nil)")
		return nil
	}

	// Values are binary safe; write the bytes as-is.
	if _, err := c.App.Writer.Write(value); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer)
	return nil
}
