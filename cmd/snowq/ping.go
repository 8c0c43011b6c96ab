package main

import (
	"github.com/spf13/cobra"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Open a connection with the selected profile and verify it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			c, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if err := c.Ping(ctx); err != nil {
				return err
			}
			cmd.Printf("ok: %s\n", c.Profile().Address())
			return nil
		},
	}
}
