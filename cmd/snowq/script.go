package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/copdips/snowkit/src/client"
)

func newScriptCmd() *cobra.Command {
	var separateFlag bool

	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Execute a multi-statement SQL script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading script: %w", err)
			}

			ctx, cancel := commandContext()
			defer cancel()

			c, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			return c.WithSession(ctx, func(ctx context.Context, sess *client.Session) error {
				var results []client.ResultSet
				if separateFlag {
					results, err = sess.ExecuteEach(ctx, string(raw))
				} else {
					results, err = sess.ExecuteScript(ctx, string(raw))
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for i, rs := range results {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "-- statement %d --\n", i+1)
					if err := writeTable(out, rs.Names(), rs.Rows); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&separateFlag, "separate", false, "Run each statement as its own round trip instead of a single multi-statement request")
	return cmd
}
