package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/copdips/snowkit/src/client"
)

func newDescribeCmd() *cobra.Command {
	var queryFlag string

	cmd := &cobra.Command{
		Use:   "describe [file|-]",
		Short: "Print the column metadata a query would produce, without executing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := resolveQuery(queryFlag, args)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			c, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			return c.WithSession(ctx, func(ctx context.Context, sess *client.Session) error {
				cols, err := sess.Cursor().Describe(ctx, query)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				defer func() { _ = tw.Flush() }()
				fmt.Fprintln(tw, "name\ttype\tnullable\tprecision\tscale\tlength")
				for _, col := range cols {
					fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%d\t%d\n",
						col.Name, col.DatabaseType, col.Nullable, col.Precision, col.Scale, col.Length)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Query string (if no file is provided)")
	return cmd
}
