package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/copdips/snowkit/src/client"
)

func newSubmitCmd() *cobra.Command {
	var queryFlag string

	cmd := &cobra.Command{
		Use:   "submit [file|-]",
		Short: "Submit a query asynchronously and print its tracking identifier",
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
				qid, err := sess.Cursor().ExecuteAsync(ctx, query)
				if err != nil {
					return err
				}
				cmd.Println(qid)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Query string (if no file is provided)")
	return cmd
}

func newFetchCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "fetch <query-id>",
		Short: "Retrieve the result of a previously submitted query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryID := args[0]

			ctx, cancel := commandContext()
			defer cancel()

			c, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			return c.WithSession(ctx, func(ctx context.Context, sess *client.Session) error {
				cur := sess.Cursor()
				if err := cur.FetchByQueryID(ctx, queryID); err != nil {
					return err
				}

				switch strings.ToLower(formatFlag) {
				case "table":
					rows, err := cur.FetchAll()
					if err != nil {
						return err
					}
					return writeTable(cmd.OutOrStdout(), columnNames(cur.Description()), rows)
				case "json":
					maps, err := cur.FetchAllMaps()
					if err != nil {
						return err
					}
					return writeJSONArray(cmd.OutOrStdout(), maps)
				case "jsonl":
					maps, err := cur.FetchAllMaps()
					if err != nil {
						return err
					}
					return writeJSONLines(cmd.OutOrStdout(), maps)
				default:
					return fmt.Errorf("unknown --format %q (expected table|json|jsonl)", formatFlag)
				}
			})
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table|json|jsonl")
	return cmd
}
