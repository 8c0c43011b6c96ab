package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/copdips/snowkit/src/client"
)

func newRunCmd() *cobra.Command {
	var (
		queryFlag  string
		formatFlag string
		arrowFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Execute a query and print its result",
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
				cur := sess.Cursor()

				if arrowFlag {
					records, err := cur.FetchArrowAll(ctx, query)
					if err != nil {
						return err
					}
					defer func() {
						for _, rec := range records {
							rec.Release()
						}
					}()
					return writeArrowTable(cmd.OutOrStdout(), records)
				}

				if err := cur.Execute(ctx, query); err != nil {
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

	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Query string (if no file is provided)")
	cmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table|json|jsonl")
	cmd.Flags().BoolVar(&arrowFlag, "arrow", false, "Fetch the result as columnar batches")
	return cmd
}

// commandContext returns the command-scoped context, honoring --timeout.
func commandContext() (context.Context, context.CancelFunc) {
	if flags.timeout > 0 {
		return context.WithTimeout(context.Background(), flags.timeout)
	}
	return context.WithCancel(context.Background())
}

// resolveQuery takes the query from --query, a file argument, or stdin.
func resolveQuery(queryFlag string, args []string) (string, error) {
	if queryFlag != "" {
		if len(args) != 0 {
			return "", fmt.Errorf("provide either --query or a file path, not both")
		}
		return strings.TrimSpace(queryFlag), nil
	}

	filename := "-"
	if len(args) == 1 {
		filename = args[0]
	}

	var (
		content []byte
		err     error
	)
	if filename == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(filename)
	}
	if err != nil {
		return "", err
	}

	query := strings.TrimSpace(string(content))
	if query == "" {
		return "", fmt.Errorf("query is empty")
	}
	return query, nil
}
