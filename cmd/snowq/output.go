package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/copdips/snowkit/src/client"
)

func columnNames(cols []client.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func writeTable(w io.Writer, names []string, rows []client.Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	for i, name := range names {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, name)
	}
	fmt.Fprintln(tw)

	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, formatValue(v))
		}
		fmt.Fprintln(tw)
	}
	return nil
}

func writeArrowTable(w io.Writer, records []arrow.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	if len(records) > 0 {
		for i, f := range records[0].Schema().Fields() {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, f.Name)
		}
		fmt.Fprintln(tw)
	}

	for _, rec := range records {
		for _, row := range client.RecordStrings(rec) {
			for i, cell := range row {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, cell)
			}
			fmt.Fprintln(tw)
		}
	}
	return nil
}

func writeJSONArray(w io.Writer, maps []map[string]interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if maps == nil {
		maps = []map[string]interface{}{}
	}
	return enc.Encode(maps)
}

func writeJSONLines(w io.Writer, maps []map[string]interface{}) error {
	enc := json.NewEncoder(w)
	for _, m := range maps {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
