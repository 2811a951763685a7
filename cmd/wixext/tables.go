package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/kolide/wixext/pkg/toolset"
	"github.com/pkg/errors"
)

type columnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
	KeyTable string `json:"key_table,omitempty"`
}

type tableInfo struct {
	Name       string       `json:"name"`
	LegacyName string       `json:"legacy_name,omitempty"`
	Extension  string       `json:"extension"`
	Columns    []columnInfo `json:"columns"`
}

func describeTables(ts *toolset.Toolset) []tableInfo {
	var out []tableInfo
	for _, ext := range ts.Extensions() {
		for _, def := range ext.Tables() {
			info := tableInfo{
				Name:       def.Name,
				LegacyName: def.LegacyName,
				Extension:  ext.Name(),
				Columns:    make([]columnInfo, len(def.Columns)),
			}
			for i, c := range def.Columns {
				info.Columns[i] = columnInfo{
					Name:     c.Name,
					Type:     c.Type.String(),
					Nullable: c.Nullable,
					Primary:  c.Primary,
					KeyTable: c.KeyTable,
				}
			}
			out = append(out, info)
		}
	}
	return out
}

func runTables(args []string) error {
	flagset := flag.NewFlagSet("tables", flag.ContinueOnError)
	var (
		flJson = flagset.Bool(
			"json",
			false,
			"print full table definitions as JSON",
		)
	)

	flagset.Usage = usageFor(flagset, "wixext tables [flags]")
	if err := parseFlags(flagset, args); err != nil {
		return err
	}

	_, _, ts, err := setup(false)
	if err != nil {
		return err
	}

	return printTables(os.Stdout, describeTables(ts), *flJson)
}

func printTables(w io.Writer, tables []tableInfo, asJson bool) error {
	if asJson {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(tables), "encoding tables")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "EXTENSION\tTABLE\tLEGACY\tCOLUMNS\n")
	for _, t := range tables {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.Extension, t.Name, t.LegacyName, len(t.Columns))
	}
	return tw.Flush()
}
