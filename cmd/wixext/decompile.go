package main

import (
	"bytes"
	"flag"
	"io"
	"os"

	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/rowstore"
	"github.com/kolide/wixext/pkg/store"
	"github.com/pkg/errors"
)

func runDecompile(args []string) error {
	flagset := flag.NewFlagSet("decompile", flag.ContinueOnError)
	var (
		flDebug = flagset.Bool(
			"debug",
			false,
			"enable debug logging",
		)
		flOutput = flagset.String(
			"o",
			"",
			"file to write the document to, stdout when empty",
		)
		flYaml = flagset.String(
			"yaml",
			"",
			"read rows from a YAML fixture instead of a SQLite database",
		)
		flIntermediate = flagset.String(
			"intermediate",
			"",
			"read rows from a section saved by compile -intermediate",
		)
		flSection = flagset.String(
			"section",
			"",
			"id of the saved section to decompile, with -intermediate",
		)
	)

	flagset.Usage = usageFor(flagset, "wixext decompile [flags] [tables.sqlite]")
	if err := parseFlags(flagset, args); err != nil {
		return err
	}

	ctx, logger, ts, err := setup(*flDebug)
	if err != nil {
		return err
	}

	var tables *intermediate.TableSet
	switch {
	case *flYaml != "":
		f, err := os.Open(*flYaml)
		if err != nil {
			return errors.Wrapf(err, "opening %s", *flYaml)
		}
		defer f.Close()
		if tables, err = rowstore.LoadYAML(f, ts.Registry()); err != nil {
			return err
		}
	case *flIntermediate != "":
		st, err := store.Open(*flIntermediate, store.WithLogger(logger))
		if err != nil {
			return err
		}
		defer st.Close()

		ids := []string{*flSection}
		if *flSection == "" {
			if ids, err = st.List(); err != nil {
				return err
			}
		}
		sections := make([]*intermediate.Section, 0, len(ids))
		for _, id := range ids {
			section, err := st.Load(id, ts.Registry())
			if err != nil {
				return err
			}
			sections = append(sections, section)
		}
		tables = rowstore.FromSection(sections...)
	case flagset.NArg() == 1:
		if _, err := os.Stat(flagset.Arg(0)); err != nil {
			return errors.Wrap(err, "checking database")
		}
		db, err := rowstore.OpenSQLite(flagset.Arg(0))
		if err != nil {
			return err
		}
		defer db.Close()
		if tables, err = rowstore.ReadSQLite(ctx, db, ts.Registry()); err != nil {
			return err
		}
	default:
		return errors.New("give one SQLite database, -yaml or -intermediate")
	}

	root, diags := ts.Decompile(ctx, tables)
	diags.Log(logger)

	var buf bytes.Buffer
	if err := ts.Write(&buf, root); err != nil {
		return errors.Wrap(err, "writing document")
	}

	var out io.Writer = os.Stdout
	if *flOutput != "" {
		f, err := os.Create(*flOutput)
		if err != nil {
			return errors.Wrapf(err, "creating %s", *flOutput)
		}
		defer f.Close()
		out = f
	}
	if _, err := buf.WriteTo(out); err != nil {
		return errors.Wrap(err, "writing document")
	}

	level.Info(logger).Log(
		"msg", "decompiled",
		"tables", tables.Len(),
		"rows", rowstore.RowCount(tables),
		"warnings", diags.WarningCount(),
	)
	return nil
}
