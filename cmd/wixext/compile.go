package main

import (
	"flag"
	"os"

	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/rowstore"
	"github.com/kolide/wixext/pkg/store"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type compiled struct {
	path    string
	section *intermediate.Section
	diags   *diag.Diagnostics
}

func runCompile(args []string) error {
	flagset := flag.NewFlagSet("compile", flag.ContinueOnError)
	var (
		flDebug = flagset.Bool(
			"debug",
			false,
			"enable debug logging",
		)
		flOutput = flagset.String(
			"o",
			"",
			"SQLite database to write the compiled tables to",
		)
		flIntermediate = flagset.String(
			"intermediate",
			"",
			"bbolt database to save the compiled sections in",
		)
	)

	flagset.Usage = usageFor(flagset, "wixext compile [flags] <source.wxs>...")
	if err := parseFlags(flagset, args); err != nil {
		return err
	}
	if flagset.NArg() == 0 {
		return errors.New("no source documents given")
	}
	if *flOutput == "" && *flIntermediate == "" {
		return errors.New("nothing to write: use -o, -intermediate or both")
	}

	ctx, logger, ts, err := setup(*flDebug)
	if err != nil {
		return err
	}

	// Results keep argument order.
	results := make([]compiled, flagset.NArg())
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range flagset.Args() {
		i, path := i, path
		g.Go(func() error {
			section, diags, err := ts.CompileFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = compiled{path: path, section: section, diags: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var (
		sections []*intermediate.Section
		failed   int
	)
	for _, r := range results {
		r.diags.Log(logger)
		if r.section == nil {
			failed++
			continue
		}
		level.Info(logger).Log(
			"msg", "compiled",
			"file", r.path,
			"section", r.section.ID,
			"symbols", len(r.section.Symbols),
			"warnings", r.diags.WarningCount(),
		)
		sections = append(sections, r.section)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d documents failed to compile", failed, flagset.NArg())
	}

	if *flIntermediate != "" {
		st, err := store.Open(*flIntermediate, store.WithLogger(logger))
		if err != nil {
			return err
		}
		defer st.Close()

		for _, section := range sections {
			if err := st.Save(section); err != nil {
				return err
			}
		}
	}

	if *flOutput != "" {
		if err := os.Remove(*flOutput); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing old %s", *flOutput)
		}
		db, err := rowstore.OpenSQLite(*flOutput)
		if err != nil {
			return err
		}
		defer db.Close()

		tables := rowstore.FromSection(sections...)
		if err := rowstore.WriteSQLite(ctx, db, tables); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "wrote tables", "file", *flOutput, "tables", tables.Len(), "rows", rowstore.RowCount(tables))
	}

	return nil
}
