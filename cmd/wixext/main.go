package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	"github.com/kolide/kit/logutil"
	"github.com/kolide/kit/version"
	"github.com/kolide/wixext/pkg/contexts/ctxlog"
	"github.com/kolide/wixext/pkg/toolset"
	"github.com/peterbourgon/ff/v3"
)

const envPrefix = "WIXEXT"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var run func([]string) error
	switch strings.ToLower(os.Args[1]) {
	case "version":
		run = runVersion
	case "compile":
		run = runCompile
	case "decompile":
		run = runDecompile
	case "tables":
		run = runTables
	case "diff":
		run = runDiff
	default:
		usage()
		os.Exit(1)
	}

	if err := run(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runVersion(args []string) error {
	version.PrintFull()
	return nil
}

// parseFlags parses a mode's flags, which may also come from WIXEXT_
// environment variables or a -config file.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.String("config", "", "config file (optional)")
	return ff.Parse(fs, args,
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix(envPrefix),
	)
}

// setup builds the CLI logger, a context carrying it, and the toolset
// every mode works with.
func setup(debug bool) (context.Context, log.Logger, *toolset.Toolset, error) {
	logger := logutil.NewCLILogger(debug)
	ctx := ctxlog.NewContext(context.Background(), logger)

	ts, err := toolset.New(toolset.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, err
	}
	return ctx, logger, ts, nil
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "USAGE\n")
	fmt.Fprintf(os.Stderr, "  %s <mode> --help\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "MODES\n")
	fmt.Fprintf(os.Stderr, "  compile      Compile source documents into installer tables\n")
	fmt.Fprintf(os.Stderr, "  decompile    Turn installer tables back into a source document\n")
	fmt.Fprintf(os.Stderr, "  tables       List the tables the extensions define\n")
	fmt.Fprintf(os.Stderr, "  diff         Compare two source documents, or one with its round trip\n")
	fmt.Fprintf(os.Stderr, "  version      Print full version information\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "VERSION\n")
	fmt.Fprintf(os.Stderr, "  %s\n", version.Version().Version)
	fmt.Fprintf(os.Stderr, "\n")
}
