package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kolide/wixext/pkg/xmlflatten"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/pkg/errors"
)

func runDiff(args []string) error {
	flagset := flag.NewFlagSet("diff", flag.ContinueOnError)
	var (
		flDebug = flagset.Bool(
			"debug",
			false,
			"enable debug logging",
		)
		flRoundTrip = flagset.Bool(
			"roundtrip",
			false,
			"compare one document with the result of compiling and decompiling it",
		)
	)

	flagset.Usage = usageFor(flagset, "wixext diff [flags] <a.wxs> [b.wxs]")
	if err := parseFlags(flagset, args); err != nil {
		return err
	}

	var a, b []byte
	switch {
	case *flRoundTrip && flagset.NArg() == 1:
		var err error
		if a, err = os.ReadFile(flagset.Arg(0)); err != nil {
			return errors.Wrapf(err, "reading %s", flagset.Arg(0))
		}
		if b, err = roundTrip(flagset.Arg(0), a, *flDebug); err != nil {
			return err
		}
	case !*flRoundTrip && flagset.NArg() == 2:
		var err error
		if a, err = os.ReadFile(flagset.Arg(0)); err != nil {
			return errors.Wrapf(err, "reading %s", flagset.Arg(0))
		}
		if b, err = os.ReadFile(flagset.Arg(1)); err != nil {
			return errors.Wrapf(err, "reading %s", flagset.Arg(1))
		}
	default:
		return errors.New("give two documents, or one with -roundtrip")
	}

	n, err := diff(os.Stdout, a, b)
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.Errorf("documents differ in %d places", n)
	}
	return nil
}

// roundTrip compiles and decompiles the document raw, returning the
// written result.
func roundTrip(path string, raw []byte, debug bool) ([]byte, error) {
	ctx, logger, ts, err := setup(debug)
	if err != nil {
		return nil, err
	}

	doc, err := xmltree.Parse(bytes.NewReader(raw), path)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	root, diags := ts.RoundTrip(ctx, doc)
	diags.Log(logger)
	if root == nil {
		return nil, errors.Errorf("%s failed to compile", path)
	}

	var buf bytes.Buffer
	if err := ts.Write(&buf, root); err != nil {
		return nil, errors.Wrap(err, "writing round trip")
	}
	return buf.Bytes(), nil
}

// diff prints the changes from a to b and returns how many there were.
func diff(w io.Writer, a, b []byte) (int, error) {
	before, err := xmlflatten.Xml(a)
	if err != nil {
		return 0, errors.Wrap(err, "flattening first document")
	}
	after, err := xmlflatten.Xml(b)
	if err != nil {
		return 0, errors.Wrap(err, "flattening second document")
	}

	changes := xmlflatten.Diff(before, after)
	for _, c := range changes {
		fmt.Fprintln(w, c.String())
	}
	return len(changes), nil
}
