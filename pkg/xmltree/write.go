package xmltree

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const indent = "    "

// Namespaces maps a namespace URI to the prefix used when writing.
type Namespaces map[string]string

// Write serializes root. The root namespace becomes the default
// namespace; every other namespace in use is declared on the root with
// the prefix from ns, or a generated one when ns has none.
func Write(w io.Writer, root *Element, ns Namespaces) error {
	prefixes := assignPrefixes(root, ns)

	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, xml.Header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := writeElement(bw, root, prefixes, 0, true); err != nil {
		return err
	}
	return errors.Wrap(bw.Flush(), "flushing output")
}

// String is Write into a string, for tests and debugging.
func String(root *Element, ns Namespaces) string {
	var b strings.Builder
	if err := Write(&b, root, ns); err != nil {
		return ""
	}
	return b.String()
}

func assignPrefixes(root *Element, ns Namespaces) map[string]string {
	used := map[string]bool{}
	root.Walk(func(e *Element) bool {
		used[e.Namespace] = true
		for _, a := range e.Attrs {
			if a.Namespace != "" {
				used[a.Namespace] = true
			}
		}
		return true
	})

	prefixes := map[string]string{root.Namespace: ""}
	uris := maps.Keys(used)
	slices.Sort(uris)

	generated := 0
	for _, uri := range uris {
		if uri == root.Namespace || uri == "" {
			continue
		}
		if p, ok := ns[uri]; ok && p != "" {
			prefixes[uri] = p
			continue
		}
		generated++
		prefixes[uri] = fmt.Sprintf("ns%d", generated)
	}
	return prefixes
}

func qualify(prefixes map[string]string, namespace, name string) string {
	if p := prefixes[namespace]; p != "" {
		return p + ":" + name
	}
	return name
}

func writeElement(w *bufio.Writer, e *Element, prefixes map[string]string, depth int, isRoot bool) error {
	pad := strings.Repeat(indent, depth)
	name := qualify(prefixes, e.Namespace, e.Name)

	fmt.Fprintf(w, "%s<%s", pad, name)

	if isRoot {
		if e.Namespace != "" {
			fmt.Fprintf(w, " xmlns=\"%s\"", escape(e.Namespace))
		}
		decls := make([]string, 0, len(prefixes))
		for uri, p := range prefixes {
			if p != "" {
				decls = append(decls, fmt.Sprintf(" xmlns:%s=\"%s\"", p, escape(uri)))
			}
		}
		slices.Sort(decls)
		for _, d := range decls {
			w.WriteString(d)
		}
	}

	for _, a := range e.Attrs {
		attrName := a.Name
		if a.Namespace != "" {
			attrName = qualify(prefixes, a.Namespace, a.Name)
		}
		fmt.Fprintf(w, " %s=\"%s\"", attrName, escape(a.Value))
	}

	switch {
	case len(e.Children) == 0 && e.Text == "":
		w.WriteString(" />\n")
	case len(e.Children) == 0:
		fmt.Fprintf(w, ">%s</%s>\n", escape(e.Text), name)
	default:
		w.WriteString(">\n")
		if e.Text != "" {
			fmt.Fprintf(w, "%s%s%s\n", pad, indent, escape(e.Text))
		}
		for _, c := range e.Children {
			if err := writeElement(w, c, prefixes, depth+1, false); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s</%s>\n", pad, name)
	}

	return nil
}

func escape(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
