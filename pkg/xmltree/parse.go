package xmltree

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/kolide/wixext/pkg/diag"
	"github.com/pkg/errors"
)

// ParseFile reads and parses a document from disk.
func ParseFile(path string) (*Element, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return Parse(bytes.NewReader(raw), path)
}

// Parse reads an XML document into a tree. Namespace prefixes are
// resolved to their URIs and namespace declarations are dropped.
// Every element records the line its start tag ends on.
func Parse(r io.Reader, file string) (*Element, error) {
	dec := xml.NewDecoder(r)

	var (
		root  *Element
		stack []*Element
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", file)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			el := &Element{
				Namespace: t.Name.Space,
				Name:      t.Name.Local,
				Source:    diag.SourceLine{File: file, Line: line},
			}
			for _, a := range t.Attr {
				if isNamespaceDecl(a.Name) {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Namespace: a.Name.Space, Name: a.Name.Local, Value: a.Value})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, errors.Errorf("parsing %s: multiple root elements", file)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.Errorf("parsing %s: unbalanced end element %s", file, t.Name.Local)
			}
			top := stack[len(stack)-1]
			top.Text = strings.TrimSpace(top.Text)
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.Errorf("parsing %s: no root element", file)
	}

	return root, nil
}

func isNamespaceDecl(n xml.Name) bool {
	return n.Space == "xmlns" || (n.Space == "" && n.Local == "xmlns")
}
