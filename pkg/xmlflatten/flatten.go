// Package xmlflatten turns an XML document into a sorted list of
// path/value rows, so two authorings of the same installer source can
// be compared without caring about element order or whitespace.
//
// Elements carrying an Id attribute are addressed by it, so
//
//	<Component Id="App"><File Id="Main" Source="app.exe"/></Component>
//
// flattens to the single row
//
//	Wix/Component[App]/File[Main]/-Source = app.exe
//
// wherever the component appears among its siblings.
package xmlflatten

import (
	"fmt"
	"io/ioutil"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/clbanning/mxj"
	"github.com/pkg/errors"
)

const (
	defaultPathSeparator = "/"
	attrPrefix           = "-"
	idAttr               = attrPrefix + "Id"
)

type Row struct {
	Path  []string
	Value string
}

func (r Row) StringPath() string {
	return strings.Join(r.Path, defaultPathSeparator)
}

func (r Row) String() string {
	return r.StringPath() + " = " + r.Value
}

type flattenOpts struct {
	includeNamespaces bool
	keyAttr           string

	// prefixes declared in the document. mxj keys attributes by local
	// name, so xmlns:util may arrive as -util.
	prefixes map[string]bool
}

var prefixDecl = regexp.MustCompile(`xmlns:([A-Za-z_][A-Za-z0-9_.-]*)\s*=`)

type FlattenOpts func(*flattenOpts)

// IncludeNamespaces keeps xmlns declarations, which are otherwise
// dropped since prefixes are a matter of serialization.
func IncludeNamespaces() FlattenOpts {
	return func(fl *flattenOpts) {
		fl.includeNamespaces = true
	}
}

// WithKeyAttribute addresses elements by attr instead of Id. An empty
// attr addresses repeated elements by position.
func WithKeyAttribute(attr string) FlattenOpts {
	return func(fl *flattenOpts) {
		if attr == "" {
			fl.keyAttr = ""
			return
		}
		fl.keyAttr = attrPrefix + attr
	}
}

func XmlFile(file string, opts ...FlattenOpts) ([]Row, error) {
	rawdata, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Xml(rawdata, opts...)
}

// Xml flattens rawdata. Element names lose their namespace prefix.
func Xml(rawdata []byte, opts ...FlattenOpts) ([]Row, error) {
	fl := &flattenOpts{keyAttr: idAttr}
	for _, opt := range opts {
		opt(fl)
	}

	mv, err := mxj.NewMapXml(rawdata)
	if err != nil {
		return nil, errors.Wrap(err, "mxj parse")
	}

	fl.prefixes = make(map[string]bool)
	for _, m := range prefixDecl.FindAllSubmatch(rawdata, -1) {
		fl.prefixes[string(m[1])] = true
	}

	rows := []Row{}
	if err := fl.flattenMap(&rows, nil, mv.Old()); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].StringPath() < rows[j].StringPath()
	})
	return rows, nil
}

func (fl *flattenOpts) flattenMap(rows *[]Row, path []string, m map[string]interface{}) error {
	for k, v := range m {
		if !fl.includeNamespaces && fl.isNamespaceDecl(k) {
			continue
		}
		if err := fl.flattenElement(rows, path, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (fl *flattenOpts) flattenElement(rows *[]Row, path []string, key string, data interface{}) error {
	switch v := data.(type) {
	case []interface{}:
		for i, e := range v {
			segment := key + "[" + strconv.Itoa(i) + "]"
			if id, ok := fl.key(e); ok {
				segment = key + "[" + id + "]"
			}
			if err := fl.flattenValue(rows, extend(path, segment), e); err != nil {
				return errors.Wrapf(err, "flattening %s", segment)
			}
		}
		return nil
	default:
		segment := key
		if id, ok := fl.key(v); ok {
			segment = key + "[" + id + "]"
		}
		return fl.flattenValue(rows, extend(path, segment), v)
	}
}

func (fl *flattenOpts) flattenValue(rows *[]Row, path []string, data interface{}) error {
	switch v := data.(type) {
	case map[string]interface{}:
		return fl.flattenMap(rows, path, v)
	case nil:
		*rows = append(*rows, Row{Path: path, Value: ""})
		return nil
	case string:
		*rows = append(*rows, Row{Path: path, Value: v})
		return nil
	case float64, bool, int:
		*rows = append(*rows, Row{Path: path, Value: fmt.Sprintf("%v", v)})
		return nil
	default:
		return errors.Errorf("unknown type %T at %s", v, strings.Join(path, defaultPathSeparator))
	}
}

func (fl *flattenOpts) key(data interface{}) (string, bool) {
	if fl.keyAttr == "" {
		return "", false
	}
	m, ok := data.(map[string]interface{})
	if !ok {
		return "", false
	}
	id, ok := m[fl.keyAttr].(string)
	return id, ok && id != ""
}

func (fl *flattenOpts) isNamespaceDecl(key string) bool {
	if !strings.HasPrefix(key, attrPrefix) {
		return false
	}
	name := strings.TrimPrefix(key, attrPrefix)
	return name == "xmlns" || strings.HasPrefix(name, "xmlns:") || fl.prefixes[name]
}

// extend copies, so sibling paths never share a backing array.
func extend(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}
