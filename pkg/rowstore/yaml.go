package rowstore

import (
	"io"

	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fixture is the YAML row format:
//
//	tables:
//	  IIsWebSite:
//	    - [Site, App, Example, ~, 1, 2, ~, ~, ~, ~, ~, ~, ~]
//
// Tables keep document order. Integers in number columns are numbers,
// ~ is null and anything else is text.
type fixture struct {
	Tables yaml.Node `yaml:"tables"`
}

// LoadYAML reads a fixture. Rows may leave trailing columns out, which
// then read as null. Tables reg does not know are kept empty and
// without a definition.
func LoadYAML(r io.Reader, reg *schema.Registry) (*intermediate.TableSet, error) {
	var f fixture
	ts := intermediate.NewTableSet()
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return ts, nil
		}
		return nil, errors.Wrap(err, "decoding yaml fixture")
	}

	if f.Tables.Kind == 0 {
		return ts, nil
	}
	if f.Tables.Kind != yaml.MappingNode {
		return nil, errors.Errorf("line %d: tables must be a mapping", f.Tables.Line)
	}

	for i := 0; i+1 < len(f.Tables.Content); i += 2 {
		name, rows := f.Tables.Content[i].Value, f.Tables.Content[i+1]
		def, err := reg.Lookup(name)
		if err != nil {
			ts.Ensure(name, nil)
			continue
		}
		t := ts.Ensure(name, def)
		if rows.Kind != yaml.SequenceNode {
			return nil, errors.Errorf("line %d: rows of %s must be a list", rows.Line, name)
		}
		for _, row := range rows.Content {
			fields, err := yamlFields(def, row)
			if err != nil {
				return nil, errors.Wrapf(err, "table %s", name)
			}
			t.AddRow(fields)
		}
	}
	return ts, nil
}

func yamlFields(def *schema.TableDefinition, row *yaml.Node) ([]intermediate.Field, error) {
	if row.Kind != yaml.SequenceNode {
		return nil, errors.Errorf("line %d: a row must be a list", row.Line)
	}
	if len(row.Content) > len(def.Columns) {
		return nil, errors.Errorf("line %d: %d values for %d columns", row.Line, len(row.Content), len(def.Columns))
	}

	fields := make([]intermediate.Field, len(def.Columns))
	for i, v := range row.Content {
		if v.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("line %d: column %s must be a scalar", v.Line, def.Columns[i].Name)
		}
		switch {
		case v.Tag == "!!null":
			fields[i] = intermediate.Null
		case v.Tag == "!!int" && def.Columns[i].Type.IsNumeric():
			var n int
			if err := v.Decode(&n); err != nil {
				return nil, errors.Wrapf(err, "line %d: column %s", v.Line, def.Columns[i].Name)
			}
			fields[i] = intermediate.Number(n)
		default:
			fields[i] = intermediate.String(v.Value)
		}
	}
	return fields, nil
}
