package rowstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixext/pkg/contexts/ctxlog"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/serenize/snaker"
)

// rowColumn keeps row order, which decompiling depends on for claim
// ties and sibling order.
const rowColumn = "_row"

// OpenSQLite opens, creating if needed, the database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite db %s", path)
	}
	return db, nil
}

// ColumnName is the SQLite spelling of a column. Underscores inside
// the name are dropped before snake casing, and a trailing underscore,
// which marks a foreign key, becomes _ref: Directory_Parent is
// directory_parent and Component_ is component_ref.
func ColumnName(name string) string {
	trimmed := strings.TrimRight(name, "_")
	out := snaker.CamelToSnake(strings.ReplaceAll(trimmed, "_", ""))
	if trimmed != name {
		out += "_ref"
	}
	return out
}

func columnNames(def *schema.TableDefinition) ([]string, error) {
	names := make([]string, len(def.Columns))
	seen := map[string]string{rowColumn: rowColumn}
	for i, c := range def.Columns {
		n := ColumnName(c.Name)
		if other, ok := seen[n]; ok {
			return nil, errors.Errorf("table %s: columns %s and %s both map to %s", def.Name, other, c.Name, n)
		}
		seen[n] = c.Name
		names[i] = n
	}
	return names, nil
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// WriteSQLite creates one table per table of ts, named the way ts
// names it, and inserts every row. It runs in a single transaction.
func WriteSQLite(ctx context.Context, db *sql.DB, ts *intermediate.TableSet) error {
	logger := ctxlog.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	for _, name := range ts.Names() {
		t, _ := ts.Table(name)
		if t.Definition == nil {
			return errors.Errorf("table %s has no definition", name)
		}
		if err := writeTable(ctx, tx, t); err != nil {
			return errors.Wrapf(err, "writing table %s", name)
		}
		level.Debug(logger).Log("msg", "wrote table", "table", name, "rows", len(t.Rows))
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing tables")
	}
	return nil
}

func writeTable(ctx context.Context, tx *sql.Tx, t *intermediate.Table) error {
	cols, err := columnNames(t.Definition)
	if err != nil {
		return err
	}

	decls := []string{quote(rowColumn) + " INTEGER NOT NULL"}
	quoted := []string{quote(rowColumn)}
	for i, c := range t.Definition.Columns {
		typ := "TEXT"
		if c.Type.IsNumeric() {
			typ = "INTEGER"
		}
		decls = append(decls, quote(cols[i])+" "+typ)
		quoted = append(quoted, quote(cols[i]))
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(t.Name), strings.Join(decls, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return errors.Wrap(err, "creating table")
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(t.Name),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(quoted)), ", "),
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		args := make([]interface{}, 0, len(quoted))
		args = append(args, i+1)
		for c := range t.Definition.Columns {
			args = append(args, sqlValue(row.Field(c)))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "inserting row %d", i+1)
		}
	}
	return nil
}

func sqlValue(f intermediate.Field) interface{} {
	switch f.Kind() {
	case intermediate.FieldString:
		return f.String()
	case intermediate.FieldNumber:
		n, _ := f.Number()
		return n
	default:
		return nil
	}
}

// ReadSQLite reads every table of db. Tables reg knows are read with
// their definition, in row order. Tables it does not know are returned
// empty and without a definition, so the decompiler can report them.
func ReadSQLite(ctx context.Context, db *sql.DB, reg *schema.Registry) (*intermediate.TableSet, error) {
	logger := ctxlog.FromContext(ctx)

	names, err := tableNames(ctx, db)
	if err != nil {
		return nil, err
	}

	ts := intermediate.NewTableSet()
	for _, name := range names {
		def, err := reg.Lookup(name)
		if errors.Is(err, schema.ErrUnknownTable) {
			level.Info(logger).Log("msg", "skipping unknown table", "table", name)
			ts.Ensure(name, nil)
			continue
		}
		t := ts.Ensure(name, def)
		if err := readTable(ctx, logger, db, t); err != nil {
			return nil, errors.Wrapf(err, "reading table %s", name)
		}
	}
	return ts, nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "listing tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning table name")
		}
		names = append(names, name)
	}
	return names, errors.Wrap(rows.Err(), "listing tables")
}

func readTable(ctx context.Context, logger log.Logger, db *sql.DB, t *intermediate.Table) error {
	cols, err := columnNames(t.Definition)
	if err != nil {
		return err
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(quoted, ", "), quote(t.Name), quote(rowColumn))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "querying rows")
	}
	defer rows.Close()

	raw := make([]interface{}, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return errors.Wrap(err, "scanning row")
		}
		fields := make([]intermediate.Field, len(cols))
		for i, v := range raw {
			fields[i] = fieldValue(v)
		}
		t.AddRow(fields)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterating rows")
	}

	level.Debug(logger).Log("msg", "read table", "table", t.Name, "rows", len(t.Rows))
	return nil
}

// fieldValue keeps whatever type SQLite stored. A number column
// holding text stays text, and the decompiler reports it.
func fieldValue(v interface{}) intermediate.Field {
	switch v := v.(type) {
	case nil:
		return intermediate.Null
	case int64:
		return intermediate.Number(int(v))
	case []byte:
		return intermediate.String(string(v))
	case string:
		return intermediate.String(v)
	default:
		return intermediate.String(fmt.Sprint(v))
	}
}
