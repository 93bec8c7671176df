// Package inspect reads descriptive column metadata from a live database
// with the Atlas inspectors.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/schemagen/dialect"
)

// ColumnInfo is the database-side description of a column.
type ColumnInfo struct {
	Table     string
	Name      string
	Raw       string // raw column type, e.g. "varchar(64)"
	Size      int
	Precision int
	Scale     int
	Collation string
	Comment   string
	Nullable  bool
}

// String renders the type details used in field descriptions, e.g.
// "type: varchar(64), collation: NOCASE".
func (c ColumnInfo) String() string {
	var parts []string
	if c.Raw != "" {
		parts = append(parts, "type: "+c.Raw)
	}
	if c.Size > 0 && !strings.Contains(c.Raw, "(") {
		parts = append(parts, fmt.Sprintf("size: %d", c.Size))
	}
	if c.Collation != "" {
		parts = append(parts, "collation: "+c.Collation)
	}
	return strings.Join(parts, ", ")
}

// Catalog holds the inspected columns keyed by table and column name.
type Catalog map[string]map[string]ColumnInfo

// Column returns the inspected column, if present.
func (c Catalog) Column(table, column string) (ColumnInfo, bool) {
	info, ok := c[table][column]
	return info, ok
}

// Tables returns the inspected table names, sorted.
func (c Catalog) Tables() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inspect reads the columns of the given tables from the current schema of
// db. An empty tables list inspects every table. A missing schema yields an
// empty catalog.
func Inspect(ctx context.Context, db *sql.DB, name string, tables []string) (Catalog, error) {
	drv, err := open(db, name)
	if err != nil {
		return nil, err
	}
	s, err := drv.InspectSchema(ctx, "", &schema.InspectOptions{Tables: tables})
	switch {
	case schema.IsNotExistError(err):
		return Catalog{}, nil
	case err != nil:
		return nil, fmt.Errorf("inspect: reading %s schema: %w", name, err)
	}
	cat := make(Catalog, len(s.Tables))
	for _, t := range s.Tables {
		cols := make(map[string]ColumnInfo, len(t.Columns))
		for _, c := range t.Columns {
			cols[c.Name] = columnInfo(t.Name, c)
		}
		cat[t.Name] = cols
	}
	return cat, nil
}

func open(db *sql.DB, name string) (migrate.Driver, error) {
	var (
		drv migrate.Driver
		err error
	)
	switch name {
	case dialect.Postgres:
		drv, err = postgres.Open(db)
	case dialect.MySQL:
		drv, err = mysql.Open(db)
	case dialect.SQLite:
		drv, err = sqlite.Open(db)
	default:
		return nil, fmt.Errorf("inspect: unsupported dialect %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("inspect: opening %s inspector: %w", name, err)
	}
	return drv, nil
}

func columnInfo(table string, c *schema.Column) ColumnInfo {
	info := ColumnInfo{Table: table, Name: c.Name}
	if c.Type != nil {
		info.Raw = c.Type.Raw
		info.Nullable = c.Type.Null
		switch t := c.Type.Type.(type) {
		case *schema.StringType:
			info.Size = t.Size
			if info.Raw == "" {
				info.Raw = t.T
			}
		case *schema.DecimalType:
			info.Precision, info.Scale = t.Precision, t.Scale
			if info.Raw == "" {
				info.Raw = fmt.Sprintf("%s(%d,%d)", t.T, t.Precision, t.Scale)
			}
		}
	}
	for _, a := range c.Attrs {
		switch a := a.(type) {
		case *schema.Comment:
			info.Comment = a.Text
		case *schema.Collation:
			info.Collation = a.V
		}
	}
	return info
}
