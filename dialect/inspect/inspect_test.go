package inspect

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/schemagen/dialect"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "inspect.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range []string{
		"CREATE TABLE `users` (`id` integer NOT NULL PRIMARY KEY, `name` varchar(64) NOT NULL, `bio` text NULL)",
		"CREATE TABLE `tags` (`id` integer NOT NULL PRIMARY KEY, `label` text NOT NULL)",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestInspect_SQLite(t *testing.T) {
	db := openSQLite(t)

	cat, err := Inspect(context.Background(), db, dialect.SQLite, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"tags", "users"}, cat.Tables())

	name, ok := cat.Column("users", "name")
	require.True(t, ok)
	assert.Equal(t, "users", name.Table)
	assert.Contains(t, name.Raw, "varchar")
	assert.False(t, name.Nullable)
	assert.Contains(t, name.String(), "type: varchar")

	bio, ok := cat.Column("users", "bio")
	require.True(t, ok)
	assert.True(t, bio.Nullable)

	_, ok = cat.Column("users", "missing")
	assert.False(t, ok)
}

func TestInspect_Tables(t *testing.T) {
	db := openSQLite(t)

	cat, err := Inspect(context.Background(), db, dialect.SQLite, []string{"tags"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tags"}, cat.Tables())

	cat, err = Inspect(context.Background(), db, dialect.SQLite, []string{"nothing_here"})
	require.NoError(t, err)
	assert.Empty(t, cat)
}

func TestInspect_UnsupportedDialect(t *testing.T) {
	_, err := Inspect(context.Background(), nil, "oracle", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported dialect "oracle"`)
}

func TestColumnInfo(t *testing.T) {
	tests := []struct {
		name string
		col  *schema.Column
		want ColumnInfo
		str  string
	}{
		{
			name: "string with collation and comment",
			col: &schema.Column{
				Name:  "name",
				Type:  &schema.ColumnType{Raw: "varchar(64)", Type: &schema.StringType{T: "varchar", Size: 64}},
				Attrs: []schema.Attr{&schema.Collation{V: "NOCASE"}, &schema.Comment{Text: "Display name"}},
			},
			want: ColumnInfo{Table: "users", Name: "name", Raw: "varchar(64)", Size: 64, Collation: "NOCASE", Comment: "Display name"},
			str:  "type: varchar(64), collation: NOCASE",
		},
		{
			name: "decimal without raw",
			col: &schema.Column{
				Name: "price",
				Type: &schema.ColumnType{Null: true, Type: &schema.DecimalType{T: "decimal", Precision: 10, Scale: 2}},
			},
			want: ColumnInfo{Table: "users", Name: "price", Raw: "decimal(10,2)", Precision: 10, Scale: 2, Nullable: true},
			str:  "type: decimal(10,2)",
		},
		{
			name: "size without parenthesis",
			col: &schema.Column{
				Name: "code",
				Type: &schema.ColumnType{Raw: "varchar", Type: &schema.StringType{T: "varchar", Size: 8}},
			},
			want: ColumnInfo{Table: "users", Name: "code", Raw: "varchar", Size: 8},
			str:  "type: varchar, size: 8",
		},
		{
			name: "untyped",
			col:  &schema.Column{Name: "x"},
			want: ColumnInfo{Table: "users", Name: "x"},
			str:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := columnInfo("users", tt.col)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}
