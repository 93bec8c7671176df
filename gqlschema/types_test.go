package gqlschema

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/syssam/schemagen/model"
)

func TestCamel(t *testing.T) {
	tests := map[string]string{
		"name":          "name",
		"first_name":    "firstName",
		"user_id":       "userId",
		"deleted_count": "deletedCount",
		"create_user":   "createUser",
		"user_data":     "userData",
		"order_by":      "orderBy",
		"trailing_":     "trailing_",
	}
	for in, want := range tests {
		assert.Equal(t, want, camel(in), in)
	}
	assert.Equal(t, "usergroup", lower("UserGroup"))
}

func column(v any, dt schema.DataType) *model.Column {
	return &model.Column{Type: reflect.TypeOf(v), DataType: dt}
}

func TestScalarOf(t *testing.T) {
	type (
		status  string
		counter uint16
	)
	tests := []struct {
		name string
		col  *model.Column
		want string
	}{
		{name: "bool", col: column(true, schema.Bool), want: "Boolean"},
		{name: "int", col: column(int64(0), schema.Int), want: "Int"},
		{name: "uint", col: column(uint(0), schema.Uint), want: "Int"},
		{name: "float", col: column(0.5, schema.Float), want: "Float"},
		{name: "string", col: column("", schema.String), want: "String"},
		{name: "bytes", col: column([]byte{}, schema.Bytes), want: "String"},
		{name: "time", col: column(time.Time{}, schema.Time), want: "DateTime"},
		{name: "null time", col: column(sql.NullTime{}, schema.Time), want: "DateTime"},
		{name: "uuid", col: column(uuid.UUID{}, ""), want: "String"},
		{name: "string array", col: column(pq.StringArray{}, ""), want: "[String]"},
		{name: "int array", col: column(pq.Int64Array{}, ""), want: "[Int]"},
		{name: "bool array", col: column(pq.BoolArray{}, ""), want: "[Boolean]"},
		{name: "float array", col: column(pq.Float64Array{}, ""), want: "[Float]"},
		{name: "named string", col: column(status(""), ""), want: "String"},
		{name: "named uint", col: column(counter(0), ""), want: "Int"},
		{name: "valuer", col: column(sql.NullString{}, ""), want: "String"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scalarOf(tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := scalarOf(column(complex64(0), ""))
	assert.EqualError(t, err, "unsupported column type complex64")
}

func TestNormalize(t *testing.T) {
	name := "alice"
	var nilName *string
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.MustParse("7b0c3a7e-2c1a-4f4e-9a51-0a7f1f3c9d10")

	assert.Equal(t, "alice", normalize(&name))
	assert.Nil(t, normalize(nilName))
	assert.Nil(t, normalize(nil))
	assert.Equal(t, now, normalize(&now))
	assert.Equal(t, "raw", normalize([]byte("raw")))
	assert.Equal(t, id.String(), normalize(id))
	assert.Equal(t, int64(7), normalize(sql.NullInt64{Int64: 7, Valid: true}))
	assert.Nil(t, normalize(sql.NullString{}))
	assert.Equal(t, pq.StringArray{"a", "b"}, normalize(pq.StringArray{"a", "b"}))
	assert.Equal(t, 3, normalize(3))
}

func TestCoerceInput(t *testing.T) {
	tags := &model.Column{Type: reflect.TypeOf(pq.StringArray{})}
	scores := &model.Column{Type: reflect.TypeOf(pq.Int64Array{})}
	name := &model.Column{Type: reflect.TypeOf("")}

	assert.Equal(t, pq.StringArray{"a", "b"}, coerceInput(tags, []any{"a", "b"}))
	assert.Equal(t, pq.Int64Array{1, 0, 3}, coerceInput(scores, []any{1, nil, 3}))
	assert.Equal(t, []any{"x"}, coerceInput(scores, []any{"x"}), "inconvertible lists are kept")
	assert.Equal(t, "bob", coerceInput(name, "bob"))
}

func TestInputDefault(t *testing.T) {
	assert.Equal(t, 18, inputDefault(&model.Column{DefaultValue: int64(18)}))
	assert.Equal(t, 7, inputDefault(&model.Column{DefaultValue: uint64(7)}))
	assert.Equal(t, true, inputDefault(&model.Column{DefaultValue: true}))
	assert.Equal(t, "draft", inputDefault(&model.Column{DefaultValue: "draft"}))
	assert.Nil(t, inputDefault(&model.Column{}))
}

func TestBuilder_PerPage(t *testing.T) {
	b := &builder{opts: defaultOptions()}
	assert.Equal(t, DefaultPerPage, b.perPage(nil))
	assert.Equal(t, DefaultPerPage, b.perPage(0))
	assert.Equal(t, DefaultPerPage, b.perPage(-3))
	assert.Equal(t, 500, b.perPage(500))

	WithPagination(20, 100)(b.opts)
	assert.Equal(t, 20, b.perPage(0))
	assert.Equal(t, 100, b.perPage(500))
	assert.Equal(t, 30, b.perPage(30))
}

func TestBuilder_Converted(t *testing.T) {
	type money struct{ cents int64 }
	calls := 0
	o := defaultOptions()
	WithTypeConverter(&money{}, func(*model.Column) graphql.Type {
		calls++
		return graphql.Float
	})(o)
	b := &builder{opts: o, convertedTypes: make(map[*model.Column]graphql.Type)}
	c := &model.Column{Type: reflect.TypeOf(money{})}

	typ, ok := b.converted(c)
	require.True(t, ok)
	assert.Equal(t, graphql.Float, typ)
	_, _ = b.converted(c)
	assert.Equal(t, 1, calls)

	in, ok := b.inputType(c)
	require.True(t, ok)
	assert.Equal(t, graphql.Float, in)

	_, ok = b.converted(&model.Column{Type: reflect.TypeOf("")})
	assert.False(t, ok)
}
