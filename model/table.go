package model

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm/schema"

	"github.com/syssam/schemagen"
)

// Documented is implemented by models that describe themselves. The returned
// text becomes the description of the generated object type.
type Documented interface {
	GraphQLDoc() string
}

// Table is a registered model and the table it maps to.
type Table struct {
	// Name is the Go type name of the model, e.g. "User".
	Name string
	// TableName is the database table, e.g. "users".
	TableName string
	// Doc is the model documentation, if any.
	Doc string
	// Type is the struct type of the model.
	Type reflect.Type
	// Columns lists the mapped columns in struct order.
	Columns []*Column
	// PrimaryKeys lists the primary key columns.
	PrimaryKeys []*Column
	// Relations lists the relationships in struct order.
	Relations []*Relation

	columns map[string]*Column
}

func newTable(s *schema.Schema, namer schema.Namer, m any) (*Table, error) {
	t := &Table{
		Name:      s.Name,
		TableName: s.Table,
		Type:      s.ModelType,
		columns:   make(map[string]*Column),
	}
	if d, ok := m.(Documented); ok {
		t.Doc = d.GraphQLDoc()
	}
	for _, f := range s.Fields {
		if rel, ok := s.Relationships.Relations[f.Name]; ok {
			t.Relations = append(t.Relations, newRelation(rel, namer))
			continue
		}
		if f.DBName == "" {
			continue
		}
		c := newColumn(f)
		t.Columns = append(t.Columns, c)
		t.columns[c.Name] = c
		if c.PrimaryKey {
			t.PrimaryKeys = append(t.PrimaryKeys, c)
		}
	}
	if len(t.PrimaryKeys) == 0 {
		return nil, schemagen.NewSchemaError(t.Name, "", "model has no primary key", nil)
	}
	return t, nil
}

// Column returns the column with the given database name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.columns[name]
	return c, ok
}

// PrimaryKey returns the first primary key column.
func (t *Table) PrimaryKey() *Column {
	return t.PrimaryKeys[0]
}

// IsAssociation reports whether the model is a pure link table, that is,
// every one of its columns is part of the primary key.
func (t *Table) IsAssociation() bool {
	return len(t.Columns) > 0 && len(t.Columns) == len(t.PrimaryKeys)
}

// New returns a pointer to a new zero instance of the model.
func (t *Table) New() reflect.Value {
	return reflect.New(t.Type)
}

// NewSlice returns a pointer to a new empty []*Model slice.
func (t *Table) NewSlice() reflect.Value {
	return reflect.New(reflect.SliceOf(reflect.PointerTo(t.Type)))
}

// Description returns the documentation of the generated object type: the
// quoted model doc, if any, followed by the primary key name.
func (t *Table) Description() string {
	var b strings.Builder
	if t.Doc != "" {
		fmt.Fprintf(&b, "%q\n", t.Doc)
	}
	fmt.Fprintf(&b, "pk: %q", t.PrimaryKey().Name)
	return b.String()
}

// Column is a mapped database column.
type Column struct {
	// Name is the database column name, e.g. "first_name".
	Name string
	// FieldName is the Go struct field name, e.g. "FirstName".
	FieldName string
	// Type is the Go type of the field with pointers removed.
	Type reflect.Type
	// DataType is the GORM data type (bool, int, uint, float, string, time, bytes).
	DataType schema.DataType
	// PrimaryKey reports whether the column is part of the primary key.
	PrimaryKey bool
	// AutoIncrement reports whether the database assigns the value.
	AutoIncrement bool
	// NotNull reports whether the column is declared NOT NULL.
	NotNull bool
	// HasDefault reports whether the column has a default value.
	HasDefault bool
	// Default is the raw default value from the model tags.
	Default string
	// DefaultValue is the parsed scalar default value, or nil.
	DefaultValue any
	// Size is the declared column size, or zero.
	Size int
	// Comment is the column documentation.
	Comment string

	field *schema.Field
}

func newColumn(f *schema.Field) *Column {
	c := &Column{
		Name:          f.DBName,
		FieldName:     f.Name,
		Type:          indirect(f.FieldType),
		DataType:      f.DataType,
		PrimaryKey:    f.PrimaryKey,
		AutoIncrement: f.AutoIncrement,
		NotNull:       f.NotNull,
		HasDefault:    f.HasDefaultValue,
		Default:       f.DefaultValue,
		Size:          f.Size,
		Comment:       f.Comment,
		field:         f,
	}
	if f.HasDefaultValue && f.DefaultValue != "" {
		c.DefaultValue = f.DefaultValueInterface
	}
	return c
}

// Value returns the value of the column in the given model value. The model
// value can be a struct or a pointer to a struct.
func (c *Column) Value(ctx context.Context, v reflect.Value) any {
	v = reflect.Indirect(v)
	if !v.IsValid() {
		return nil
	}
	x, _ := c.field.ValueOf(ctx, v)
	return x
}

// IsZero reports whether the column holds the zero value of its type in the
// given model value.
func (c *Column) IsZero(ctx context.Context, v reflect.Value) bool {
	v = reflect.Indirect(v)
	if !v.IsValid() {
		return true
	}
	_, zero := c.field.ValueOf(ctx, v)
	return zero
}

// Set assigns x to the column in the given model value. The model value must
// be addressable, e.g. reflect.New(t).Elem() or a pointer.
func (c *Column) Set(ctx context.Context, v reflect.Value, x any) error {
	if err := c.field.Set(ctx, reflect.Indirect(v), x); err != nil {
		return fmt.Errorf("setting %s: %w", c.Name, err)
	}
	return nil
}

// RelationKind is the kind of a relationship.
type RelationKind string

// Relationship kinds.
const (
	HasOne     RelationKind = RelationKind(schema.HasOne)
	HasMany    RelationKind = RelationKind(schema.HasMany)
	BelongsTo  RelationKind = RelationKind(schema.BelongsTo)
	ManyToMany RelationKind = RelationKind(schema.Many2Many)
)

// Relation is a relationship between two models.
type Relation struct {
	// FieldName is the Go struct field holding the relation, e.g. "Posts".
	FieldName string
	// Name is the column-style name of the relation, e.g. "posts".
	Name string
	// Kind is the relationship kind.
	Kind RelationKind
	// Target is the Go name of the related model.
	Target string
	// JoinTable is the link table of many-to-many relations.
	JoinTable string
}

func newRelation(rel *schema.Relationship, namer schema.Namer) *Relation {
	r := &Relation{
		FieldName: rel.Name,
		Name:      namer.ColumnName("", rel.Name),
		Kind:      RelationKind(rel.Type),
		Target:    rel.FieldSchema.Name,
	}
	if rel.JoinTable != nil {
		r.JoinTable = rel.JoinTable.Table
	}
	return r
}

// Many reports whether the relation holds a list of models.
func (r *Relation) Many() bool {
	return r.Kind == HasMany || r.Kind == ManyToMany
}
