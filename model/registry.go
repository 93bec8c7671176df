package model

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/syssam/schemagen"
)

// Registry is the set of GORM models a schema is generated from. It plays
// the role of a declarative base: models register themselves once and the
// generator walks them in registration order.
type Registry struct {
	namer  schema.Namer
	cache  *sync.Map
	tables []*Table
	byName map[string]*Table
	byType map[reflect.Type]*Table
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithNamer sets the naming strategy used to derive table and column names.
// It must match the one configured on the *gorm.DB serving the schema.
func WithNamer(n schema.Namer) RegistryOption {
	return func(r *Registry) {
		r.namer = n
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		namer:  schema.NamingStrategy{},
		cache:  &sync.Map{},
		byName: make(map[string]*Table),
		byType: make(map[reflect.Type]*Table),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(models ...any) *Registry {
	if err := r.Register(models...); err != nil {
		panic(err)
	}
	return r
}

// Register parses and adds the given models. Each model is a struct value or
// a pointer to one, e.g. &User{}.
func (r *Registry) Register(models ...any) error {
	for _, m := range models {
		t := indirect(reflect.TypeOf(m))
		if t == nil || t.Kind() != reflect.Struct {
			return schemagen.NewSchemaError(fmt.Sprintf("%T", m), "", "model must be a struct or a pointer to a struct", nil)
		}
		if _, ok := r.byType[t]; ok {
			return schemagen.NewSchemaError(t.Name(), "", "model registered twice", nil)
		}
		s, err := schema.Parse(m, r.cache, r.namer)
		if err != nil {
			return schemagen.NewSchemaError(t.Name(), "", "parsing model", err)
		}
		if _, ok := r.byName[s.Name]; ok {
			return schemagen.NewSchemaError(s.Name, "", "another model with the same name is registered", nil)
		}
		table, err := newTable(s, r.namer, m)
		if err != nil {
			return err
		}
		r.tables = append(r.tables, table)
		r.byName[table.Name] = table
		r.byType[t] = table
	}
	return nil
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []*Table {
	return r.tables
}

// Table returns the table registered under the given model name.
func (r *Registry) Table(name string) (*Table, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// TableOf returns the table of the given model value.
func (r *Registry) TableOf(m any) (*Table, bool) {
	t, ok := r.byType[indirect(reflect.TypeOf(m))]
	return t, ok
}

// Namer returns the naming strategy of the registry.
func (r *Registry) Namer() schema.Namer {
	return r.namer
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	return len(r.tables)
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
