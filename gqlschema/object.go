package gqlschema

import (
	"context"
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/model"
	"github.com/syssam/schemagen/resolver"
)

// objects creates the object type of every registered model. Fields are
// filled in by objectFields, so relations may point to any model.
func (b *builder) objects() {
	for _, t := range b.reg.Tables() {
		t := t
		b.objectTypes[t.Name] = graphql.NewObject(graphql.ObjectConfig{
			Name:        t.Name,
			Description: t.Description(),
			Fields: graphql.FieldsThunk(func() graphql.Fields {
				return b.fields[t.Name]
			}),
		})
	}
}

func (b *builder) objectFields(t *model.Table) error {
	fields := graphql.Fields{}
	for _, c := range t.Columns {
		typ, err := b.outputType(t, c)
		if err != nil {
			return err
		}
		fields[b.name(c.Name)] = &graphql.Field{
			Type:        typ,
			Description: b.describe(t, c),
			Resolve:     columnResolver(t, c),
		}
	}
	for _, rel := range t.Relations {
		target, ok := b.reg.Table(rel.Target)
		if !ok {
			b.log.Debug("skipping relation to unregistered model", "model", t.Name, "relation", rel.FieldName, "target", rel.Target)
			continue
		}
		name := b.name(rel.Name)
		if _, ok := fields[name]; ok {
			b.log.Debug("skipping relation shadowed by a column", "model", t.Name, "relation", rel.FieldName)
			continue
		}
		var typ graphql.Output = b.objectTypes[target.Name]
		if rel.Many() {
			typ = graphql.NewList(typ)
		}
		fields[name] = &graphql.Field{
			Type:    typ,
			Resolve: b.relationResolver(rel, target),
		}
	}
	b.fields[t.Name] = fields
	return nil
}

// describe returns the description of the field generated for c: the column
// comment followed by the catalog type, if known.
func (b *builder) describe(t *model.Table, c *model.Column) string {
	var parts []string
	if c.Comment != "" {
		parts = append(parts, c.Comment)
	}
	if info, ok := b.catalog.Column(t.TableName, c.Name); ok {
		parts = append(parts, info.String())
	}
	return strings.Join(parts, "\n")
}

func columnResolver(t *model.Table, c *model.Column) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		v := reflect.ValueOf(p.Source)
		if !v.IsValid() || reflect.Indirect(v).Type() != t.Type {
			return graphql.DefaultResolveFn(p)
		}
		return normalize(c.Value(contextOf(p), v)), nil
	}
}

func (b *builder) relationResolver(rel *model.Relation, target *model.Table) graphql.FieldResolveFn {
	r := schemagen.Chain(schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
		return resolver.Related(ctx, b.db, rel, target, c.Parent)
	}), b.opts.hooks...)
	return b.resolve(schemagen.OpRead, target, r, true, nil)
}

// indexColumns maps the GraphQL field names of every model to its columns.
// The maps are read concurrently by resolvers once the schema is built.
func (b *builder) indexColumns() {
	for _, t := range b.reg.Tables() {
		m := make(map[string]*model.Column, len(t.Columns))
		for _, c := range t.Columns {
			m[b.name(c.Name)] = c
		}
		b.columnFields[t.Name] = m
	}
}

func (b *builder) columnsByField(t *model.Table) map[string]*model.Column {
	return b.columnFields[t.Name]
}
