package gqlschema

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/model"
	"github.com/syssam/schemagen/resolver"
)

// mutationRoot builds Mutation_<api> with the create, update and delete
// fields of every model that is not ignored, followed by the extra mutation
// fields. It returns nil when the root would have no fields.
func (b *builder) mutationRoot() (*graphql.Object, error) {
	fields := graphql.Fields{}
	if b.opts.mutation {
		for _, t := range b.exposed() {
			b.log.Debug("adding mutation fields", "model", t.Name, "association", t.IsAssociation())
			b.createField(fields, t)
			if !t.IsAssociation() {
				b.updateField(fields, t)
			}
			if err := b.deleteField(fields, t); err != nil {
				return nil, err
			}
		}
	}
	attach(fields, b.opts.extraMutation)
	if len(fields) == 0 {
		return nil, nil
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "Mutation_" + b.api,
		Description: fmt.Sprintf("Root mutation type for %q", b.api),
		Fields:      fields,
	}), nil
}

// createField adds create_<model>(<model>_data: <Model>CreateInput!).
func (b *builder) createField(fields graphql.Fields, t *model.Table) {
	arg := b.name(lower(t.Name) + "_data")
	r := schemagen.Chain(schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
		data, err := b.decodeInput(t, c.Args[arg])
		if err != nil {
			return nil, schemagen.NewMutationError(t.Name, "create", err)
		}
		return resolver.Create(ctx, b.db, t, data)
	}), b.opts.hooks...)
	fields[b.name("create_"+lower(t.Name))] = &graphql.Field{
		Type: b.payload("Create", t),
		Args: graphql.FieldConfigArgument{
			arg: &graphql.ArgumentConfig{Type: graphql.NewNonNull(b.createInput(t))},
		},
		Resolve: b.resolve(schemagen.OpCreate, t, r, false, func(v any) any {
			return map[string]any{t.Name: v}
		}),
	}
}

// updateField adds update_<model>(<model>_data: <Model>UpdateInput!).
func (b *builder) updateField(fields graphql.Fields, t *model.Table) {
	arg := b.name(lower(t.Name) + "_data")
	r := schemagen.Chain(schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
		data, err := b.decodeInput(t, c.Args[arg])
		if err != nil {
			return nil, schemagen.NewMutationError(t.Name, "update", err)
		}
		return resolver.Update(ctx, b.db, t, data)
	}), b.opts.hooks...)
	fields[b.name("update_"+lower(t.Name))] = &graphql.Field{
		Type: b.payload("Update", t),
		Args: graphql.FieldConfigArgument{
			arg: &graphql.ArgumentConfig{Type: graphql.NewNonNull(b.updateInput(t))},
		},
		Resolve: b.resolve(schemagen.OpUpdate, t, r, false, func(v any) any {
			return map[string]any{t.Name: v}
		}),
	}
}

// deleteField adds delete_<model>(<pk>: <Scalar>! ...) returning the number
// of deleted rows.
func (b *builder) deleteField(fields graphql.Fields, t *model.Table) error {
	args := graphql.FieldConfigArgument{}
	keys := make(map[string]*model.Column, len(t.PrimaryKeys))
	for _, pk := range t.PrimaryKeys {
		in, ok := b.inputType(pk)
		if !ok {
			return schemagen.NewSchemaError(t.Name, pk.Name, "primary key cannot be used as an argument", nil)
		}
		name := b.name(pk.Name)
		args[name] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(in)}
		keys[name] = pk
	}
	r := schemagen.Chain(schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
		data := make(map[string]any, len(keys))
		for name, pk := range keys {
			data[pk.Name] = c.Args[name]
		}
		return resolver.Delete(ctx, b.db, t, data)
	}), b.opts.hooks...)
	count := b.name("deleted_count")
	fields[b.name("delete_"+lower(t.Name))] = &graphql.Field{
		Type: graphql.NewObject(graphql.ObjectConfig{
			Name: "Delete" + t.Name,
			Fields: graphql.Fields{
				count: &graphql.Field{Type: graphql.Int},
			},
		}),
		Args: args,
		Resolve: b.resolve(schemagen.OpDelete, t, r, false, func(v any) any {
			return map[string]any{count: v}
		}),
	}
	return nil
}

// payload returns the <Verb><Model> object wrapping a mutated row.
func (b *builder) payload(verb string, t *model.Table) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: verb + t.Name,
		Fields: graphql.Fields{
			t.Name: &graphql.Field{Type: b.objectTypes[t.Name]},
		},
	})
}

// createInput returns <Model>CreateInput. Primary keys are optional, NOT
// NULL columns without a default are required and scalar defaults are
// carried over.
func (b *builder) createInput(t *model.Table) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, c := range t.Columns {
		in, ok := b.inputType(c)
		if !ok {
			continue
		}
		f := &graphql.InputObjectFieldConfig{Type: in, Description: c.Comment}
		switch {
		case c.PrimaryKey:
		case c.HasDefault:
			f.DefaultValue = inputDefault(c)
		case c.NotNull:
			f.Type = graphql.NewNonNull(in)
		}
		fields[b.name(c.Name)] = f
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   t.Name + "CreateInput",
		Fields: fields,
	})
}

// updateInput returns <Model>UpdateInput. Primary keys are required, every
// other column is optional.
func (b *builder) updateInput(t *model.Table) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, c := range t.Columns {
		in, ok := b.inputType(c)
		if !ok {
			continue
		}
		if c.PrimaryKey {
			in = graphql.NewNonNull(in)
		}
		fields[b.name(c.Name)] = &graphql.InputObjectFieldConfig{Type: in, Description: c.Comment}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   t.Name + "UpdateInput",
		Fields: fields,
	})
}

// decodeInput maps the fields of an input object to column values.
func (b *builder) decodeInput(t *model.Table, v any) (map[string]any, error) {
	in, _ := v.(map[string]any)
	columns := b.columnsByField(t)
	data := make(map[string]any, len(in))
	for name, x := range in {
		c, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("unknown input field %q", name)
		}
		data[c.Name] = coerceInput(c, x)
	}
	return data, nil
}
