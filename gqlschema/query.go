package gqlschema

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/model"
	"github.com/syssam/schemagen/resolver"
)

// queryRoot builds Query_<api> with one list field per model that is not
// ignored, followed by the extra query fields. It returns nil when the root
// would have no fields.
func (b *builder) queryRoot() (*graphql.Object, error) {
	fields := graphql.Fields{}
	if b.opts.query {
		for _, t := range b.exposed() {
			name := b.name(t.TableName)
			if _, ok := fields[name]; ok {
				return nil, schemagen.NewSchemaError(t.Name, name, "duplicate query field", nil)
			}
			b.log.Debug("adding query field", "model", t.Name, "field", name)
			fields[name] = &graphql.Field{
				Type:        graphql.NewList(b.objectTypes[t.Name]),
				Description: t.Description(),
				Args:        b.listArgs(t),
				Resolve:     b.listResolver(t),
			}
		}
	}
	attach(fields, b.opts.extraQuery)
	if len(fields) == 0 {
		return nil, nil
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "Query_" + b.api,
		Description: fmt.Sprintf("Root query type for %q", b.api),
		Fields:      fields,
	}), nil
}

func (b *builder) listResolver(t *model.Table) graphql.FieldResolveFn {
	r := schemagen.Chain(schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
		q, err := b.listQuery(t, c.Args)
		if err != nil {
			return nil, schemagen.NewQueryError(t.Name, "list", err)
		}
		return resolver.List(ctx, b.db, t, q)
	}), b.opts.hooks...)
	return b.resolve(schemagen.OpRead, t, r, false, nil)
}

// attach adds the extra fields, replacing generated fields of the same name.
func attach(fields graphql.Fields, extra []namedField) {
	for _, f := range extra {
		fields[f.name] = f.field
	}
}
