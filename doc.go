// Package schemagen derives a GraphQL schema from GORM models.
//
// The generator lives in the gqlschema package; this package holds the
// pieces shared by the generated resolvers: operations, hooks and errors.
//
// # Usage
//
//	reg := model.NewRegistry()
//	if err := reg.Register(&User{}, &Post{}); err != nil {
//	    log.Fatal(err)
//	}
//	schema, err := gqlschema.Generate(ctx, "blog", reg, "postgres://localhost/blog",
//	    gqlschema.WithHooks(schemagen.On(audit, schemagen.OpCreate|schemagen.OpDelete)),
//	)
//
// # Hooks
//
// Every generated root resolver is wrapped by the configured hooks. A hook
// is resolver middleware:
//
//	audit := func(next schemagen.Resolver) schemagen.Resolver {
//	    return schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
//	        v, err := next.Resolve(ctx, c)
//	        slog.Info("mutation", "model", c.Model, "op", c.Op, "err", err)
//	        return v, err
//	    })
//	}
//
// PrePost builds a hook from a pre function, which may return Stop to
// abort the call, and a post function, which may replace the result.
package schemagen
