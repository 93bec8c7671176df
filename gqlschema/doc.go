// Package gqlschema generates a runnable GraphQL schema from the GORM models
// of a model.Registry.
//
// Every registered model gets an object type with one field per column and
// one per relation. Unless ignored, it also gets a list field on the
// Query_<api> root, with filters, ordering and pagination, and create,
// update and delete fields on the Mutation_<api> root:
//
//	reg := model.NewRegistry().MustRegister(&User{}, &Post{})
//	g, err := gqlschema.New("blog", reg, "postgres://localhost/blog?sslmode=disable",
//		gqlschema.WithHooks(privacy.Policy{privacy.DenyIfNoViewer()}.Hook()),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer g.Close()
//	schema, err := g.Schema(ctx)
//
// The generated resolvers run through the configured hooks and query the
// database with the request context.
package gqlschema
