package gqlschema

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/dialect"
	"github.com/syssam/schemagen/dialect/inspect"
	"github.com/syssam/schemagen/model"
	"github.com/syssam/schemagen/sdl"
)

var apiNameRe = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Generator derives a GraphQL schema from the models of a registry. The
// resolvers of the generated schemas share the Generator database.
type Generator struct {
	api     string
	reg     *model.Registry
	db      *gorm.DB
	closeDB bool
	opts    *options
}

// New returns a Generator for the given API name and registry. Unless WithDB
// is given, it opens dsn with dialect.Open using the naming strategy of the
// registry.
func New(apiName string, reg *model.Registry, dsn string, opts ...Option) (*Generator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if !apiNameRe.MatchString(apiName) {
		return nil, schemagen.NewConfigError("api_name", apiName, "must be a valid GraphQL name")
	}
	if reg == nil {
		return nil, schemagen.NewConfigError("registry", nil, "registry is required")
	}
	g := &Generator{api: apiName, reg: reg, db: o.db, opts: o}
	if g.db == nil {
		var lopts []dialect.LoggerOption
		if o.slowThreshold > 0 {
			lopts = append(lopts, dialect.WithSlowThreshold(o.slowThreshold))
		}
		db, err := dialect.Open(dsn,
			dialect.WithNamer(reg.Namer()),
			dialect.WithLogger(dialect.NewLogger(o.log, lopts...)),
		)
		if err != nil {
			return nil, err
		}
		g.db, g.closeDB = db, true
	}
	return g, nil
}

// Generate is a shortcut for New followed by Schema. The database stays open
// for the lifetime of the schema.
func Generate(ctx context.Context, apiName string, reg *model.Registry, dsn string, opts ...Option) (*graphql.Schema, error) {
	g, err := New(apiName, reg, dsn, opts...)
	if err != nil {
		return nil, err
	}
	return g.Schema(ctx)
}

// DB returns the database used by the generated resolvers.
func (g *Generator) DB() *gorm.DB {
	return g.db
}

// Close closes the database if it was opened by New.
func (g *Generator) Close() error {
	if !g.closeDB {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Schema generates the GraphQL schema. Every call builds a new set of types,
// so schemas generated by the same Generator are independent.
func (g *Generator) Schema(ctx context.Context) (*graphql.Schema, error) {
	log := g.opts.log.With("api", g.api)
	b := &builder{
		api:              g.api,
		reg:              g.reg,
		db:               g.db,
		opts:             g.opts,
		log:              log,
		ignored:          g.ignored(),
		objectTypes:      make(map[string]*graphql.Object),
		fields:           make(map[string]graphql.Fields),
		columnFields:     make(map[string]map[string]*model.Column),
		convertedTypes:   make(map[*model.Column]graphql.Type),
		filterOps:        make(map[string]*graphql.InputObject),
		filterOperation:  newFilterOperationEnum(),
		orderByOperation: newOrderByOperationEnum(),
	}
	if g.opts.describe {
		catalog, err := g.inspect(ctx)
		if err != nil {
			return nil, err
		}
		b.catalog = catalog
	}
	log.Debug("generating object types", "models", g.reg.Len())
	b.indexColumns()
	b.objects()
	for _, t := range g.reg.Tables() {
		if err := b.objectFields(t); err != nil {
			return nil, err
		}
	}
	cfg := graphql.SchemaConfig{}
	for _, t := range g.reg.Tables() {
		cfg.Types = append(cfg.Types, b.objectTypes[t.Name])
	}
	log.Debug("generating query root")
	query, err := b.queryRoot()
	if err != nil {
		return nil, err
	}
	log.Debug("generating mutation root")
	mutation, err := b.mutationRoot()
	if err != nil {
		return nil, err
	}
	cfg.Query, cfg.Mutation = query, mutation
	for _, fn := range g.opts.schemaConfig {
		fn(&cfg)
	}
	if cfg.Query == nil {
		return nil, schemagen.NewSchemaError("", "", "query root has no fields", nil)
	}
	log.Debug("assembling schema")
	s, err := graphql.NewSchema(cfg)
	if err != nil {
		return nil, fmt.Errorf("schemagen: building schema %q: %w", g.api, err)
	}
	if log.Enabled(ctx, slog.LevelDebug) {
		if doc, err := sdl.Print(&s); err != nil {
			log.Debug("printing schema failed", "error", err)
		} else {
			log.Debug("generated schema", "sdl", doc)
		}
	}
	return &s, nil
}

func (g *Generator) inspect(ctx context.Context) (inspect.Catalog, error) {
	sqlDB, err := g.db.DB()
	if err != nil {
		return nil, fmt.Errorf("schemagen: describing columns: %w", err)
	}
	tables := make([]string, 0, g.reg.Len())
	for _, t := range g.reg.Tables() {
		tables = append(tables, t.TableName)
	}
	catalog, err := inspect.Inspect(ctx, sqlDB, dialect.Name(g.db), tables)
	if err != nil {
		return nil, fmt.Errorf("schemagen: describing columns: %w", err)
	}
	return catalog, nil
}

// ignored returns the models excluded from the roots, keyed by model name.
func (g *Generator) ignored() map[string]bool {
	ignored := make(map[string]bool)
	for _, m := range g.opts.ignore {
		if t, ok := g.reg.TableOf(m); ok {
			ignored[t.Name] = true
		}
	}
	for _, name := range g.opts.ignoreNames {
		for _, t := range g.reg.Tables() {
			if t.Name == name || t.TableName == name {
				ignored[t.Name] = true
			}
		}
	}
	return ignored
}

// builder holds the types of a single schema generation.
type builder struct {
	api     string
	reg     *model.Registry
	db      *gorm.DB
	opts    *options
	log     *slog.Logger
	catalog inspect.Catalog
	ignored map[string]bool

	objectTypes      map[string]*graphql.Object
	fields           map[string]graphql.Fields
	columnFields     map[string]map[string]*model.Column
	convertedTypes   map[*model.Column]graphql.Type
	filterOps        map[string]*graphql.InputObject
	filterOperation  *graphql.Enum
	orderByOperation *graphql.Enum
}

// name returns the GraphQL name of a generated field or argument.
func (b *builder) name(s string) string {
	if b.opts.camel {
		return camel(s)
	}
	return s
}

// exposed returns the models that get root fields, in registration order.
func (b *builder) exposed() []*model.Table {
	var tables []*model.Table
	for _, t := range b.reg.Tables() {
		if !b.ignored[t.Name] {
			tables = append(tables, t)
		}
	}
	return tables
}

// resolve binds r to a GraphQL field. Parent is set on the call for fields
// of model objects; wrap, if set, shapes the result.
func (b *builder) resolve(op schemagen.Op, t *model.Table, r schemagen.Resolver, parent bool, wrap func(any) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		c := &schemagen.Call{Op: op, Model: t.Name, Args: p.Args}
		if parent {
			c.Parent = p.Source
		}
		v, err := r.Resolve(contextOf(p), c)
		if err != nil {
			b.log.Debug("resolver failed", "model", t.Name, "op", op.String(), "error", err)
			return nil, err
		}
		if wrap != nil {
			return wrap(v), nil
		}
		return v, nil
	}
}

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context != nil {
		return p.Context
	}
	return context.Background()
}
