package gqlschema

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/model"
)

// DefaultPerPage is the page size used when a query does not ask for one.
const DefaultPerPage = 50

// Converter maps a column to its GraphQL type. It is registered per Go type
// with WithTypeConverter.
type Converter func(*model.Column) graphql.Type

// Option configures a Generator.
type Option func(*options)

type options struct {
	db            *gorm.DB
	log           *slog.Logger
	ignore        []any
	ignoreNames   []string
	hooks         []schemagen.Hook
	extraQuery    []namedField
	extraMutation []namedField
	converters    map[reflect.Type]Converter
	query         bool
	mutation      bool
	camel         bool
	perPage       int
	maxPerPage    int
	describe      bool
	schemaConfig  []func(*graphql.SchemaConfig)
	slowThreshold time.Duration
}

type namedField struct {
	name  string
	field *graphql.Field
}

func defaultOptions() *options {
	return &options{
		log:        slog.Default(),
		converters: make(map[reflect.Type]Converter),
		query:      true,
		mutation:   true,
		camel:      true,
		perPage:    DefaultPerPage,
	}
}

// WithDB sets the database the generated resolvers run against. The
// connection string passed to New is ignored and the Generator does not
// close the database.
func WithDB(db *gorm.DB) Option {
	return func(o *options) {
		o.db = db
	}
}

// WithLogger sets the logger of the generator and of the database
// connection it opens.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithIgnore excludes the given models from the query and mutation roots.
// Their object types are still generated so other models can link to them.
func WithIgnore(models ...any) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, models...)
	}
}

// WithIgnoreTables is like WithIgnore, but matches models by Go name or
// table name.
func WithIgnoreTables(names ...string) Option {
	return func(o *options) {
		o.ignoreNames = append(o.ignoreNames, names...)
	}
}

// WithHooks adds hooks wrapping every generated resolver. The first hook is
// the outermost.
func WithHooks(hooks ...schemagen.Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithExtraQueryField attaches a hand-written field to the query root,
// after the generated ones.
func WithExtraQueryField(name string, field *graphql.Field) Option {
	return func(o *options) {
		o.extraQuery = append(o.extraQuery, namedField{name: name, field: field})
	}
}

// WithExtraMutationField attaches a hand-written field to the mutation
// root, after the generated ones.
func WithExtraMutationField(name string, field *graphql.Field) Option {
	return func(o *options) {
		o.extraMutation = append(o.extraMutation, namedField{name: name, field: field})
	}
}

// WithTypeConverter registers the GraphQL type of columns holding values of
// the same Go type as sample. A nil converter maps such columns to String,
// described by the column comment.
//
//	gqlschema.WithTypeConverter(Money{}, func(*model.Column) graphql.Type {
//		return graphql.Float
//	})
func WithTypeConverter(sample any, conv Converter) Option {
	return func(o *options) {
		t := reflect.TypeOf(sample)
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t == nil {
			return
		}
		if conv == nil {
			conv = stringConverter
		}
		o.converters[t] = conv
	}
}

func stringConverter(*model.Column) graphql.Type {
	return graphql.String
}

// WithoutQuery disables the generated query fields. The query root is then
// made of the extra query fields, or supplied with WithSchemaConfig.
func WithoutQuery() Option {
	return func(o *options) {
		o.query = false
	}
}

// WithoutMutation disables the mutation root.
func WithoutMutation() Option {
	return func(o *options) {
		o.mutation = false
	}
}

// WithAutoCamelCase controls whether generated field and argument names are
// camel-cased. It is enabled by default.
func WithAutoCamelCase(enabled bool) Option {
	return func(o *options) {
		o.camel = enabled
	}
}

// WithPagination sets the default page size of list queries and the largest
// page size a client may ask for. A zero max means no limit.
func WithPagination(perPage, maxPerPage int) Option {
	return func(o *options) {
		if perPage > 0 {
			o.perPage = perPage
		}
		if maxPerPage >= 0 {
			o.maxPerPage = maxPerPage
		}
	}
}

// WithDescribeColumns adds the database type of every column, as reported
// by the database catalog, to the field descriptions.
func WithDescribeColumns(enabled bool) Option {
	return func(o *options) {
		o.describe = enabled
	}
}

// WithSchemaConfig registers a function that edits the schema configuration
// right before the schema is built.
func WithSchemaConfig(fn func(*graphql.SchemaConfig)) Option {
	return func(o *options) {
		if fn != nil {
			o.schemaConfig = append(o.schemaConfig, fn)
		}
	}
}

// WithSlowThreshold sets the duration after which the queries of the
// database opened by New are logged as slow.
func WithSlowThreshold(d time.Duration) Option {
	return func(o *options) {
		o.slowThreshold = d
	}
}
