package gqlschema

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/lib/pq"
	"gorm.io/gorm/schema"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/model"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	uuidType   = reflect.TypeOf(uuid.UUID{})
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

	// arrayTypes holds the element scalar of the supported PostgreSQL arrays.
	arrayTypes = map[reflect.Type]*graphql.Scalar{
		reflect.TypeOf(pq.StringArray{}):  graphql.String,
		reflect.TypeOf(pq.Int64Array{}):   graphql.Int,
		reflect.TypeOf(pq.Int32Array{}):   graphql.Int,
		reflect.TypeOf(pq.Float64Array{}): graphql.Float,
		reflect.TypeOf(pq.Float32Array{}): graphql.Float,
		reflect.TypeOf(pq.BoolArray{}):    graphql.Boolean,
	}
)

// converted returns the type a registered converter gives to c, if any.
// Converters run once per column.
func (b *builder) converted(c *model.Column) (graphql.Type, bool) {
	if t, ok := b.convertedTypes[c]; ok {
		return t, true
	}
	conv, ok := b.opts.converters[c.Type]
	if !ok {
		return nil, false
	}
	t := conv(c)
	if t == nil {
		t = graphql.String
	}
	b.convertedTypes[c] = t
	return t, true
}

// outputType returns the type of the object field generated for c.
func (b *builder) outputType(t *model.Table, c *model.Column) (graphql.Output, error) {
	if ct, ok := b.converted(c); ok {
		out, ok := ct.(graphql.Output)
		if !ok {
			return nil, schemagen.NewSchemaError(t.Name, c.Name, fmt.Sprintf("converter returned %s, not an output type", ct), nil)
		}
		return out, nil
	}
	if c.PrimaryKey {
		return graphql.ID, nil
	}
	st, err := scalarOf(c)
	if err != nil {
		return nil, schemagen.NewSchemaError(t.Name, c.Name, err.Error(), nil)
	}
	return st, nil
}

// inputType returns the type of c in arguments and input objects, with
// primary keys masked to their underlying scalar. It reports false for
// columns that cannot be used as input.
func (b *builder) inputType(c *model.Column) (graphql.Input, bool) {
	if ct, ok := b.converted(c); ok {
		in, ok := ct.(graphql.Input)
		return in, ok
	}
	st, err := scalarOf(c)
	if err != nil {
		return nil, false
	}
	in, ok := st.(graphql.Input)
	return in, ok
}

// scalarOf maps the Go type of c to a GraphQL scalar, or a list of scalars
// for array columns.
func scalarOf(c *model.Column) (graphql.Type, error) {
	if elem, ok := arrayTypes[c.Type]; ok {
		return graphql.NewList(elem), nil
	}
	switch {
	case c.Type == timeType, c.DataType == schema.Time:
		return graphql.DateTime, nil
	case c.Type == uuidType:
		return graphql.String, nil
	}
	switch c.DataType {
	case schema.Bool:
		return graphql.Boolean, nil
	case schema.Int, schema.Uint:
		return graphql.Int, nil
	case schema.Float:
		return graphql.Float, nil
	case schema.String, schema.Bytes:
		return graphql.String, nil
	}
	switch c.Type.Kind() {
	case reflect.Bool:
		return graphql.Boolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return graphql.Int, nil
	case reflect.Float32, reflect.Float64:
		return graphql.Float, nil
	case reflect.String:
		return graphql.String, nil
	case reflect.Slice:
		if c.Type.Elem().Kind() == reflect.Uint8 {
			return graphql.String, nil
		}
	}
	if c.Type.Implements(valuerType) || reflect.PointerTo(c.Type).Implements(valuerType) {
		return graphql.String, nil
	}
	return nil, fmt.Errorf("unsupported column type %s", c.Type)
}

// normalize turns a column value into something the graphql-go scalars can
// serialize.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	v = rv.Interface()
	switch x := v.(type) {
	case time.Time:
		return x
	case []byte:
		return string(x)
	case uuid.UUID:
		return x.String()
	case driver.Valuer:
		if rv.Kind() == reflect.Slice {
			return v
		}
		dv, err := x.Value()
		if err != nil {
			return nil
		}
		if b, ok := dv.([]byte); ok {
			return string(b)
		}
		return dv
	}
	return v
}

// coerceInput converts GraphQL list values to the slice type of c.
func coerceInput(c *model.Column, v any) any {
	list, ok := v.([]any)
	if !ok || c.Type.Kind() != reflect.Slice {
		return v
	}
	et := c.Type.Elem()
	out := reflect.MakeSlice(c.Type, 0, len(list))
	for _, x := range list {
		xv := reflect.ValueOf(x)
		switch {
		case !xv.IsValid():
			out = reflect.Append(out, reflect.Zero(et))
		case xv.Type().ConvertibleTo(et):
			out = reflect.Append(out, xv.Convert(et))
		default:
			return v
		}
	}
	return out.Interface()
}

// inputDefault returns the default value of c as a GraphQL input value.
func inputDefault(c *model.Column) any {
	switch x := c.DefaultValue.(type) {
	case int64:
		return int(x)
	case uint64:
		return int(x)
	default:
		return x
	}
}
