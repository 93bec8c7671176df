package gqlschema

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"

	"github.com/syssam/schemagen/model"
	"github.com/syssam/schemagen/resolver"
)

// List query argument names.
const (
	argFilters = "filters"
	argOrderBy = "order_by"
	argPage    = "page"
	argPerPage = "perpage"
)

func newFilterOperationEnum() *graphql.Enum {
	values := make(graphql.EnumValueConfigMap, len(resolver.Operations))
	for _, op := range resolver.Operations {
		values[string(op)] = &graphql.EnumValueConfig{Value: op}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        "FilterOperation",
		Description: "Comparison applied by a filter",
		Values:      values,
	})
}

func newOrderByOperationEnum() *graphql.Enum {
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        "OrderByOperation",
		Description: "Sort direction",
		Values: graphql.EnumValueConfigMap{
			"ASC":  &graphql.EnumValueConfig{Value: "ASC"},
			"DESC": &graphql.EnumValueConfig{Value: "DESC"},
		},
	})
}

// filterOp returns the <Scalar>FilterOp input shared by every column of
// the given type. Only named leaf types can be filtered on.
func (b *builder) filterOp(in graphql.Input) (*graphql.InputObject, bool) {
	switch in.(type) {
	case *graphql.Scalar, *graphql.Enum:
	default:
		return nil, false
	}
	name := in.Name() + "FilterOp"
	if op, ok := b.filterOps[name]; ok {
		return op, true
	}
	op := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: name,
		Fields: graphql.InputObjectConfigFieldMap{
			"op": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(b.filterOperation)},
			"v":  &graphql.InputObjectFieldConfig{Type: in},
			"vl": &graphql.InputObjectFieldConfig{Type: graphql.NewList(in)},
		},
	})
	b.filterOps[name] = op
	return op, true
}

// queryParams returns the <Model>QueryParams input holding one filter per
// filterable column, or nil when no column can be filtered on.
func (b *builder) queryParams(t *model.Table) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, c := range t.Columns {
		in, ok := b.inputType(c)
		if !ok {
			continue
		}
		op, ok := b.filterOp(in)
		if !ok {
			continue
		}
		fields[b.name(c.Name)] = &graphql.InputObjectFieldConfig{Type: op}
	}
	if len(fields) == 0 {
		return nil
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   t.Name + "QueryParams",
		Fields: fields,
	})
}

// orderByParams returns the <Model>OrderByParams input and the
// <Model>FieldEnum it sorts on.
func (b *builder) orderByParams(t *model.Table) *graphql.InputObject {
	values := make(graphql.EnumValueConfigMap, len(t.Columns))
	for _, c := range t.Columns {
		values[b.name(c.Name)] = &graphql.EnumValueConfig{Value: c.Name}
	}
	fieldEnum := graphql.NewEnum(graphql.EnumConfig{
		Name:   t.Name + "FieldEnum",
		Values: values,
	})
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: t.Name + "OrderByParams",
		Fields: graphql.InputObjectConfigFieldMap{
			"f": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(fieldEnum)},
			"o": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(b.orderByOperation)},
		},
	})
}

// listArgs returns the arguments of the root list field of t.
func (b *builder) listArgs(t *model.Table) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		b.name(argOrderBy): &graphql.ArgumentConfig{Type: b.orderByParams(t)},
		argPage: &graphql.ArgumentConfig{
			Type:         graphql.Int,
			DefaultValue: 1,
			Description:  "(Pagination) Page Number",
		},
		argPerPage: &graphql.ArgumentConfig{
			Type:         graphql.Int,
			DefaultValue: b.opts.perPage,
			Description:  "(Pagination) Results Per Page",
		},
	}
	if params := b.queryParams(t); params != nil {
		args[argFilters] = &graphql.ArgumentConfig{Type: graphql.NewList(params)}
	}
	return args
}

// listQuery decodes the arguments of a root list field.
func (b *builder) listQuery(t *model.Table, args map[string]any) (resolver.Query, error) {
	var q resolver.Query
	columns := b.columnsByField(t)
	filters, _ := args[argFilters].([]any)
	for _, item := range filters {
		params, _ := item.(map[string]any)
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c, ok := columns[name]
			if !ok {
				return q, fmt.Errorf("unknown filter field %q", name)
			}
			fop, _ := params[name].(map[string]any)
			if fop == nil {
				continue
			}
			f := resolver.Filter{Column: c.Name, Value: fop["v"]}
			switch op := fop["op"].(type) {
			case resolver.Operation:
				f.Op = op
			case string:
				f.Op = resolver.Operation(op)
			}
			if vl, ok := fop["vl"].([]any); ok {
				f.Values = vl
			}
			q.Filters = append(q.Filters, f)
		}
	}
	if order, ok := args[b.name(argOrderBy)].(map[string]any); ok {
		col, _ := order["f"].(string)
		dir, _ := order["o"].(string)
		q.Order = &resolver.Order{Column: col, Desc: dir == "DESC"}
	}
	q.Page = resolver.Page{Number: 1, Size: b.perPage(args[argPerPage])}
	if n, ok := args[argPage].(int); ok {
		q.Page.Number = n
	}
	return q, nil
}

// perPage returns the page size asked for, falling back to the default for
// non-positive values and capped by the configured maximum.
func (b *builder) perPage(v any) int {
	n, _ := v.(int)
	if n <= 0 {
		n = b.opts.perPage
	}
	if m := b.opts.maxPerPage; m > 0 && n > m {
		n = m
	}
	return n
}
