// Package sdl prints graphql-go schemas in the GraphQL schema definition
// language. The output is validated with gqlparser and sorted, so equal
// schemas print identically.
package sdl

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// builtin lists the scalars declared by every GraphQL schema.
var builtin = map[string]bool{
	"Int":     true,
	"Float":   true,
	"String":  true,
	"Boolean": true,
	"ID":      true,
}

// Print returns the SDL of s.
func Print(s *graphql.Schema) (string, error) {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(Document(s))
	parsed, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: buf.String()})
	if err != nil {
		return "", fmt.Errorf("sdl: invalid schema: %w", err)
	}
	buf.Reset()
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchema(parsed)
	return buf.String(), nil
}

// WriteFile writes the SDL of s to the named file.
func WriteFile(path string, s *graphql.Schema) error {
	doc, err := Print(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("sdl: write schema: %w", err)
	}
	return nil
}

// Document converts s to a gqlparser schema document. Built-in scalars and
// introspection types are left out.
func Document(s *graphql.Schema) *ast.SchemaDocument {
	doc := &ast.SchemaDocument{}
	def := &ast.SchemaDefinition{}
	for _, root := range []struct {
		op  ast.Operation
		obj *graphql.Object
	}{
		{ast.Query, s.QueryType()},
		{ast.Mutation, s.MutationType()},
		{ast.Subscription, s.SubscriptionType()},
	} {
		if root.obj != nil {
			def.OperationTypes = append(def.OperationTypes, &ast.OperationTypeDefinition{
				Operation: root.op,
				Type:      root.obj.Name(),
			})
		}
	}
	doc.Schema = append(doc.Schema, def)

	names := make([]string, 0, len(s.TypeMap()))
	for name := range s.TypeMap() {
		if builtin[name] || strings.HasPrefix(name, "__") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if d := definition(s.TypeMap()[name]); d != nil {
			doc.Definitions = append(doc.Definitions, d)
		}
	}
	return doc
}

func definition(t graphql.Type) *ast.Definition {
	d := &ast.Definition{Name: t.Name(), Description: t.Description()}
	switch t := t.(type) {
	case *graphql.Scalar:
		d.Kind = ast.Scalar
	case *graphql.Object:
		d.Kind = ast.Object
		d.Fields = fields(t.Fields())
		for _, i := range t.Interfaces() {
			d.Interfaces = append(d.Interfaces, i.Name())
		}
		sort.Strings(d.Interfaces)
	case *graphql.Interface:
		d.Kind = ast.Interface
		d.Fields = fields(t.Fields())
	case *graphql.Union:
		d.Kind = ast.Union
		for _, o := range t.Types() {
			d.Types = append(d.Types, o.Name())
		}
		sort.Strings(d.Types)
	case *graphql.Enum:
		d.Kind = ast.Enum
		for _, v := range t.Values() {
			d.EnumValues = append(d.EnumValues, &ast.EnumValueDefinition{
				Name:        v.Name,
				Description: v.Description,
				Directives:  deprecated(v.DeprecationReason),
			})
		}
		sort.Slice(d.EnumValues, func(i, j int) bool {
			return d.EnumValues[i].Name < d.EnumValues[j].Name
		})
	case *graphql.InputObject:
		d.Kind = ast.InputObject
		for name, f := range t.Fields() {
			d.Fields = append(d.Fields, &ast.FieldDefinition{
				Name:         name,
				Description:  f.Description(),
				Type:         typeOf(f.Type),
				DefaultValue: value(f.DefaultValue, f.Type),
			})
		}
		sortFields(d.Fields)
	default:
		return nil
	}
	return d
}

func fields(m graphql.FieldDefinitionMap) ast.FieldList {
	list := make(ast.FieldList, 0, len(m))
	for name, f := range m {
		fd := &ast.FieldDefinition{
			Name:        name,
			Description: f.Description,
			Type:        typeOf(f.Type),
			Directives:  deprecated(f.DeprecationReason),
		}
		for _, a := range f.Args {
			fd.Arguments = append(fd.Arguments, &ast.ArgumentDefinition{
				Name:         a.Name(),
				Description:  a.Description(),
				Type:         typeOf(a.Type),
				DefaultValue: value(a.DefaultValue, a.Type),
			})
		}
		sort.Slice(fd.Arguments, func(i, j int) bool {
			return fd.Arguments[i].Name < fd.Arguments[j].Name
		})
		list = append(list, fd)
	}
	sortFields(list)
	return list
}

func sortFields(list ast.FieldList) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
}

func typeOf(t graphql.Type) *ast.Type {
	switch t := t.(type) {
	case *graphql.NonNull:
		inner := typeOf(t.OfType)
		inner.NonNull = true
		return inner
	case *graphql.List:
		return &ast.Type{Elem: typeOf(t.OfType)}
	default:
		return &ast.Type{NamedType: t.Name()}
	}
}

func deprecated(reason string) ast.DirectiveList {
	if reason == "" {
		return nil
	}
	return ast.DirectiveList{{
		Name: "deprecated",
		Arguments: ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: reason},
		}},
	}}
}

// value converts a default value to its AST form. It returns nil for
// missing defaults.
func value(v any, t graphql.Type) *ast.Value {
	if v == nil {
		return nil
	}
	if nn, ok := t.(*graphql.NonNull); ok {
		t = nn.OfType
	}
	switch t := t.(type) {
	case *graphql.Enum:
		for _, ev := range t.Values() {
			if ev.Value == v {
				return &ast.Value{Kind: ast.EnumValue, Raw: ev.Name}
			}
		}
	case *graphql.List:
		if items, ok := v.([]any); ok {
			list := &ast.Value{Kind: ast.ListValue}
			for _, item := range items {
				if iv := value(item, t.OfType); iv != nil {
					list.Children = append(list.Children, &ast.ChildValue{Value: iv})
				}
			}
			return list
		}
	}
	switch x := v.(type) {
	case bool:
		return &ast.Value{Kind: ast.BooleanValue, Raw: strconv.FormatBool(x)}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &ast.Value{Kind: ast.IntValue, Raw: fmt.Sprint(x)}
	case float32:
		return &ast.Value{Kind: ast.FloatValue, Raw: strconv.FormatFloat(float64(x), 'g', -1, 32)}
	case float64:
		return &ast.Value{Kind: ast.FloatValue, Raw: strconv.FormatFloat(x, 'g', -1, 64)}
	default:
		return &ast.Value{Kind: ast.StringValue, Raw: fmt.Sprint(x)}
	}
}
