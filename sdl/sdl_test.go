package sdl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/schemagen/sdl"
)

func testSchema(t *testing.T) *graphql.Schema {
	t.Helper()
	color := graphql.NewEnum(graphql.EnumConfig{
		Name: "Color",
		Values: graphql.EnumValueConfigMap{
			"RED":   &graphql.EnumValueConfig{Value: "red"},
			"GREEN": &graphql.EnumValueConfig{Value: "green"},
			"BLUE":  &graphql.EnumValueConfig{Value: "blue", DeprecationReason: "use GREEN"},
		},
	})
	paint := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PaintInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"color":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(color), DefaultValue: "green"},
			"coats":  &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 2},
			"shades": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
		},
	})
	wall := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Wall",
		Description: "A wall",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"color":     &graphql.Field{Type: color},
			"paintedAt": &graphql.Field{Type: graphql.DateTime},
			"height":    &graphql.Field{Type: graphql.Float, DeprecationReason: "use size"},
		},
	})
	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query_house",
			Fields: graphql.Fields{
				"walls": &graphql.Field{
					Type: graphql.NewList(wall),
					Args: graphql.FieldConfigArgument{
						"page":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
						"color": &graphql.ArgumentConfig{Type: color, DefaultValue: "red"},
					},
				},
			},
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name: "Mutation_house",
			Fields: graphql.Fields{
				"paint": &graphql.Field{
					Type: wall,
					Args: graphql.FieldConfigArgument{
						"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(paint)},
					},
				},
			},
		}),
	})
	require.NoError(t, err)
	return &s
}

func TestPrint(t *testing.T) {
	doc, err := sdl.Print(testSchema(t))
	require.NoError(t, err)

	parsed, err := gqlparser.LoadSchema(&ast.Source{Input: doc})
	require.NoError(t, err)
	require.NotNil(t, parsed.Query)
	require.NotNil(t, parsed.Mutation)
	assert.Equal(t, "Query_house", parsed.Query.Name)
	assert.Equal(t, "Mutation_house", parsed.Mutation.Name)

	walls := parsed.Query.Fields.ForName("walls")
	require.NotNil(t, walls)
	assert.Equal(t, "[Wall]", walls.Type.String())
	assert.Equal(t, "1", walls.Arguments.ForName("page").DefaultValue.Raw)
	assert.Equal(t, ast.EnumValue, walls.Arguments.ForName("color").DefaultValue.Kind)
	assert.Equal(t, "RED", walls.Arguments.ForName("color").DefaultValue.Raw)

	wall := parsed.Types["Wall"]
	require.NotNil(t, wall)
	assert.Equal(t, "A wall", wall.Description)
	assert.Equal(t, "ID!", wall.Fields.ForName("id").Type.String())
	assert.Equal(t, "DateTime", wall.Fields.ForName("paintedAt").Type.String())
	assert.NotNil(t, wall.Fields.ForName("height").Directives.ForName("deprecated"))
	assert.Equal(t, ast.Scalar, parsed.Types["DateTime"].Kind)

	input := parsed.Types["PaintInput"]
	require.NotNil(t, input)
	assert.Equal(t, ast.InputObject, input.Kind)
	assert.Equal(t, "Color!", input.Fields.ForName("color").Type.String())
	assert.Equal(t, "GREEN", input.Fields.ForName("color").DefaultValue.Raw)
	assert.Equal(t, "2", input.Fields.ForName("coats").DefaultValue.Raw)
	assert.Nil(t, input.Fields.ForName("shades").DefaultValue)

	color := parsed.Types["Color"]
	require.NotNil(t, color)
	require.Len(t, color.EnumValues, 3)
	assert.NotNil(t, color.EnumValues.ForName("BLUE").Directives.ForName("deprecated"))
}

func TestPrint_Deterministic(t *testing.T) {
	first, err := sdl.Print(testSchema(t))
	require.NoError(t, err)
	for range 5 {
		again, err := sdl.Print(testSchema(t))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDocument_SkipsBuiltins(t *testing.T) {
	doc := sdl.Document(testSchema(t))
	require.Len(t, doc.Schema, 1)
	assert.Len(t, doc.Schema[0].OperationTypes, 2)
	var names []string
	for _, d := range doc.Definitions {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Color", "DateTime", "Mutation_house", "PaintInput", "Query_house", "Wall"}, names)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.graphql")
	s := testSchema(t)
	require.NoError(t, sdl.WriteFile(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := sdl.Print(s)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))

	err = sdl.WriteFile(filepath.Join(t.TempDir(), "missing", "schema.graphql"), s)
	assert.Error(t, err)
}
