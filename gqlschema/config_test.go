package gqlschema_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/gqlschema"
)

func TestParseConfig(t *testing.T) {
	cfg, err := gqlschema.ParseConfig([]byte(`
api_name: blog
dsn: sqlite://blog.db
ignore: posts
mutation: false
auto_camel_case: false
describe_columns: true
pagination:
  per_page: 25
  max_per_page: 100
log:
  level: debug
  slow_threshold: 250ms
`))
	require.NoError(t, err)
	assert.Equal(t, "blog", cfg.APIName)
	assert.Equal(t, "sqlite://blog.db", cfg.DSN)
	assert.Equal(t, gqlschema.StringList{"posts"}, cfg.Ignore)
	assert.Nil(t, cfg.Query)
	require.NotNil(t, cfg.Mutation)
	assert.False(t, *cfg.Mutation)
	require.NotNil(t, cfg.AutoCamelCase)
	assert.False(t, *cfg.AutoCamelCase)
	assert.True(t, cfg.DescribeColumns)
	assert.Equal(t, 25, cfg.Pagination.PerPage)
	assert.Equal(t, 100, cfg.Pagination.MaxPerPage)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Log.SlowThreshold)
	assert.Len(t, cfg.Options(), 7)
}

func TestParseConfig_IgnoreList(t *testing.T) {
	cfg, err := gqlschema.ParseConfig([]byte("api_name: blog\ndsn: sqlite://blog.db\nignore: [posts, Group]\n"))
	require.NoError(t, err)
	assert.Equal(t, gqlschema.StringList{"posts", "Group"}, cfg.Ignore)
	assert.Len(t, cfg.Options(), 1)

	_, err = gqlschema.ParseConfig([]byte("api_name: blog\ndsn: x\nignore: {a: b}\n"))
	assert.ErrorContains(t, err, "expected string or list")
}

func TestStringList_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		One  gqlschema.StringList `yaml:"one"`
		Many gqlschema.StringList `yaml:"many"`
	}{
		One:  gqlschema.StringList{"posts"},
		Many: gqlschema.StringList{"posts", "users"},
	})
	require.NoError(t, err)
	assert.Equal(t, "one: posts\nmany:\n    - posts\n    - users\n", string(out))
}

func TestParseConfig_EnvDSN(t *testing.T) {
	t.Setenv(gqlschema.DSNEnv, "postgres://db/blog")
	cfg, err := gqlschema.ParseConfig([]byte("api_name: blog\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/blog", cfg.DSN)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &gqlschema.Config{
		APIName:    "my-api",
		Pagination: gqlschema.PaginationConfig{PerPage: 200, MaxPerPage: 100},
		Log:        gqlschema.LogConfig{Level: "loud", SlowThreshold: -time.Second},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, schemagen.ErrInvalidConfig)

	var agg *schemagen.AggregateError
	require.True(t, errors.As(err, &agg))
	var options []string
	for _, e := range agg.Errors {
		var ce *schemagen.ConfigError
		require.True(t, errors.As(e, &ce))
		options = append(options, ce.Option)
	}
	assert.Equal(t, []string{"api_name", "dsn", "pagination.per_page", "log.level", "log.slow_threshold"}, options)

	assert.NoError(t, (&gqlschema.Config{APIName: "blog", DSN: "sqlite://x.db"}).Validate())
}

func TestLoadConfig(t *testing.T) {
	_, err := gqlschema.LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "read schemagen config")

	path := filepath.Join(t.TempDir(), "schemagen.yml")
	require.NoError(t, os.WriteFile(path, []byte("api_name: [\n"), 0o644))
	_, err = gqlschema.LoadConfig(path)
	assert.ErrorContains(t, err, "parse schemagen config")
}

func TestNewFromConfig(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "schemagen.yml")
	require.NoError(t, os.WriteFile(path, []byte("api_name: blog\ndsn: "+f.dsn+"\nignore: [posts, UserGroup]\nmutation: false\n"), 0o644))

	cfg, err := gqlschema.LoadConfig(path)
	require.NoError(t, err)
	g, err := gqlschema.NewFromConfig(f.reg, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })

	s, err := g.Schema(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "profiles", "groups"}, fieldNames(s.QueryType()))
	assert.Nil(t, s.MutationType())

	_, err = gqlschema.NewFromConfig(f.reg, &gqlschema.Config{APIName: "blog"})
	assert.True(t, schemagen.IsConfigError(err))
}

func TestNewFromConfig_WithDB(t *testing.T) {
	f := newFixture(t)
	cfg, err := gqlschema.ParseConfig([]byte("api_name: blog\nquery: true\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.DSN)

	g, err := gqlschema.NewFromConfig(f.reg, cfg, gqlschema.WithDB(f.db))
	require.NoError(t, err)
	assert.Same(t, f.db, g.DB())
	s, err := g.Schema(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups": [{"name": "admins"}]}`, exec(t, s, `{ groups { name } }`))
}
