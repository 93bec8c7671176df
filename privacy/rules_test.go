package privacy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/privacy"
)

func TestSimpleViewer(t *testing.T) {
	viewer := &privacy.SimpleViewer{
		UserID:   "user-123",
		Roles:    []string{"admin", "user"},
		TenantID: "tenant-abc",
	}

	assert.Equal(t, "user-123", viewer.GetID())
	assert.Equal(t, []string{"admin", "user"}, viewer.GetRoles())
	assert.Equal(t, "tenant-abc", viewer.GetTenantID())
}

func TestViewerContext(t *testing.T) {
	t.Run("WithViewer_and_ViewerFromContext", func(t *testing.T) {
		ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "user-123"})
		retrieved := privacy.ViewerFromContext(ctx)
		require.NotNil(t, retrieved)
		assert.Equal(t, "user-123", retrieved.GetID())
	})

	t.Run("ViewerFromContext_returns_nil_without_viewer", func(t *testing.T) {
		assert.Nil(t, privacy.ViewerFromContext(context.Background()))
	})

	t.Run("ViewerFromContext_returns_nil_with_wrong_type", func(t *testing.T) {
		type wrongKey struct{}
		ctx := context.WithValue(context.Background(), wrongKey{}, "not a viewer")
		assert.Nil(t, privacy.ViewerFromContext(ctx))
	})
}

func TestDenyIfNoViewer(t *testing.T) {
	rule := privacy.DenyIfNoViewer()
	call := &schemagen.Call{Op: schemagen.OpRead, Model: "User"}

	err := rule.Eval(context.Background(), call)
	assert.True(t, errors.Is(err, privacy.Deny))

	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "user-123"})
	err = rule.Eval(ctx, call)
	assert.True(t, errors.Is(err, privacy.Skip))
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		viewer     *privacy.SimpleViewer
		wantResult error
	}{
		{
			name:       "allows_with_matching_role",
			role:       "admin",
			viewer:     &privacy.SimpleViewer{UserID: "u1", Roles: []string{"admin", "user"}},
			wantResult: privacy.Allow,
		},
		{
			name:       "skips_without_matching_role",
			role:       "superadmin",
			viewer:     &privacy.SimpleViewer{UserID: "u1", Roles: []string{"admin", "user"}},
			wantResult: privacy.Skip,
		},
		{
			name:       "skips_without_viewer",
			role:       "admin",
			wantResult: privacy.Skip,
		},
		{
			name:       "skips_with_empty_roles",
			role:       "admin",
			viewer:     &privacy.SimpleViewer{UserID: "u1", Roles: []string{}},
			wantResult: privacy.Skip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.viewer != nil {
				ctx = privacy.WithViewer(ctx, tt.viewer)
			}
			err := privacy.HasRole(tt.role).Eval(ctx, &schemagen.Call{Op: schemagen.OpUpdate})
			assert.True(t, errors.Is(err, tt.wantResult))
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name       string
		roles      []string
		viewer     *privacy.SimpleViewer
		wantResult error
	}{
		{
			name:       "allows_with_first_matching_role",
			roles:      []string{"admin", "moderator"},
			viewer:     &privacy.SimpleViewer{UserID: "u1", Roles: []string{"admin"}},
			wantResult: privacy.Allow,
		},
		{
			name:       "allows_with_any_matching_role",
			roles:      []string{"admin", "moderator", "editor"},
			viewer:     &privacy.SimpleViewer{UserID: "u1", Roles: []string{"user", "editor"}},
			wantResult: privacy.Allow,
		},
		{
			name:       "skips_without_matching_role",
			roles:      []string{"admin", "moderator"},
			viewer:     &privacy.SimpleViewer{UserID: "u1", Roles: []string{"user"}},
			wantResult: privacy.Skip,
		},
		{
			name:       "skips_without_viewer",
			roles:      []string{"admin"},
			wantResult: privacy.Skip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.viewer != nil {
				ctx = privacy.WithViewer(ctx, tt.viewer)
			}
			err := privacy.HasAnyRole(tt.roles...).Eval(ctx, &schemagen.Call{Op: schemagen.OpRead})
			assert.True(t, errors.Is(err, tt.wantResult))
		})
	}
}

func TestIsOwner(t *testing.T) {
	viewer := &privacy.SimpleViewer{UserID: "7"}
	tests := []struct {
		name       string
		args       map[string]any
		viewer     *privacy.SimpleViewer
		wantResult error
	}{
		{
			name:       "allows_top_level_argument",
			args:       map[string]any{"authorId": 7},
			viewer:     viewer,
			wantResult: privacy.Allow,
		},
		{
			name:       "allows_input_object_field",
			args:       map[string]any{"post_data": map[string]any{"authorId": "7", "title": "x"}},
			viewer:     viewer,
			wantResult: privacy.Allow,
		},
		{
			name:       "skips_other_owner",
			args:       map[string]any{"authorId": 8},
			viewer:     viewer,
			wantResult: privacy.Skip,
		},
		{
			name:       "skips_missing_argument",
			args:       map[string]any{"title": "x"},
			viewer:     viewer,
			wantResult: privacy.Skip,
		},
		{
			name:       "skips_without_viewer",
			args:       map[string]any{"authorId": 7},
			wantResult: privacy.Skip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.viewer != nil {
				ctx = privacy.WithViewer(ctx, tt.viewer)
			}
			err := privacy.IsOwner("authorId").Eval(ctx, &schemagen.Call{Op: schemagen.OpCreate, Args: tt.args})
			assert.True(t, errors.Is(err, tt.wantResult))
		})
	}
}

func TestTenantRule(t *testing.T) {
	rule := privacy.TenantRule("tenantId")
	call := func(tenant any) *schemagen.Call {
		return &schemagen.Call{Op: schemagen.OpCreate, Args: map[string]any{"data": map[string]any{"tenantId": tenant}}}
	}

	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1", TenantID: "acme"})
	assert.True(t, errors.Is(rule.Eval(ctx, call("acme")), privacy.Allow))
	assert.True(t, errors.Is(rule.Eval(ctx, call("globex")), privacy.Deny))
	assert.True(t, errors.Is(rule.Eval(ctx, &schemagen.Call{}), privacy.Skip))

	noTenant := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1"})
	assert.True(t, errors.Is(rule.Eval(noTenant, call("acme")), privacy.Skip))
	assert.True(t, errors.Is(rule.Eval(context.Background(), call("acme")), privacy.Skip))
}
