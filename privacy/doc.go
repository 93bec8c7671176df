// Package privacy provides authorization rules for generated resolvers.
//
// A Policy is a list of rules evaluated before a resolver runs. Each rule
// returns one of three decisions:
//
//   - Allow: grants access and stops evaluation
//   - Deny: denies access and stops evaluation
//   - Skip: continues to the next rule
//
// If all rules skip, the call is allowed. End a policy with AlwaysDenyRule
// to deny by default.
//
// Policies become resolver hooks:
//
//	policy := privacy.Policy{
//	    privacy.OnOperation(privacy.AlwaysAllowRule(), schemagen.OpRead),
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}
//	schema, err := gqlschema.Generate(ctx, "blog", reg, dsn,
//	    gqlschema.WithHooks(policy.Hook()),
//	)
//
// The viewer is stored in the request context:
//
//	ctx := privacy.WithViewer(r.Context(), &privacy.SimpleViewer{
//	    UserID: "user-123",
//	    Roles:  []string{"user"},
//	})
//
// A denied call fails with a *schemagen.PrivacyError.
package privacy
