package privacy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/schemagen"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from policy rules to indicate
// how the policy evaluation should proceed. Use errors.Is() to check
// for these values:
//
//	if errors.Is(err, privacy.Allow) { ... }
//	if errors.Is(err, privacy.Deny) { ... }
//	if errors.Is(err, privacy.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("schemagen/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("schemagen/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("schemagen/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
// The returned error wraps Deny and can be checked with errors.Is(err, Deny).
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Rule decides whether a resolver call is allowed.
type Rule interface {
	Eval(context.Context, *schemagen.Call) error
}

// RuleFunc type is an adapter which allows the use of
// ordinary functions as rules.
type RuleFunc func(context.Context, *schemagen.Call) error

// Eval returns f(ctx, c).
func (f RuleFunc) Eval(ctx context.Context, c *schemagen.Call) error {
	return f(ctx, c)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule creates a rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ *schemagen.Call) error {
		return eval(ctx)
	})
}

// OnOperation evaluates the given rule only on the given operations.
func OnOperation(rule Rule, op schemagen.Op) Rule {
	return RuleFunc(func(ctx context.Context, c *schemagen.Call) error {
		if c.Op.Is(op) {
			return rule.Eval(ctx, c)
		}
		return Skip
	})
}

// OnModel evaluates the given rule only for calls on the given models.
func OnModel(rule Rule, models ...string) Rule {
	return RuleFunc(func(ctx context.Context, c *schemagen.Call) error {
		for _, m := range models {
			if c.Model == m {
				return rule.Eval(ctx, c)
			}
		}
		return Skip
	})
}

// DenyOperationRule returns a rule denying the given operations.
func DenyOperationRule(op schemagen.Op) Rule {
	rule := RuleFunc(func(_ context.Context, c *schemagen.Call) error {
		return Denyf("operation %s is not allowed", c.Op)
	})
	return OnOperation(rule, op)
}

// AllowOperationRule returns a rule allowing the given operations.
func AllowOperationRule(op schemagen.Op) Rule {
	return OnOperation(AlwaysAllowRule(), op)
}

// Policy is a list of rules evaluated in order.
type Policy []Rule

// Eval evaluates the rules. The first Allow stops the evaluation with a nil
// error, the first error that is neither Allow nor Skip is returned. A
// decision attached with DecisionContext short-circuits the rules.
func (p Policy) Eval(ctx context.Context, c *schemagen.Call) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, rule := range p {
		switch decision := rule.Eval(ctx, c); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Hook returns a resolver hook enforcing the policy. Deny decisions are
// reported as *schemagen.PrivacyError, other errors are returned as is.
func (p Policy) Hook() schemagen.Hook {
	return func(next schemagen.Resolver) schemagen.Resolver {
		return schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
			if err := p.Eval(ctx, c); err != nil {
				if errors.Is(err, Deny) {
					return nil, schemagen.NewPrivacyError(c.Model, c.Op.String(), reason(err))
				}
				return nil, err
			}
			return next.Resolve(ctx, c)
		})
	}
}

// reason strips the Deny sentinel from a wrapped decision.
func reason(err error) string {
	if err == Deny {
		return ""
	}
	return strings.TrimSuffix(err.Error(), ": "+Deny.Error())
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) Eval(context.Context, *schemagen.Call) error {
	return f.decision
}
