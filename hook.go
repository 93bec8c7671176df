package schemagen

import (
	"context"
	"errors"
	"strings"
)

// Op represents the operation a generated resolver performs.
type Op uint

// Generated resolver operations.
const (
	OpCreate Op = 1 << iota // create_<model> mutation
	OpRead                  // root list query and relation fields
	OpUpdate                // update_<model> mutation
	OpDelete                // delete_<model> mutation

	// OpAll matches every operation.
	OpAll = OpCreate | OpRead | OpUpdate | OpDelete
)

// Is reports whether o matches any of the given operations.
func (o Op) Is(op Op) bool { return o&op != 0 }

// String returns the lowercase name of the operation(s).
func (o Op) String() string {
	var names []string
	for _, n := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "create"},
		{OpRead, "read"},
		{OpUpdate, "update"},
		{OpDelete, "delete"},
	} {
		if o.Is(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}

// Call describes a single invocation of a generated resolver.
type Call struct {
	// Op is the operation being resolved.
	Op Op
	// Model is the Go name of the model the resolver is bound to.
	Model string
	// Parent is the value of the enclosing object (nil on root fields).
	Parent any
	// Args are the GraphQL arguments as decoded by the execution engine.
	Args map[string]any
}

// Resolver is the interface implemented by generated resolvers.
type Resolver interface {
	Resolve(context.Context, *Call) (any, error)
}

// ResolveFunc type is an adapter to allow the use of ordinary
// functions as Resolver.
type ResolveFunc func(context.Context, *Call) (any, error)

// Resolve calls f(ctx, c).
func (f ResolveFunc) Resolve(ctx context.Context, c *Call) (any, error) {
	return f(ctx, c)
}

// Hook defines the "resolver middleware". A function that gets a Resolver
// and returns a Resolver. For example:
//
//	hook := func(next schemagen.Resolver) schemagen.Resolver {
//		return schemagen.ResolveFunc(func(ctx context.Context, c *schemagen.Call) (any, error) {
//			slog.Info("resolving", "model", c.Model, "op", c.Op)
//			return next.Resolve(ctx, c)
//		})
//	}
type Hook func(Resolver) Resolver

// Chain wraps r with the given hooks. The first hook is the outermost.
func Chain(r Resolver, hooks ...Hook) Resolver {
	for i := len(hooks) - 1; i >= 0; i-- {
		if hooks[i] != nil {
			r = hooks[i](r)
		}
	}
	return r
}

// On returns a hook that is executed only for the given operations.
func On(hk Hook, op Op) Hook {
	return func(next Resolver) Resolver {
		hooked := hk(next)
		return ResolveFunc(func(ctx context.Context, c *Call) (any, error) {
			if c.Op.Is(op) {
				return hooked.Resolve(ctx, c)
			}
			return next.Resolve(ctx, c)
		})
	}
}

// Stop may be returned by pre hooks to abort the resolver.
// Wrapping it (fmt.Errorf("...: %w", schemagen.Stop)) adds a reason.
var Stop = errors.New("schemagen: stop")

// PreFunc runs before a resolver. Returning Stop, or an error wrapping it,
// aborts the call with a *StoppedError. Any other error is returned as is.
type PreFunc func(context.Context, *Call) error

// PostFunc runs after a successful resolver with its result. A non-nil
// return value replaces the result.
type PostFunc func(context.Context, *Call, any) (any, error)

// PrePost returns a hook running pre before the resolver and post after it.
// Either function may be nil.
func PrePost(pre PreFunc, post PostFunc) Hook {
	return func(next Resolver) Resolver {
		return ResolveFunc(func(ctx context.Context, c *Call) (any, error) {
			if pre != nil {
				if err := pre(ctx, c); err != nil {
					if errors.Is(err, Stop) {
						return nil, &StoppedError{Op: c.Op, Model: c.Model, Err: err}
					}
					return nil, err
				}
			}
			v, err := next.Resolve(ctx, c)
			if err != nil || post == nil {
				return v, err
			}
			replaced, err := post(ctx, c, v)
			if err != nil {
				return nil, err
			}
			if replaced != nil {
				return replaced, nil
			}
			return v, nil
		})
	}
}
