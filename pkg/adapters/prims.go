package adapters

import (
	"fmt"

	"github.com/dmbarbour/glas/pkg/namespace"
	"github.com/dmbarbour/glas/pkg/thread"
	"github.com/dmbarbour/glas/pkg/value"
)

// prim wraps a stack-only operation (one that needs nothing beyond the
// calling thread's namespace.Stack) as a namespace.HostFunc.
func prim(op func(s namespace.Stack) error) namespace.HostFunc {
	return func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		return op(s)
	}
}

// moveStr wraps thread.Move, which needs the concrete *thread.Stack for
// its pop/push bookkeeping rather than the narrower namespace.Stack
// interface; every caller in practice hands in a *thread.Thread's own
// stack (thread.Call passes t.stack), so the assertion always succeeds.
func moveStr(pattern string) namespace.HostFunc {
	return func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		ts, ok := s.(*thread.Stack)
		if !ok {
			return fmt.Errorf("adapters: move requires a *thread.Stack")
		}
		return thread.Move(ts, pattern)
	}
}

// threadStackOp wraps a *thread.Stack-only operation (the sum/pair
// taggers in pkg/thread/move.go, which need the concrete type for their
// pop/push bookkeeping) as a namespace.HostFunc.
func threadStackOp(name string, op func(*thread.Stack) error) namespace.HostFunc {
	return func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		ts, ok := s.(*thread.Stack)
		if !ok {
			return fmt.Errorf("adapters: %s requires a *thread.Stack", name)
		}
		return op(ts)
	}
}

// unaryValue wraps a pop-transform-push primitive over a single Value.
func unaryValue(f func(*value.Value) (*value.Value, error)) namespace.HostFunc {
	return func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		out, err := f(v)
		if err != nil {
			return err
		}
		s.Push(out)
		return nil
	}
}

// LoadPrims installs the built-in primitives under prefix. Stack
// manipulation, the move DSL, sum/pair tagging, type predicates, and a
// representative slice of the list/seal operations are bound; each
// calls directly into the pkg/value or pkg/thread function it wraps.
func LoadPrims(env *namespace.Env, prefix string) *namespace.Env {
	bind := func(name string, fn namespace.HostFunc) {
		env = env.WithCallback(prefix+name, fn, nil, false)
	}

	// Stack manipulation.
	bind("copy", prim(func(s namespace.Stack) error { return s.Copy() }))
	bind("drop", prim(func(s namespace.Stack) error { return s.Drop(1) }))
	bind("swap", prim(func(s namespace.Stack) error { return s.Swap(1) }))

	// Move-string DSL.
	bind("move", func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		top, err := s.Pop()
		if err != nil {
			return err
		}
		pattern, ok := value.BitstringToBytes(top)
		if !ok {
			return thread.Error{Mask: thread.DataType}
		}
		return moveStr(string(pattern))(hostEnv, callerEnv, s)
	})

	// Pair/sum tagging.
	bind("mkp", threadStackOp("mkp", thread.MkPair))
	bind("unp", threadStackOp("unp", thread.UnPair))
	bind("mkl", threadStackOp("mkl", thread.MkLeft))
	bind("mkr", threadStackOp("mkr", thread.MkRight))
	bind("unl", threadStackOp("unl", thread.UnLeft))
	bind("unr", threadStackOp("unr", thread.UnRight))

	// Type predicates.
	bind("is-pair", predicate(value.IsPair))
	bind("is-unit", predicate(value.IsUnit))
	bind("is-list", predicate(value.IsList))
	bind("is-bits", predicate(value.IsBitstring))
	bind("is-dict", predicate(value.IsDict))
	bind("is-sealed", predicate(value.IsSealed))

	// List/rope ops.
	bind("len", func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		s.Push(value.PushInt(int64(value.Len(v))))
		return nil
	})
	bind("reverse", unaryValue(func(v *value.Value) (*value.Value, error) {
		return value.Reverse(v), nil
	}))
	bind("concat", func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		b, err := s.Pop()
		if err != nil {
			return err
		}
		a, err := s.Pop()
		if err != nil {
			return err
		}
		s.Push(value.Concat(a, b))
		return nil
	})

	// Sealing.
	bind("seal-linear", unaryValue(func(v *value.Value) (*value.Value, error) {
		return value.SealLinear(v, sealKey), nil
	}))
	bind("unseal", unaryValue(func(v *value.Value) (*value.Value, error) {
		inner, ok := value.Unseal(v, sealKey)
		if !ok {
			return nil, thread.Error{Mask: thread.DataSealed}
		}
		return inner, nil
	}))

	return env
}

// sealKey is the opaque sealing key used by the prefix-bound seal/unseal
// primitives; any two callers using these bound primitives necessarily
// agree on the key since it never leaves this package.
var sealKey = &struct{ adapterSealKey byte }{}

func predicate(pred func(*value.Value) bool) namespace.HostFunc {
	return func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		if pred(v) {
			s.Push(value.Right(value.Unit()))
		} else {
			s.Push(value.Left(value.Unit()))
		}
		return nil
	}
}
