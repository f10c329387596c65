package thread

import (
	"context"

	"github.com/dmbarbour/glas/pkg/namespace"
)

// Call resolves name against the thread's current namespace and applies
// it to the stack: a data definition pushes a copy, a program definition
// is evaluated down to its terminal definition and then applied in
// turn, and a callback is invoked directly. tl may be nil.
func (t *Thread) Call(name string, tl namespace.TranslationTable) error {
	d, err := t.env.Call(name, tl)
	if err != nil {
		t.Raise(NameUndef)
		return Error{Mask: NameUndef}
	}
	return t.apply(d)
}

// CallAtomic is Call wrapped in an atomic mark: any attempt to commit
// inside this region yields Atomicity.
func (t *Thread) CallAtomic(name string, tl namespace.TranslationTable) error {
	t.EnterAtomic()
	defer t.LeaveAtomic()
	return t.Call(name, tl)
}

// Prep asks the background prefetcher to warm names' cache entries
// without blocking the caller. The caller supplies the prefetcher since
// it is shared across threads against one namespace.Cache.
func (t *Thread) Prep(ctx context.Context, p *namespace.Prefetcher, names []string) {
	if p == nil {
		return
	}
	env := t.env
	go func() { _ = p.Prepare(ctx, env, names) }()
}

func (t *Thread) apply(d namespace.Definition) error {
	switch def := d.(type) {
	case namespace.DataDef:
		t.stack.Push(def.Value)
		return nil

	case namespace.ProgDef:
		nested, err := namespace.Eval(def.AST, def.Env)
		if err != nil {
			t.Raise(NameUndef)
			return Error{Mask: NameUndef}
		}
		return t.apply(nested)

	case namespace.CallbackDef:
		if def.NoAtomic && t.InAtomic() {
			t.Raise(Atomicity)
			return Error{Mask: Atomicity}
		}
		if err := def.Fn(def.HostEnv, t.env, t.stack); err != nil {
			t.Raise(ErrorOp)
			return Error{Mask: ErrorOp}
		}
		return nil

	default:
		t.Raise(ErrorOp)
		return Error{Mask: ErrorOp}
	}
}
