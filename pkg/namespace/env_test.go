package namespace

import (
	"testing"

	"github.com/dmbarbour/glas/pkg/value"
)

func TestResolveDirectBinding(t *testing.T) {
	env := NewRootEnv(nil).WithData("x", value.PushInt(42))
	d, ok := env.Resolve("x")
	if !ok {
		t.Fatal("expected x to resolve")
	}
	dd, ok := d.(DataDef)
	if !ok {
		t.Fatal("expected a DataDef")
	}
	if n, ok := value.PeekInt(dd.Value); !ok || n != 42 {
		t.Fatalf("expected 42, got %v", n)
	}
}

func TestResolveUndefinedName(t *testing.T) {
	env := NewRootEnv(nil)
	if _, ok := env.Resolve("missing"); ok {
		t.Fatal("an unbound name in an empty root must be undefined")
	}
}

func TestWithHiddenDefShadows(t *testing.T) {
	env := NewRootEnv(nil).WithData("x", value.PushInt(1)).WithHiddenDef("x")
	if _, ok := env.Resolve("x"); ok {
		t.Fatal("a hidden definition must resolve as undefined")
	}
}

func TestWithHiddenPrefixShadowsThroughTranslation(t *testing.T) {
	root := NewRootEnv(nil).WithData("secret.key", value.PushInt(1))
	env := root.WithHiddenPrefix("secret")
	if _, ok := env.Resolve("secret.key"); ok {
		t.Fatal("a name under a hidden prefix must resolve as undefined")
	}
}

func TestWithTLRewritesLookup(t *testing.T) {
	root := NewRootEnv(nil).WithData("real.name", value.PushInt(7))
	tl := NewTranslationTable(Rule("alias", "real"))
	env := root.WithTL(tl)
	d, ok := env.Resolve("alias.name")
	if !ok {
		t.Fatal("expected alias.name to resolve via translation")
	}
	if n, _ := value.PeekInt(d.(DataDef).Value); n != 7 {
		t.Fatalf("expected 7, got %v", n)
	}
}

func TestReifyCollectsDirectBindingsOnly(t *testing.T) {
	env := NewRootEnv(nil).
		WithData("a", value.PushInt(1)).
		WithData("b", value.PushInt(2)).
		WithHiddenDef("c")
	r := env.Reify()
	if len(r.Members) != 2 {
		t.Fatalf("expected 2 reified members, got %d", len(r.Members))
	}
	if _, ok := r.Members["c"]; ok {
		t.Fatal("a hidden definition must not appear in a reified environment")
	}
}

func TestWithPrefixBindingsShadowsNoMerge(t *testing.T) {
	root := NewRootEnv(nil).WithData("mod.old", value.PushInt(1))
	r := ReifiedEnv{Members: map[string]Definition{"new": DataDef{Value: value.PushInt(2)}}}
	env := root.WithPrefixBindings("mod", r)
	if _, ok := env.Resolve("mod.old"); ok {
		t.Fatal("ns_eval_prefix must shadow existing names reachable through prefix, not merge with them")
	}
	d, ok := env.Resolve("mod.new")
	if !ok {
		t.Fatal("expected mod.new to resolve")
	}
	if n, _ := value.PeekInt(d.(DataDef).Value); n != 2 {
		t.Fatalf("expected 2, got %v", n)
	}
}

func TestCacheServesRepeatedResolve(t *testing.T) {
	cache := NewCache(1024)
	env := NewRootEnv(cache).WithData("x", value.PushInt(5))
	d1, ok1 := env.Resolve("x")
	d2, ok2 := env.Resolve("x")
	if !ok1 || !ok2 {
		t.Fatal("expected both resolves to succeed")
	}
	n1, _ := value.PeekInt(d1.(DataDef).Value)
	n2, _ := value.PeekInt(d2.(DataDef).Value)
	if n1 != 5 || n2 != 5 {
		t.Fatalf("expected both resolves to see 5, got %v and %v", n1, n2)
	}
}
