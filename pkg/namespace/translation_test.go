package namespace

import "testing"

func TestTranslationIdentityPassesThrough(t *testing.T) {
	if got, ok := Identity.step("foo.bar"); !ok || got != "foo.bar" {
		t.Fatalf("Identity.step(foo.bar) = %q, %v", got, ok)
	}
}

func TestTranslationRewritesAtComponentBoundary(t *testing.T) {
	tl := NewTranslationTable(Rule("foo", "baz"))
	got, ok := tl.step("foo.bar")
	if !ok || got != "baz.bar" {
		t.Fatalf("expected foo.bar -> baz.bar, got %q, %v", got, ok)
	}
	got2, ok2 := tl.step("foobar")
	if !ok2 || got2 != "foobar" {
		t.Fatalf("a rule for %q must not match %q mid-component, got %q, %v", "foo", "foobar", got2, ok2)
	}
}

func TestTranslationUndefine(t *testing.T) {
	tl := NewTranslationTable(Undefine("secret"))
	if _, ok := tl.step("secret.key"); ok {
		t.Fatal("a name under an Undefine rule must be undefined")
	}
	if got, ok := tl.step("public.key"); !ok || got != "public.key" {
		t.Fatalf("an unrelated name must pass through, got %q, %v", got, ok)
	}
}

func TestTranslationLongestMatchWins(t *testing.T) {
	tl := NewTranslationTable(Rule("a", "X"), Rule("a.b", "Y"))
	got, ok := tl.step("a.b.c")
	if !ok || got != "Y.c" {
		t.Fatalf("longest-matching rule should win, got %q, %v", got, ok)
	}
}

func TestComposeAppliesOuterFirst(t *testing.T) {
	outer := NewTranslationTable(Rule("a", "b"))
	inner := NewTranslationTable(Rule("b", "c"))
	tl := Compose(outer, inner)
	got, ok := tl.step("a.x")
	if !ok || got != "c.x" {
		t.Fatalf("composed table should rewrite a->b->c, got %q, %v", got, ok)
	}
}

func TestEncodeDecodeTLRoundTrip(t *testing.T) {
	tl := NewTranslationTable(Rule("a", "b"), Undefine("secret"))
	v := EncodeTL(tl)
	decoded, err := DecodeTL(v)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := decoded.step("a.x")
	if !ok || got != "b.x" {
		t.Fatalf("round-tripped table lost its rewrite rule: %q, %v", got, ok)
	}
	if _, ok := decoded.step("secret.k"); ok {
		t.Fatal("round-tripped table lost its undefine rule")
	}
}
