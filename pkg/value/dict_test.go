package value

import (
	"reflect"
	"testing"
)

func TestDictInsertLookup(t *testing.T) {
	d := Leaf()
	d = DictInsert(d, "alpha", PushInt(1))
	d = DictInsert(d, "beta", PushInt(2))
	d = DictInsert(d, "be", PushInt(3))

	v, ok := DictLookup(d, "alpha")
	if !ok {
		t.Fatal("alpha should be found")
	}
	if n, _ := PeekInt(v); n != 1 {
		t.Fatalf("alpha=%d, want 1", n)
	}

	v, ok = DictLookup(d, "beta")
	if !ok {
		t.Fatal("beta should be found")
	}
	if n, _ := PeekInt(v); n != 2 {
		t.Fatalf("beta=%d, want 2", n)
	}

	v, ok = DictLookup(d, "be")
	if !ok {
		t.Fatal("be should be found despite being a prefix of beta")
	}
	if n, _ := PeekInt(v); n != 3 {
		t.Fatalf("be=%d, want 3", n)
	}

	if _, ok := DictLookup(d, "gamma"); ok {
		t.Fatal("gamma should not be found")
	}
}

func TestDictOverwrite(t *testing.T) {
	d := DictInsert(Leaf(), "k", PushInt(1))
	d = DictInsert(d, "k", PushInt(2))
	v, ok := DictLookup(d, "k")
	if !ok {
		t.Fatal("k should be found")
	}
	if n, _ := PeekInt(v); n != 2 {
		t.Fatalf("k=%d, want 2 (overwritten)", n)
	}
}

func TestDictRemoveAndKeys(t *testing.T) {
	d := Leaf()
	for i, k := range []string{"a", "bb", "ccc"} {
		d = DictInsert(d, k, PushInt(int64(i)))
	}
	d = DictRemove(d, "bb")
	if _, ok := DictLookup(d, "bb"); ok {
		t.Fatal("bb should have been removed")
	}
	keys := DictKeys(d)
	want := []string{"a", "ccc"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys after remove = %v, want %v", keys, want)
	}
}

func TestDictEntriesEmpty(t *testing.T) {
	if entries := DictEntries(Leaf()); len(entries) != 0 {
		t.Fatalf("empty dict should have no entries, got %v", entries)
	}
}
