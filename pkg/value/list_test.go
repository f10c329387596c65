package value

import "testing"

func intList(ns ...int64) *Value {
	v := Leaf()
	for i := len(ns) - 1; i >= 0; i-- {
		v = Cons(PushInt(ns[i]), v)
	}
	return v
}

func TestRopeAlgebraLen(t *testing.T) {
	tail := intList(2, 3, 4)
	cons := Cons(PushInt(1), tail)
	if Len(cons) != 1+Len(tail) {
		t.Fatalf("len(cons(v,r)) != 1+len(r): %d vs %d", Len(cons), 1+Len(tail))
	}
}

func TestRopeAlgebraTakeDrop(t *testing.T) {
	r := intList(1, 2, 3, 4, 5, 6, 7)
	for n := 0; n <= Len(r); n++ {
		head, tail := SplitAt(r, n)
		rebuilt := Append(head, tail)
		if !Equal(rebuilt, r) {
			t.Fatalf("take(%d,r)++drop(%d,r) != r", n, n)
		}
	}
}

func TestIndexAgreesWithCons(t *testing.T) {
	r := intList(10, 20, 30, 40)
	for i := 0; i < Len(r); i++ {
		got, ok := Index(r, i)
		if !ok {
			t.Fatalf("Index(%d) should succeed", i)
		}
		n, _ := PeekInt(got)
		want := int64((i + 1) * 10)
		if n != want {
			t.Fatalf("Index(%d)=%d, want %d", i, n, want)
		}
	}
	if _, ok := Index(r, Len(r)); ok {
		t.Fatal("Index at length should fail")
	}
}

func TestArrayBinaryConcatEquivalentToBranchSpine(t *testing.T) {
	spine := Cons(ByteValue('a'), Cons(ByteValue('b'), Cons(ByteValue('c'), Leaf())))
	bin := NewBinary([]byte("abc"))
	if !Equal(spine, bin) {
		t.Fatal("Binary digit should be observationally equal to its Branch-spine expansion")
	}

	arr := NewArray([]*Value{PushInt(1), PushInt(2), PushInt(3)})
	spine2 := intList(1, 2, 3)
	if !Equal(arr, spine2) {
		t.Fatal("Array digit should be observationally equal to its Branch-spine expansion")
	}

	cat := Concat(NewBinary([]byte("ab")), NewBinary([]byte("c")))
	if !Equal(cat, bin) {
		t.Fatal("Concat should be observationally equal to the flattened list")
	}

	take2 := Take(2, bin)
	if !Equal(take2, NewBinary([]byte("ab"))) {
		t.Fatal("Take(2,\"abc\") should equal \"ab\"")
	}
}

func TestReverseBinary(t *testing.T) {
	v := NewBinary([]byte("abc"))
	r := Reverse(v)
	out, ok := ToBytes(r)
	if !ok || string(out) != "cba" {
		t.Fatalf("reverse mismatch: %q ok=%v", out, ok)
	}
}

func TestHashConsistentWithEqual(t *testing.T) {
	a := NewBinary([]byte("hello"))
	b := Cons(ByteValue('h'), Cons(ByteValue('e'), Cons(ByteValue('l'), Cons(ByteValue('l'), Cons(ByteValue('o'), Leaf())))))
	if !Equal(a, b) {
		t.Fatal("precondition failed: a and b should be Equal")
	}
	if Hash(a) != Hash(b) {
		t.Fatal("Equal values must Hash equally")
	}
}
