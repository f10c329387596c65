package value

import "testing"

func TestUnitLeaf(t *testing.T) {
	if !IsUnit(Unit()) || !IsUnit(Leaf()) {
		t.Fatal("Unit/Leaf should be the unit value")
	}
}

func TestPairUn(t *testing.T) {
	p := Pair(PushInt(1), PushInt(2))
	a, b, ok := Un(p)
	if !ok {
		t.Fatal("Un on a Branch should succeed")
	}
	n1, _ := PeekInt(a)
	n2, _ := PeekInt(b)
	if n1 != 1 || n2 != 2 {
		t.Fatalf("got (%d,%d), want (1,2)", n1, n2)
	}
}

func TestLeftRightPeel(t *testing.T) {
	v := Right(Left(Leaf()))
	bit, rest, ok := PeelBit(v)
	if !ok || bit != 1 {
		t.Fatalf("expected leading bit 1, got bit=%d ok=%v", bit, ok)
	}
	bit2, rest2, ok2 := PeelBit(rest)
	if !ok2 || bit2 != 0 {
		t.Fatalf("expected second bit 0, got bit=%d ok=%v", bit2, ok2)
	}
	if !IsUnit(rest2) {
		t.Fatal("expected terminal Leaf")
	}
}
