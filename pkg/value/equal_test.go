package value

import "testing"

func TestEqualityPhysicalIdentityFastPath(t *testing.T) {
	v := Pair(PushInt(1), PushInt(2))
	if !Equal(v, v) {
		t.Fatal("a value must equal itself")
	}
}

func TestEqualityStructural(t *testing.T) {
	a := Pair(PushInt(1), PushInt(2))
	b := Pair(PushInt(1), PushInt(2))
	if a == b {
		t.Fatal("test setup error: a and b must be distinct pointers")
	}
	if !Equal(a, b) {
		t.Fatal("structurally identical values built independently must be Equal")
	}
}

func TestInequality(t *testing.T) {
	a := Pair(PushInt(1), PushInt(2))
	b := Pair(PushInt(1), PushInt(3))
	if Equal(a, b) {
		t.Fatal("values differing in one field must not be Equal")
	}
}

func TestStemChunkingDoesNotAffectEquality(t *testing.T) {
	// Same bit sequence (1,0,1), chunked into one 3-bit Stem node...
	a := &Value{kind: KStem, nbits: 3, word: 0b101, tail: theLeaf}
	// ...versus a 1-bit Stem followed by a 2-bit Stem.
	b := &Value{kind: KStem, nbits: 1, word: 0b1,
		tail: &Value{kind: KStem, nbits: 2, word: 0b01, tail: theLeaf}}
	if !Equal(a, b) {
		t.Fatal("differently-chunked stems over the same bits must be Equal")
	}
}
