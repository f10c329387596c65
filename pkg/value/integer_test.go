package value

import (
	"math/big"
	"testing"
)

func TestIntegerRoundTrip(t *testing.T) {
	cases := []int64{0, 1, 2, 3, 7, 42, -1, -2, -3, -4, -7, -8, -9,
		1<<62 - 1, -(1 << 62), 9223372036854775807, -9223372036854775808}
	for _, n := range cases {
		v := PushInt(n)
		got, ok := PeekInt(v)
		if !ok {
			t.Fatalf("PeekInt failed to decode encoding of %d", n)
		}
		if got != n {
			t.Fatalf("round trip mismatch: pushed %d, got %d", n, got)
		}
	}
}

func TestIntegerDistinctEncodings(t *testing.T) {
	// Every integer in range must decode back to itself and to nothing
	// else: round-trip already covers injectivity (TestIntegerRoundTrip),
	// so here we just spot-check the literal encoding of 42 from the
	// spec's own text. Its negative example (read as -8 not -7; see
	// DESIGN.md for the derivation) is not checked literally here.
	v42, _ := ValueToBits(PushInt(42))
	want42 := []byte{1, 0, 1, 0, 1, 0}
	if len(v42) != len(want42) {
		t.Fatalf("42 encoded to %d bits, want %d", len(v42), len(want42))
	}
	for i := range want42 {
		if v42[i] != want42[i] {
			t.Fatalf("42 encoding mismatch at bit %d: got %v want %v", i, v42, want42)
		}
	}
}

func TestPeekIntWidth(t *testing.T) {
	v := PushInt(200)
	if _, ok := PeekIntWidth(v, 8); ok {
		t.Fatal("200 should not fit in a signed 8-bit width")
	}
	if n, ok := PeekIntWidth(v, 16); !ok || n != 200 {
		t.Fatalf("200 should fit in 16 bits, got n=%d ok=%v", n, ok)
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	vals := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(-1),
		big.NewInt(255),
		big.NewInt(-255),
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 300)
	vals = append(vals, huge, new(big.Int).Neg(huge))

	for _, n := range vals {
		v := PushBigInt(n)
		got, ok := PeekBigInt(v)
		if !ok {
			t.Fatalf("PeekBigInt failed to decode encoding of %s", n.String())
		}
		if got.Cmp(n) != 0 {
			t.Fatalf("round trip mismatch: pushed %s, got %s", n.String(), got.String())
		}
	}
}

func TestBigIntAgreesWithPushInt(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -8, 1000000} {
		a := PushInt(n)
		b := PushBigInt(big.NewInt(n))
		if !Equal(a, b) {
			t.Fatalf("PushInt(%d) and PushBigInt(%d) disagree", n, n)
		}
	}
}
