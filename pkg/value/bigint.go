package value

import (
	"math/big"

	"github.com/holiman/uint256"
)

// PushBigInt encodes an arbitrary-precision signed integer the same way
// PushInt encodes an int64. Magnitudes that fit in 256 bits take a fast
// fixed-width path; larger magnitudes fall back to math/big directly.
func PushBigInt(n *big.Int) *Value {
	if n.Sign() == 0 {
		return Leaf()
	}
	mag := new(big.Int).Abs(n)
	if mag.BitLen() <= 256 {
		var u uint256.Int
		u.SetFromBig(mag)
		bits := uint256BitsMSBFirst(&u)
		if n.Sign() > 0 {
			return BitsToValue(bits)
		}
		m := new(uint256.Int).SubUint64(&u, 1)
		p := BitsToValue(uint256BitsMSBFirst(m))
		return Left(complementStem(p))
	}
	bits := bigBitsMSBFirst(mag)
	if n.Sign() > 0 {
		return BitsToValue(bits)
	}
	m := new(big.Int).Sub(mag, big.NewInt(1))
	p := BitsToValue(bigBitsMSBFirst(m))
	return Left(complementStem(p))
}

// PeekBigInt decodes v as an arbitrary-precision signed integer.
func PeekBigInt(v *Value) (*big.Int, bool) {
	if v.kind == KLeaf {
		return big.NewInt(0), true
	}
	bits, ok := ValueToBits(v)
	if !ok || len(bits) == 0 {
		return nil, false
	}
	if bits[0] == 1 {
		return bitsToBig(bits), true
	}
	cbits := make([]byte, len(bits)-1)
	for i, b := range bits[1:] {
		cbits[i] = 1 - b
	}
	m := bitsToBig(cbits)
	n := new(big.Int).Add(m, big.NewInt(1))
	return n.Neg(n), true
}

func bitsToBig(bits []byte) *big.Int {
	n := new(big.Int)
	for _, b := range bits {
		n.Lsh(n, 1)
		if b != 0 {
			n.SetBit(n, 0, 1)
		}
	}
	return n
}

func bigBitsMSBFirst(n *big.Int) []byte {
	if n.Sign() == 0 {
		return nil
	}
	s := n.Text(2)
	out := make([]byte, len(s))
	for i, c := range s {
		if c == '1' {
			out[i] = 1
		}
	}
	return out
}

func uint256BitsMSBFirst(u *uint256.Int) []byte {
	if u.IsZero() {
		return nil
	}
	b32 := u.Bytes32()
	bits := make([]byte, 0, 256)
	for _, by := range b32 {
		for bi := 7; bi >= 0; bi-- {
			bits = append(bits, (by>>uint(bi))&1)
		}
	}
	i := 0
	for i < len(bits) && bits[i] == 0 {
		i++
	}
	return bits[i:]
}
