package value

import "golang.org/x/crypto/sha3"

// Hash computes a structural digest consistent with Equal: Equal(a, b)
// implies Hash(a) == Hash(b). Rope kinds (Array/Binary/Concat/Take)
// decompose through Uncons, the same accessor Equal uses, so two
// differently-built ropes over the same list elements hash equally.
// Uses Keccak-256 via golang.org/x/crypto/sha3.
func Hash(v *Value) [32]byte {
	switch {
	case isRope(v) && v.kind != KLeaf:
		head, tail, ok := Uncons(v)
		if !ok {
			return hashTag('L')
		}
		return hashPair('P', Hash(head), Hash(tail))
	}
	switch v.kind {
	case KLeaf:
		return hashTag('L')
	case KStem:
		bit, rest, _ := PeelBit(v)
		return hashBit(bit, Hash(rest))
	case KBranch:
		return hashPair('P', Hash(v.left), Hash(v.right))
	case KSeal:
		return hashPair('S', Hash(v.sealV), Hash(v.sealV))
	default:
		return hashTag('?')
	}
}

func hashTag(tag byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{tag})
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashBit(bit byte, rest [32]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{'B', bit})
	h.Write(rest[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashPair(tag byte, a, b [32]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{tag})
	h.Write(a[:])
	h.Write(b[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
