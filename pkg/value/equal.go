package value

// Equal reports whether a and b denote the same tree value, comparing
// structurally rather than by identity. Rope digits
// (Array/Binary/Concat/Take) compare equal to their Branch-spine
// expansion via Uncons, so two differently-built ropes holding the same
// elements are Equal. Sealed values compare equal only if sealed under
// identical keys, with the same linearity and Equal contents.
func Equal(a, b *Value) bool {
	for {
		if a == b {
			return true
		}
		// Rope kinds (other than the degenerate Leaf case already handled
		// by pointer equality above) always decompose through Uncons so
		// that a rope and an equivalent Branch spine compare equal.
		if isRope(a) || isRope(b) {
			if a.kind == KLeaf || b.kind == KLeaf {
				return a.kind == b.kind
			}
			ha, ta, aok := Uncons(a)
			hb, tb, bok := Uncons(b)
			if aok != bok {
				return false
			}
			if !aok {
				return true
			}
			if !Equal(ha, hb) {
				return false
			}
			a, b = ta, tb
			continue
		}

		if a.kind != b.kind {
			return false
		}
		switch a.kind {
		case KLeaf:
			return true
		case KStem:
			// Stems are compared bit-by-bit rather than chunk-by-chunk:
			// PushBit always compacts maximally, but a stem arriving from
			// a decoder (shrub, integer codec) may be chunked differently
			// while denoting the same bit sequence.
			ba, ra, _ := PeelBit(a)
			bb, rb, _ := PeelBit(b)
			if ba != bb {
				return false
			}
			a, b = ra, rb
			continue
		case KBranch:
			if !Equal(a.left, b.left) {
				return false
			}
			a, b = a.right, b.right
			continue
		case KSeal:
			if a.linear != b.linear || a.sealKey != b.sealKey {
				return false
			}
			a, b = a.sealV, b.sealV
			continue
		default:
			return false
		}
	}
}
