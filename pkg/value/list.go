// Rope-optimized lists: Array (vector of values), Binary (vector of
// bytes), Concat (splice two lists), Take (cached-size prefix). All four
// are observationally equivalent to the Branch-spine encoding of the same
// list. Uncons implements that equivalence for Equal, Hash, Drop,
// Reverse and ToSlice; Len, Index, IsBinary and ToBytes also switch on
// the rope kinds directly.
//
// This is a simplified rope: digits are unbounded and Concat/Take are
// not rebalanced, so structural sharing and O(1) amortized Uncons still
// hold but append/split/index are not guaranteed O(log n) (see
// DESIGN.md).
package value

import "github.com/dmbarbour/glas/pkg/refcount"

func arrayNode(items []*Value) *Value {
	if len(items) == 0 {
		return Leaf()
	}
	return &Value{kind: KArray, items: items}
}

func binaryNode(bytes []byte, buf *refcount.Handle) *Value {
	if len(bytes) == 0 {
		return Leaf()
	}
	return &Value{kind: KBinary, bytes: bytes, buf: buf}
}

func concatNode(a, b *Value) *Value {
	if a.kind == KLeaf {
		return b
	}
	if b.kind == KLeaf {
		return a
	}
	return &Value{kind: KConcat, a: a, b: b}
}

func takeNode(n int, v *Value) *Value {
	if n <= 0 {
		return Leaf()
	}
	return &Value{kind: KTake, takeN: n, takeV: v}
}

// NewArray builds the list items[0], items[1], ..., Leaf as a single
// rope digit.
func NewArray(items []*Value) *Value { return arrayNode(append([]*Value(nil), items...)) }

// NewBinary builds the list of bytes as a single rope digit, copying the
// given bytes so the caller's slice remains independently mutable.
func NewBinary(bytes []byte) *Value {
	cp := append([]byte(nil), bytes...)
	return binaryNode(cp, nil)
}

// NewBinaryZeroCopy wraps bytes directly (no copy), tracked by buf for
// reference-count bookkeeping across the host boundary. The caller must
// not mutate bytes after this call.
func NewBinaryZeroCopy(bytes []byte, buf *refcount.Handle) *Value {
	return binaryNode(bytes, buf)
}

// Concat splices list b after list a.
func Concat(a, b *Value) *Value { return concatNode(a, b) }

// Take returns the first n elements of list v, or all of v if it has
// fewer than n.
func Take(n int, v *Value) *Value {
	if n <= 0 {
		return Leaf()
	}
	return takeNode(n, v)
}

// Cons prepends head onto the list tail: Branch(head, tail).
func Cons(head, tail *Value) *Value { return Pair(head, tail) }

// ByteValue returns the 8-bit stem value for byte b, terminated by Leaf.
func ByteValue(b byte) *Value {
	return &Value{kind: KStem, nbits: 8, word: uint64(b), tail: theLeaf}
}

// ByteOf extracts the byte from a value for which IsByte holds.
func ByteOf(v *Value) (byte, bool) {
	if !IsByte(v) {
		return 0, false
	}
	return byte(v.word), true
}

// Uncons decomposes v as a list: (head, tail, true) if v is non-empty,
// or (nil, nil, false) if v is the empty list (Leaf). It translates
// Array/Binary/Concat/Take to the canonical Branch-spine view, one
// element at a time.
func Uncons(v *Value) (head, tail *Value, ok bool) {
	switch v.kind {
	case KLeaf:
		return nil, nil, false
	case KBranch:
		return v.left, v.right, true
	case KArray:
		if len(v.items) == 0 {
			return nil, nil, false
		}
		return v.items[0], arrayNode(v.items[1:]), true
	case KBinary:
		if len(v.bytes) == 0 {
			return nil, nil, false
		}
		return ByteValue(v.bytes[0]), binaryNode(v.bytes[1:], v.buf), true
	case KConcat:
		if h, t, ok := Uncons(v.a); ok {
			return h, concatNode(t, v.b), true
		}
		return Uncons(v.b)
	case KTake:
		if v.takeN <= 0 {
			return nil, nil, false
		}
		h, t, ok := Uncons(v.takeV)
		if !ok {
			return nil, nil, false
		}
		return h, takeNode(v.takeN-1, t), true
	default:
		return nil, nil, false
	}
}

// Snoc appends one element to the end of a list.
func Snoc(list *Value, last *Value) *Value {
	return concatNode(list, arrayNode([]*Value{last}))
}

// Len returns the number of elements in list v.
func Len(v *Value) int {
	switch v.kind {
	case KLeaf:
		return 0
	case KArray:
		return len(v.items)
	case KBinary:
		return len(v.bytes)
	case KConcat:
		return Len(v.a) + Len(v.b)
	case KTake:
		n := Len(v.takeV)
		if v.takeN < n {
			return v.takeN
		}
		return n
	case KBranch:
		return 1 + Len(v.right)
	default:
		return 0
	}
}

// Index returns the i-th element of list v (0-based). ok is false if i
// is out of range.
func Index(v *Value, i int) (*Value, bool) {
	for i >= 0 {
		switch v.kind {
		case KArray:
			if i < len(v.items) {
				return v.items[i], true
			}
			return nil, false
		case KBinary:
			if i < len(v.bytes) {
				return ByteValue(v.bytes[i]), true
			}
			return nil, false
		case KConcat:
			la := Len(v.a)
			if i < la {
				v = v.a
				continue
			}
			i -= la
			v = v.b
			continue
		case KTake:
			if i >= v.takeN {
				return nil, false
			}
			v = v.takeV
			continue
		case KBranch:
			if i == 0 {
				return v.left, true
			}
			i--
			v = v.right
			continue
		default:
			return nil, false
		}
	}
	return nil, false
}

// SplitAt splits list v into its first n elements and the remainder.
func SplitAt(v *Value, n int) (head, tail *Value) {
	return Take(n, v), Drop(n, v)
}

// Drop returns list v with its first n elements removed.
func Drop(n int, v *Value) *Value {
	for n > 0 {
		h, t, ok := Uncons(v)
		if !ok {
			return Leaf()
		}
		_ = h
		v = t
		n--
	}
	return v
}

// Append concatenates two lists (alias for Concat).
func Append(a, b *Value) *Value { return Concat(a, b) }

// Reverse returns the list with its elements in reverse order.
func Reverse(v *Value) *Value {
	out := Leaf()
	for {
		h, t, ok := Uncons(v)
		if !ok {
			return out
		}
		out = Cons(h, out)
		v = t
	}
}

// ToSlice flattens list v into a Go slice of its elements.
func ToSlice(v *Value) []*Value {
	out := make([]*Value, 0, Len(v))
	for {
		h, t, ok := Uncons(v)
		if !ok {
			return out
		}
		out = append(out, h)
		v = t
	}
}

// IsBinary reports whether v is List-shaped with every element a Byte.
func IsBinary(v *Value) bool {
	if v.kind == KBinary {
		return true
	}
	for {
		h, t, ok := Uncons(v)
		if !ok {
			return true
		}
		if !IsByte(h) {
			return false
		}
		v = t
	}
}

// ToBytes flattens a binary-shaped list into a Go byte slice. ok is
// false if v is not a valid binary (IsBinary(v) is false).
func ToBytes(v *Value) (out []byte, ok bool) {
	if v.kind == KBinary {
		return append([]byte(nil), v.bytes...), true
	}
	out = make([]byte, 0, Len(v))
	for {
		h, t, uok := Uncons(v)
		if !uok {
			return out, true
		}
		b, bok := ByteOf(h)
		if !bok {
			return nil, false
		}
		out = append(out, b)
		v = t
	}
}
