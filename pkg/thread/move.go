package thread

import (
	"strings"

	"github.com/dmbarbour/glas/pkg/value"
)

// Move executes a pattern "move" string against the stack: a compact
// DSL "abc-abcabc" where the left-of-"-" half names items
// consumed LIFO (the first name is the current stack top, the next name
// the item below it, and so on) and the right-of-"-" half names items
// produced, each pushed in the order written so the last name ends up on
// top. Reusing a consumed name on the left is disallowed; every name on
// the right must have been bound by the left; binding a linear value to
// more than one name on the right is LINEARITY.
func Move(s *Stack, pattern string) error {
	left, right, ok := strings.Cut(pattern, "-")
	if !ok {
		return Error{Mask: ErrorOp}
	}
	for i := 0; i < len(left); i++ {
		if strings.IndexByte(left[i+1:], left[i]) >= 0 {
			return Error{Mask: ErrorOp}
		}
	}
	bound := make(map[byte]*value.Value, len(left))
	for i := 0; i < len(left); i++ {
		name := left[i]
		if _, dup := bound[name]; dup {
			return Error{Mask: ErrorOp}
		}
		v, err := s.Pop()
		if err != nil {
			return err
		}
		bound[name] = v
	}
	used := make(map[byte]bool, len(right))
	produced := make([]*value.Value, 0, len(right))
	for i := 0; i < len(right); i++ {
		name := right[i]
		v, ok := bound[name]
		if !ok {
			return Error{Mask: NameUndef}
		}
		if used[name] && value.IsLinear(v) {
			return Error{Mask: Linearity}
		}
		used[name] = true
		produced = append(produced, v)
	}
	for _, v := range produced {
		s.Push(v)
	}
	return nil
}

// MkPair builds a pair from the top two stack items (a below, b on top
// at entry), pushing Pair(a, b).
func MkPair(s *Stack) error {
	b, err := s.Pop()
	if err != nil {
		return err
	}
	a, err := s.Pop()
	if err != nil {
		return err
	}
	s.Push(value.Pair(a, b))
	return nil
}

// UnPair splits the top item into its two halves, pushing a then b.
// Fails with DataType if the top is not a pair.
func UnPair(s *Stack) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	a, b, ok := value.Un(v)
	if !ok {
		return Error{Mask: DataType}
	}
	s.Push(a)
	s.Push(b)
	return nil
}

// MkLeft wraps the top item as the left variant of a sum. value.Left
// already implements this bit-level tagging.
func MkLeft(s *Stack) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	s.Push(value.Left(v))
	return nil
}

// MkRight wraps the top item as the right variant of a sum.
func MkRight(s *Stack) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	s.Push(value.Right(v))
	return nil
}

// UnLeft unwraps the top item as a left variant, failing with DataType
// if it is tagged right.
func UnLeft(s *Stack) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	inner, ok := value.IsInL(v)
	if !ok {
		return Error{Mask: DataType}
	}
	s.Push(inner)
	return nil
}

// UnRight unwraps the top item as a right variant, failing with
// DataType if it is tagged left.
func UnRight(s *Stack) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	inner, ok := value.IsInR(v)
	if !ok {
		return Error{Mask: DataType}
	}
	s.Push(inner)
	return nil
}
