package thread

import (
	"fmt"

	"github.com/dmbarbour/glas/pkg/value"
)

// Stack is a thread's data stack: a dynamically-sized LIFO of values,
// with no fixed depth bound.
type Stack struct {
	items []*value.Value
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Len returns the number of items currently on the stack.
func (s *Stack) Len() int { return len(s.items) }

// Push pushes v onto the stack.
func (s *Stack) Push(v *value.Value) { s.items = append(s.items, v) }

// Pop removes and returns the top item. Fails with Underflow if empty.
func (s *Stack) Pop() (*value.Value, error) {
	if len(s.items) == 0 {
		return nil, Error{Mask: Underflow}
	}
	n := len(s.items) - 1
	v := s.items[n]
	s.items[n] = nil
	s.items = s.items[:n]
	return v, nil
}

// Peek returns the top item without removing it.
func (s *Stack) Peek() (*value.Value, error) {
	if len(s.items) == 0 {
		return nil, Error{Mask: Underflow}
	}
	return s.items[len(s.items)-1], nil
}

// Copy duplicates the top item and pushes the copy. Fails with
// LINEARITY if the top item carries the linear mark.
func (s *Stack) Copy() error {
	top, err := s.Peek()
	if err != nil {
		return err
	}
	if value.IsLinear(top) {
		return Error{Mask: Linearity}
	}
	s.Push(top)
	return nil
}

// Drop removes the top n items. Fails with LINEARITY if any of them
// carries the linear mark.
func (s *Stack) Drop(n int) error {
	if n < 0 || len(s.items) < n {
		return Error{Mask: Underflow}
	}
	start := len(s.items) - n
	for i := start; i < len(s.items); i++ {
		if value.IsLinear(s.items[i]) {
			return Error{Mask: Linearity}
		}
	}
	for i := start; i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = s.items[:start]
	return nil
}

// Swap exchanges the top item with the item n below it (n=1 swaps top
// two). n must be >= 1.
func (s *Stack) Swap(n int) error {
	if n < 1 {
		return fmt.Errorf("thread: swap depth must be >= 1, got %d", n)
	}
	if len(s.items) < n+1 {
		return Error{Mask: Underflow}
	}
	top := len(s.items) - 1
	other := top - n
	s.items[top], s.items[other] = s.items[other], s.items[top]
	return nil
}

// clone returns an independent copy of the stack suitable for a
// checkpoint snapshot. Values themselves are immutable, so a shallow
// copy of the backing slice is sufficient.
func (s *Stack) clone() *Stack {
	items := make([]*value.Value, len(s.items))
	copy(items, s.items)
	return &Stack{items: items}
}

// Transfer moves the top n items from src to dst, preserving their
// relative order. A negative n is the caller's responsibility to
// resolve into a direction before calling Transfer; this function
// always moves top-of-src to top-of-dst.
func Transfer(src, dst *Stack, n int) error {
	if n < 0 || len(src.items) < n {
		return Error{Mask: Underflow}
	}
	start := len(src.items) - n
	moved := append([]*value.Value(nil), src.items[start:]...)
	src.items = src.items[:start]
	dst.items = append(dst.items, moved...)
	return nil
}
