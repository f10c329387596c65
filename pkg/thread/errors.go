// Package thread implements the step engine: a thread's stack, stash,
// namespace, checkpoints, on-commit/on-abort hooks, and the commit/abort
// protocol wired atop pkg/register and pkg/namespace.
package thread

import (
	"fmt"
	"strings"
)

// Mask is the monotone OR-accumulating error register. Once a bit is
// set it stays set until abort() clears the recoverable bits;
// UNRECOVERABLE persists across abort.
type Mask uint32

// Error flags, one bit each. Order here has no significance beyond
// giving every flag a stable bit position.
const (
	Unrecoverable Mask = 1 << iota
	Conflict
	Uncreated
	Quota
	Client
	ErrorOp
	Linearity
	DataSealed
	NameUndef
	Ephemerality
	Atomicity
	Assert
	DataType
	DataQty
	Underflow
	Arity
)

var flagNames = []struct {
	bit  Mask
	name string
}{
	{Unrecoverable, "UNRECOVERABLE"},
	{Conflict, "CONFLICT"},
	{Uncreated, "UNCREATED"},
	{Quota, "QUOTA"},
	{Client, "CLIENT"},
	{ErrorOp, "ERROR_OP"},
	{Linearity, "LINEARITY"},
	{DataSealed, "DATA_SEALED"},
	{NameUndef, "NAME_UNDEF"},
	{Ephemerality, "EPHEMERALITY"},
	{Atomicity, "ATOMICITY"},
	{Assert, "ASSERT"},
	{DataType, "DATA_TYPE"},
	{DataQty, "DATA_QTY"},
	{Underflow, "UNDERFLOW"},
	{Arity, "ARITY"},
}

// recoverableMask is every flag abort() clears; UNRECOVERABLE is the one
// bit that survives an abort.
const recoverableMask = Conflict | Uncreated | Quota | Client | ErrorOp |
	Linearity | DataSealed | NameUndef | Ephemerality | Atomicity |
	Assert | DataType | DataQty | Underflow | Arity

// transientMask are the errors for which a retry may succeed.
const transientMask = Conflict | Quota | Uncreated

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for _, f := range flagNames {
		if m&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, "|")
}

// Has reports whether every bit in sub is set in m.
func (m Mask) Has(sub Mask) bool { return m&sub == sub }

// Any reports whether m shares any bit with sub.
func (m Mask) Any(sub Mask) bool { return m&sub != 0 }

// IsTransient reports whether m consists entirely of transient flags
// (CONFLICT, QUOTA, or UNCREATED of an ancestor) and is therefore a
// candidate for a silent runtime retry of a pure callback wrapper.
func (m Mask) IsTransient() bool { return m != 0 && m&^transientMask == 0 }

// set returns m with sub's bits OR-accumulated in — the mask only ever
// grows within a step.
func (m Mask) set(sub Mask) Mask { return m | sub }

// clearRecoverable drops every bit abort() is allowed to clear, keeping
// UNRECOVERABLE (and any future non-recoverable bit) intact.
func (m Mask) clearRecoverable() Mask { return m &^ recoverableMask }

// Error adapts a Mask to the error interface so step operations can
// return it directly alongside a nil/non-nil Go error for Go-level
// plumbing failures (malformed arguments, I/O) that are distinct from
// the thread's own error register.
type Error struct{ Mask Mask }

func (e Error) Error() string { return fmt.Sprintf("thread: step error mask %s", e.Mask) }
