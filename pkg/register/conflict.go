package register

import mapset "github.com/deckarep/golang-set/v2"

// AccessMode is one of the seven ways a transaction can touch a
// register within a step.
type AccessMode uint8

const (
	AccessRead AccessMode = iota
	AccessWrite
	AccessSwap
	AccessQueueRead
	AccessQueueWrite
	AccessBagRead
	AccessBagWrite

	numAccessModes = int(AccessBagWrite) + 1
)

func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessSwap:
		return "swap"
	case AccessQueueRead:
		return "queue-read"
	case AccessQueueWrite:
		return "queue-write"
	case AccessBagRead:
		return "bag-read"
	case AccessBagWrite:
		return "bag-write"
	default:
		return "unknown"
	}
}

// conflictMatrix entry [a][b] is true iff a T1-access of mode a and a
// concurrent T2-access of mode b to the same register conflict. Pairs
// of disciplines that cannot coexist on one register (e.g. queue-read
// vs bag-read) are conservatively treated as conflicting. The table is
// symmetric by construction.
var conflictMatrix = [numAccessModes][numAccessModes]bool{
	AccessRead:       {AccessRead: false, AccessWrite: true, AccessSwap: true, AccessQueueRead: true, AccessQueueWrite: false, AccessBagRead: true, AccessBagWrite: false},
	AccessWrite:      {AccessRead: true, AccessWrite: true, AccessSwap: true, AccessQueueRead: true, AccessQueueWrite: true, AccessBagRead: true, AccessBagWrite: true},
	AccessSwap:       {AccessRead: true, AccessWrite: true, AccessSwap: true, AccessQueueRead: true, AccessQueueWrite: true, AccessBagRead: true, AccessBagWrite: true},
	AccessQueueRead:  {AccessRead: true, AccessWrite: true, AccessSwap: true, AccessQueueRead: true, AccessQueueWrite: false, AccessBagRead: true, AccessBagWrite: true},
	AccessQueueWrite: {AccessRead: false, AccessWrite: true, AccessSwap: true, AccessQueueRead: false, AccessQueueWrite: false, AccessBagRead: true, AccessBagWrite: true},
	AccessBagRead:    {AccessRead: true, AccessWrite: true, AccessSwap: true, AccessQueueRead: true, AccessQueueWrite: true, AccessBagRead: false, AccessBagWrite: false},
	AccessBagWrite:   {AccessRead: false, AccessWrite: true, AccessSwap: true, AccessQueueRead: true, AccessQueueWrite: true, AccessBagRead: false, AccessBagWrite: false},
}

// Conflicts reports whether accesses a and b to the same register, made
// by two concurrently open transactions, conflict.
func Conflicts(a, b AccessMode) bool { return conflictMatrix[a][b] }

// conflictsWithSet reports whether mode a conflicts with any mode in modes.
func conflictsWithSet(a AccessMode, modes mapset.Set[AccessMode]) bool {
	for _, b := range modes.ToSlice() {
		if Conflicts(a, b) {
			return true
		}
	}
	return false
}
