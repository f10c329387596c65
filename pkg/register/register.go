// Package register implements the glas register store: a
// globally-addressable space of mutable cells keyed by fully-resolved
// namespace names, with per-register optimistic versioning and queue/bag
// access disciplines layered over the plain read/write/swap discipline.
package register

import (
	"errors"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dmbarbour/glas/pkg/metrics"
	"github.com/dmbarbour/glas/pkg/value"
)

// Errors surfaced by the register store. ErrConflict is returned by
// Commit and ErrQuantity by QueueRead and BagRead; no operation in this
// package returns ErrUncreated. pkg/thread does not turn them into
// error-mask bits: a failed Transaction.Commit makes Thread.Commit abort
// and return false.
var (
	ErrConflict  = errors.New("register: optimistic conflict at commit")
	ErrQuantity  = errors.New("register: insufficient items for requested quantity")
	ErrUncreated = errors.New("register: register has not been created in this volume")
)

// VolumeKind distinguishes the three addressing schemes for register
// identity.
type VolumeKind uint8

const (
	VolumeFresh VolumeKind = iota
	VolumeAssociative
	VolumeGlobal
)

// ID is a register's fully-resolved identity: a name within a volume,
// or an ordered pair of names for the associative volume.
type ID struct {
	Volume VolumeKind
	A, B   string
}

// Fresh constructs a fresh-volume register identity.
func Fresh(name string) ID { return ID{Volume: VolumeFresh, A: name} }

// Assoc constructs an associative-volume identity from an ordered pair
// of resolved register names.
func Assoc(a, b string) ID { return ID{Volume: VolumeAssociative, A: a, B: b} }

// Global constructs a runtime-global-volume identity.
func Global(name string) ID { return ID{Volume: VolumeGlobal, A: name} }

// Discipline names the three access shapes a register can be used
// under. A Register does not record a discipline: nothing in this
// package fixes or checks one, and accesses are checked against each
// other only through the conflict matrix.
type Discipline uint8

const (
	DisciplinePlain Discipline = iota // read/write/swap
	DisciplineQueue
	DisciplineBag
)

// versionEntry records the access modes applied by one completed commit
// against a register, so a later committer can re-check the conflict
// matrix against committers it raced with rather than assuming any
// version bump is automatically a conflict (which would wrongly reject
// e.g. two concurrent queue-writes against the same register).
type versionEntry struct {
	version uint64
	modes   mapset.Set[AccessMode]
}

// historyDepth bounds how many versionEntry records a register retains.
// A transaction whose snapshot predates the oldest retained entry is
// conservatively treated as conflicting at commit (so an extremely
// long-lived transaction can starve under high contention on the same
// register).
const historyDepth = 256

// Register is one logically-infinite-namespace cell: a single committed
// Value plus a version counter. Queue and bag access are not separate
// storage: they are conventions for reading/mutating this same Value as
// a list (a queue-write appends to the tail, a bag-read removes a
// non-deterministically chosen item — both operate on the register's
// one value, via Cons/Uncons/Concat from pkg/value).
type Register struct {
	mu      sync.Mutex
	id      ID
	value   *value.Value // committed value (Leaf if never written)
	version uint64
	history []versionEntry
}

func newRegister(id ID) *Register {
	return &Register{id: id, value: value.Leaf()}
}

// pushHistoryLocked records that a commit touching modes has just
// raised the register to its current version. Caller must hold mu.
func (r *Register) pushHistoryLocked(modes mapset.Set[AccessMode]) {
	r.history = append(r.history, versionEntry{version: r.version, modes: modes.Clone()})
	if len(r.history) > historyDepth {
		r.history = r.history[len(r.history)-historyDepth:]
	}
}

// Store is a volume-spanning collection of lazily-materialized
// registers: a register is created on its first access by a
// transaction (Exists does not create one).
type Store struct {
	mu      sync.RWMutex
	regs    map[ID]*Register
	metrics *metrics.RuntimeMetrics
}

// NewStore creates an empty in-memory register store. m may be nil.
func NewStore(m *metrics.RuntimeMetrics) *Store {
	return &Store{regs: make(map[ID]*Register), metrics: m}
}

func (s *Store) register(id ID) *Register {
	s.mu.RLock()
	r, ok := s.regs[id]
	s.mu.RUnlock()
	if ok {
		return r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.regs[id]; ok {
		return r
	}
	r = newRegister(id)
	s.regs[id] = r
	return r
}
