package register

import (
	"errors"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dmbarbour/glas/pkg/value"
)

// touchRecord is a transaction's private, copy-on-write view of one
// register it has accessed this step. localValue starts as a snapshot
// of the register's committed value and is updated in place by every
// subsequent op this transaction applies to the register, so a later
// Read within the same step observes its own prior writes without
// touching shared state.
type touchRecord struct {
	reg             *Register
	modes           mapset.Set[AccessMode]
	snapshotVersion uint64
	localValue      *value.Value

	overwrite       bool          // Write or Swap touched this register
	queueReadCount  int           // items popped by QueueRead this step, net of QueueUnread
	queueWriteItems []*value.Value // items appended by QueueWrite this step, in order
}

// journalEntry undoes one eagerly-applied bag mutation on Abort. Only
// bag accesses need a journal: plain and queue accesses are buffered in
// touchRecord and never touch shared state until Commit, so aborting
// them is just discarding the Transaction.
type journalEntry interface {
	revert()
}

type bagReadUndo struct {
	reg  *Register
	item *value.Value
}

func (u bagReadUndo) revert() {
	u.reg.mu.Lock()
	u.reg.value = value.Cons(u.item, u.reg.value)
	u.reg.mu.Unlock()
}

type bagWriteUndo struct {
	reg *Register
}

func (u bagWriteUndo) revert() {
	u.reg.mu.Lock()
	if _, tail, ok := value.Uncons(u.reg.value); ok {
		u.reg.value = tail
	}
	u.reg.mu.Unlock()
}

// Transaction is one step's worth of register accesses: an isolated,
// optimistic view of every register it touches, applied atomically on
// Commit or discarded on Abort.
type Transaction struct {
	store   *Store
	touched map[ID]*touchRecord
	journal []journalEntry
	done    bool
}

// NewTransaction opens a fresh transaction against store.
func (s *Store) NewTransaction() *Transaction {
	return &Transaction{store: s, touched: make(map[ID]*touchRecord)}
}

func (tx *Transaction) touch(reg *Register, mode AccessMode) *touchRecord {
	tr, ok := tx.touched[reg.id]
	if !ok {
		reg.mu.Lock()
		v, ver := reg.value, reg.version
		reg.mu.Unlock()
		tr = &touchRecord{reg: reg, modes: mapset.NewSet[AccessMode](), snapshotVersion: ver, localValue: v}
		tx.touched[reg.id] = tr
	}
	tr.modes.Add(mode)
	return tr
}

// Read returns the register's current value as observed by this
// transaction.
func (tx *Transaction) Read(id ID) (*value.Value, error) {
	tr := tx.touch(tx.store.register(id), AccessRead)
	return tr.localValue, nil
}

// Write replaces the register's value, buffered until Commit.
func (tx *Transaction) Write(id ID, v *value.Value) error {
	tr := tx.touch(tx.store.register(id), AccessWrite)
	tr.localValue = v
	tr.overwrite = true
	return nil
}

// Swap replaces the register's value and returns the prior value, both
// effective within this transaction.
func (tx *Transaction) Swap(id ID, v *value.Value) (*value.Value, error) {
	tr := tx.touch(tx.store.register(id), AccessSwap)
	old := tr.localValue
	tr.localValue = v
	tr.overwrite = true
	return old, nil
}

// QueueWrite appends item to the tail of the register's value. Writes
// from many concurrent transactions never conflict with each other:
// each is merged against the register's value at its own commit time
// rather than validated against a snapshot.
func (tx *Transaction) QueueWrite(id ID, item *value.Value) error {
	tr := tx.touch(tx.store.register(id), AccessQueueWrite)
	tr.localValue = value.Snoc(tr.localValue, item)
	tr.queueWriteItems = append(tr.queueWriteItems, item)
	return nil
}

// QueueRead removes and returns the first n items from the register's
// value, or fails with ErrQuantity if fewer than n are available.
func (tx *Transaction) QueueRead(id ID, n int) (*value.Value, error) {
	tr := tx.touch(tx.store.register(id), AccessQueueRead)
	if value.Len(tr.localValue) < n {
		return nil, ErrQuantity
	}
	head, tail := value.SplitAt(tr.localValue, n)
	tr.localValue = tail
	tr.queueReadCount += n
	return head, nil
}

// QueueUnread pushes items back onto the head of the register's value,
// undoing a QueueRead earlier in the same step.
func (tx *Transaction) QueueUnread(id ID, items *value.Value) error {
	tr := tx.touch(tx.store.register(id), AccessQueueRead)
	tr.localValue = value.Concat(items, tr.localValue)
	n := value.Len(items)
	if tr.queueReadCount < n {
		tr.queueReadCount = 0
	} else {
		tr.queueReadCount -= n
	}
	return nil
}

// BagRead removes and returns a non-deterministically chosen item from
// the register's value (implemented as the head, since bag order is
// defined to be irrelevant), or fails with ErrQuantity if empty. Unlike
// the plain/queue accessors, this applies immediately against shared
// state under the register's lock rather than buffering until Commit:
// since ordering is irrelevant, concurrent bag-reads must all succeed
// and each must observe a distinct item, which eager allocation
// guarantees structurally. A later Abort reverts it via the journal.
func (tx *Transaction) BagRead(id ID) (*value.Value, error) {
	reg := tx.store.register(id)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	tr, ok := tx.touched[reg.id]
	if !ok {
		tr = &touchRecord{reg: reg, modes: mapset.NewSet[AccessMode](), snapshotVersion: reg.version, localValue: reg.value}
		tx.touched[reg.id] = tr
	}
	tr.modes.Add(AccessBagRead)

	head, tail, ok := value.Uncons(reg.value)
	if !ok {
		return nil, ErrQuantity
	}
	reg.value = tail
	reg.version++
	reg.pushHistoryLocked(mapset.NewSet(AccessBagRead))
	tr.localValue = tail
	tx.journal = append(tx.journal, bagReadUndo{reg: reg, item: head})
	return head, nil
}

// BagWrite adds item to the register's value, applied immediately for
// the same reason BagRead is.
func (tx *Transaction) BagWrite(id ID, item *value.Value) error {
	reg := tx.store.register(id)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	tr, ok := tx.touched[reg.id]
	if !ok {
		tr = &touchRecord{reg: reg, modes: mapset.NewSet[AccessMode](), snapshotVersion: reg.version, localValue: reg.value}
		tx.touched[reg.id] = tr
	}
	tr.modes.Add(AccessBagWrite)

	reg.value = value.Cons(item, reg.value)
	reg.version++
	reg.pushHistoryLocked(mapset.NewSet(AccessBagWrite))
	tr.localValue = reg.value
	tx.journal = append(tx.journal, bagWriteUndo{reg: reg})
	return nil
}

func idLess(a, b ID) bool {
	if a.Volume != b.Volume {
		return a.Volume < b.Volume
	}
	if a.A != b.A {
		return a.A < b.A
	}
	return a.B < b.B
}

// Commit validates every touched register against the conflict matrix
// and, if none conflict, applies this transaction's effects atomically:
// a step commits all its register effects together, or none. Registers
// are locked in a fixed global order to avoid deadlock against a
// concurrently committing transaction.
func (tx *Transaction) Commit() error {
	if tx.done {
		return errors.New("register: transaction already finalized")
	}
	start := time.Now()

	ids := make([]ID, 0, len(tx.touched))
	for id := range tx.touched {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })

	// A failed commit reverts its eager bag mutations once the register
	// locks below have been released.
	failed := false
	defer func() {
		if failed {
			for i := len(tx.journal) - 1; i >= 0; i-- {
				tx.journal[i].revert()
			}
		}
	}()
	for _, id := range ids {
		tx.touched[id].reg.mu.Lock()
	}
	defer func() {
		for _, id := range ids {
			tx.touched[id].reg.mu.Unlock()
		}
	}()

	for _, id := range ids {
		tr := tx.touched[id]
		if h := tr.reg.history; len(h) > 0 && h[0].version > tr.snapshotVersion+1 {
			failed = true
			tx.recordAbort("conflict")
			return ErrConflict
		}
		for _, h := range tr.reg.history {
			if h.version <= tr.snapshotVersion {
				continue
			}
			for _, m := range tr.modes.ToSlice() {
				if conflictsWithSet(m, h.modes) {
					failed = true
					tx.recordAbort("conflict")
					return ErrConflict
				}
			}
		}
	}

	for _, id := range ids {
		tr := tx.touched[id]
		reg := tr.reg
		if tr.overwrite {
			reg.value = tr.localValue
		} else {
			cur := reg.value
			if tr.queueReadCount > 0 {
				if value.Len(cur) < tr.queueReadCount {
					failed = true
					tx.recordAbort("conflict")
					return ErrConflict
				}
				cur = value.Drop(tr.queueReadCount, cur)
			}
			if len(tr.queueWriteItems) > 0 {
				cur = value.Concat(cur, value.NewArray(tr.queueWriteItems))
			}
			reg.value = cur
		}
		reg.version++
		reg.pushHistoryLocked(tr.modes)
	}

	tx.done = true
	if tx.store.metrics != nil {
		tx.store.metrics.Commits.WithLabelValues().Inc()
		tx.store.metrics.CommitMicros.WithLabelValues().Observe(float64(time.Since(start).Microseconds()))
	}
	return nil
}

func (tx *Transaction) recordAbort(reason string) {
	tx.done = true
	if tx.store.metrics != nil {
		tx.store.metrics.Aborts.WithLabelValues(reason).Inc()
		tx.store.metrics.Conflicts.WithLabelValues(reason).Inc()
	}
}

// Abort discards this transaction's buffered plain/queue effects and
// reverts any eagerly-applied bag mutations, in LIFO order.
func (tx *Transaction) Abort() {
	if tx.done {
		return
	}
	for i := len(tx.journal) - 1; i >= 0; i-- {
		tx.journal[i].revert()
	}
	tx.done = true
	if tx.store.metrics != nil {
		tx.store.metrics.Aborts.WithLabelValues("explicit").Inc()
	}
}
