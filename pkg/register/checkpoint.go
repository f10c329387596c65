package register

import "github.com/dmbarbour/glas/pkg/value"

// Snapshot captures a Transaction's buffered register effects at a point
// in time, so pkg/thread's checkpoint stack can rewind pending register
// writes without discarding the whole step. A snapshot is just "how many
// journal entries existed, and what touched looked like", and restoring
// replays the journal backwards to that mark.
type Snapshot struct {
	touched   map[ID]touchRecord
	journalAt int
}

// Snapshot records tx's current buffered state. Restore(s) later rewinds
// to exactly this point.
func (tx *Transaction) Snapshot() Snapshot {
	touched := make(map[ID]touchRecord, len(tx.touched))
	for id, tr := range tx.touched {
		cp := *tr
		cp.modes = tr.modes.Clone()
		cp.queueWriteItems = append([]*value.Value(nil), tr.queueWriteItems...)
		touched[id] = cp
	}
	return Snapshot{touched: touched, journalAt: len(tx.journal)}
}

// Restore reverts every eagerly-applied bag effect recorded since s, in
// LIFO order, and replaces the buffered plain/queue state with exactly
// what it was at snapshot time.
func (tx *Transaction) Restore(s Snapshot) {
	for i := len(tx.journal) - 1; i >= s.journalAt; i-- {
		tx.journal[i].revert()
	}
	tx.journal = tx.journal[:s.journalAt]

	touched := make(map[ID]*touchRecord, len(s.touched))
	for id, tr := range s.touched {
		cp := tr
		touched[id] = &cp
	}
	tx.touched = touched
}
