package register

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/dmbarbour/glas/pkg/value"
)

// PersistentStore is a register store whose committed values are
// durable on disk. It wraps the same in-memory Store (so uncommitted
// transactional isolation, the conflict matrix and history all work
// exactly as in-memory) and adds a pebble-backed write-behind: every
// successful CommitPersist also writes a batch of shrub-encoded
// key/value pairs (a plain Transaction.Commit is not written to disk),
// and on startup the in-memory Store is rehydrated
// from the last snapshot on disk.
type PersistentStore struct {
	*Store
	db *pebble.DB
}

// OpenPersistentStore opens (creating if absent) a pebble database at
// dir and rehydrates an in-memory Store from it.
func OpenPersistentStore(dir string) (*PersistentStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("register: open pebble store: %w", err)
	}
	ps := &PersistentStore{Store: NewStore(nil), db: db}
	if err := ps.rehydrate(); err != nil {
		db.Close()
		return nil, err
	}
	return ps, nil
}

func idKeyBytes(id ID) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(id.Volume))
	buf.WriteString(id.A)
	buf.WriteByte(0)
	buf.WriteString(id.B)
	return buf.Bytes()
}

func (ps *PersistentStore) rehydrate() error {
	iter, err := ps.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return fmt.Errorf("register: iterate pebble store: %w", err)
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		val := append([]byte(nil), iter.Value()...)
		id, ok := parseIDKey(key)
		if !ok {
			continue
		}
		v, err := value.ShrubDecode(val)
		if err != nil {
			return fmt.Errorf("register: decode persisted register %v: %w", id, err)
		}
		r := ps.Store.register(id)
		r.mu.Lock()
		r.value = v
		r.version = 1
		r.mu.Unlock()
	}
	return iter.Error()
}

func parseIDKey(key []byte) (ID, bool) {
	if len(key) == 0 {
		return ID{}, false
	}
	volume := VolumeKind(key[0])
	rest := key[1:]
	sep := bytes.IndexByte(rest, 0)
	if sep < 0 {
		return ID{Volume: volume, A: string(rest)}, true
	}
	return ID{Volume: volume, A: string(rest[:sep]), B: string(rest[sep+1:])}, true
}

// CommitPersist is Transaction.Commit followed by a durable write of
// every register this transaction touched, as one pebble batch so a
// crash between the in-memory commit and the flush cannot leave the
// on-disk state straddling two versions.
func (ps *PersistentStore) CommitPersist(tx *Transaction) error {
	touched := make([]ID, 0, len(tx.touched))
	for id := range tx.touched {
		touched = append(touched, id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	batch := ps.db.NewBatch()
	for _, id := range touched {
		r := ps.Store.register(id)
		r.mu.Lock()
		enc := value.ShrubEncode(r.value)
		r.mu.Unlock()
		if err := batch.Set(idKeyBytes(id), enc, nil); err != nil {
			return fmt.Errorf("register: stage persisted register %v: %w", id, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("register: flush persisted registers: %w", err)
	}
	return nil
}

// Close releases the underlying pebble database.
func (ps *PersistentStore) Close() error {
	return ps.db.Close()
}
