package register

import (
	"sync"
	"testing"

	"github.com/dmbarbour/glas/pkg/value"
)

func TestReadOfUnwrittenRegisterIsLeaf(t *testing.T) {
	s := NewStore(nil)
	tx := s.NewTransaction()
	v, err := tx.Read(Fresh("x"))
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(v, value.Leaf()) {
		t.Fatal("an unwritten register must observe as Leaf")
	}
}

func TestWriteThenReadSameTransaction(t *testing.T) {
	s := NewStore(nil)
	tx := s.NewTransaction()
	id := Fresh("x")
	if err := tx.Write(id, value.PushInt(42)); err != nil {
		t.Fatal(err)
	}
	v, _ := tx.Read(id)
	if n, ok := value.PeekInt(v); !ok || n != 42 {
		t.Fatalf("expected 42, got %v ok=%v", n, ok)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteIsInvisibleUntilCommit(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("x")

	txA := s.NewTransaction()
	txA.Write(id, value.PushInt(1))

	txB := s.NewTransaction()
	v, _ := txB.Read(id)
	if !value.Equal(v, value.Leaf()) {
		t.Fatal("an uncommitted write must not be visible to another transaction")
	}

	if err := txA.Commit(); err != nil {
		t.Fatal(err)
	}
	txC := s.NewTransaction()
	v2, _ := txC.Read(id)
	if n, ok := value.PeekInt(v2); !ok || n != 1 {
		t.Fatal("a committed write must be visible to a later transaction")
	}
}

// Two concurrent steps both reading and writing the same register: at
// most one commits.
func TestConcurrentReadWriteAtMostOneCommits(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("counter")

	seed := s.NewTransaction()
	seed.Write(id, value.PushInt(0))
	if err := seed.Commit(); err != nil {
		t.Fatal(err)
	}

	txA := s.NewTransaction()
	txB := s.NewTransaction()

	va, _ := txA.Read(id)
	na, _ := value.PeekInt(va)
	txA.Write(id, value.PushInt(na+1))

	vb, _ := txB.Read(id)
	nb, _ := value.PeekInt(vb)
	txB.Write(id, value.PushInt(nb+1))

	errA := txA.Commit()
	errB := txB.Commit()

	committed := 0
	if errA == nil {
		committed++
	}
	if errB == nil {
		committed++
	}
	if committed != 1 {
		t.Fatalf("expected exactly one of two racing read-write transactions to commit, got %d (errA=%v errB=%v)", committed, errA, errB)
	}
}

// N concurrent queue-writers all commit, and the queue contains every
// item exactly once afterward.
func TestConcurrentQueueWritesAllCommit(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("q")
	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := s.NewTransaction()
			tx.QueueWrite(id, value.PushInt(int64(i)))
			errs[i] = tx.Commit()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("queue-writer %d unexpectedly failed to commit: %v", i, err)
		}
	}

	final := s.NewTransaction()
	items, err := final.QueueRead(id, n)
	if err != nil {
		t.Fatal(err)
	}
	seen := make([]bool, n)
	for _, item := range value.ToSlice(items) {
		v, ok := value.PeekInt(item)
		if !ok || v < 0 || v >= n {
			t.Fatalf("unexpected queue item %v", item)
		}
		seen[v] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("item %d missing from queue after %d concurrent queue-writes", i, n)
		}
	}
}

// N concurrent bag-readers drawing from a bag of at least N items all
// commit, each observing a distinct item.
func TestConcurrentBagReadsAllCommitDistinctItems(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("bag")
	const n = 16

	seed := s.NewTransaction()
	for i := 0; i < n; i++ {
		seed.BagWrite(id, value.PushInt(int64(i)))
	}
	if err := seed.Commit(); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]int64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := s.NewTransaction()
			item, err := tx.BagRead(id)
			if err != nil {
				errs[i] = err
				return
			}
			v, _ := value.PeekInt(item)
			results[i] = v
			errs[i] = tx.Commit()
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("bag-reader %d unexpectedly failed: %v", i, err)
		}
		if seen[results[i]] {
			t.Fatalf("item %d observed by more than one bag-reader", results[i])
		}
		seen[results[i]] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct items, got %d", n, len(seen))
	}
}

func TestQueueReadFailsOnInsufficientItems(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("q")
	tx := s.NewTransaction()
	tx.QueueWrite(id, value.PushInt(1))
	if _, err := tx.QueueRead(id, 2); err != ErrQuantity {
		t.Fatalf("expected ErrQuantity, got %v", err)
	}
}

func TestQueueUnreadRestoresHead(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("q")
	seed := s.NewTransaction()
	seed.QueueWrite(id, value.PushInt(1))
	seed.QueueWrite(id, value.PushInt(2))
	if err := seed.Commit(); err != nil {
		t.Fatal(err)
	}

	tx := s.NewTransaction()
	popped, err := tx.QueueRead(id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.QueueUnread(id, popped); err != nil {
		t.Fatal(err)
	}
	v, _ := tx.Read(id)
	head, _, _ := value.Uncons(v)
	if n, _ := value.PeekInt(head); n != 1 {
		t.Fatalf("queue-unread should restore the popped item to the head, got %v", n)
	}
}

func TestBagReadFailsWhenEmpty(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("bag")
	tx := s.NewTransaction()
	if _, err := tx.BagRead(id); err != ErrQuantity {
		t.Fatalf("expected ErrQuantity on empty bag, got %v", err)
	}
}

func TestAbortRevertsEagerBagMutation(t *testing.T) {
	s := NewStore(nil)
	id := Fresh("bag")
	seed := s.NewTransaction()
	seed.BagWrite(id, value.PushInt(7))
	if err := seed.Commit(); err != nil {
		t.Fatal(err)
	}

	tx := s.NewTransaction()
	if _, err := tx.BagRead(id); err != nil {
		t.Fatal(err)
	}
	tx.Abort()

	after := s.NewTransaction()
	item, err := after.BagRead(id)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := value.PeekInt(item); n != 7 {
		t.Fatalf("aborting a bag-read must return the item to the bag, got %v", n)
	}
}

func TestAssocAndGlobalIdentityDistinctFromFresh(t *testing.T) {
	a := Fresh("x")
	b := Assoc("x", "")
	c := Global("x")
	if a == b || a == c || b == c {
		t.Fatal("fresh/associative/global register identities with the same name must not collide")
	}
}
