package thread

import (
	"sync"

	"github.com/dmbarbour/glas/pkg/register"
)

// NullQueue is the sentinel queue identity for on-commit hooks that run
// inline, synchronously, before commit() returns.
var NullQueue = register.ID{}

// Drainer dispatches named on-commit queues onto worker goroutines, one
// FIFO per queue register identity, draining strictly in insertion
// order. Shared across every Thread backed by the same register.Store,
// since a queue's ordering guarantee is about the queue identity, not
// any one thread. One drainer goroutine runs per queue, started lazily
// on first use and exiting once its queue empties.
type Drainer struct {
	mu    sync.Mutex
	lines map[register.ID]*queueLine
}

type queueLine struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

// NewDrainer returns an empty Drainer.
func NewDrainer() *Drainer {
	return &Drainer{lines: make(map[register.ID]*queueLine)}
}

// Enqueue appends fn to queue's FIFO and ensures exactly one goroutine is
// draining it.
func (d *Drainer) Enqueue(queue register.ID, fn func()) {
	d.mu.Lock()
	line, ok := d.lines[queue]
	if !ok {
		line = &queueLine{}
		d.lines[queue] = line
	}
	d.mu.Unlock()

	line.mu.Lock()
	line.pending = append(line.pending, fn)
	start := !line.running
	if start {
		line.running = true
	}
	line.mu.Unlock()

	if start {
		go line.drain()
	}
}

func (line *queueLine) drain() {
	for {
		line.mu.Lock()
		if len(line.pending) == 0 {
			line.running = false
			line.mu.Unlock()
			return
		}
		next := line.pending[0]
		line.pending = line.pending[1:]
		line.mu.Unlock()

		next()
	}
}
