package thread

import (
	"sync"
	"time"

	"github.com/dmbarbour/glas/pkg/log"
	"github.com/dmbarbour/glas/pkg/metrics"
	"github.com/dmbarbour/glas/pkg/namespace"
	"github.com/dmbarbour/glas/pkg/refcount"
	"github.com/dmbarbour/glas/pkg/register"
)

// state is the step's lifecycle: OPEN while executing, COMMITTING or
// ABORTING while the step is being closed out, then back to OPEN for the
// next step.
type state uint8

const (
	stateOpen state = iota
	stateCommitting
	stateAborting
)

// commitHook is one on-commit side effect, keyed by the queue register
// identity it is ordered against.
type commitHook struct {
	queue register.ID
	fn    func()
}

// Thread is one logically single-threaded cooperative actor: its own
// stack, stash, namespace, checkpoint stack, and pending hooks, driving
// a register.Transaction through the commit/abort protocol.
type Thread struct {
	mu sync.Mutex

	store   *register.Store
	drainer *Drainer
	log     *log.Logger
	metrics *metrics.RuntimeMetrics

	tx    *register.Transaction
	stack *Stack
	stash *Stack
	env   *namespace.Env

	cp checkpoints

	errMask     Mask
	state       state
	atomicDepth int
	uncreated   bool
	debugName   string

	onAbort       []func()
	onCommitHooks []commitHook

	stepDeadline       time.Time
	checkpointDeadline time.Time
}

// NewThread opens a fresh step against store, starting from env.
// drainer may be nil (named on-commit queues are then run inline, same
// as the null queue — acceptable for a single-threaded host driving one
// thread at a time, but callers expecting true background draining
// should share a *Drainer across every thread backed by the same store).
func NewThread(store *register.Store, drainer *Drainer, env *namespace.Env, lg *log.Logger, m *metrics.RuntimeMetrics) *Thread {
	return &Thread{
		store:   store,
		drainer: drainer,
		log:     lg,
		metrics: m,
		tx:      store.NewTransaction(),
		stack:   NewStack(),
		stash:   NewStack(),
		env:     env,
	}
}

// Stack returns the thread's data stack.
func (t *Thread) Stack() *Stack { return t.stack }

// Stash returns the thread's stash.
func (t *Thread) Stash() *Stack { return t.stash }

// Env returns the thread's current namespace.
func (t *Thread) Env() *namespace.Env { return t.env }

// SetEnv replaces the thread's current namespace (the result of a
// definition operation such as ns_data_def / ns_eval_def / ns_tl_apply).
func (t *Thread) SetEnv(e *namespace.Env) { t.env = e }

// Transaction returns the thread's underlying register transaction, for
// call()/register op implementations that need to Read/Write/etc.
func (t *Thread) Transaction() *register.Transaction { return t.tx }

// SetDebugName records a host-assigned name for diagnostics.
func (t *Thread) SetDebugName(name string) { t.debugName = name }

// DebugName returns the host-assigned name, if any.
func (t *Thread) DebugName() string { return t.debugName }

// ErrorMask returns the step's current error register.
func (t *Thread) ErrorMask() Mask {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMask
}

// Raise OR-accumulates flags into the error register. Any non-zero mask
// prevents commit.
func (t *Thread) Raise(flags Mask) {
	t.mu.Lock()
	t.errMask = t.errMask.set(flags)
	t.mu.Unlock()
}

// IsUncreated reports whether this thread has been cancelled: a fork
// whose origin aborted before the fork ran, or a choice clone that lost
// the race. Further operations on an uncreated thread are expected to
// no-op.
func (t *Thread) IsUncreated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.uncreated
}

// MarkUncreated cancels the thread: every further operation is expected
// to check IsUncreated and no-op, and the error register carries
// Uncreated so an eventual commit attempt fails.
func (t *Thread) MarkUncreated() {
	t.mu.Lock()
	t.uncreated = true
	t.errMask = t.errMask.set(Uncreated)
	t.mu.Unlock()
}

// EnterAtomic pushes an atomic mark (call_atomic). Nested calls nest;
// the thread is atomic as long as atomicDepth > 0.
func (t *Thread) EnterAtomic() { t.atomicDepth++ }

// LeaveAtomic pops one atomic mark.
func (t *Thread) LeaveAtomic() {
	if t.atomicDepth > 0 {
		t.atomicDepth--
	}
}

// InAtomic reports whether the thread is currently inside a call_atomic
// region.
func (t *Thread) InAtomic() bool { return t.atomicDepth > 0 }

// StepTimeout sets a deadline after which the step is marked QUOTA. A
// zero duration cancels the deadline.
func (t *Thread) StepTimeout(us int64) {
	if us <= 0 {
		t.stepDeadline = time.Time{}
		return
	}
	t.stepDeadline = time.Now().Add(time.Duration(us) * time.Microsecond)
}

// CheckpointTimeout sets a deadline after which the current checkpoint
// is marked QUOTA. A zero duration cancels it.
func (t *Thread) CheckpointTimeout(us int64) {
	if us <= 0 {
		t.checkpointDeadline = time.Time{}
		return
	}
	t.checkpointDeadline = time.Now().Add(time.Duration(us) * time.Microsecond)
}

// checkDeadlines runs at the start of Commit; an expired deadline raises
// Quota. Timeouts are best-effort: a deadline that expires after this
// check, during the final commit phase, is not caught.
func (t *Thread) checkDeadlines() {
	now := time.Now()
	if !t.stepDeadline.IsZero() && now.After(t.stepDeadline) {
		t.Raise(Quota)
	}
	if !t.checkpointDeadline.IsZero() && now.After(t.checkpointDeadline) {
		t.Raise(Quota)
	}
}

// OnCommit enqueues an after-commit side effect keyed by queue. Use
// NullQueue to run fn inline before commit() returns; any other
// register.ID drains on a worker goroutine dedicated to that queue, in
// insertion order.
func (t *Thread) OnCommit(queue register.ID, fn func()) {
	t.onCommitHooks = append(t.onCommitHooks, commitHook{queue: queue, fn: fn})
}

// OnAbort pushes fn onto the LIFO on-abort stack.
func (t *Thread) OnAbort(fn func()) {
	t.onAbort = append(t.onAbort, fn)
}

// OnAbortDecrRef is the convenience on-abort variant that decrements h's
// refcount if the step aborts.
func (t *Thread) OnAbortDecrRef(h *refcount.Handle) {
	t.OnAbort(func() { h.Drop() })
}

// CheckpointSave snapshots current state, replacing the top frame. On
// failure (a non-zero error mask at the time of the call), no snapshot
// is recorded.
func (t *Thread) CheckpointSave() error {
	if m := t.ErrorMask(); m != 0 {
		return Error{Mask: m}
	}
	t.cp.replaceTop(t.snapshot())
	t.checkpointDeadline = time.Time{}
	return nil
}

// CheckpointPush snapshots current state as a new frame.
func (t *Thread) CheckpointPush() error {
	if m := t.ErrorMask(); m != 0 {
		return Error{Mask: m}
	}
	t.cp.push(t.snapshot())
	t.checkpointDeadline = time.Time{}
	return nil
}

// CheckpointDrop pops the top snapshot without restoring it.
func (t *Thread) CheckpointDrop() error {
	if !t.cp.drop() {
		return Error{Mask: ErrorOp}
	}
	t.checkpointDeadline = time.Time{}
	return nil
}

// CheckpointLoad restores the top snapshot, running every on-abort hook
// registered since it was taken, in LIFO order.
func (t *Thread) CheckpointLoad() error {
	top, ok := t.cp.top()
	if !ok {
		return Error{Mask: ErrorOp}
	}
	for i := len(t.onAbort) - 1; i >= top.onAbortAt; i-- {
		t.onAbort[i]()
	}
	t.onAbort = t.onAbort[:top.onAbortAt]

	t.stack = top.stack.clone()
	t.stash = top.stash.clone()
	t.env = top.env
	t.tx.Restore(top.regSnap)
	t.atomicDepth = boolToDepth(top.atomic)
	t.checkpointDeadline = time.Time{}
	return nil
}

func boolToDepth(atomic bool) int {
	if atomic {
		return 1
	}
	return 0
}

func (t *Thread) snapshot() checkpoint {
	return checkpoint{
		stack:     t.stack.clone(),
		stash:     t.stash.clone(),
		env:       t.env,
		regSnap:   t.tx.Snapshot(),
		onAbortAt: len(t.onAbort),
		atomic:    t.atomicDepth > 0,
	}
}

// Commit attempts to close the step, returning true on success or false
// if the step aborted. On success: on-commit handlers run on their
// queues (the null queue inline, before Commit returns), register
// writes are applied, and undo snapshots are released. On failure,
// Commit behaves as Abort and returns false.
func (t *Thread) Commit() (bool, error) {
	t.checkDeadlines()
	if t.IsUncreated() {
		t.Raise(Uncreated)
	}
	if t.InAtomic() {
		t.Raise(Atomicity)
	}
	if m := t.ErrorMask(); m != 0 {
		t.Abort()
		return false, nil
	}

	t.state = stateCommitting
	if err := t.tx.Commit(); err != nil {
		t.state = stateAborting
		t.abortLocked()
		t.state = stateOpen
		return false, nil
	}

	for _, h := range t.onCommitHooks {
		if h.queue == NullQueue || t.drainer == nil {
			h.fn()
			continue
		}
		t.drainer.Enqueue(h.queue, h.fn)
	}
	t.onCommitHooks = nil
	t.onAbort = nil
	t.cp = checkpoints{}
	t.stepDeadline = time.Time{}
	t.checkpointDeadline = time.Time{}
	t.state = stateOpen
	t.tx = t.store.NewTransaction()
	if t.log != nil {
		t.log.Debug("thread commit", "name", t.debugName)
	}
	return true, nil
}

// Abort rewinds stack, stash, namespace, checkpoint stack, and pending
// register writes to the last committed state, then runs on-abort
// handlers in LIFO order.
func (t *Thread) Abort() {
	t.state = stateAborting
	t.abortLocked()
	t.state = stateOpen
}

func (t *Thread) abortLocked() {
	t.tx.Abort()
	for i := len(t.onAbort) - 1; i >= 0; i-- {
		t.onAbort[i]()
	}
	t.onAbort = nil
	t.onCommitHooks = nil
	t.cp = checkpoints{}
	t.errMask = t.errMask.clearRecoverable()
	t.atomicDepth = 0
	t.stepDeadline = time.Time{}
	t.checkpointDeadline = time.Time{}
	t.tx = t.store.NewTransaction()
	if t.log != nil {
		t.log.Debug("thread abort", "name", t.debugName)
	}
	if t.metrics != nil {
		t.metrics.Aborts.WithLabelValues("thread").Inc()
	}
}
