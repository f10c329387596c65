package thread

import (
	"github.com/dmbarbour/glas/pkg/namespace"
	"github.com/dmbarbour/glas/pkg/register"
)

// checkpoint is one saved thread state: the stack and stash (cheap slice
// copies), the namespace Env (already copy-on-write), a register.Snapshot
// (a copy of the transaction's buffered per-register state), and enough
// bookkeeping to replay on-abort hooks
// registered since the snapshot was taken.
type checkpoint struct {
	stack     *Stack
	stash     *Stack
	env       *namespace.Env
	regSnap   register.Snapshot
	onAbortAt int // length of the on-abort stack at save time
	atomic    bool
}

// checkpoints is a LIFO stack of saved thread states.
type checkpoints struct {
	frames []checkpoint
}

func (c *checkpoints) save(cp checkpoint) { c.frames = append(c.frames, cp) }

// replaceTop overwrites the current top frame with cp (checkpoint_save),
// or appends if the stack is empty.
func (c *checkpoints) replaceTop(cp checkpoint) {
	if len(c.frames) == 0 {
		c.frames = append(c.frames, cp)
		return
	}
	c.frames[len(c.frames)-1] = cp
}

// push appends cp as a new frame (checkpoint_push).
func (c *checkpoints) push(cp checkpoint) { c.frames = append(c.frames, cp) }

// top returns the current top frame, if any.
func (c *checkpoints) top() (checkpoint, bool) {
	if len(c.frames) == 0 {
		return checkpoint{}, false
	}
	return c.frames[len(c.frames)-1], true
}

// drop pops the top frame without restoring it (checkpoint_drop).
func (c *checkpoints) drop() bool {
	if len(c.frames) == 0 {
		return false
	}
	c.frames = c.frames[:len(c.frames)-1]
	return true
}

// len reports the current depth of the checkpoint stack.
func (c *checkpoints) len() int { return len(c.frames) }
