package thread

// Fork creates a new thread sharing origin's namespace (copy-on-write,
// since namespace.Env is itself persistent) and receiving the top
// stackTransfer elements of origin's data stack. The fork shares
// origin's register.Store and Drainer so its eventual commit
// participates in the same conflict domain.
//
// The returned thread is tentative: it must not be allowed to commit
// until origin commits. Callers drive that ordering; Fork itself only
// performs the state transfer. If origin later aborts, call
// fork.MarkUncreated() so the fork never runs.
func Fork(origin *Thread, stackTransfer int) (*Thread, error) {
	child := &Thread{
		store:   origin.store,
		drainer: origin.drainer,
		log:     origin.log,
		metrics: origin.metrics,
		tx:      origin.store.NewTransaction(),
		stack:   NewStack(),
		stash:   NewStack(),
		env:     origin.env,
	}
	if stackTransfer > 0 {
		if err := Transfer(origin.stack, child.stack, stackTransfer); err != nil {
			return nil, err
		}
	}
	if origin.metrics != nil {
		origin.metrics.Clones.WithLabelValues("fork").Inc()
	}
	return child, nil
}

// Clone returns an independent copy of origin's full state — stack,
// stash, and namespace — leaving origin itself untouched. Unlike Fork,
// Clone never removes anything from origin's stack: origin is free to
// keep running (or be cloned again) while its clones race.
func Clone(origin *Thread) *Thread {
	child := &Thread{
		store:   origin.store,
		drainer: origin.drainer,
		log:     origin.log,
		metrics: origin.metrics,
		tx:      origin.store.NewTransaction(),
		stack:   origin.stack.clone(),
		stash:   origin.stash.clone(),
		env:     origin.env,
	}
	if origin.metrics != nil {
		origin.metrics.Clones.WithLabelValues("choice").Inc()
	}
	return child
}
