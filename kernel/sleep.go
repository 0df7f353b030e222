package kernel

// Sleep implements sleep(chan, external_lock). In the source
// kernel the caller already holds some lock, possibly the table lock
// itself, and sleep atomically records the wait channel and releases
// it; here the table lock always plays that role, and the atomic
// release/reacquire is exactly what sync.Cond.Wait gives us.
func (t *Table) Sleep(pid int, chanVal any) error {
	if chanVal == nil {
		return ErrBadArg
	}
	c := t.lock()
	defer t.unlock(c)
	_, p, ok := t.findByPid(pid)
	if !ok {
		return ErrNoSuchPid
	}
	t.sleepLocked(p, chanVal)
	return nil
}

// sleepLocked is the internal half of Sleep, used by Wait and
// ThreadJoin, which already hold the table lock and want to block
// without dropping it through the public API. It blocks the calling
// goroutine until some Wakeup/Kill call transitions the current
// thread's slot out of SLEEPING.
func (t *Table) sleepLocked(proc *Proc, chanVal any) {
	th := proc.Thread(proc.CurThread)
	th.Chan = chanVal
	th.State = Sleeping

	t.dequeueLocked(proc)
	if proc.AnyRunnable() {
		proc.State = Runnable
		t.enqueueLocked(proc)
	} else {
		proc.State = Sleeping
	}

	for th.State == Sleeping {
		t.cond.Wait()
	}
}

// Wakeup implements wakeup(chan): every SLEEPING thread across
// every process whose Chan matches becomes RUNNABLE; a process that was
// itself SLEEPING becomes RUNNABLE too.
func (t *Table) Wakeup(chanVal any) {
	c := t.lock()
	defer t.unlock(c)
	t.wakeupLocked(chanVal)
}

func (t *Table) wakeupLocked(chanVal any) {
	if chanVal == nil {
		return
	}
	for _, p := range t.procs {
		if p == nil {
			continue
		}
		woke := false
		for _, th := range p.ttable {
			if th != nil && th.State == Sleeping && th.Chan == chanVal {
				th.State = Runnable
				th.Chan = nil
				woke = true
			}
		}
		if woke && p.State == Sleeping {
			p.State = Runnable
			t.enqueueLocked(p)
		}
	}
	t.cond.Broadcast()
}

// Yield implements yield(): the caller's process becomes
// RUNNABLE and is re-inserted at the tail of its current level without
// consuming the rest of its quantum.
func (t *Table) Yield(pid int) error {
	c := t.lock()
	defer t.unlock(c)
	_, p, ok := t.findByPid(pid)
	if !ok {
		return ErrNoSuchPid
	}
	if p.State == Running {
		p.State = Runnable
	}
	t.enqueueLocked(p)
	return nil
}

// Kill implements kill(pid): marks the process killed and wakes
// every SLEEPING thread slot so the process can observe Killed at its
// next trap return and exit.
func (t *Table) Kill(pid int) error {
	c := t.lock()
	defer t.unlock(c)
	_, p, ok := t.findByPid(pid)
	if !ok {
		t.logf(SevError, "Kill: no such pid %d", pid)
		return ErrNoSuchPid
	}
	p.Killed = true
	woke := false
	for _, th := range p.ttable {
		if th != nil && th.State == Sleeping {
			th.State = Runnable
			th.Chan = nil
			woke = true
		}
	}
	if woke && p.State == Sleeping {
		p.State = Runnable
		t.enqueueLocked(p)
	}
	t.cond.Broadcast()
	return nil
}

// Killed reports whether pid has been marked killed, the check a trap
// return performs before resuming user mode.
func (t *Table) Killed(pid int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, p, ok := t.findByPid(pid)
	if !ok {
		return false, ErrNoSuchPid
	}
	return p.Killed, nil
}
