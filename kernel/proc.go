package kernel

import "fmt"

// Userinit creates the first process in the table (the source kernel's
// userinit): allocates a process and its main thread, gives it a fresh
// address space, and marks it RUNNABLE. It is the only way to seed a
// Table; every other process traces back to this one through Fork.
func (t *Table) Userinit(name string) (pid int, err error) {
	c := t.lock()
	defer t.unlock(c)

	p, idx, err := t.allocProc()
	if err != nil {
		return 0, err
	}
	th, err := newThreadSlot(0, nil)
	if err != nil {
		t.freeProcLocked(idx)
		t.logf(SevError, "Userinit: kernel stack allocation failed")
		return 0, ErrOutOfMemory
	}
	p.ttable[0] = th
	p.AS = t.newAS()
	p.Sz = PGSize
	p.Name = name
	p.Files = Files{}
	p.State = Runnable
	th.State = Runnable
	p.KStack, p.TF, p.Ctx = th.KStack, th.TF, th.Ctx
	t.initPid = p.Pid
	t.enqueueLocked(p)
	return p.Pid, nil
}

// Fork implements fork(): duplicate the caller's address space and file
// table into a freshly allocated process, reset its scheduling level to
// 0, and mark it (and its thread 0) RUNNABLE. Returns the new pid to
// the caller; returning "0 to the child" is the caller's responsibility
// to special-case, since this package represents both sides of a fork
// as ordinary function calls rather than a single duplicated control
// flow.
func (t *Table) Fork(callerPid int) (childPid int, err error) {
	t.mu.Lock()
	_, caller, ok := t.findByPid(callerPid)
	t.mu.Unlock()
	if !ok {
		return 0, ErrNoSuchPid
	}

	as, err := caller.AS.Copy(caller.Sz)
	if err != nil {
		t.logf(SevError, "Fork: copyuvm failed for pid %d", callerPid)
		return 0, ErrOutOfMemory
	}

	c := t.lock()
	defer t.unlock(c)

	child, idx, err := t.allocProc()
	if err != nil {
		as.Free()
		return 0, err
	}
	callerMain := caller.Thread(caller.CurThread)
	th, err := newThreadSlot(0, callerMain.TF)
	if err != nil {
		t.freeProcLocked(idx)
		as.Free()
		t.logf(SevError, "Fork: kernel stack allocation failed")
		return 0, ErrOutOfMemory
	}

	child.ttable[0] = th
	child.AS = as
	child.Sz = caller.Sz
	child.SzLimit = caller.SzLimit
	child.ParentPid = caller.Pid
	child.Name = caller.Name
	child.Files = caller.Files.Clone()
	child.Level = L0
	child.State = Runnable
	th.State = Runnable
	child.KStack, child.TF, child.Ctx = th.KStack, th.TF, th.Ctx
	t.enqueueLocked(child)

	return child.Pid, nil
}

// Wait implements wait(). It blocks (via Sleep) until a child
// becomes a ZOMBIE, reaps it, and returns its pid; it fails immediately
// with ErrNoChildren if the caller has none.
func (t *Table) Wait(callerPid int) (int, error) {
	for {
		c := t.lock()

		_, caller, ok := t.findByPid(callerPid)
		if !ok {
			t.unlock(c)
			return 0, ErrNoSuchPid
		}

		haveChildren := false
		for idx, p := range t.procs {
			if p == nil || p.ParentPid != callerPid {
				continue
			}
			haveChildren = true
			if p.State == Zombie {
				reaped := p.Pid
				t.freeProcLocked(idx)
				t.unlock(c)
				return reaped, nil
			}
		}
		if !haveChildren {
			t.unlock(c)
			return 0, ErrNoChildren
		}

		t.sleepLocked(caller, caller)
		t.unlock(c)
	}
}

// Exit implements exit(): the caller's files are dropped, its
// children are reparented to init, and it becomes a ZOMBIE, waking
// whatever waits on it (its parent) and on init if a child was already
// a zombie.
func (t *Table) Exit(callerPid int) error {
	c := t.lock()
	defer t.unlock(c)

	_, caller, ok := t.findByPid(callerPid)
	if !ok {
		return ErrNoSuchPid
	}

	caller.Files = Files{}

	_, initProc, haveInit := t.findByPid(t.initPid)
	reparentedZombie := false
	for _, p := range t.procs {
		if p == nil || p.ParentPid != callerPid {
			continue
		}
		p.ParentPid = t.initPid
		if p.State == Zombie {
			reparentedZombie = true
		}
	}
	if reparentedZombie && haveInit {
		t.wakeupLocked(initProc)
	}

	t.dequeueLocked(caller)
	caller.State = Zombie
	if _, parent, ok := t.findByPid(caller.ParentPid); ok {
		t.wakeupLocked(parent)
	}
	return nil
}

// ProcDump implements procdump(): a diagnostic listing of every
// non-UNUSED process and its threads. It deliberately does not take the
// table lock, since it exists to work when the table lock is already
// stuck held by something else.
func (t *Table) ProcDump() []string {
	var lines []string
	for i, p := range t.procs {
		if p == nil {
			continue
		}
		lastTick, _ := p.ticks.last()
		lines = append(lines, fmt.Sprintf("slot=%d pid=%d state=%s name=%q level=%d priority=%d cur_thread=%d pages=%d bytes=%d limit=%d last_tick=%d",
			i, p.Pid, p.State, p.Name, p.Level, p.Priority, p.CurThread, p.Sz/PGSize, p.Sz, p.SzLimit, lastTick))
		for _, th := range p.ttable {
			if th == nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("  tid=%d state=%s", th.Tid, th.State))
		}
	}
	return lines
}
