package kernel

// Sbrk implements growproc/sbrk(n): grows or shrinks the
// caller's address space by n bytes (n may be negative), subject to its
// memory limit, and returns the address space size *before* the change,
// exactly as the source kernel's sbrk(n) returns the old break.
func (t *Table) Sbrk(pid int, n int) (uintptr, error) {
	c := t.lock()
	defer t.unlock(c)

	_, p, ok := t.findByPid(pid)
	if !ok {
		return 0, ErrNoSuchPid
	}

	old := p.Sz
	var next uintptr
	if n >= 0 {
		next = old + uintptr(n)
	} else if uintptr(-n) > old {
		next = 0
	} else {
		next = old - uintptr(-n)
	}

	if p.SzLimit != 0 && next > p.SzLimit {
		t.logf(SevException, "sbrk: memory limit exceeded (pid %d)", pid)
		return 0, ErrMemoryLimit
	}

	if n > 0 {
		newSz, err := p.AS.Grow(old, next)
		if err != nil {
			t.logf(SevError, "sbrk: allocuvm failed (pid %d)", pid)
			return 0, ErrOutOfMemory
		}
		p.Sz = newSz
	} else if n < 0 {
		p.Sz = p.AS.Shrink(old, next)
	}
	p.AS.Switch()

	return old, nil
}

// SetMemoryLimit implements setmemorylimit(pid, limit). limit is
// in bytes; 0 clears the limit. A limit whose page count is below the
// process's current page count is rejected without changing state.
// limit is unsigned, so a negative value cannot reach this method.
func (t *Table) SetMemoryLimit(pid int, limit uintptr) error {
	c := t.lock()
	defer t.unlock(c)

	_, p, ok := t.findByPid(pid)
	if !ok {
		t.logf(SevException, "setmemorylimit: non-exit pid error (pid %d)", pid)
		return ErrNoSuchPid
	}

	if limit != 0 && p.Sz/PGSize > limit/PGSize {
		t.logf(SevException, "setmemorylimit: sz already bigger than limit (pid %d)", pid)
		return ErrAlreadyExceeded
	}

	p.SzLimit = limit
	return nil
}

// Exec2 implements exec2(path, argv, stacksize): replaces the
// caller's address space and collapses every thread but the caller into
// a single main thread, per the source kernel's "one thread survives
// exec" rule. entry and imageSz describe the already-loaded program
// image; this package never parses ELF itself (out of scope).
func (t *Table) Exec2(pid int, name string, entry uintptr, imageSz uintptr, stackPages int) error {
	if stackPages < MinStackPages {
		return ErrBadArg
	}
	if stackPages > MaxStackPages {
		return ErrBadArg
	}

	c := t.lock()
	defer t.unlock(c)

	_, p, ok := t.findByPid(pid)
	if !ok {
		return ErrNoSuchPid
	}

	need := imageSz + uintptr(stackPages+1)*PGSize
	if p.SzLimit != 0 && need > p.SzLimit {
		t.logf(SevException, "exec2: memory limit exceeded (pid %d)", pid)
		return ErrMemoryLimit
	}

	newAS, err := t.newASForExec(p, need)
	if err != nil {
		t.logf(SevError, "exec2: allocuvm failed (pid %d)", pid)
		return ErrOutOfMemory
	}

	t.collapseThreadsLocked(p)

	oldAS := p.AS
	p.AS = newAS
	p.Sz = need
	p.Name = name
	main := p.Thread(0)
	main.TF.Eip = entry
	main.TF.Esp = need
	p.AS.Switch()
	oldAS.Free()

	return nil
}

func (t *Table) newASForExec(p *Proc, sz uintptr) (AddressSpace, error) {
	fresh := t.newAS()
	if _, err := fresh.Grow(0, sz); err != nil {
		return nil, err
	}
	return fresh, nil
}

// collapseThreadsLocked implements exec's "one thread survives" step,
// mirroring exec2's loop: every thread slot but the caller's is torn
// down, and the caller's kernel stack/trapframe/context are relocated
// into slot 0 so the process looks, to every later
// thread_create/thread_join caller, as if only its main thread ever
// existed. Must be called with the lock held.
func (t *Table) collapseThreadsLocked(p *Proc) {
	var caller *Thread
	for i := ThreadsPerProc - 1; i >= 0; i-- {
		th := p.ttable[i]
		if th == nil || th.State == Unused {
			continue
		}
		if i == p.CurThread {
			caller = th
			continue
		}
		freeKStack(th.KStack)
		p.ttable[i] = nil
	}

	main := p.ttable[0]
	if caller != nil && caller.Tid != 0 {
		caller.Tid = 0
		p.ttable[0] = caller
		p.ttable[p.CurThread] = nil
		main = caller
	}
	main.Chan = nil
	main.State = Running
	p.CurThread = 0
	p.KStack, p.TF, p.Ctx = main.KStack, main.TF, main.Ctx

	for i := range p.ThreadPool {
		p.ThreadPool[i] = 0
	}
}
