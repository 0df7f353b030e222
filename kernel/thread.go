package kernel

// ThreadCreate implements thread_create(start_routine, arg).
// startRoutine and arg are raw addresses, exactly as the syscall ABI
// hands them to the kernel; this package never calls through them.
//
// Precondition checks run in the source kernel's own order: table-full
// (T0), then main-thread-slot-reuse (T1), then not-main-caller (T2),
// because the source scans for a free slot before it knows who is
// calling.
func (t *Table) ThreadCreate(pid int, startRoutine, arg uintptr) (tid int, err error) {
	c := t.lock()
	defer t.unlock(c)

	_, p, ok := t.findByPid(pid)
	if !ok {
		return 0, ErrNoSuchPid
	}

	slot := -1
	for i := 0; i < ThreadsPerProc; i++ {
		if p.ttable[i] == nil {
			slot = i
			break
		}
	}
	if slot == -1 {
		t.logf(SevException, "thread_create: the maximum number of threads has already been allocated (pid %d)", pid)
		return 0, ErrThreadTableFull
	}
	if slot == 0 {
		t.logf(SevException, "thread_create: main thread terminated (pid %d)", pid)
		return 0, ErrMainThreadSlotBusy
	}
	if p.CurThread != 0 {
		t.logf(SevException, "thread_create: caller is not main thread (pid %d)", pid)
		return 0, ErrNotMainCaller
	}

	mainTh := p.Thread(0)
	th, err := newThreadSlot(slot, mainTh.TF)
	if err != nil {
		t.logf(SevError, "thread_create: kernel stack allocation failed (pid %d)", pid)
		return 0, ErrOutOfMemory
	}

	start, top, err := t.acquireUserStack(p)
	if err != nil {
		freeKStack(th.KStack)
		return 0, err
	}

	frame := make([]byte, 2*8) // {fake_return_pc, arg}, word-sized slots
	sp := top - uintptr(len(frame))
	if err := p.AS.CopyOut(sp, frame); err != nil {
		t.logf(SevError, "thread_create: copyout failed (pid %d)", pid)
		for i := range p.ThreadPool {
			if p.ThreadPool[i] == 0 {
				p.ThreadPool[i] = start
				break
			}
		}
		freeKStack(th.KStack)
		return 0, ErrOutOfMemory
	}

	th.Start = start
	th.TF.Eip = startRoutine
	th.TF.Esp = sp
	p.AS.Switch()
	th.State = Runnable
	p.ttable[slot] = th

	return slot, nil
}

// acquireUserStack implements the "user stack" half of thread_create
//: reuse a thread_pool entry if one exists, otherwise grow the
// address space by two pages (one guard page, one stack page) subject
// to the process memory limit. Returns (base, top) of the two-page
// region; base is the guard page's address.
func (t *Table) acquireUserStack(p *Proc) (base, top uintptr, err error) {
	for i, v := range p.ThreadPool {
		if v != 0 {
			p.ThreadPool[i] = 0
			return v, v + 2*PGSize, nil
		}
	}

	base = roundUpPage(p.Sz)
	need := base + 2*PGSize
	if p.SzLimit != 0 && need > p.SzLimit {
		t.logf(SevError, "thread_create: memory limit exceeded (pid %d)", p.Pid)
		return 0, 0, ErrMemoryLimit
	}
	newTop, err := p.AS.Grow(base, need)
	if err != nil {
		t.logf(SevError, "thread_create: allocuvm failed (pid %d)", p.Pid)
		return 0, 0, ErrOutOfMemory
	}
	p.AS.ClearUser(base)
	p.Sz = newTop
	return base, newTop, nil
}

func roundUpPage(sz uintptr) uintptr {
	return (sz + PGSize - 1) &^ (PGSize - 1)
}

// ThreadExit implements thread_exit(retval). It is a kernel
// error, not a syscall failure, for the main thread to call this; the
// source kernel prints a diagnostic and simply returns rather than
// unwinding the process, since process-wide exit is Exit.
//
// A real kernel entry point never returns from here; this method
// returns nil once the zombie transition is published so that Go
// callers (including tests) regain control, on the understanding that
// nothing after a successful call should keep running this thread.
// Before returning it hands the process to its next RUNNABLE thread
// slot (CurThread and the live pointers move there), standing in for
// the scheduler switch; if no slot is runnable, CurThread is unchanged.
func (t *Table) ThreadExit(pid int, retval uintptr) error {
	c := t.lock()
	defer t.unlock(c)

	_, p, ok := t.findByPid(pid)
	if !ok {
		return ErrNoSuchPid
	}
	if p.CurThread == 0 {
		t.logf(SevException, "thread_exit: main thread cannot thread_exit (pid %d)", pid)
		return ErrCannotExitMain
	}

	main := p.Thread(0)
	t.wakeupLocked(main)

	th := p.Thread(p.CurThread)
	th.Retval = retval
	th.State = Zombie
	p.State = Runnable
	t.enqueueLocked(p)
	if next := t.NextThreadLocked(p); next >= 0 {
		nt := p.ttable[next]
		p.CurThread = next
		p.KStack, p.TF, p.Ctx = nt.KStack, nt.TF, nt.Ctx
	}
	return nil
}

// ThreadJoin implements thread_join(tid, out_retval): blocks
// until the target thread is a zombie, reaps it, recycles its user
// stack into thread_pool, and returns its retval.
func (t *Table) ThreadJoin(pid, tid int) (retval uintptr, err error) {
	for {
		c := t.lock()

		_, p, ok := t.findByPid(pid)
		if !ok {
			t.unlock(c)
			return 0, ErrNoSuchPid
		}
		if p.CurThread != 0 {
			t.unlock(c)
			return 0, ErrNotMainCaller
		}
		if tid <= 0 || tid >= ThreadsPerProc {
			t.unlock(c)
			return 0, ErrNoSuchTid
		}
		th := p.ttable[tid]
		if th == nil || th.State == Unused {
			t.unlock(c)
			return 0, ErrNoSuchTid
		}

		if th.State == Zombie {
			retval = th.Retval
			freeKStack(th.KStack)
			p.ttable[tid] = nil
			for i := range p.ThreadPool {
				if p.ThreadPool[i] == 0 {
					p.ThreadPool[i] = th.Start
					break
				}
			}
			p.AS.Switch()
			t.unlock(c)
			return retval, nil
		}

		t.sleepLocked(p, p.Thread(0))
		t.unlock(c)
	}
}
