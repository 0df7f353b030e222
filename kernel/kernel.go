package kernel

// Kernel exposes a syscall-shaped surface, wrapping a *Table the same
// way the source kernel's syscall.c dispatches into proc.c/thread.c
// functions. Callers (tests, cmd/pmanager) should generally talk to
// Kernel rather than poking at Table directly.
type Kernel struct {
	t *Table
}

// NewKernel constructs a Kernel around a fresh Table, then seeds it
// with one init process named name (analogous to the source kernel's
// userinit).
func NewKernel(name string, opts ...Option) (*Kernel, int, error) {
	t := NewTable(opts...)
	pid, err := t.Userinit(name)
	if err != nil {
		return nil, 0, err
	}
	return &Kernel{t: t}, pid, nil
}

func (k *Kernel) Table() *Table { return k.t }

// Fork implements fork().
func (k *Kernel) Fork(pid int) (int, error) { return k.t.Fork(pid) }

// Exit implements exit().
func (k *Kernel) Exit(pid int) error { return k.t.Exit(pid) }

// Wait implements wait().
func (k *Kernel) Wait(pid int) (int, error) { return k.t.Wait(pid) }

// Kill implements kill(pid).
func (k *Kernel) Kill(pid int) error { return k.t.Kill(pid) }

// Getpid implements getpid(): returns pid unchanged, since in this
// model the caller always already knows its own pid; kept as a method
// for interface symmetry with the rest of the syscall surface.
func (k *Kernel) Getpid(pid int) (int, error) {
	if !k.t.Exists(pid) {
		return 0, ErrNoSuchPid
	}
	return pid, nil
}

// Sbrk implements sbrk(n).
func (k *Kernel) Sbrk(pid int, n int) (uintptr, error) { return k.t.Sbrk(pid, n) }

// Sleep implements sleep(chan).
func (k *Kernel) Sleep(pid int, chanVal any) error { return k.t.Sleep(pid, chanVal) }

// Uptime implements uptime(): returns the number of ticks the
// scheduler has processed since construction.
func (k *Kernel) Uptime() uint64 { return k.t.Uptime() }

// ThreadCreate implements thread_create(start_routine, arg).
func (k *Kernel) ThreadCreate(pid int, startRoutine, arg uintptr) (int, error) {
	return k.t.ThreadCreate(pid, startRoutine, arg)
}

// ThreadExit implements thread_exit(retval).
func (k *Kernel) ThreadExit(pid int, retval uintptr) error { return k.t.ThreadExit(pid, retval) }

// ThreadJoin implements thread_join(tid).
func (k *Kernel) ThreadJoin(pid, tid int) (uintptr, error) { return k.t.ThreadJoin(pid, tid) }

// SetMemoryLimit implements setmemorylimit(pid, limit).
func (k *Kernel) SetMemoryLimit(pid int, limit uintptr) error {
	return k.t.SetMemoryLimit(pid, limit)
}

// Exec2 implements exec2(path, argv, stacksize).
func (k *Kernel) Exec2(pid int, name string, entry, imageSz uintptr, stackPages int) error {
	return k.t.Exec2(pid, name, entry, imageSz, stackPages)
}

// SchedulerLock implements scheduler_lock(password).
func (k *Kernel) SchedulerLock(pid, password int) error { return k.t.SchedulerLock(pid, password) }

// SchedulerUnlock implements scheduler_unlock(password).
func (k *Kernel) SchedulerUnlock(pid, password int) error {
	return k.t.SchedulerUnlock(pid, password)
}

// SetPriority implements setpriority(pid, priority).
func (k *Kernel) SetPriority(pid, priority int) error { return k.t.SetPriority(pid, priority) }

// GetLevel implements getlevel(pid).
func (k *Kernel) GetLevel(pid int) (int, error) { return k.t.GetLevel(pid) }

// ProcDump implements procdump().
func (k *Kernel) ProcDump() []string { return k.t.ProcDump() }

// Tick drives the MLFQ clock forward by one tick and then schedules the
// next process, the way the source kernel's timer interrupt handler
// calls yield() after accounting. Returns the pid scheduled to run, or
// 0 if nothing is runnable.
func (k *Kernel) Tick() int {
	k.t.Tick()
	return k.t.Schedule()
}

// RunTicks drives n scheduler ticks in sequence, returning the pid
// scheduled after each one; a convenience for tests and the demo shell
// rather than a syscall itself.
func (k *Kernel) RunTicks(n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = k.Tick()
	}
	return out
}
