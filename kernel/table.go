package kernel

import (
	"sync"
)

// Thread is one kernel-thread slot of a process. tid 0 is always the
// main thread. See the design document's data model for field meaning.
type Thread struct {
	Tid    int
	State  ThreadState
	KStack *[]byte
	TF     *Trapframe
	Ctx    *Context
	Chan   any     // wait address; nil when not sleeping
	Start  uintptr // user-stack base of this thread's two-page region
	Retval uintptr // set by thread_exit, consumed by thread_join
}

// Proc is one process-table slot. See the design document's data model
// for field meaning and the table-lock invariants that must hold
// whenever the table lock is not held.
type Proc struct {
	Pid       int
	State     ProcState
	ParentPid int // 0 = none; weak reference, never owning
	AS        AddressSpace
	Sz        uintptr
	SzLimit   uintptr // bytes; 0 = unlimited
	Name      string
	Files     Files
	Killed    bool

	ttable     [ThreadsPerProc]*Thread
	CurThread  int
	ThreadPool [ThreadsPerProc - 1]uintptr // 0 = empty slot

	Level            Level
	Priority         int
	QuantumUsed      int
	TotalInLevel     int
	Locked           bool
	SchedPasswordSet bool

	// Live execution pointers, mirroring the thread slot whose tid ==
	// CurThread while the process is scheduled.
	KStack *[]byte
	TF     *Trapframe
	Ctx    *Context

	arrivalSeq int64
	ticks      *tickRing
}

// Thread returns the thread slot for tid, or nil if out of range.
func (p *Proc) Thread(tid int) *Thread {
	if tid < 0 || tid >= ThreadsPerProc {
		return nil
	}
	return p.ttable[tid]
}

// AnyRunnable reports whether at least one thread slot is RUNNABLE:
// a process itself is only considered RUNNABLE when this holds.
func (p *Proc) AnyRunnable() bool {
	for _, t := range p.ttable {
		if t != nil && t.State == Runnable {
			return true
		}
	}
	return false
}

// AllSleeping reports whether every non-UNUSED thread slot is SLEEPING.
func (p *Proc) AllSleeping() bool {
	any := false
	for _, t := range p.ttable {
		if t == nil || t.State == Unused {
			continue
		}
		any = true
		if t.State != Sleeping {
			return false
		}
	}
	return any
}

// Table owns every process slot and thread slot and is the only
// structure whose mutation requires the table lock. Styled after
// eventloop's Loop struct (eventloop/loop.go): one owning struct,
// explicit locking, pluggable logger and dispatcher via functional
// options.
type Table struct {
	mu   sync.Mutex
	cond *sync.Cond

	procs   [NPROC]*Proc
	nextPid int
	initPid int

	tick          uint64
	lastBoostTick uint64

	levelQueues [3]readyQueue
	lockedPid   int // 0 = none

	logger     Logger
	dispatcher Dispatcher
	newAS      func() AddressSpace
	password   int

	arrivalCounter int64
}

// NewTable constructs an empty Table, ready for Userinit.
func NewTable(opts ...Option) *Table {
	cfg := resolveTableOptions(opts)
	t := &Table{
		logger:     cfg.logger,
		dispatcher: cfg.dispatcher,
		newAS:      cfg.newAS,
		password:   cfg.password,
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// lock acquires the table lock, tracking interrupt-disable nesting on
// the calling CPU the same way acquiring the source kernel's ptable
// lock implicitly disables interrupts on the current core.
func (t *Table) lock() *CPU {
	c := currentCPU()
	c.pushCli()
	t.mu.Lock()
	return c
}

func (t *Table) unlock(c *CPU) {
	t.mu.Unlock()
	c.popCli()
}

func (t *Table) logf(sev Severity, format string, args ...any) {
	t.logger.Logf(sev, format, args...)
}

// slotAt returns the Proc in table slot i, or nil.
func (t *Table) slotAt(i int) *Proc { return t.procs[i] }

// findByPid scans the table for pid, returning (slot-index, proc, ok).
// Must be called with the lock held.
func (t *Table) findByPid(pid int) (int, *Proc, bool) {
	for i, p := range t.procs {
		if p != nil && p.Pid == pid {
			return i, p, true
		}
	}
	return -1, nil, false
}

// Exists reports whether pid names a live process, taking the table
// lock itself.
func (t *Table) Exists(pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _, ok := t.findByPid(pid)
	return ok
}

// Uptime returns the number of ticks Tick has processed so far.
func (t *Table) Uptime() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tick
}

// allocProc implements allocate_process: scan for an UNUSED
// slot, assign a monotonically increasing pid, mark EMBRYO, and clear
// scheduling attributes. Must be called with the lock held; the caller
// is responsible for kernel-stack allocation and reverting the slot to
// UNUSED on failure.
func (t *Table) allocProc() (*Proc, int, error) {
	idx := -1
	for i, p := range t.procs {
		if p == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.logf(SevError, "allocProc: table full")
		return nil, -1, ErrNoSlot
	}

	t.nextPid++
	p := &Proc{
		Pid:       t.nextPid,
		State:     Embryo,
		CurThread: 0,
		SzLimit:   0,
		Level:     L0,
		Priority:  defaultPriority,
		ticks:     newTickRing(),
	}
	t.procs[idx] = p
	return p, idx, nil
}

// enqueueLocked marks p runnable-at-its-current-level by pushing it to
// the tail of that level's ready queue, assigning a fresh arrival
// sequence number for FIFO/tie-break ordering. Must be called with the
// lock held.
func (t *Table) enqueueLocked(p *Proc) {
	p.arrivalSeq = t.nextArrival()
	t.levelQueues[p.Level].pushBack(p.Pid)
}

// dequeueLocked removes p from every level queue, used whenever it
// stops being runnable-and-queued (sleeps, exits, changes level, or is
// selected to run). Must be called with the lock held.
func (t *Table) dequeueLocked(p *Proc) {
	t.levelQueues[L0].remove(p.Pid)
	t.levelQueues[L1].remove(p.Pid)
	t.levelQueues[L2].remove(p.Pid)
}

// freeProcLocked resets slot idx to UNUSED, releasing every thread's
// kernel stack. Must be called with the lock held.
func (t *Table) freeProcLocked(idx int) {
	p := t.procs[idx]
	if p == nil {
		return
	}
	for tid := ThreadsPerProc - 1; tid >= 0; tid-- {
		th := p.ttable[tid]
		if th == nil || th.State == Unused {
			continue
		}
		freeKStack(th.KStack)
		p.ttable[tid] = nil
	}
	for i := range p.ThreadPool {
		p.ThreadPool[i] = 0
	}
	t.levelQueues[L0].remove(p.Pid)
	t.levelQueues[L1].remove(p.Pid)
	t.levelQueues[L2].remove(p.Pid)
	if t.lockedPid == p.Pid {
		t.lockedPid = 0
	}
	t.procs[idx] = nil
}

// newThreadSlot allocates a kernel stack and trapframe/context for tid,
// copying src's trapframe when src is non-nil (fork/thread_create), and
// setting the context's instruction pointer to the fork-return
// trampoline (modelled as IP==0, interpreted by the Dispatcher).
func newThreadSlot(tid int, src *Trapframe) (*Thread, error) {
	kstack := allocKStack()
	tf := &Trapframe{}
	if src != nil {
		*tf = *src
		tf.Eax = 0 // child/new thread's return value register is zeroed
	}
	return &Thread{
		Tid:    tid,
		State:  Embryo,
		KStack: kstack,
		TF:     tf,
		Ctx:    &Context{},
		Retval: 0,
	}, nil
}

// nextArrival returns a monotonically increasing arrival sequence
// number, used to break ties in FIFO/priority ordering. Must be called
// with the lock held.
func (t *Table) nextArrival() int64 {
	t.arrivalCounter++
	return t.arrivalCounter
}
