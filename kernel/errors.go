package kernel

import "errors"

// Sentinel errors returned by Table and Kernel methods. Most exception
// paths log a single EXCEPTION/ERROR line (see logging.go) before
// returning one of these, as the source kernel returns -1 to a syscall
// caller after printing a diagnostic. Some return without logging: most
// unknown-pid lookups, Exec2's and Sleep's argument checks, Wait's
// ErrNoChildren, and every ThreadJoin failure.
var (
	// ErrNoSlot is returned when the process table is full.
	ErrNoSlot = errors.New("kernel: no free process slot")

	// ErrOutOfMemory is returned when the address-space or kernel-stack
	// allocator fails.
	ErrOutOfMemory = errors.New("kernel: out of memory")

	// ErrMemoryLimit is returned when an operation would push a process
	// past its configured memory limit.
	ErrMemoryLimit = errors.New("kernel: memory limit exceeded")

	// ErrNoSuchPid is returned when a pid does not name a live process.
	ErrNoSuchPid = errors.New("kernel: no such pid")

	// ErrNoSuchTid is returned when a tid does not name a live thread.
	ErrNoSuchTid = errors.New("kernel: no such tid")

	// ErrNoChildren is returned by Wait when the caller has none.
	ErrNoChildren = errors.New("kernel: no children")

	// ErrBadArg is returned for arguments outside their documented range.
	ErrBadArg = errors.New("kernel: bad argument")

	// ErrBadPassword is returned when the scheduler lock/unlock password
	// does not match the compile-time Password constant.
	ErrBadPassword = errors.New("kernel: bad scheduler password")

	// ErrDuplicated is returned when scheduler_lock is called while
	// another process already holds the lock.
	ErrDuplicated = errors.New("kernel: scheduler already locked")

	// ErrNotLocked is returned when scheduler_unlock is called by a
	// process that does not hold the lock.
	ErrNotLocked = errors.New("kernel: caller does not hold scheduler lock")

	// ErrNotMainCaller is returned when a thread operation reserved for
	// the main thread (tid 0) is invoked from any other thread.
	ErrNotMainCaller = errors.New("kernel: operation requires the main thread")

	// ErrCannotExitMain is returned when thread_exit is called by the
	// main thread; process-wide exit is a separate call.
	ErrCannotExitMain = errors.New("kernel: main thread cannot thread_exit")

	// ErrAlreadyExceeded is returned when setmemorylimit is asked to set
	// a limit below the process's current usage.
	ErrAlreadyExceeded = errors.New("kernel: limit already exceeded by current usage")

	// ErrThreadTableFull is returned when a process has no free
	// non-main thread slot left for thread_create.
	ErrThreadTableFull = errors.New("kernel: thread table full")

	// ErrMainThreadSlotBusy is returned when the only free thread slot
	// found is index 0, which can never be handed out a second time.
	ErrMainThreadSlotBusy = errors.New("kernel: main thread slot cannot be reused")
)
