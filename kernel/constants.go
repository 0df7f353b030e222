// Package kernel implements the MLFQ process scheduler and per-process
// kernel-thread subsystem of a teaching operating system kernel.
//
// A [Table] owns every process and thread slot and is the only structure
// that ever mutates scheduling state; callers reach it through a [Kernel]
// facade that exposes the syscall-shaped surface described in the design
// document.
package kernel

import "time"

const (
	// NPROC is the capacity of the process table.
	NPROC = 100

	// ThreadsPerProc is the number of thread slots per process, slot 0
	// always being the main thread.
	ThreadsPerProc = 10

	// MaxArg is the maximum number of exec argv entries.
	MaxArg = 32

	// PGSize is the size in bytes of a single virtual memory page.
	PGSize = 4096

	// KStackSize is the size in bytes of a kernel stack.
	KStackSize = 2 * PGSize

	// Password gates the scheduler lock/unlock pair. It is a compile-time
	// constant, exactly as in the source kernel: callers must know it to
	// pin or release the scheduler lock.
	Password = 2019030991

	// MinStackPages and MaxStackPages bound the stacksize argument to exec2.
	MinStackPages = 1
	MaxStackPages = 100

	// Level quanta, in ticks.
	quantumL0 = 4
	quantumL1 = 6
	quantumL2 = 8

	// boostInterval is the number of ticks between priority boosts.
	boostInterval = 100

	// defaultPriority is the priority assigned to new processes and to
	// every process on a priority boost.
	defaultPriority = 0

	// unlockPriority is the priority a process is given by
	// scheduler_unlock, per spec: L2 head of its priority band.
	unlockPriority = 3

	// maxPriority is the highest L2 priority a process may hold.
	maxPriority = 10
)

// tickPeriod is a nominal duration assigned to one scheduler tick. The
// scheduler is tick-counted, not wall-clock-driven: neither Table.Tick,
// Kernel.RunTicks nor the pmanager shell reads this value.
const tickPeriod = time.Millisecond
