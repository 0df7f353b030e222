package kernel

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineID scrapes the calling goroutine's id out of a runtime stack
// trace. This package has no real per-core CPU, so "the current CPU" is
// modelled as "the current goroutine" — good enough to give the
// interrupt-disable nesting counter (below) a stable per-caller identity.
// Grounded on the style of joeycumines-go-utilpkg/goroutineid, a
// single-function package whose only export does exactly this; it is
// reimplemented here rather than imported so that one integer doesn't
// pull in a whole extra module dependency.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if i := bytes.Index(b, []byte(prefix)); i >= 0 {
		b = b[i+len(prefix):]
	}
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// CPU tracks the interrupt-disable nesting count for one caller: the
// table lock's acquire/release wrap matching push/pop so that nested
// critical sections only restore interrupts on the outermost release,
// and the scheduler can assert "exactly one lock held" on entry.
type CPU struct {
	nesting int
}

var (
	cpusMu sync.Mutex
	cpus   = map[uint64]*CPU{}
)

// currentCPU returns (creating if necessary) the CPU record for the
// calling goroutine.
func currentCPU() *CPU {
	id := goroutineID()
	cpusMu.Lock()
	defer cpusMu.Unlock()
	c, ok := cpus[id]
	if !ok {
		c = &CPU{}
		cpus[id] = c
	}
	return c
}

// pushCli increments the nesting count, modelling cli().
func (c *CPU) pushCli() { c.nesting++ }

// popCli decrements the nesting count, modelling sti(); it is a fatal
// invariant violation to pop past zero.
func (c *CPU) popCli() {
	if c.nesting == 0 {
		panic("kernel: popCli without matching pushCli")
	}
	c.nesting--
}

// holdingExactlyOne reports whether this CPU's nesting count is exactly
// one, the precondition the scheduler asserts before performing a
// context switch.
func (c *CPU) holdingExactlyOne() bool { return c.nesting == 1 }
