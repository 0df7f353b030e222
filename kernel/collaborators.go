package kernel

import "sync"

// AddressSpace is the contract this package requires of the virtual
// memory layer (allocuvm/deallocuvm/copyuvm/freevm/switchuvm/clearpteu/
// copyout in the source kernel). The VM allocator itself is out of
// scope; Table only ever calls through this interface, so tests and the
// demo shell can supply a cheap fake instead of real page tables.
type AddressSpace interface {
	// Grow extends the mapped region from oldSz to newSz bytes, returning
	// the new size or an error (stands in for allocuvm).
	Grow(oldSz, newSz uintptr) (uintptr, error)
	// Shrink unmaps from oldSz down to newSz bytes, returning the new
	// size (stands in for deallocuvm; never fails in the source kernel).
	Shrink(oldSz, newSz uintptr) uintptr
	// Copy duplicates the address space up to sz bytes (copyuvm).
	Copy(sz uintptr) (AddressSpace, error)
	// Free releases every resource owned by the address space (freevm).
	Free()
	// Switch refreshes the active page-table mapping for this address
	// space (switchuvm), called after every mutation and before any
	// context switch makes the change observable.
	Switch()
	// ClearUser clears the user-accessible bit on the page containing va,
	// used to carve out a guard page below a thread's user stack
	// (clearpteu).
	ClearUser(va uintptr)
	// CopyOut writes data into the address space at va (copyout), used
	// to push the thread_create bootstrap frame onto a new user stack.
	CopyOut(va uintptr, data []byte) error
}

// Files stands in for the inode/file-descriptor layer (cwd + ofile).
// The filesystem itself is out of scope; Table only copies and drops
// this handle on fork/exit.
type Files struct {
	Cwd   any
	Ofile [16]any
}

// Clone returns a shallow duplicate of f, the way fork duplicates file
// descriptors and cwd by reference-counting in the source kernel.
func (f Files) Clone() Files {
	return f
}

// Context is the callee-saved register snapshot a thread's kernel stack
// holds between context switches. Its fields are opaque to this package;
// only the Dispatcher interprets them.
type Context struct {
	// Entered counts how many times this context has been switched to,
	// solely so tests can assert a switch occurred without a real
	// assembly trampoline.
	Entered int
	// IP models the context's saved instruction pointer: the
	// fork-return trampoline address for a freshly allocated thread.
	IP uintptr
}

// Trapframe is the processor-state snapshot pushed at the top of a
// thread's kernel stack on kernel entry. Only the fields this package
// inspects are modelled.
type Trapframe struct {
	Eip uintptr
	Esp uintptr
	Eax uintptr // return-value register
}

// Dispatcher is the contract this package requires of the low-level CPU
// context-switch primitive (swtch in the source kernel). The real
// primitive is out of scope; Table.Schedule calls Switch exactly once
// each time it selects a process.
type Dispatcher interface {
	// Switch saves the running context into from and restores to,
	// returning only once control returns to from (i.e. once the thread
	// represented by to next suspends).
	Switch(from, to *Context)
}

// cooperativeDispatcher is the default Dispatcher: it has no real
// machine to switch, so it only records activation counts. It is
// sufficient to drive every bookkeeping invariant this package defines,
// since no user code ever actually executes here.
type cooperativeDispatcher struct{}

func (cooperativeDispatcher) Switch(from, to *Context) {
	if to != nil {
		to.Entered++
	}
}

// kstackPool recycles fixed-size kernel-stack buffers using the same
// sync.Pool idiom as eventloop's chunkPool (ingress.go), standing in
// for kalloc/kfree.
var kstackPool = sync.Pool{
	New: func() any {
		buf := make([]byte, KStackSize)
		return &buf
	},
}

func allocKStack() *[]byte {
	return kstackPool.Get().(*[]byte)
}

func freeKStack(b *[]byte) {
	if b == nil {
		return
	}
	kstackPool.Put(b)
}

// fakevm is a minimal AddressSpace good enough for tests and the demo
// shell: it tracks only a byte size, never touching real memory beyond
// what Go already manages for us.
type fakevm struct {
	size uintptr
}

// NewFakeAddressSpace returns an AddressSpace backed by nothing but a
// size counter, for use by tests and cmd/pmanager.
func NewFakeAddressSpace() AddressSpace { return &fakevm{} }

func (f *fakevm) Grow(oldSz, newSz uintptr) (uintptr, error) {
	f.size = newSz
	return newSz, nil
}

func (f *fakevm) Shrink(oldSz, newSz uintptr) uintptr {
	f.size = newSz
	return newSz
}

func (f *fakevm) Copy(sz uintptr) (AddressSpace, error) {
	return &fakevm{size: sz}, nil
}

func (f *fakevm) Free() { f.size = 0 }

func (f *fakevm) Switch() {}

func (f *fakevm) ClearUser(va uintptr) {}

func (f *fakevm) CopyOut(va uintptr, data []byte) error { return nil }
