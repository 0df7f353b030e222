package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newInitTable(t *testing.T) (*Table, int) {
	t.Helper()
	tbl := NewTable()
	pid, err := tbl.Userinit("init")
	require.NoError(t, err)
	return tbl, pid
}

func TestFork_ChildInheritsSizeAndStartsAtL0(t *testing.T) {
	tbl, initPid := newInitTable(t)

	childPid, err := tbl.Fork(initPid)
	require.NoError(t, err)
	require.NotEqual(t, initPid, childPid)

	_, child, ok := tbl.findByPid(childPid)
	require.True(t, ok)
	require.Equal(t, Runnable, child.State)
	require.Equal(t, L0, child.Level)
	require.Equal(t, initPid, child.ParentPid)
	require.Equal(t, uintptr(PGSize), child.Sz)
}

func TestFork_UnknownCallerFails(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Fork(999)
	require.ErrorIs(t, err, ErrNoSuchPid)
}

func TestWait_NoChildrenFailsImmediately(t *testing.T) {
	tbl, initPid := newInitTable(t)
	_, err := tbl.Wait(initPid)
	require.ErrorIs(t, err, ErrNoChildren)
}

func TestWait_ReapsZombieChildAndReturnsItsPid(t *testing.T) {
	tbl, initPid := newInitTable(t)
	childPid, err := tbl.Fork(initPid)
	require.NoError(t, err)

	require.NoError(t, tbl.Exit(childPid))

	reaped, err := tbl.Wait(initPid)
	require.NoError(t, err)
	require.Equal(t, childPid, reaped)

	_, _, ok := tbl.findByPid(childPid)
	require.False(t, ok, "reaped child must be freed from the table")
}

func TestWait_BlocksUntilChildExits(t *testing.T) {
	tbl, initPid := newInitTable(t)
	childPid, err := tbl.Fork(initPid)
	require.NoError(t, err)

	done := make(chan int, 1)
	go func() {
		reaped, err := tbl.Wait(initPid)
		require.NoError(t, err)
		done <- reaped
	}()

	// give the waiter a chance to actually block on the condition variable
	require.Eventually(t, func() bool {
		tbl.mu.Lock()
		defer tbl.mu.Unlock()
		_, p, _ := tbl.findByPid(initPid)
		return p.Thread(0).State == Sleeping
	}, time.Second, time.Millisecond)

	require.NoError(t, tbl.Exit(childPid))
	require.Equal(t, childPid, <-done)
}

func TestExit_ReparentsChildrenToInit(t *testing.T) {
	tbl, initPid := newInitTable(t)
	midPid, err := tbl.Fork(initPid)
	require.NoError(t, err)
	grandchildPid, err := tbl.Fork(midPid)
	require.NoError(t, err)

	require.NoError(t, tbl.Exit(midPid))

	_, grandchild, ok := tbl.findByPid(grandchildPid)
	require.True(t, ok)
	require.Equal(t, initPid, grandchild.ParentPid)
}

func TestExit_WakesParentBlockedInWait(t *testing.T) {
	tbl, initPid := newInitTable(t)
	childPid, err := tbl.Fork(initPid)
	require.NoError(t, err)

	waitErr := make(chan error, 1)
	go func() {
		_, err := tbl.Wait(initPid)
		waitErr <- err
	}()

	require.NoError(t, tbl.Exit(childPid))
	require.NoError(t, <-waitErr)
}

func TestProcDump_ListsEveryLiveProcessAndThread(t *testing.T) {
	tbl, initPid := newInitTable(t)
	_, err := tbl.Fork(initPid)
	require.NoError(t, err)

	lines := tbl.ProcDump()
	require.NotEmpty(t, lines)
	require.Len(t, lines, 4) // 2 procs x (1 header + 1 thread line)
}
