package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserinit_AllocatesRunnableMainThread(t *testing.T) {
	tbl := NewTable()
	pid, err := tbl.Userinit("init")
	require.NoError(t, err)
	require.Equal(t, 1, pid)

	_, p, ok := tbl.findByPid(pid)
	require.True(t, ok)
	require.Equal(t, Runnable, p.State)
	require.Equal(t, Runnable, p.Thread(0).State)
	require.Equal(t, L0, p.Level)
}

func TestAllocProc_TableFull(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < NPROC; i++ {
		_, _, err := tbl.allocProc()
		require.NoError(t, err)
	}
	_, _, err := tbl.allocProc()
	require.ErrorIs(t, err, ErrNoSlot)
}

func TestAllocProc_HundredthSucceedsHundredFirstFailsWithNoSlot(t *testing.T) {
	tbl := NewTable()
	for i := 1; i <= 100; i++ {
		_, _, err := tbl.allocProc()
		require.NoErrorf(t, err, "process #%d should still fit in the table", i)
	}
	_, _, err := tbl.allocProc()
	require.ErrorIs(t, err, ErrNoSlot, "the 101st process creation must fail with ErrNoSlot")
}

func TestFreeProcLocked_ReleasesKernelStacksAndQueueEntries(t *testing.T) {
	tbl := NewTable()
	pid, err := tbl.Userinit("init")
	require.NoError(t, err)

	idx, p, ok := tbl.findByPid(pid)
	require.True(t, ok)

	tbl.mu.Lock()
	tbl.freeProcLocked(idx)
	tbl.mu.Unlock()

	require.Nil(t, tbl.slotAt(idx))
	require.False(t, tbl.levelQueues[L0].contains(p.Pid))
}

func TestReadyQueue_FIFOOrderAndRemove(t *testing.T) {
	var q readyQueue
	q.pushBack(1)
	q.pushBack(2)
	q.pushBack(3)
	q.remove(2)

	first, ok := q.popFront()
	require.True(t, ok)
	require.Equal(t, 1, first)

	second, ok := q.popFront()
	require.True(t, ok)
	require.Equal(t, 3, second)

	_, ok = q.popFront()
	require.False(t, ok)
}

func TestTickRing_EvictsOldestPastCapacity(t *testing.T) {
	r := newTickRing()
	for i := uint64(1); i <= tickRingCap+5; i++ {
		r.push(i)
	}
	require.Equal(t, tickRingCap, r.len())
	last, ok := r.last()
	require.True(t, ok)
	require.Equal(t, uint64(tickRingCap+5), last)
	require.Equal(t, uint64(6), r.slice()[0])
}

func TestCPU_PopCliPastZeroPanics(t *testing.T) {
	c := &CPU{}
	require.Panics(t, func() { c.popCli() })
}

func TestCPU_NestingTracksPushPop(t *testing.T) {
	c := &CPU{}
	c.pushCli()
	require.True(t, c.holdingExactlyOne())
	c.pushCli()
	require.False(t, c.holdingExactlyOne())
	c.popCli()
	require.True(t, c.holdingExactlyOne())
	c.popCli()
}
