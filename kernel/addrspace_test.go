package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSbrk_GrowReturnsOldBreak(t *testing.T) {
	tbl, pid := newInitTable(t)

	tbl.mu.Lock()
	_, p, _ := tbl.findByPid(pid)
	before := p.Sz
	tbl.mu.Unlock()

	old, err := tbl.Sbrk(pid, PGSize)
	require.NoError(t, err)
	require.Equal(t, before, old)

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	require.Equal(t, before+PGSize, p.Sz)
}

func TestSbrk_NegativeShrinksAndNeverUnderflows(t *testing.T) {
	tbl, pid := newInitTable(t)
	_, err := tbl.Sbrk(pid, -int(PGSize)*100)
	require.NoError(t, err)

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	_, p, _ := tbl.findByPid(pid)
	require.Equal(t, uintptr(0), p.Sz)
}

func TestSbrk_RejectsGrowthPastMemoryLimit(t *testing.T) {
	tbl, pid := newInitTable(t)
	require.NoError(t, tbl.SetMemoryLimit(pid, PGSize))

	_, err := tbl.Sbrk(pid, PGSize)
	require.ErrorIs(t, err, ErrMemoryLimit)
}

func TestSetMemoryLimit_RejectsLimitBelowCurrentUsage(t *testing.T) {
	tbl, pid := newInitTable(t)
	_, err := tbl.Sbrk(pid, PGSize*10)
	require.NoError(t, err)

	err = tbl.SetMemoryLimit(pid, PGSize)
	require.ErrorIs(t, err, ErrAlreadyExceeded)
}

func TestSetMemoryLimit_ZeroClearsLimit(t *testing.T) {
	tbl, pid := newInitTable(t)
	require.NoError(t, tbl.SetMemoryLimit(pid, PGSize))
	require.NoError(t, tbl.SetMemoryLimit(pid, 0))

	_, err := tbl.Sbrk(pid, PGSize*50)
	require.NoError(t, err)
}

func TestExec2_RejectsOutOfRangeStackSize(t *testing.T) {
	tbl, pid := newInitTable(t)

	err := tbl.Exec2(pid, "prog", 0x1000, PGSize, 0)
	require.ErrorIs(t, err, ErrBadArg)

	err = tbl.Exec2(pid, "prog", 0x1000, PGSize, MaxStackPages+1)
	require.ErrorIs(t, err, ErrBadArg)
}

func TestExec2_CollapsesToSingleMainThread(t *testing.T) {
	tbl, pid := newInitTable(t)
	_, err := tbl.ThreadCreate(pid, 0x1000, 0)
	require.NoError(t, err)
	_, err = tbl.ThreadCreate(pid, 0x2000, 0)
	require.NoError(t, err)

	require.NoError(t, tbl.Exec2(pid, "newprog", 0x8000, PGSize, 2))

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	_, p, _ := tbl.findByPid(pid)
	require.Equal(t, 0, p.CurThread)
	require.Equal(t, "newprog", p.Name)
	require.NotNil(t, p.ttable[0])
	for i := 1; i < ThreadsPerProc; i++ {
		require.Nil(t, p.ttable[i])
	}
	require.Equal(t, uintptr(0x8000), p.Thread(0).TF.Eip)
}

func TestExec2_CollapseRelocatesCallerThreadIntoSlotZero(t *testing.T) {
	tbl, pid := newInitTable(t)
	tid, err := tbl.ThreadCreate(pid, 0x1000, 0)
	require.NoError(t, err)

	tbl.mu.Lock()
	_, p, _ := tbl.findByPid(pid)
	p.CurThread = tid
	tbl.mu.Unlock()

	require.NoError(t, tbl.Exec2(pid, "newprog", 0x9000, PGSize, 1))

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	require.Equal(t, 0, p.CurThread)
	require.Equal(t, 0, p.Thread(0).Tid)
	require.Equal(t, uintptr(0x9000), p.Thread(0).TF.Eip)
}
