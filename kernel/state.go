package kernel

// ProcState and ThreadState share the variant set described in the
// design document's data model: UNUSED, EMBRYO, SLEEPING, RUNNABLE,
// RUNNING, ZOMBIE. They are distinct Go types only so a compile error
// catches accidental cross-assignment; String() makes procdump output
// and test failures readable.
//
// State Transition Rules (process):
//
//	Unused -> Embryo           [allocProc]
//	Embryo -> Runnable         [userinit / fork completion]
//	Runnable <-> Running       [scheduler pick / quantum exhaustion|yield]
//	Running -> Sleeping        [sleep]
//	Sleeping -> Runnable       [wakeup]
//	Running|Runnable -> Zombie [exit]
//	Zombie -> Unused           [wait reaping]
//
// Thread slots follow the identical set of transitions; tid > 0 slots
// additionally cycle through the stack pool on Unused<->Embryo.
type ProcState int

const (
	Unused ProcState = iota
	Embryo
	Sleeping
	Runnable
	Running
	Zombie
)

func (s ProcState) String() string {
	switch s {
	case Unused:
		return "UNUSED"
	case Embryo:
		return "EMBRYO"
	case Sleeping:
		return "SLEEPING"
	case Runnable:
		return "RUNNABLE"
	case Running:
		return "RUNNING"
	case Zombie:
		return "ZOMBIE"
	default:
		return "INVALID"
	}
}

// ThreadState reuses the same variant set as ProcState; kept as a
// separate named type purely for readability at call sites.
type ThreadState = ProcState

// Level is an MLFQ queue level, L0 (highest) through L2 (lowest).
type Level int

const (
	L0 Level = iota
	L1
	L2
)

func (l Level) String() string {
	switch l {
	case L0:
		return "L0"
	case L1:
		return "L1"
	case L2:
		return "L2"
	default:
		return "L?"
	}
}

// quantum returns the time quantum, in ticks, for a level.
func (l Level) quantum() int {
	switch l {
	case L0:
		return quantumL0
	case L1:
		return quantumL1
	default:
		return quantumL2
	}
}
