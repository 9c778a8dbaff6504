package scheduler

// Func adapters so wiring code can satisfy the collaborator contracts
// without dedicated types.

type RefresherFunc func()

func (f RefresherFunc) Refresh() { f() }

type AlertFunc func(cpu, mem, disk float64)

func (f AlertFunc) Evaluate(cpu, mem, disk float64) { f(cpu, mem, disk) }

type RecorderFunc func(cpu, mem float64)

func (f RecorderFunc) Record(cpu, mem float64) { f(cpu, mem) }

type SinkFunc func(Tier)

func (f SinkFunc) Apply(t Tier) { f(t) }
