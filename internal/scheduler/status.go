package scheduler

// Tier is the three-level status summary shown by the dashboard indicator.
type Tier int

const (
	TierNominal Tier = iota
	TierWarning
	TierCritical
)

const (
	warningThreshold  = 70.0
	criticalThreshold = 85.0
)

func (t Tier) String() string {
	switch t {
	case TierWarning:
		return "warning"
	case TierCritical:
		return "critical"
	default:
		return "nominal"
	}
}

// TierFor maps the peak of the three usage percentages onto a tier.
// Pure and total: any real inputs produce a defined answer.
func TierFor(cpu, mem, disk float64) Tier {
	peak := cpu
	if mem > peak {
		peak = mem
	}
	if disk > peak {
		peak = disk
	}
	switch {
	case peak >= criticalThreshold:
		return TierCritical
	case peak >= warningThreshold:
		return TierWarning
	default:
		return TierNominal
	}
}
