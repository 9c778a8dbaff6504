package monitor

import (
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sysmon-pro/sysmon/internal/log"
)

var pmsetPercentRe = regexp.MustCompile(`(\d+)%`)
var pmsetTimeRe = regexp.MustCompile(`(\d+:\d+) remaining`)

// Battery reads charge state from `pmset -g batt`. Machines without a
// battery (desktops) report Present=false and the dashboard hides the row.
type Battery struct {
	mu      sync.Mutex
	current BatteryInfo
}

func NewBattery() *Battery {
	return &Battery{}
}

func (b *Battery) Refresh() {
	out, err := exec.Command("pmset", "-g", "batt").Output()
	if err != nil {
		log.Debug().Err(err).Msg("pmset failed")
		return
	}
	info := parsePmsetOutput(string(out))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = info
}

func (b *Battery) Current() BatteryInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// parsePmsetOutput extracts charge state from pmset's battery listing,
// e.g. ` -InternalBattery-0 (id=...)	87%; discharging; 4:32 remaining`.
func parsePmsetOutput(output string) BatteryInfo {
	var info BatteryInfo
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "InternalBattery") {
			continue
		}
		info.Present = true
		if m := pmsetPercentRe.FindStringSubmatch(line); len(m) == 2 {
			pct, _ := strconv.Atoi(m[1])
			info.ChargePercent = pct
		}
		info.Charging = strings.Contains(line, "; charging") ||
			strings.Contains(line, "AC attached") ||
			strings.Contains(line, "charged")
		if m := pmsetTimeRe.FindStringSubmatch(line); len(m) == 2 {
			info.TimeRemaining = m[1]
		}
		break
	}
	return info
}
