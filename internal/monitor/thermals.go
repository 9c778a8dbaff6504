package monitor

import (
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/sysmon-pro/sysmon/internal/log"
)

// ThermalReader averages the CPU-adjacent temperature sensors. Sensor
// access needs no privileges but may return nothing on some hardware;
// a zero reading means "unknown" and the display omits it.
type ThermalReader struct {
	mu      sync.Mutex
	current Thermals
}

func NewThermalReader() *ThermalReader {
	return &ThermalReader{}
}

func (t *ThermalReader) Refresh() {
	temps, err := sensors.SensorsTemperatures()
	if err != nil {
		log.Debug().Err(err).Msg("temperature sensors failed")
		return
	}
	var sum float64
	var count int
	for _, reading := range temps {
		if reading.Temperature <= 0 || reading.Temperature > 150 {
			continue
		}
		key := strings.ToLower(reading.SensorKey)
		if strings.Contains(key, "cpu") || strings.Contains(key, "tc") || strings.Contains(key, "soc") {
			sum += reading.Temperature
			count++
		}
	}
	if count == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.CPUTempC = sum / float64(count)
}

func (t *ThermalReader) Current() Thermals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
