package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sysmon-pro/sysmon/internal/monitor"
	"github.com/sysmon-pro/sysmon/internal/scheduler"
)

// Metrics is the Prometheus view of the latest refresh cycle. A dedicated
// registry keeps the endpoint free of default process collectors noise.
type Metrics struct {
	registry *prometheus.Registry

	cpuUsage     prometheus.Gauge
	memoryUsage  prometheus.Gauge
	diskUsage    prometheus.Gauge
	networkSpeed *prometheus.GaugeVec
	diskIOSpeed  *prometheus.GaugeVec
	battery      prometheus.Gauge
	cpuTemp      prometheus.Gauge
	statusTier   prometheus.Gauge
	alertsTotal  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmon_cpu_usage_percent",
			Help: "Current total CPU usage percentage",
		}),
		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmon_memory_usage_percent",
			Help: "Current memory usage percentage",
		}),
		diskUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmon_disk_usage_percent",
			Help: "Current root volume usage percentage",
		}),
		networkSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sysmon_network_kbytes_per_sec",
			Help: "Network speed in KB/s",
		}, []string{"direction"}),
		diskIOSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sysmon_disk_kbytes_per_sec",
			Help: "Disk I/O speed in KB/s",
		}, []string{"operation"}),
		battery: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmon_battery_percent",
			Help: "Battery charge percentage",
		}),
		cpuTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmon_cpu_temp_celsius",
			Help: "CPU temperature in Celsius",
		}),
		statusTier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmon_status_tier",
			Help: "Status indicator tier (0=nominal, 1=warning, 2=critical)",
		}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sysmon_alerts_total",
			Help: "Threshold breach notifications by metric",
		}, []string{"metric"}),
	}
	m.registry.MustRegister(
		m.cpuUsage, m.memoryUsage, m.diskUsage,
		m.networkSpeed, m.diskIOSpeed,
		m.battery, m.cpuTemp, m.statusTier, m.alertsTotal,
	)
	return m
}

// ObserveSnapshot publishes one refresh cycle's values.
func (m *Metrics) ObserveSnapshot(snap monitor.Snapshot, netDisk monitor.NetDiskMetrics, batt monitor.BatteryInfo, therm monitor.Thermals) {
	m.cpuUsage.Set(snap.CPUUsagePercent)
	m.memoryUsage.Set(snap.MemoryUsagePercent)
	m.diskUsage.Set(snap.DiskUsagePercent)
	m.networkSpeed.With(prometheus.Labels{"direction": "download"}).Set(netDisk.InBytesPerSec)
	m.networkSpeed.With(prometheus.Labels{"direction": "upload"}).Set(netDisk.OutBytesPerSec)
	m.diskIOSpeed.With(prometheus.Labels{"operation": "read"}).Set(netDisk.ReadKBytesPerSec)
	m.diskIOSpeed.With(prometheus.Labels{"operation": "write"}).Set(netDisk.WriteKBytesPerSec)
	if batt.Present {
		m.battery.Set(float64(batt.ChargePercent))
	}
	if therm.CPUTempC > 0 {
		m.cpuTemp.Set(therm.CPUTempC)
	}
}

func (m *Metrics) SetTier(t scheduler.Tier) {
	m.statusTier.Set(float64(t))
}

func (m *Metrics) CountAlert(metric string) {
	m.alertsTotal.With(prometheus.Labels{"metric": metric}).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
