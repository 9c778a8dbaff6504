package main

import (
	"fmt"
	"time"

	ui "github.com/gizak/termui/v3"
	w "github.com/gizak/termui/v3/widgets"

	"github.com/sysmon-pro/sysmon/internal/monitor"
	"github.com/sysmon-pro/sysmon/internal/scheduler"
)

var (
	cpuGauge, memoryGauge, diskGauge *w.Gauge
	statusText, netInfo, helpText    *w.Paragraph
	grid                             *ui.Grid
	showHelp                         bool
)

func setupUI() {
	gauges := []*w.Gauge{w.NewGauge(), w.NewGauge(), w.NewGauge()}
	titles := []string{"CPU Usage", "Memory Usage", "Disk Usage"}
	for i, gauge := range gauges {
		gauge.Percent = 0
		gauge.Title = titles[i]
	}
	cpuGauge, memoryGauge, diskGauge = gauges[0], gauges[1], gauges[2]

	statusText, netInfo, helpText = w.NewParagraph(), w.NewParagraph(), w.NewParagraph()
	statusText.Title = "Status"
	netInfo.Title = "Network & Battery"
	helpText.Title = "sysmon help menu"
	updateHelpText()
}

func updateHelpText() {
	helpText.Text = "sysmon is an open source system monitor for macOS written in Go.\n\n" +
		"Controls:\n" +
		"- r: Redraw the dashboard\n" +
		"- c: Cycle through UI color themes\n" +
		"- + or -: Adjust refresh interval (faster/slower)\n" +
		"- h or ?: Toggle this help menu\n" +
		"- q or <C-c>: Quit\n\n" +
		"Start Flags:\n" +
		"--interval, -i: Refresh interval in seconds. Default is 2.0.\n" +
		"--color, -c: UI color: green, red, blue, cyan, magenta, yellow, white.\n" +
		"--listen: Address for the status API and Prometheus metrics (e.g. :9090).\n" +
		"--headless: No TUI, JSON lines on stdout.\n" +
		fmt.Sprintf("\nVersion: %s", version)
}

func setupGrid() {
	grid = ui.NewGrid()
	grid.Set(
		ui.NewRow(1.0/2,
			ui.NewCol(1.0, ui.NewRow(1.0/3, cpuGauge), ui.NewRow(1.0/3, memoryGauge), ui.NewRow(1.0/3, diskGauge)),
		),
		ui.NewRow(1.0/2,
			ui.NewCol(1.0/2, statusText),
			ui.NewCol(1.0/2, netInfo),
		),
	)
}

func toggleHelpMenu() {
	showHelp = !showHelp
	if showHelp {
		newGrid := ui.NewGrid()
		newGrid.Set(ui.NewRow(1.0, ui.NewCol(1.0, helpText)))
		termWidth, termHeight := ui.TerminalDimensions()
		newGrid.SetRect(0, 0, termWidth, termHeight)
		grid = newGrid
	} else {
		setupGrid()
		termWidth, termHeight := ui.TerminalDimensions()
		grid.SetRect(0, 0, termWidth, termHeight)
	}
	ui.Clear()
	ui.Render(grid)
}

// applyTier recolors the status block. The tier color overrides the theme
// for the indicator only; the rest of the dashboard keeps the theme color.
func applyTier(t scheduler.Tier) {
	color := tierColor(t)
	statusText.TitleStyle.Fg = color
	statusText.BorderStyle.Fg = color
	statusText.TextStyle.Fg = color
}

func updateDashboard(view *statusView, intervalSeconds float64) {
	payload := view.payload()

	cpuGauge.Percent = clampPercent(payload.Usage.CPUUsagePercent)
	memoryGauge.Percent = clampPercent(payload.Usage.MemoryUsagePercent)
	diskGauge.Percent = clampPercent(payload.Usage.DiskUsagePercent)

	memStats := view.sampler.Memory()
	memoryGauge.Title = fmt.Sprintf("Memory Usage: %.2f GB / %.2f GB (Swap: %.2f/%.2f GB)",
		float64(memStats.Used)/1024/1024/1024,
		float64(memStats.Total)/1024/1024/1024,
		float64(memStats.SwapUsed)/1024/1024/1024,
		float64(memStats.SwapTotal)/1024/1024/1024)
	cpuGauge.Title = fmt.Sprintf("CPU Usage: %.1f%%", payload.Usage.CPUUsagePercent)
	diskGauge.Title = fmt.Sprintf("Disk Usage: %.1f%%", payload.Usage.DiskUsagePercent)

	statusText.Text = fmt.Sprintf("%s\nPeak usage drives the indicator:\n>= 85%% critical, >= 70%% warning\n\nRefresh: %.1fs\nUpdated: %s",
		statusLine(payload.Status),
		intervalSeconds,
		payload.Timestamp.Format(time.Kitchen),
	)
	if alert := view.alertLine(); alert != "" {
		statusText.Text += "\nLast alert: " + alert
	}

	netInfo.Text = netBatteryText(payload.NetDisk, payload.Battery, payload.Thermals)
}

func statusLine(status string) string {
	switch status {
	case "critical":
		return "Status: CRITICAL"
	case "warning":
		return "Status: WARNING"
	default:
		return "Status: nominal"
	}
}

func netBatteryText(netDisk monitor.NetDiskMetrics, batt monitor.BatteryInfo, therm monitor.Thermals) string {
	text := fmt.Sprintf("Net: ↑ %s/s ↓ %s/s\n",
		monitor.FormatBytes(netDisk.OutBytesPerSec*1000, networkUnit),
		monitor.FormatBytes(netDisk.InBytesPerSec*1000, networkUnit))
	text += fmt.Sprintf("I/O: R %s/s W %s/s\n",
		monitor.FormatBytes(netDisk.ReadKBytesPerSec*1024, diskUnit),
		monitor.FormatBytes(netDisk.WriteKBytesPerSec*1024, diskUnit))
	if batt.Present {
		state := "discharging"
		if batt.Charging {
			state = "charging"
		}
		text += fmt.Sprintf("Battery: %d%% (%s)", batt.ChargePercent, state)
		if batt.TimeRemaining != "" {
			text += fmt.Sprintf(", %s left", batt.TimeRemaining)
		}
		text += "\n"
	}
	if therm.CPUTempC > 0 {
		text += fmt.Sprintf("CPU Temp: %s", monitor.FormatTemp(therm.CPUTempC, tempUnit))
	}
	return text
}

func clampPercent(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
