package main

import (
	ui "github.com/gizak/termui/v3"

	"github.com/sysmon-pro/sysmon/internal/scheduler"
)

var colorMap = map[string]ui.Color{
	"green":   ui.ColorGreen,
	"red":     ui.ColorRed,
	"blue":    ui.ColorBlue,
	"cyan":    ui.ColorCyan,
	"magenta": ui.ColorMagenta,
	"yellow":  ui.ColorYellow,
	"white":   ui.ColorWhite,
}

var colorNames = []string{"green", "red", "blue", "cyan", "magenta", "yellow", "white"}

// tierColor maps the three status tiers onto their fixed display colors.
func tierColor(t scheduler.Tier) ui.Color {
	switch t {
	case scheduler.TierCritical:
		return ui.ColorRed
	case scheduler.TierWarning:
		return ui.ColorYellow
	default:
		return ui.ColorGreen
	}
}

func applyTheme(colorName string) {
	color, ok := colorMap[colorName]
	if !ok {
		color = ui.ColorGreen
	}

	ui.Theme.Block.Title.Fg = color
	ui.Theme.Block.Border.Fg = color
	ui.Theme.Paragraph.Text.Fg = color
	ui.Theme.Gauge.Label.Fg = color
	ui.Theme.Gauge.Bar = color

	if cpuGauge == nil {
		return
	}
	cpuGauge.BarColor = color
	cpuGauge.BorderStyle.Fg = color
	cpuGauge.TitleStyle.Fg = color

	memoryGauge.BarColor = color
	memoryGauge.BorderStyle.Fg = color
	memoryGauge.TitleStyle.Fg = color

	diskGauge.BarColor = color
	diskGauge.BorderStyle.Fg = color
	diskGauge.TitleStyle.Fg = color

	netInfo.TextStyle.Fg = color
	netInfo.BorderStyle.Fg = color
	netInfo.TitleStyle.Fg = color

	helpText.TextStyle.Fg = color
	helpText.BorderStyle.Fg = color
	helpText.TitleStyle.Fg = color
}

func cycleTheme(current string) string {
	idx := 0
	for i, name := range colorNames {
		if name == current {
			idx = i
			break
		}
	}
	next := colorNames[(idx+1)%len(colorNames)]
	applyTheme(next)
	return next
}
