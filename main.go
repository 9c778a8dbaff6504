// sysmon is a terminal system monitor for macOS: live CPU/memory/disk,
// network, battery and temperature stats with threshold alerting, usage
// history, and an optional HTTP status/metrics API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	ui "github.com/gizak/termui/v3"
	"golang.org/x/term"

	"github.com/sysmon-pro/sysmon/internal/alerts"
	"github.com/sysmon-pro/sysmon/internal/api"
	"github.com/sysmon-pro/sysmon/internal/config"
	"github.com/sysmon-pro/sysmon/internal/history"
	"github.com/sysmon-pro/sysmon/internal/log"
	"github.com/sysmon-pro/sysmon/internal/monitor"
	"github.com/sysmon-pro/sysmon/internal/scheduler"
)

var version = "v1.0.0"

var (
	networkUnit string
	diskUnit    string
	tempUnit    string
)

// statusView assembles the latest values from every source plus the last
// applied tier. It backs both the dashboard and the /api/status endpoint.
type statusView struct {
	sampler  *monitor.Sampler
	net      *monitor.NetStats
	battery  *monitor.Battery
	thermals *monitor.ThermalReader

	mu        sync.Mutex
	tier      scheduler.Tier
	lastAlert string
}

func (v *statusView) setTier(t scheduler.Tier) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tier = t
}

func (v *statusView) noteAlert(e alerts.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAlert = fmt.Sprintf("%s %.0f%% (limit %.0f%%) at %s",
		e.Metric, e.Value, e.Threshold, e.At.Format("15:04:05"))
}

func (v *statusView) alertLine() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastAlert
}

func (v *statusView) payload() api.StatusPayload {
	v.mu.Lock()
	tier := v.tier
	v.mu.Unlock()
	return api.StatusPayload{
		Timestamp: time.Now(),
		Status:    tier.String(),
		Usage:     v.sampler.Current(),
		NetDisk:   v.net.Current(),
		Battery:   v.battery.Current(),
		Thermals:  v.thermals.Current(),
	}
}

func main() {
	var (
		intervalSeconds float64
		colorName       string
		headless        bool
		headlessCount   int
		listenAddr      string
		debug           bool
		configPath      string
	)
	flag.Float64Var(&intervalSeconds, "interval", 0, "Refresh interval in seconds (0 = use saved setting, default 2.0)")
	flag.StringVar(&colorName, "color", "", "UI color: green, red, blue, cyan, magenta, yellow, white")
	flag.BoolVar(&headless, "headless", false, "Run without TUI, output JSON lines to stdout")
	flag.IntVar(&headlessCount, "count", 0, "Number of samples in headless mode (0 = infinite)")
	flag.StringVar(&listenAddr, "listen", "", "Address for the status API and Prometheus metrics (e.g. :9090)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configPath, "config", "", "Path to config file (default ~/.sysmon/config.json)")
	flag.StringVar(&networkUnit, "unit-network", "auto", "Network unit: auto, byte, kb, mb, gb")
	flag.StringVar(&diskUnit, "unit-disk", "auto", "Disk unit: auto, byte, kb, mb, gb")
	flag.StringVar(&tempUnit, "unit-temp", "celsius", "Temperature unit: celsius, fahrenheit")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Println("sysmon version:", version)
		os.Exit(0)
	}

	if debug {
		log.SetDebugMode()
	}
	dataDir := config.DefaultDir()
	logfile, err := log.SetupFile(dataDir)
	if err != nil {
		log.Warn().Err(err).Msg("logfile unavailable, logging to console only")
	} else {
		defer logfile.Close()
	}

	if configPath == "" {
		configPath = filepath.Join(dataDir, "config.json")
	}
	store := config.NewStore(configPath)
	store.Load()
	if intervalSeconds > 0 {
		store.Update(func(c *config.Config) { c.RefreshIntervalSeconds = intervalSeconds })
	}
	if colorName != "" {
		if _, ok := colorMap[colorName]; !ok {
			log.Warn().Str("color", colorName).Msg("unsupported color, using saved theme")
		} else {
			store.Update(func(c *config.Config) { c.Theme = colorName })
		}
	}

	sampler := monitor.NewSampler()
	netStats := monitor.NewNetStats()
	battery := monitor.NewBattery()
	thermals := monitor.NewThermalReader()
	view := &statusView{sampler: sampler, net: netStats, battery: battery, thermals: thermals}

	metrics := api.NewMetrics()
	evaluator := alerts.NewEvaluator(store, alerts.NotifierFunc(func(e alerts.Event) {
		alerts.LogNotifier{}.Notify(e)
		metrics.CountAlert(e.Metric)
		view.noteAlert(e)
	}))

	var recorder scheduler.HistoryRecorder = scheduler.RecorderFunc(func(cpu, mem float64) {})
	hist, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		log.Warn().Err(err).Msg("usage history disabled")
	} else {
		defer hist.Close()
		recorder = hist
		go pruneHistory(hist, store)
	}

	// Tier updates fan out to the active front-end through a buffered
	// channel; the non-blocking send makes applications from in-flight
	// ticks safe after the front-end is gone.
	tierCh := make(chan scheduler.Tier, 1)
	sink := scheduler.SinkFunc(func(t scheduler.Tier) {
		metrics.ObserveSnapshot(sampler.Current(), netStats.Current(), battery.Current(), thermals.Current())
		metrics.SetTier(t)
		view.setTier(t)
		select {
		case tierCh <- t:
		default:
		}
	})

	sched := scheduler.New(scheduler.RealClock{}, store, scheduler.Collaborators{
		Sampler:     sampler,
		Network:     netStats,
		Battery:     battery,
		Temperature: thermals,
		Alerts:      scheduler.AlertFunc(func(cpu, mem, disk float64) { evaluator.Evaluate(cpu, mem, disk) }),
		History:     recorder,
		Status:      sink,
	})

	if listenAddr != "" {
		server := api.NewServer(view.payload, hist, metrics)
		server.Start(listenAddr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(ctx)
		}()
	}

	if headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		runHeadless(view, sched, tierCh, headlessCount)
		return
	}
	if err := runDashboard(store, view, sched, tierCh, logfile); err != nil {
		log.Fatal().Err(err).Msg("dashboard failed")
	}
}

// pruneHistory sweeps old usage points once an hour, honoring the
// retention setting at sweep time.
func pruneHistory(hist *history.Store, store *config.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		days := store.Get().HistoryRetentionDays
		if days <= 0 {
			continue
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		if n, err := hist.Prune(context.Background(), cutoff); err != nil {
			log.Debug().Err(err).Msg("history prune failed")
		} else if n > 0 {
			log.Debug().Int64("removed", n).Msg("history pruned")
		}
	}
}

func runDashboard(store *config.Store, view *statusView, sched *scheduler.Scheduler, tierCh <-chan scheduler.Tier, logfile *os.File) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()
	log.Quiet(logfile)

	setupUI()
	applyTheme(store.Get().Theme)
	setupGrid()

	termWidth, termHeight := ui.TerminalDimensions()
	if g := store.Get().Geometry; g != nil && g.Width > 0 && g.Height > 0 {
		log.Debug().Int("width", g.Width).Int("height", g.Height).Msg("restored dashboard geometry")
	}
	grid.SetRect(0, 0, termWidth, termHeight)
	ui.Render(grid)

	sched.Start()
	defer sched.Stop()

	saveGeometry := func() {
		w, h := ui.TerminalDimensions()
		store.Update(func(c *config.Config) {
			c.Geometry = &config.Geometry{X: 0, Y: 0, Width: w, Height: h}
		})
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	uiEvents := ui.PollEvents()
	for {
		select {
		case t := <-tierCh:
			applyTier(t)
			updateDashboard(view, store.Get().RefreshIntervalSeconds)
			ui.Render(grid)
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				saveGeometry()
				return nil
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				ui.Render(grid)
			case "r":
				termWidth, termHeight := ui.TerminalDimensions()
				grid.SetRect(0, 0, termWidth, termHeight)
				ui.Clear()
				ui.Render(grid)
			case "c":
				next := cycleTheme(store.Get().Theme)
				store.Update(func(c *config.Config) { c.Theme = next })
				ui.Clear()
				ui.Render(grid)
			case "-", "_":
				adjustInterval(store, -0.5)
			case "+", "=":
				adjustInterval(store, 0.5)
			case "h", "?":
				toggleHelpMenu()
			}
		case <-quit:
			saveGeometry()
			return nil
		}
	}
}

// adjustInterval nudges the refresh rate through the settings store, which
// notifies the scheduler to rearm its fast timer.
func adjustInterval(store *config.Store, delta float64) {
	store.Update(func(c *config.Config) {
		next := c.RefreshIntervalSeconds + delta
		if next < 0.5 {
			next = 0.5
		}
		if next > 10 {
			next = 10
		}
		c.RefreshIntervalSeconds = next
	})
}
