package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/sysmon-pro/sysmon/internal/log"
	"github.com/sysmon-pro/sysmon/internal/scheduler"
)

// runHeadless prints one JSON status line per refresh cycle. count limits
// how many samples are emitted; 0 runs until interrupted.
func runHeadless(view *statusView, sched *scheduler.Scheduler, tierCh <-chan scheduler.Tier, count int) {
	encoder := json.NewEncoder(os.Stdout)

	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	samplesCollected := 0
	for {
		select {
		case <-tierCh:
			if err := encoder.Encode(view.payload()); err != nil {
				log.Error().Err(err).Msg("error encoding JSON")
			}
			samplesCollected++
			if count > 0 && samplesCollected >= count {
				return
			}
		case <-quit:
			return
		}
	}
}
