// Package live renders the active climbing session in a terminal loop.
//
// The view refreshes once per second (elapsed time, climb counts, and the
// session's grade aggregation) and re-reads the grade display settings when
// a reload notification arrives. This is presentation only; the session
// state machine is the source of truth and the loop never mutates it.
package live

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/logger"
	"github.com/cragtrack/cragtrack/pkg/session"
)

// Config holds the configuration for the live view.
type Config struct {
	// RefreshInterval is the interval between display updates
	// (default: 1 second).
	RefreshInterval time.Duration

	// Settings returns the current grade display settings. Required.
	Settings func() grade.Settings

	// Reload, when non-nil, triggers a settings re-read on receive.
	Reload <-chan struct{}
}

// View renders the active session.
type View struct {
	config  Config
	tracker *session.Tracker
	climbs  *climb.Store
	out     io.Writer
	logger  logger.Logger

	settings grade.Settings
	now      func() time.Time
}

// New creates a live view.
func New(cfg Config, tracker *session.Tracker, climbs *climb.Store, out io.Writer, log logger.Logger) *View {
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = time.Second
	}

	return &View{
		config:   cfg,
		tracker:  tracker,
		climbs:   climbs,
		out:      out,
		logger:   log,
		settings: cfg.Settings(),
		now:      time.Now,
	}
}

// Run refreshes the view until the context is cancelled.
func (v *View) Run(ctx context.Context) error {
	ticker := time.NewTicker(v.config.RefreshInterval)
	defer ticker.Stop()

	v.render()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			v.render()

		case _, ok := <-v.config.Reload:
			if !ok {
				continue
			}
			v.settings = v.config.Settings()
			v.logger.Info("display settings reloaded",
				"boulder_system", v.settings.BoulderSystem,
				"route_system", v.settings.RouteSystem)
			v.render()
		}
	}
}

// render writes one frame.
func (v *View) render() {
	// Clear screen and home the cursor.
	fmt.Fprint(v.out, "\033[2J\033[H")

	active := v.tracker.Active()
	if active == nil {
		fmt.Fprintln(v.out, "No active session. Run 'cragtrack start' to begin.")
		return
	}

	now := v.now()

	elapsed := now.Sub(active.StartTime) - active.PausedDuration
	state := "active"
	if active.Paused() {
		// Freeze the clock at the pause instant.
		elapsed = active.PausedAt.Sub(active.StartTime) - active.PausedDuration
		state = "paused"
	}

	fmt.Fprintf(v.out, "%s  [%s]\n", active.DisplayName(), state)
	fmt.Fprintf(v.out, "Elapsed: %s\n\n", formatDuration(elapsed))

	sessionClimbs := v.climbs.ForSession(active.ID)
	if len(sessionClimbs) == 0 {
		fmt.Fprintln(v.out, "No climbs logged yet.")
		return
	}

	sends, attempts := 0, 0
	for _, c := range sessionClimbs {
		if c.Status == climb.StatusSend {
			sends++
		} else {
			attempts++
		}
	}
	fmt.Fprintf(v.out, "Climbs: %d  Sends: %d  Attempts: %d\n\n",
		len(sessionClimbs), sends, attempts)

	WriteAggregates(v.out, climb.AggregateByType(sessionClimbs), v.settings)
}

// WriteAggregates renders per-type grade counts, hardest first, converting
// grades into the preferred display vocabulary.
func WriteAggregates(w io.Writer, byType map[grade.Type][]climb.GradeCount, settings grade.Settings) {
	for _, t := range grade.Types() {
		counts := byType[t]
		if len(counts) == 0 {
			continue
		}

		fmt.Fprintf(w, "%s\n", t.Label())

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  GRADE\tSENDS\tATTEMPTS")
		for _, gc := range counts {
			fmt.Fprintf(tw, "  %s\t%d\t%d\n",
				grade.Display(gc.Grade, t, settings), gc.Sends, gc.Attempts)
		}
		tw.Flush() // nolint:errcheck
		fmt.Fprintln(w)
	}
}

// formatDuration renders a duration as h:mm:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
