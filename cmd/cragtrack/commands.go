package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/config"
	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/live"
	"github.com/cragtrack/cragtrack/pkg/logger"
	"github.com/cragtrack/cragtrack/pkg/session"
	"github.com/cragtrack/cragtrack/pkg/store"
	"github.com/cragtrack/cragtrack/pkg/watcher"
)

// runStartCommand starts a new session, or reports the one already running.
func runStartCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	existing := a.tracker.Active()
	s := a.tracker.Start()
	if existing != nil {
		fmt.Printf("Session already active: %s (started %s)\n",
			s.DisplayName(), s.StartTime.Format("15:04"))
		return nil
	}

	fmt.Printf("Session started: %s\n", s.DisplayName())
	return nil
}

// runPauseCommand pauses the active session and prints its summary so far.
func runPauseCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	active := a.tracker.Active()
	summary := a.tracker.Pause()
	if summary == nil {
		switch {
		case active == nil:
			fmt.Println("No active session.")
		case active.Paused():
			fmt.Println("Session is already paused.")
		default:
			fmt.Println("No climbs logged yet; nothing to summarize.")
		}
		return nil
	}

	fmt.Println("Session paused.")
	printSummary(summary, a.gradeSettings())
	return nil
}

// runResumeCommand resumes a paused session.
func runResumeCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	active := a.tracker.Active()
	switch {
	case active == nil:
		fmt.Println("No active session.")
	case !active.Paused():
		fmt.Println("Session is not paused.")
	default:
		a.tracker.Resume()
		fmt.Println("Session resumed.")
	}
	return nil
}

// runEndCommand finalizes the active session and prints the final summary.
func runEndCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("end", flag.ExitOnError)
	name := fs.String("name", "", "name to store for the finished session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	active := a.tracker.Active()
	if active == nil {
		fmt.Println("No active session.")
		return nil
	}

	summary := a.tracker.End(*name)
	if summary == nil {
		fmt.Println("Session had no climbs; discarded.")
		return nil
	}

	fmt.Println("Session ended.")
	printSummary(summary, a.gradeSettings())
	return nil
}

// runLogCommand records a single climb against the active session.
func runLogCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	gradeToken := fs.String("grade", "", "grade, in any recognized vocabulary (e.g. V4, 6B, 5.11a)")
	typeName := fs.String("type", "", "climb type: boulder, sport, or trad")
	attempt := fs.Bool("attempt", false, "record an attempt instead of a send")
	sessionID := fs.String("session", "", "session id (defaults to the active session)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *gradeToken == "" {
		return fmt.Errorf("-grade is required")
	}
	t := grade.Type(*typeName)
	if !t.Valid() {
		return fmt.Errorf("invalid -type %q: must be boulder, sport, or trad", *typeName)
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	id := *sessionID
	if id == "" {
		active := a.tracker.Active()
		if active == nil {
			return fmt.Errorf("no active session: run 'cragtrack start' or pass -session")
		}
		id = active.ID
	}

	status := climb.StatusSend
	if *attempt {
		status = climb.StatusAttempt
	}

	c := a.climbs.Add(id, *gradeToken, t, status)
	fmt.Printf("Logged %s %s (%s)\n",
		t.Label(), grade.Display(c.Grade, t, a.gradeSettings()), c.Status)
	return nil
}

// runDeleteCommand removes a climb by id.
func runDeleteCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.String("id", "", "climb id to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	a.climbs.Delete(*id)
	fmt.Println("Climb deleted.")
	return nil
}

// runStatsCommand prints all-time statistics across every session.
func runStatsCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	all := a.climbs.All()
	if len(all) == 0 {
		fmt.Println("No climbs logged yet.")
		return nil
	}

	var sends, attempts int
	for _, c := range all {
		if c.Status == climb.StatusSend {
			sends++
		} else {
			attempts++
		}
	}

	fmt.Printf("All-time: %d climbs (%d sends, %d attempts)\n\n", len(all), sends, attempts)
	live.WriteAggregates(os.Stdout, climb.AggregateByType(all), a.gradeSettings())
	return nil
}

// runHistoryCommand lists past sessions, newest first.
func runHistoryCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	entries := a.tracker.History()
	if len(entries) == 0 {
		fmt.Println("No sessions yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tNAME\tCLIMBS\tDURATION\tID")
	for _, e := range entries {
		name := e.Name
		if name == "" {
			s := session.Session{StartTime: e.StartTime}
			name = s.DisplayName()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			e.StartTime.Format("2006-01-02"), name, e.Climbs,
			fmtDuration(e.EndTime.Sub(e.StartTime)), e.SessionID)
	}
	return w.Flush()
}

// runWatchCommand renders the active session live until interrupted. Edits to
// the configuration file take effect without restarting the view.
func runWatchCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	var reload <-chan struct{}
	w, err := watcher.New(watcher.Config{Path: cfgFile}, logger.Component(a.log, "watcher"))
	if err != nil {
		a.log.Warn("config watcher unavailable", "error", err)
	} else if err := w.Start(ctx); err != nil {
		a.log.Warn("config watcher failed to start", "error", err)
		w.Close()
	} else {
		reload = w.Events()
		defer w.Close()
	}

	view := live.New(live.Config{
		RefreshInterval: a.cfg.Display.RefreshRate,
		Settings: func() grade.Settings {
			if cfg, err := config.LoadFromFile(cfgFile); err == nil {
				a.cfg = cfg
			}
			return a.gradeSettings()
		},
		Reload: reload,
	}, a.tracker, a.climbs, os.Stdout, logger.Component(a.log, "live"))

	if err := view.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runSyncCommand reconciles local data with the remote backend.
func runSyncCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if a.reconciler == nil {
		return fmt.Errorf("remote backend is not configured: set remote.base_url")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := a.reconciler.Sync(ctx, a.climbs.All(), a.tracker.Records())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	a.climbs.ReplaceAll(result.Climbs)
	a.tracker.ApplyMetadata(result.Sessions)

	fmt.Printf("Synced: %d climbs, %d sessions\n", len(result.Climbs), len(result.Sessions))
	return nil
}

// runMigrateCommand uploads data recorded before sign-in to the backend.
func runMigrateCommand(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if a.reconciler == nil {
		return fmt.Errorf("remote backend is not configured: set remote.base_url")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	climbs := a.climbs.All()
	sessions := a.tracker.Records()
	if err := a.reconciler.Migrate(ctx, climbs, sessions); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migrated %d climbs and %d sessions\n", len(climbs), len(sessions))
	return nil
}

// runSessionCommand dispatches the session management subcommands.
func runSessionCommand(configPath string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: cragtrack session name|list|delete")
	}

	switch args[0] {
	case "name":
		return runSessionNameCommand(configPath, args[1:])
	case "list":
		return runHistoryCommand(configPath)
	case "delete":
		return runSessionDeleteCommand(configPath, args[1:])
	default:
		return fmt.Errorf("unknown session subcommand: %s", args[0])
	}
}

// runSessionNameCommand assigns a name to a session.
func runSessionNameCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("session name", flag.ExitOnError)
	id := fs.String("id", "", "session id (defaults to the active session)")
	name := fs.String("name", "", "name to assign")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	sessionID := *id
	if sessionID == "" {
		active := a.tracker.Active()
		if active == nil {
			return fmt.Errorf("no active session: pass -id to name a past session")
		}
		sessionID = active.ID
	}

	a.tracker.SetName(sessionID, *name)
	fmt.Printf("Session named %q\n", *name)
	return nil
}

// runSessionDeleteCommand removes a session and every climb in it.
func runSessionDeleteCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("session delete", flag.ExitOnError)
	id := fs.String("id", "", "session id to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	a.tracker.DeleteSession(*id)
	fmt.Println("Session deleted.")
	return nil
}

// runConfigCommand dispatches the configuration subcommands.
func runConfigCommand(configPath string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: cragtrack config show|init|grades")
	}

	switch args[0] {
	case "show":
		return runConfigShowCommand(configPath)
	case "init":
		return runConfigInitCommand(configPath)
	case "grades":
		return runConfigGradesCommand(configPath, args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

// runConfigShowCommand prints the effective configuration as YAML.
func runConfigShowCommand(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

// runConfigInitCommand writes a default configuration file.
func runConfigInitCommand(configPath string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// runConfigGradesCommand shows or updates the persisted grade display
// settings. Persisted settings override the configuration file.
func runConfigGradesCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("config grades", flag.ExitOnError)
	boulder := fs.String("boulder", "", "boulder grade system: vscale or font")
	route := fs.String("route", "", "route grade system: yds or french")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	settings := a.gradeSettings()
	if *boulder == "" && *route == "" {
		fmt.Printf("boulder: %s\nroute:   %s\n", settings.BoulderSystem, settings.RouteSystem)
		return nil
	}

	if *boulder != "" {
		settings.BoulderSystem = grade.System(*boulder)
	}
	if *route != "" {
		settings.RouteSystem = grade.System(*route)
	}
	if !settings.Valid() {
		return fmt.Errorf("invalid grade system combination")
	}

	if err := a.gateway.Save(store.KeyAppSettings, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("boulder: %s\nroute:   %s\n", settings.BoulderSystem, settings.RouteSystem)
	return nil
}

// printSummary renders a session summary to stdout.
func printSummary(s *session.Summary, settings grade.Settings) {
	fmt.Printf("\nDuration: %s\n", fmtDuration(s.Duration))
	fmt.Printf("Climbs:   %d (%d sends, %d attempts)\n", s.TotalClimbs, s.Sends, s.Attempts)

	if len(s.MaxGradeByType) > 0 {
		fmt.Print("Best:     ")
		first := true
		for _, t := range grade.Types() {
			c, ok := s.MaxGradeByType[t]
			if !ok || c == nil {
				continue
			}
			if !first {
				fmt.Print(", ")
			}
			fmt.Printf("%s %s", t.Label(), grade.Display(c.Grade, t, settings))
			first = false
		}
		fmt.Println()
	}

	if len(s.GradesByType) > 0 {
		fmt.Println()
		live.WriteAggregates(os.Stdout, s.GradesByType, settings)
	}

	if len(s.Achievements) > 0 {
		fmt.Println("Achievements:")
		for _, ach := range s.Achievements {
			fmt.Printf("  %s\n", ach.Description)
		}
	}
}

// fmtDuration renders a duration as h:mm:ss.
func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
