// Package main provides the cragtrack CLI application.
//
// Cragtrack is a climbing log: it records attempts and sends during timed
// sessions, aggregates history and statistics, and optionally syncs to a
// cloud backend.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Parse()

	if *showVersion {
		fmt.Printf("cragtrack %s\n", version)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	command := args[0]

	switch command {
	case "start":
		return runStartCommand(*configPath)
	case "pause":
		return runPauseCommand(*configPath)
	case "resume":
		return runResumeCommand(*configPath)
	case "end":
		return runEndCommand(*configPath, args[1:])
	case "log":
		return runLogCommand(*configPath, args[1:])
	case "rm":
		return runDeleteCommand(*configPath, args[1:])
	case "stats":
		return runStatsCommand(*configPath)
	case "history":
		return runHistoryCommand(*configPath)
	case "watch":
		return runWatchCommand(*configPath)
	case "sync":
		return runSyncCommand(*configPath)
	case "migrate":
		return runMigrateCommand(*configPath)
	case "session":
		return runSessionCommand(*configPath, args[1:])
	case "config":
		return runConfigCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// showUsage prints command usage.
func showUsage() error {
	fmt.Print(`cragtrack - climbing session log

Usage:
  cragtrack [flags] <command> [args]

Session commands:
  start                     Start a new session
  pause                     Pause the active session and show its summary
  resume                    Resume a paused session
  end [-name NAME]          End the active session and show its summary
  watch                     Live view of the active session

Climb commands:
  log -grade G -type T [-attempt] [-session ID]
                            Log a climb (send by default)
  rm -id ID                 Delete a climb by id

Query commands:
  stats                     All-time statistics
  history                   List past sessions
  session name|list|delete  Manage session names
  session delete -id ID     Delete a session and its climbs

Sync commands:
  sync                      Reconcile with the remote backend
  migrate                   One-time upload of guest data after sign-in

Other commands:
  config show|init|grades   Manage configuration
  help                      Show this help

Global flags:
  -config PATH              Configuration file path
  -version                  Show version
`)
	return nil
}
