package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hamlet/internal/persistence"
)

var (
	eventsDB    string
	eventsRun   string
	eventsLimit int
)

func init() {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect events from a snapshot database",
		Run:   showEvents,
	}
	cmd.Flags().StringVar(&eventsDB, "db", "hamlet.db", "Snapshot database path")
	cmd.Flags().StringVar(&eventsRun, "run", "", "Run id (default: latest run)")
	cmd.Flags().IntVarP(&eventsLimit, "limit", "n", 25, "Number of events to show")
	RootCmd.AddCommand(cmd)
}

func showEvents(cmd *cobra.Command, args []string) {
	db, err := persistence.Open(eventsDB)
	if err != nil {
		exitErr("open snapshot db", err)
	}
	defer db.Close()

	runID := eventsRun
	if runID == "" {
		runs, err := db.Runs()
		if err != nil {
			exitErr("list runs", err)
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return
		}
		runID = runs[0]
	}

	nodes, err := db.NodeCount(runID)
	if err != nil {
		exitErr("count memory nodes", err)
	}
	fmt.Printf("run %s (%s memory nodes)\n\n", runID, humanize.Comma(int64(nodes)))

	events, err := db.RecentEvents(runID, eventsLimit)
	if err != nil {
		exitErr("load events", err)
	}
	if len(events) == 0 {
		fmt.Println("no events recorded")
		return
	}

	// Stored newest first; print oldest first for readability.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		fmt.Printf("%6d  %s  %-22s %s\n", e.Tick, e.SimTime, e.Agent, e.Description)
	}
}
