package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"runtrace/internal/config"
	"runtrace/internal/report"
	"runtrace/internal/store"
	"runtrace/pkg/tracelog"
)

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(configPath)
}

// runDemo exercises the facade with a small multi-area workload so the
// generated reports have something to show.
func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lg, err := tracelog.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	app := lg.For("Application")
	app.Infof("demo run %d starting", lg.RunID())
	time.Sleep(200 * time.Millisecond)

	candidates := lg.For("CandidateScraper")
	candidates.Info("scraping candidates")
	candidates.Status("Fetching profiles")
	time.Sleep(300 * time.Millisecond)
	candidates.Warning("profile page returned partial data")
	candidates.Status("Parsing profiles")
	time.Sleep(200 * time.Millisecond)
	candidates.Error("failed to parse one profile")

	jobs := lg.For("JobScraper")
	jobs.Info("scraping job listings")
	time.Sleep(100 * time.Millisecond)
	jobs.Status("Fetching listings")
	time.Sleep(300 * time.Millisecond)
	jobs.Status("Storing listings")
	time.Sleep(200 * time.Millisecond)

	app.Info("demo run finished")

	if err := lg.Close(); err != nil {
		return err
	}
	fmt.Printf("reports written to %s\n", cfg.Reports.Dir)
	return nil
}

// runReport regenerates both report documents from whatever run the store
// still holds, for recovery after a crash skipped finalization.
func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	purgeAfter, _ := cmd.Flags().GetBool("purge")

	ctx := cmd.Context()
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.MaxRunID(ctx)
	if err != nil {
		return err
	}
	if runID == 0 {
		fmt.Println("store is empty, nothing to report")
		return nil
	}

	events, err := st.Events(ctx, runID)
	if err != nil {
		return err
	}

	rt, err := report.Segment(events)
	if err != nil {
		return fmt.Errorf("run %d: %w", runID, err)
	}

	reported, err := cfg.ReportedLevels()
	if err != nil {
		return err
	}

	emitter := report.NewEmitter(cfg.Reports.Dir, cfg.Reports.HistoryCap)
	if err := emitter.WriteRuntime(rt); err != nil {
		return err
	}
	if err := emitter.WriteErrors(report.Aggregate(events, reported)); err != nil {
		return err
	}

	if purgeAfter {
		if err := st.Purge(ctx, runID); err != nil {
			return err
		}
	}

	fmt.Printf("reports for run %d written to %s\n", runID, cfg.Reports.Dir)
	return nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runID, _ := cmd.Flags().GetInt64("run")

	ctx := cmd.Context()
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Purge(ctx, runID); err != nil {
		return err
	}
	fmt.Printf("purged events for run %d\n", runID)
	return nil
}
