package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-sim/internal/batch"
	appconfig "github.com/rpgo/retirement-sim/internal/config"
	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
	"github.com/rpgo/retirement-sim/internal/engine/modules"
	"github.com/rpgo/retirement-sim/internal/output"
	"github.com/rpgo/retirement-sim/internal/simbuild"
	"github.com/rpgo/retirement-sim/internal/tui"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rpgo",
	Short: "Retirement projection simulator",
	Long:  "Month-stepped retirement planning simulation engine: deterministic and stochastic projections over a holdings/strategy snapshot.",
}

// newScheduler builds a scheduler backed by freshly constructed module
// instances; every call to this, or to batch.Request.NewScheduler, must
// return independent instances since module state is per-run.
func newScheduler(log engine.Logger) *engine.Scheduler {
	return engine.NewScheduler(engine.NewRegistry(modules.All()), log)
}

func loadSnapshot(path string) (*domain.Snapshot, error) {
	return appconfig.NewLoader().LoadFromFile(path)
}

var runCmd = &cobra.Command{
	Use:   "run [snapshot-file]",
	Short: "Run a single deterministic projection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startDateStr, _ := cmd.Flags().GetString("start-date")
		outputFormat, _ := cmd.Flags().GetString("format")
		summaryOnly, _ := cmd.Flags().GetBool("summary-only")
		verbose, _ := cmd.Flags().GetBool("verbose")

		snap, err := loadSnapshot(args[0])
		if err != nil {
			return err
		}
		startDate, err := dateutil.ParseISODate(startDateStr)
		if err != nil {
			return fmt.Errorf("parse --start-date: %w", err)
		}

		input, err := simbuild.Build(snap, startDate)
		if err != nil {
			return err
		}
		input.Settings.SummaryOnly = summaryOnly

		log := newLogrusLogger(verbose)
		result, err := newScheduler(log).Run(input)
		if err != nil {
			return err
		}

		run := domain.SimulationRun{
			ID:         uuid.NewString(),
			ScenarioID: snap.ScenarioID,
			Status:     domain.StatusSuccess,
			Result:     result,
		}
		out, err := output.Render(outputFormat, run)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [snapshot-file]",
	Short: "Run a stochastic fan-out of N simulations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startDateStr, _ := cmd.Flags().GetString("start-date")
		n, _ := cmd.Flags().GetInt("seeds")
		workers, _ := cmd.Flags().GetInt("workers")
		outputFormat, _ := cmd.Flags().GetString("format")
		noProgress, _ := cmd.Flags().GetBool("no-progress")

		snap, err := loadSnapshot(args[0])
		if err != nil {
			return err
		}
		startDate, err := dateutil.ParseISODate(startDateStr)
		if err != nil {
			return fmt.Errorf("parse --start-date: %w", err)
		}

		req := batch.Request{
			Snapshot:     snap,
			ScenarioID:   snap.ScenarioID,
			StartDate:    startDate,
			N:            n,
			Workers:      workers,
			NewScheduler: func() *engine.Scheduler { return newScheduler(engine.NopLogger{}) },
		}

		var runs []domain.SimulationRun
		if noProgress || !isTerminal() {
			runs, err = batch.Run(context.Background(), req)
			if err != nil {
				return err
			}
		} else {
			progressCh := make(chan domain.SimulationRun, n)
			dispatchErr := make(chan error, 1)
			go func() {
				_, runErr := batch.RunStreaming(context.Background(), req, progressCh)
				dispatchErr <- runErr
			}()
			runs, err = tui.RunBatchProgress(n, progressCh)
			if err != nil {
				return err
			}
			if err := <-dispatchErr; err != nil {
				return err
			}
		}

		sort.Slice(runs, func(i, j int) bool { return runs[i].RunIndex < runs[j].RunIndex })

		if outputFormat == "table" {
			out, err := output.BatchSummaryTable(runs)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		}
		for _, run := range runs {
			out, err := output.Render(outputFormat, run)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(out))
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [snapshot-file]",
	Short: "Validate a snapshot file's structure and id references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadSnapshot(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "snapshot is valid")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "rpgo %s (commit %s, built %s)\n", version, commit, date)
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			fmt.Fprintln(os.Stdout, bi.Main.Path, bi.Main.Version)
		}
	},
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() {
	runCmd.Flags().String("start-date", "", "simulation start date, YYYY-MM-DD")
	runCmd.Flags().StringP("format", "f", "table", "output format (table, csv, json)")
	runCmd.Flags().Bool("summary-only", false, "skip per-month explanation assembly")
	runCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	_ = runCmd.MarkFlagRequired("start-date")

	batchCmd.Flags().String("start-date", "", "simulation start date, YYYY-MM-DD")
	batchCmd.Flags().Int("seeds", 100, "number of stochastic runs")
	batchCmd.Flags().Int("workers", 0, "worker pool size (0 picks runtime.NumCPU, capped at 16)")
	batchCmd.Flags().StringP("format", "f", "table", "output format (table, csv, json)")
	batchCmd.Flags().Bool("no-progress", false, "disable the interactive progress view")
	_ = batchCmd.MarkFlagRequired("start-date")

	rootCmd.AddCommand(runCmd, batchCmd, validateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
