package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harris-mohamed/sensorsync"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sensorsync",
		Short:        "Scheduled sensor data ingestion into the warehouse",
		Long:         "Copies measurements from MySQL and Postgres endpoints and drop-folder metadata from filesystem endpoints into the central Postgres warehouse.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "./data/config.yaml", "Path to configuration file")

	root.AddCommand(newRunCmd(), newOnceCmd(), newValidateCmd(), newStatsCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sensorsync.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := sensorsync.NewRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			return rt.Run(ctx)
		},
	}
}

func newOnceCmd() *cobra.Command {
	var (
		asJSON bool
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run every active endpoint once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sensorsync.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var opts []sensorsync.RuntimeOption
			if dryRun {
				opts = append(opts, sensorsync.WithWriter(sensorsync.NewCallbackWriter("dry-run",
					func(context.Context, sensorsync.Batch) error { return nil })))
			}
			rt, err := sensorsync.NewRuntime(ctx, cfg, opts...)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = rt.Shutdown(shutdownCtx)
			}()

			report, tickErr := rt.Tick(ctx)
			if asJSON {
				if err := writeReportJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				writeReportText(cmd.OutOrStdout(), report)
			}
			return tickErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tick report as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Read sources but discard rows instead of writing them")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var connect bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a config file without starting the runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sensorsync.LoadConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config %s looks good\n", configPath)
			if !connect {
				return nil
			}

			rt, err := sensorsync.NewRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Shutdown(context.Background())

			endpoints, skipped, err := rt.Plan(cmd.Context())
			if err != nil {
				return err
			}
			for _, ep := range endpoints {
				fmt.Fprintf(out, "  %-20s %-8s %s:%d page=%d max=%d\n", ep.Name, ep.Kind, ep.Host, ep.Port, ep.PageSize, ep.MaxChunksPerRun)
			}
			for _, s := range skipped {
				fmt.Fprintf(out, "  %-20s skipped: %s\n", s.Name, s.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&connect, "connect", false, "Also connect to the warehouse and list the endpoints the next tick would run")
	return cmd
}

type jsonReport struct {
	Started  time.Time                    `json:"started"`
	Duration string                       `json:"duration"`
	Results  []map[string]any             `json:"results"`
	Failures map[string]string            `json:"failures,omitempty"`
	Skipped  []sensorsync.SkippedEndpoint `json:"skipped,omitempty"`
	Busy     []string                     `json:"busy,omitempty"`
}

func writeReportJSON(w io.Writer, report sensorsync.TickReport) error {
	out := jsonReport{
		Started:  report.Started,
		Duration: report.Duration.String(),
		Results:  make([]map[string]any, 0, len(report.Results)),
		Skipped:  report.Skipped,
		Busy:     report.Busy,
	}
	for _, res := range report.Results {
		out.Results = append(out.Results, res.Payload())
	}
	if len(report.Failures) > 0 {
		out.Failures = make(map[string]string, len(report.Failures))
		for name, err := range report.Failures {
			out.Failures[name] = err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeReportText(w io.Writer, report sensorsync.TickReport) {
	for _, res := range report.Results {
		if !res.Kind.Relational() {
			fmt.Fprintf(w, "%-20s ingested=%d new=%d remaining=%d (%s)\n",
				res.Endpoint, res.IngestedCount, res.TotalNewFolders, res.RemainingFolders, res.Duration.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(w, "%-20s ingested=%d chunks=%d ids=%d..%d (%s)\n",
			res.Endpoint, res.IngestedCount, res.ChunksProcessed, res.StartingID, res.LastID, res.Duration.Round(time.Millisecond))
	}

	names := make([]string, 0, len(report.Failures))
	for name := range report.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%-20s FAILED: %v\n", name, report.Failures[name])
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "%-20s skipped: %s\n", s.Name, s.Reason)
	}
	for _, name := range report.Busy {
		fmt.Fprintf(w, "%-20s busy: previous invocation still running\n", name)
	}
}
