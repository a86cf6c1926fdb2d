package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sleeptrack/internal/bootstrap"
	"sleeptrack/internal/modules/sleep/dto"
	"sleeptrack/internal/platform/config"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type rootFlags struct {
	dataDir    string
	configFile string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "sleeptrack",
		Short:         "Track nights of sleep and rate how they went",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: user config dir)")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default: <data-dir>/sleeptrack.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: trace|debug|info|warn|error")

	root.AddCommand(newTonightCmd(flags))
	root.AddCommand(newStartCmd(flags))
	root.AddCommand(newStopCmd(flags))
	root.AddCommand(newRateCmd(flags))
	root.AddCommand(newClearCmd(flags))
	root.AddCommand(newListCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

func loadConfig(flags *rootFlags, metricsAddr string) (config.Config, error) {
	return config.Load(config.Overrides{
		DataDir:     flags.dataDir,
		ConfigFile:  flags.configFile,
		LogLevel:    flags.logLevel,
		MetricsAddr: metricsAddr,
	})
}

// withApp opens the app for one command and closes the store afterwards.
func withApp(flags *rootFlags, command string, run func(context.Context, *bootstrap.App) error) error {
	cfg, err := loadConfig(flags, "")
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	// Metrics are only scraped during a tui session; one-shot commands just log.
	err = run(context.Background(), app)
	if err != nil {
		app.Log.Debug("command failed", "command", command, "error", err)
	}
	return err
}

func newTonightCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tonight",
		Short: "Show the night currently being tracked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, "tonight", func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SleepCLI.Tonight(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "night #%d started at %s (%s so far)\n", out.ID, out.StartTime.Format(timeLayout), time.Since(out.StartTime).Round(time.Minute))
				return nil
			})
		},
	}
}

func newStartCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start tracking a night",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, "start", func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SleepCLI.Start(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "night started: #%d at=%s\n", out.ID, out.StartTime.Format(timeLayout))
				return nil
			})
		},
	}
}

func newStopCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the night currently being tracked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, "stop", func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SleepCLI.Stop(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "night stopped: #%d slept=%s\n", out.ID, out.EndTime.Sub(out.StartTime).Round(time.Minute))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rate it with: sleeptrack rate --id %d --quality <0-5>\n", out.ID)
				return nil
			})
		},
	}
}

func newRateCmd(flags *rootFlags) *cobra.Command {
	var nightID int64
	quality := -1
	rate := &cobra.Command{
		Use:   "rate --quality <0-5> [--id <night>]",
		Short: "Record sleep quality for a night (latest by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("quality") {
				return fmt.Errorf("--quality is required")
			}
			return withApp(flags, "rate", func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SleepCLI.Rate(ctx, nightID, quality)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "night #%d rated %d\n", out.ID, out.Quality)
				return nil
			})
		},
	}
	rate.Flags().IntVar(&quality, "quality", -1, "quality from 0 (worst) to 5 (best)")
	rate.Flags().Int64Var(&nightID, "id", 0, "night id (default: latest night)")
	return rate
}

func newClearCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear --yes",
		Short: "Delete every recorded night",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all nights without --yes")
			}
			return withApp(flags, "clear", func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SleepCLI.Clear(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "all nights deleted")
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return clearCmd
}

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded nights, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, "list", func(ctx context.Context, app *bootstrap.App) error {
				nights, err := app.SleepCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(nights) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no nights")
					return nil
				}
				for _, n := range nights {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatRow(n))
				}
				return nil
			})
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var dir string
	export := &cobra.Command{
		Use:   "export [--dir <path>]",
		Short: "Write finished nights as markdown journal entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, "export", func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SleepCLI.Export(ctx, dir)
				if err != nil {
					return err
				}
				for _, p := range out.Paths {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d nights\n", len(out.Paths))
				return nil
			})
		},
	}
	export.Flags().StringVar(&dir, "dir", "", "journal directory (default: configured journal dir)")
	return export
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	var metricsAddr string
	tui := &cobra.Command{
		Use:   "tui",
		Short: "Run the sleeptrack terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, metricsAddr)
			if err != nil {
				return err
			}
			logFile, err := bootstrap.OpenTUILog(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logFile.Close() }()

			app, err := bootstrap.New(cfg, logFile)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app)
		},
	}
	tui.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while the UI runs")
	return tui
}

func formatRow(n dto.NightOutput) string {
	end := "-"
	if !n.Open {
		end = n.EndTime.Format(timeLayout)
	}
	q := "-"
	if n.Rated {
		q = color.YellowString(strings.Repeat("*", n.Quality)) + fmt.Sprintf(" (%d)", n.Quality)
	}
	if n.Open {
		return color.CyanString("#%d", n.ID) + fmt.Sprintf("\t%s\t%s\t%s", n.StartTime.Format(timeLayout), end, q)
	}
	return fmt.Sprintf("#%d\t%s\t%s\t%s", n.ID, n.StartTime.Format(timeLayout), end, q)
}
