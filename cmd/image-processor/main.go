package main

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"image-processor/internal/config"
	"image-processor/internal/logger"
	"image-processor/internal/pipeline"
)

const (
	AppName    = "image-processor"
	AppVersion = "1.0.0"
)

// application carries what every subcommand needs once flags are parsed.
type application struct {
	cfg      *config.Config
	logger   logger.Logger
	timings  *pipeline.Timings
	pipeline *pipeline.Pipeline
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	app := &application{}
	var (
		configPath string
		logLevel   string
		debug      bool
	)

	root := &cobra.Command{
		Use:          AppName,
		Short:        "Apply RGBA filter pipelines to single images or batches",
		Version:      AppVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if debug {
				cfg.LogLevel = "debug"
			}

			level, err := logger.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}

			app.cfg = cfg
			app.logger = logger.NewConsoleLogger(level)
			app.timings = pipeline.NewTimings()
			app.pipeline = pipeline.New(
				pipeline.WithLogger(app.logger),
				pipeline.WithTimings(app.timings),
			)

			app.logger.Debug("Main", "application starting", map[string]interface{}{
				"version":    AppVersion,
				"go_version": runtime.Version(),
				"num_cpu":    runtime.NumCPU(),
				"log_level":  level.String(),
				"config":     configPath,
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error, off")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "shorthand for --log-level=debug")

	root.AddCommand(
		newApplyCommand(app),
		newBatchCommand(app),
		newEdgesCommand(app),
		newHistogramCommand(app),
		newPresetsCommand(app),
	)

	return root
}

// logTimings reports the average duration of every stage that ran.
func (a *application) logTimings() {
	for _, stage := range a.timings.Stages() {
		a.logger.Debug("Main", "stage timing", map[string]interface{}{
			"stage":   stage,
			"runs":    len(a.timings.Get(stage)),
			"average": a.timings.Average(stage).String(),
		})
	}
}
