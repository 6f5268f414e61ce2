package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"image-processor/internal/batch"
	"image-processor/internal/imageio"
	"image-processor/internal/models"
	"image-processor/internal/shutdown"
)

func newBatchCommand(app *application) *cobra.Command {
	var (
		outDir    string
		format    string
		workers   int
		stepDelay time.Duration
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "batch INPUT...",
		Short: "Apply the filter pipeline to many images, one job per image",
		Long: "Each input file (or every supported image in an input directory) becomes a job.\n" +
			"Jobs run in queue order, one at a time unless --workers is raised.\n" +
			"A failing image marks only its own job as error.",
		Args: cobra.MinimumNArgs(1),
	}
	filters := addFilterFlags(cmd.Flags())
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for processed images")
	cmd.Flags().StringVar(&format, "format", "", "output format: png, jpeg, gif, bmp, tiff (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 1, "jobs processed concurrently (1 = strictly sequential)")
	cmd.Flags().DurationVar(&stepDelay, "step-delay", 0, "pause between progress updates")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print job snapshots as JSON lines")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if outDir == "" {
			return errors.New("--out-dir is required")
		}
		settings, err := filters.settings(cmd.Flags(), app)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("workers") {
			workers = app.cfg.Batch.Workers
		}
		if !cmd.Flags().Changed("step-delay") {
			stepDelay = app.cfg.Batch.StepDelay
		}
		if format == "" {
			format = app.cfg.Batch.OutputFormat
		}
		if err := imageio.CheckFormat(format); err != nil {
			return err
		}

		paths, err := expandInputs(args)
		if err != nil {
			return err
		}

		loader := imageio.NewLoader(app.logger)
		images := make([]batch.Image, 0, len(paths))
		decodeFailures := 0
		for _, path := range paths {
			loaded, err := loader.LoadFile(path)
			if err != nil {
				decodeFailures++
				app.logger.Error("Batch", err, map[string]interface{}{"file": path})
				continue
			}
			images = append(images, batch.Image{FileName: path, Buffer: loaded.Buffer})
		}

		executor := batch.NewExecutor(app.pipeline,
			batch.WithLogger(app.logger),
			batch.WithWorkers(workers),
			batch.WithStepDelay(stepDelay),
		)
		if _, err := executor.Enqueue(images, settings); err != nil {
			return err
		}

		sm := shutdown.NewManager(cmd.Context(), app.logger)
		sm.Register(shutdown.Func(func() {
			if pending := executor.Summary()[models.JobPending]; pending > 0 {
				app.logger.Warning("Batch", "run stopped with jobs still pending", map[string]interface{}{
					"pending": pending,
				})
			}
		}))
		sm.Listen()
		defer sm.Shutdown()

		updates, err := executor.Run(sm.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		for snap := range updates {
			switch {
			case asJSON:
				if err := enc.Encode(snap); err != nil {
					return err
				}
			case snap.Status.IsTerminal():
				line := fmt.Sprintf("%-10s %s", snap.Status, snap.FileName)
				if snap.Error != "" {
					line += ": " + snap.Error
				}
				fmt.Fprintln(out, line)
			}
		}

		saveFailures := saveResults(app, executor, outDir, format)
		app.logTimings()

		if sm.Context().Err() != nil {
			return errors.New("batch cancelled")
		}

		summary := executor.Summary()
		if failed := summary[models.JobError] + decodeFailures + saveFailures; failed > 0 {
			return fmt.Errorf("%d of %d images failed", failed, len(paths))
		}
		return nil
	}

	return cmd
}

// saveResults writes every completed job's buffer and returns how many writes failed.
func saveResults(app *application, executor *batch.Executor, outDir, format string) int {
	saver := imageio.NewSaver(app.logger)
	used := make(map[string]int)
	failures := 0

	completed := lo.Filter(executor.Jobs(), func(j models.BatchJob, _ int) bool {
		return j.Status == models.JobCompleted
	})
	for _, j := range completed {
		res, ok := executor.Result(j.ID)
		if !ok || res.Buffer == nil {
			continue
		}

		name := outputName(j.FileName, format, used)
		if err := saver.SaveFile(filepath.Join(outDir, name), res.Buffer); err != nil {
			failures++
			app.logger.Error("Batch", err, map[string]interface{}{"job_id": j.ID})
		}
	}
	return failures
}

// outputName keeps the input's base name with the output extension,
// suffixing a counter when two inputs share a base name.
func outputName(input, format string, used map[string]int) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	used[base]++
	if n := used[base]; n > 1 {
		base = fmt.Sprintf("%s-%d", base, n)
	}
	return base + "." + extension(format)
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	}
	return format
}

// expandInputs replaces directories with the supported images they contain.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && imageio.IsSupported(e.Name()) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		return nil, errors.New("no input images found")
	}
	return lo.Uniq(paths), nil
}
