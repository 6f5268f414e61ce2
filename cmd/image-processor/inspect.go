package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"image-processor/internal/imageio"
	"image-processor/internal/processing/filters"
	"image-processor/internal/processing/histogram"
)

func newEdgesCommand(app *application) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edges INPUT",
		Short: "Write the Sobel edge magnitude of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			loaded, err := imageio.NewLoader(app.logger).LoadFile(args[0])
			if err != nil {
				return err
			}
			edges, err := filters.DetectEdges(loaded.Buffer)
			if err != nil {
				return err
			}
			return imageio.NewSaver(app.logger).SaveFile(output, edges)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format from extension)")

	return cmd
}

func newHistogramCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "histogram INPUT",
		Short: "Print per-channel value counts as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := imageio.NewLoader(app.logger).LoadFile(args[0])
			if err != nil {
				return err
			}
			h, err := histogram.Calculate(loaded.Buffer)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(h)
		},
	}
}

func newPresetsCommand(app *application) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List built-in and configured presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := app.cfg.AllPresets()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(presets)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION\tFILTERS")
			for _, p := range presets {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Description, p.Filters.Normalize())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print presets as JSON")

	return cmd
}
