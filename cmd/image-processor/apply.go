package main

import (
	"errors"

	"github.com/spf13/cobra"

	"image-processor/internal/editor"
	"image-processor/internal/imageio"
)

func newApplyCommand(app *application) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "apply INPUT",
		Short: "Apply the filter pipeline to one image",
		Args:  cobra.ExactArgs(1),
	}
	filters := addFilterFlags(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format from extension)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if output == "" {
			return errors.New("--output is required")
		}
		settings, err := filters.settings(cmd.Flags(), app)
		if err != nil {
			return err
		}

		loaded, err := imageio.NewLoader(app.logger).LoadFile(args[0])
		if err != nil {
			return err
		}

		ed, err := editor.New(cmd.Context(), loaded.Buffer, app.pipeline, editor.WithLogger(app.logger))
		if err != nil {
			return err
		}
		preview, err := ed.ApplySettings(cmd.Context(), settings)
		if err != nil {
			return err
		}

		if err := imageio.NewSaver(app.logger).SaveFile(output, preview); err != nil {
			return err
		}

		app.logger.Info("Apply", "image written", map[string]interface{}{
			"input":   args[0],
			"output":  output,
			"filters": settings.String(),
		})
		app.logTimings()
		return nil
	}

	return cmd
}
