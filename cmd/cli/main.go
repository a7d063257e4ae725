// Package main provides the command-line front end of ficha-service.
// It renders the same designs as the HTTP studio, without the editing
// step: photos keep the default framing.
//
// Run with: go run ./cmd/cli export --template portada --model "Gol Trend" a.jpg b.jpg
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/app"
	"github.com/fleveque/ficha-service/internal/config"
	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/templates"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd builds the command tree:
// ficha-cli export --template historia a.jpg b.jpg c.jpg
// ficha-cli video slide1.jpg slide2.jpg
// ficha-cli history
func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ficha-cli",
		Short:        "Render vehicle listing designs from photos",
		SilenceUsage: true,
	}

	root.AddCommand(exportCmd(), videoCmd(), historyCmd())
	return root
}

// jobFlags are shared by export and video.
type jobFlags struct {
	vehicle  model.VehicleData
	km       float64
	format   string
	quality  float64
	duration float64
	fps      float64
	out      string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.vehicle.Model, "model", "", "vehicle model, e.g. \"Gol Trend\"")
	fl.StringVar(&f.vehicle.Year, "year", "", "model year")
	fl.Float64Var(&f.km, "km", 0, "odometer reading")
	fl.StringVar(&f.vehicle.Version, "version", "", "trim/version line")
	fl.StringVar(&f.vehicle.Gearbox, "gearbox", "", "gearbox, e.g. Manual")
	fl.StringVar(&f.vehicle.Engine, "engine", "", "engine, e.g. 1.6 nafta")
	fl.StringVarP(&f.out, "out", "o", "", "where to copy the result (default: ./<export file name>)")
}

// data returns the vehicle fields, with km only when the flag was given.
func (f *jobFlags) data(cmd *cobra.Command) model.VehicleData {
	d := f.vehicle
	if cmd.Flags().Changed("km") {
		km := f.km
		d.Km = &km
	}
	return d
}

// settings overlays the flags that were given on the configured defaults.
func (f *jobFlags) settings(cmd *cobra.Command, defaults model.ExportSettings) (model.ExportSettings, error) {
	s := defaults
	fl := cmd.Flags()
	if fl.Changed("format") {
		format, ok := model.ParseFormat(f.format)
		if !ok {
			return s, fmt.Errorf("unknown format %q: must be png or jpg", f.format)
		}
		s.Format = format
	}
	if fl.Changed("quality") {
		s.Quality = f.quality
	}
	if fl.Changed("duration") {
		s.VideoDuration = f.duration
	}
	if fl.Changed("fps") {
		s.VideoFPS = f.fps
	}
	return s, nil
}

func exportCmd() *cobra.Command {
	var f jobFlags
	var template string

	cmd := &cobra.Command{
		Use:   "export [photos...]",
		Short: "Render photos into a zip of designs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := templates.Parse(template)
			if err != nil {
				return err
			}
			return runJob(cmd, &f, k, args)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&template, "template", "t", string(templates.Portada), "portada, historia or video")
	cmd.Flags().StringVar(&f.format, "format", "", "png or jpg (default: the template's)")
	cmd.Flags().Float64Var(&f.quality, "quality", model.DefaultQuality, "JPEG quality in (0,1]")
	return cmd
}

func videoCmd() *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "video [photos...]",
		Short: "Render photos as 9:16 slides and encode an MP4 slideshow",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, &f, templates.VideoSlide, args)
		},
	}

	f.register(cmd)
	cmd.Flags().Float64Var(&f.duration, "duration", model.DefaultVideoDuration, "seconds per slide")
	cmd.Flags().Float64Var(&f.fps, "fps", model.DefaultVideoFPS, "output frame rate")
	return cmd
}

func historyCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			defer a.Close()

			st, err := a.Exports.Stats(cmd.Context(), recent)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d exports: %d completed, %d failed, %d pending\n\n",
				st.Total, st.Completed, st.Failed, st.Pending)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tTEMPLATE\tITEMS\tSTATUS\tCREATED")
			for _, e := range st.Recent {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					e.ID, e.Kind, e.Template, e.ItemCount, e.Status, e.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&recent, "limit", "n", 20, "how many exports to list")
	return cmd
}

// setup loads config and wires the app. The CLI always logs in development
// mode.
func setup() (*app.App, *zap.Logger, error) {
	if err := config.LoadEnvFile(os.Getenv("FICHA_ENV_FILE")); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(os.Getenv("FICHA_CONFIG_PATH"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := app.Build(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}

func runJob(cmd *cobra.Command, f *jobFlags, k templates.Kind, paths []string) error {
	a, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer a.Close()

	settings, err := f.settings(cmd, a.Defaults)
	if err != nil {
		return err
	}

	// Ctrl+C cancels between items; the export is then recorded as failed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputs, err := readPhotos(paths)
	if err != nil {
		return err
	}
	g, err := service.GroupInputs(k, inputs)
	if err != nil {
		return err
	}
	items, err := service.BuildItems(ctx, g, a.Decoder)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), g.Summary())

	snaps := make([]service.ItemSnapshot, len(items))
	for i, it := range items {
		snaps[i] = it.Snapshot()
	}
	req := service.ExportRequest{
		Template: k,
		Items:    snaps,
		Data:     f.data(cmd),
		Settings: settings,
		Unused:   len(g.Unused),
	}

	var exp *model.Export
	if cmd.Name() == "video" {
		exp, err = a.Exports.Video(ctx, req, func(line string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\r%s", line)
		})
		fmt.Fprintln(cmd.ErrOrStderr())
	} else {
		exp, err = a.Exports.Archive(ctx, req)
	}
	if err != nil {
		return err
	}

	return copyOut(ctx, cmd, a, exp, f.out)
}

func readPhotos(paths []string) ([]service.PhotoInput, error) {
	inputs := make([]service.PhotoInput, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading photo: %w", err)
		}
		inputs = append(inputs, service.PhotoInput{Filename: filepath.Base(p), Data: data})
	}
	return inputs, nil
}

// copyOut writes the stored export next to the user, keeping the stored copy
// in the history.
func copyOut(ctx context.Context, cmd *cobra.Command, a *app.App, exp *model.Export, out string) error {
	exp, data, err := a.Exports.Open(ctx, exp.ID)
	if err != nil {
		return err
	}
	if out == "" {
		out = *exp.Filename
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, export %s)\n", out, len(data), exp.ID)
	return nil
}
