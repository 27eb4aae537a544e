// Package main provides the refstudio command line interface: headless
// operations on layered canvas documents.
package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"refstudio/internal/app"
	"refstudio/internal/config"
	"refstudio/internal/filter"
	"refstudio/internal/pipeline"
	"refstudio/internal/version"
	"refstudio/pkg/colorutil"
	"refstudio/pkg/geometry"
)

var (
	configPath string
	verbose    bool
)

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "refstudio",
		Short:        "Layered reference image studio",
		Long:         "refstudio edits layered canvas documents: import images as layers,\napply filters, sample colors, and flatten to a single image.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.GitCommit, version.BuildTime),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		buildInfoCmd(),
		buildImportCmd(),
		buildFilterCmd(),
		buildFiltersCmd(),
		buildFlattenCmd(),
		buildSampleCmd(),
	)
	return rootCmd
}

// newState builds the application state from the configured settings.
func newState() (*app.State, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return app.NewState(cfg, log), nil
}

func buildInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <canvas>",
		Short: "Show the layers of a canvas file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newState()
			if err != nil {
				return err
			}
			defer state.Close()
			if err := state.Load(args[0]); err != nil {
				return err
			}

			stack := state.Document().Stack()
			fmt.Printf("%s: %d layers\n", args[0], stack.Len())
			for i, l := range stack.Layers() {
				vis := "visible"
				if !l.Visible() {
					vis = "hidden"
				}
				lock := ""
				if l.Locked() {
					lock = ", locked"
				}
				sx, sy := l.Scale()
				fmt.Printf("  [%d] %-24s %dx%d at (%g,%g) scale (%g,%g) opacity %.2f (%s%s)\n",
					i, l.Name(), l.Width(), l.Height(),
					l.Position().X, l.Position().Y, sx, sy, l.Opacity(), vis, lock)
			}
			return nil
		},
	}
}

func buildImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <canvas> <image>...",
		Short: "Add image files as layers",
		Long:  "Add one or more image files as new top layers of a canvas.\nThe canvas file is created if it does not exist.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newState()
			if err != nil {
				return err
			}
			defer state.Close()

			canvasPath := args[0]
			if _, err := os.Stat(canvasPath); err == nil {
				if err := state.Load(canvasPath); err != nil {
					return err
				}
			}
			for _, imgPath := range args[1:] {
				l, err := state.ImportLayer(imgPath)
				if err != nil {
					return fmt.Errorf("import %s: %w", imgPath, err)
				}
				fmt.Printf("added layer %q (%dx%d)\n", l.Name(), l.Width(), l.Height())
			}
			return state.Save(canvasPath)
		},
	}
}

func buildFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List available filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range filter.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func buildFilterCmd() *cobra.Command {
	var (
		layerIndex int
		paramArgs  []string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "filter <canvas> <name>",
		Short: "Apply a filter to a layer",
		Example: `  # Invert the bottom layer in place
  refstudio filter project.canvas invert

  # Brighten layer 2, writing to a new file
  refstudio filter project.canvas brightness_contrast --layer 2 -p brightness=0.4 -o out.canvas`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newState()
			if err != nil {
				return err
			}
			defer state.Close()
			if err := state.Load(args[0]); err != nil {
				return err
			}

			l := state.Document().Stack().Layer(layerIndex)
			if l == nil {
				return fmt.Errorf("no layer at index %d", layerIndex)
			}
			params, err := parseParams(paramArgs)
			if err != nil {
				return err
			}
			if err := state.ApplyFilter(l.ID(), args[1], params); err != nil {
				return err
			}
			if err := waitForFilter(state); err != nil {
				return err
			}

			if output == "" {
				output = args[0]
			}
			return state.Save(output)
		},
	}
	cmd.Flags().IntVarP(&layerIndex, "layer", "l", 0, "Layer index to filter")
	cmd.Flags().StringArrayVarP(&paramArgs, "param", "p", nil, "Filter parameter as name=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output canvas path (default: in place)")
	return cmd
}

// waitForFilter pumps pipeline results until the submitted filter lands.
func waitForFilter(state *app.State) error {
	var failure error
	state.On(app.EventStatus, func(data any) {
		if msg, ok := data.(string); ok && strings.HasPrefix(msg, "Filter failed") {
			failure = fmt.Errorf("%s", msg)
		}
	})

	deadline := time.Now().Add(5 * time.Minute)
	for time.Now().Before(deadline) {
		if state.PumpResults() > 0 {
			return nil
		}
		if failure != nil {
			return failure
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for the filter to finish")
}

func parseParams(args []string) (pipeline.Params, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make(pipeline.Params, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("bad parameter %q, want name=value", arg)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[name] = f
		} else {
			params[name] = value
		}
	}
	return params, nil
}

func buildFlattenCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "flatten <canvas>",
		Short: "Composite the visible layers into a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newState()
			if err != nil {
				return err
			}
			defer state.Close()
			if err := state.Load(args[0]); err != nil {
				return err
			}

			flat := state.Document().Flatten()
			if flat == nil {
				return fmt.Errorf("no visible layers to flatten")
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, flat.ToImage()); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%dx%d)\n", output, flat.Width(), flat.Height())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "flattened.png", "Output PNG path")
	return cmd
}

func buildSampleCmd() *cobra.Command {
	var (
		layerIndex int
		x, y       float64
	)
	cmd := &cobra.Command{
		Use:   "sample <canvas>",
		Short: "Sample the color under a scene-space point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newState()
			if err != nil {
				return err
			}
			defer state.Close()
			if err := state.Load(args[0]); err != nil {
				return err
			}
			if err := state.SetActiveLayer(layerIndex); err != nil {
				return err
			}

			state.ActivateSampler()
			s, ok := state.SampleColor(geometry.Point2D{X: x, Y: y}, geometry.Identity())
			if !ok {
				return fmt.Errorf("point (%g,%g) is not on layer %d", x, y, layerIndex)
			}
			h, sat, v := colorutil.RGBToHSV(float64(s.Color.R), float64(s.Color.G), float64(s.Color.B))
			fmt.Printf("pixel (%d,%d): %s alpha %d hsv(%.0f, %.2f, %.2f)\n",
				s.Point.X, s.Point.Y, colorutil.Hex(s.Color), s.Color.A, h, sat, v)
			return nil
		},
	}
	cmd.Flags().IntVarP(&layerIndex, "layer", "l", 0, "Layer index to sample")
	cmd.Flags().Float64Var(&x, "x", 0, "Scene-space x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "Scene-space y coordinate")
	return cmd
}
