package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"linkmap/diagram"
	"linkmap/geom"
	"linkmap/render"
)

var version = "0.3.0"

// Console colors
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// defaultStage is the visible region before the terminal reports its size.
var defaultStage = geom.Rect{Right: 640, Bottom: 384}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		alarmsPath string
	)

	root := &cobra.Command{
		Use:   "linkmap [file]",
		Short: "linkmap: topology diagrams in the terminal",
		Long: Brand.Sprint("linkmap") + " views and animates node/edge diagrams.\n" +
			Subtle.Sprint("Opens a .json or .msgpack diagram in an interactive viewer"),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}

			var filename string
			scene := diagram.NewScene(defaultStage)
			if len(args) == 1 {
				filename = args[0]
				if scene, err = loadScene(filename, defaultStage); err != nil {
					return err
				}
			}
			if alarmsPath != "" {
				if err := applyAlarms(scene, alarmsPath); err != nil {
					return err
				}
			}
			if cfg.AnimateOnLoad {
				startAnimations(scene, cfg.markerSpeed())
			}

			p := tea.NewProgram(newModel(scene, filename, cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}
	root.SetVersionTemplate("linkmap {{ .Version }}\n")
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "config file")
	root.Flags().StringVar(&alarmsPath, "alarms", "", "JSON file mapping node IDs to alarm badges")

	root.AddCommand(exportCmd(&configPath), snapshotCmd(&configPath))
	return root
}

// setup loads the config and points logging at the configured file.
func setup(configPath string) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.slogLevel()}))
	slog.SetDefault(logger)
	diagram.SetLogger(logger)
	return cfg, nil
}

func applyAlarms(s *diagram.Scene, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var alarms map[string]diagram.Alarm
	if err := json.Unmarshal(data, &alarms); err != nil {
		return fmt.Errorf("alarms %s: %w", path, err)
	}
	n := s.ApplyAlarms(alarms)
	slog.Info("alarms applied", "file", path, "nodes", n)
	return nil
}

func exportCmd(configPath *string) *cobra.Command {
	var (
		output string
		opts   = render.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a diagram to PNG",
		Long: `Render every element of a diagram to a PNG image sized to fit it.

  linkmap export net.json                 # writes net.png
  linkmap export net.json -o out.png -s 2 # double resolution`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(*configPath); err != nil {
				return err
			}
			scene, err := loadScene(args[0], defaultStage)
			if err != nil {
				return err
			}
			if output == "" {
				output = baseName(args[0]) + ".png"
			}
			if err := render.SavePNG(output, scene, opts); err != nil {
				return err
			}
			fmt.Printf("%s wrote %s\n", Good.Sprint("✓"), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <file>.png)")
	cmd.Flags().Float64VarP(&opts.Scale, "scale", "s", opts.Scale, "pixel scale")
	cmd.Flags().Float64Var(&opts.Padding, "padding", opts.Padding, "margin around the diagram in pixels")
	cmd.Flags().BoolVar(&opts.Markers, "markers", false, "draw animation markers")
	return cmd
}

func snapshotCmd(configPath *string) *cobra.Command {
	var edgeID string

	cmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Print edge snapshots as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(*configPath); err != nil {
				return err
			}
			scene, err := loadScene(args[0], defaultStage)
			if err != nil {
				return err
			}

			edges := scene.Edges()
			if edgeID != "" {
				e, ok := scene.Edge(edgeID)
				if !ok {
					return fmt.Errorf("no edge %q", edgeID)
				}
				edges = []*diagram.Edge{e}
			}

			out := make(map[string]diagram.Snapshot, len(edges))
			for _, e := range edges {
				snap, err := e.Serialize()
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s %s: %v\n", Subtle.Sprint("skip"), e.ID(), err)
					continue
				}
				out[e.ID()] = snap
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&edgeID, "edge", "", "only this edge")
	return cmd
}
