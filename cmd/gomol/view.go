package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/philipparndt/gomol/internal/app"
	"github.com/philipparndt/gomol/internal/host"
	"github.com/philipparndt/gomol/internal/platform/metrics"
	"github.com/spf13/cobra"
)

var (
	viewCompare        []string
	viewViewports      int
	viewStatusAddr     string
	viewNoWatch        bool
	viewBackground     string
	viewColor          string
	viewRepresentation string
)

var viewCmd = &cobra.Command{
	Use:   "view [topology] [trajectory]",
	Short: "Open the viewer window",
	Long: `Open a window with one viewport per session. The files given as arguments
are loaded into the first viewport, the files given with --compare into the
second. Files can also be dropped onto a viewport.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringSliceVarP(&viewCompare, "compare", "c", nil, "Topology and optional trajectory for the second viewport")
	viewCmd.Flags().IntVarP(&viewViewports, "viewports", "n", 0, "Number of viewports (default from GOMOL_VIEWPORTS)")
	viewCmd.Flags().StringVar(&viewStatusAddr, "status", "", "Serve status and metrics on this address, e.g. :9090")
	viewCmd.Flags().BoolVar(&viewNoWatch, "no-watch", false, "Do not reload files when they change")
	viewCmd.Flags().StringVar(&viewBackground, "background", "", "Background color, e.g. #000000")
	viewCmd.Flags().StringVar(&viewColor, "color", "", "Structure color, e.g. #ffffff")
	viewCmd.Flags().StringVarP(&viewRepresentation, "representation", "r", "", "Representation selected after loading")
}

// viewFiles assigns the arguments to viewports by file kind
func viewFiles(args, compare []string) ([]host.Files, error) {
	var files []host.Files
	for _, paths := range [][]string{args, compare} {
		f, unknown := host.Sort(paths)
		if len(unknown) > 0 {
			return nil, fmt.Errorf("unsupported file: %s", unknown[0])
		}
		files = append(files, f)
	}
	return files, nil
}

func runView(cmd *cobra.Command, args []string) error {
	if viewViewports > 0 {
		cfg.Viewports = viewViewports
	}
	if viewStatusAddr != "" {
		cfg.StatusAddr = viewStatusAddr
	}
	if viewNoWatch {
		cfg.Watch = false
	}
	if viewBackground != "" {
		cfg.Background = viewBackground
	}
	if viewColor != "" {
		cfg.StructureColor = viewColor
	}
	if viewRepresentation != "" {
		cfg.DefaultRepresentation = viewRepresentation
	}

	files, err := viewFiles(args, viewCompare)
	if err != nil {
		return err
	}
	if !files[1].Empty() && cfg.Viewports < 2 {
		cfg.Viewports = 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, app.Options{
		Config:  cfg,
		Files:   files,
		Log:     log,
		Metrics: metrics.New(),
	})
}
