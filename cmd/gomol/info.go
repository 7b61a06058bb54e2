package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/philipparndt/gomol/internal/host"
	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/spf13/cobra"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info [topology] [trajectory]",
	Short: "Display information about a structure and trajectory",
	Long:  "Load the files without opening a window and show atom and frame counts, the bounding sphere, the extents and the available representations.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print the viewport snapshot as JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := loadHeadless(ctx, args, 0, 0)
	if err != nil {
		return err
	}
	defer s.Unmount()

	snap := s.Snapshot()
	if infoJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	printInfo(snap, s)
	return nil
}

func printInfo(snap viewport.Snapshot, s *viewport.Session) {
	fmt.Println("Structure Information")
	fmt.Println("=====================")
	fmt.Printf("Topology: %s\n", snap.TopologyFile)
	if snap.TrajectoryFile != "" {
		fmt.Printf("Trajectory: %s\n", snap.TrajectoryFile)
	}
	fmt.Println()

	fmt.Println("Statistics:")
	fmt.Printf("  Atoms: %d\n", snap.AtomCount)
	if snap.FrameCount > 0 {
		fmt.Printf("  Frames: %d\n", snap.FrameCount)
	}

	sphere := s.Engine().BoundingSphere()
	fmt.Println()
	fmt.Println("Bounding Sphere:")
	fmt.Printf("  Center: (%.3f, %.3f, %.3f)\n", sphere.Center.X, sphere.Center.Y, sphere.Center.Z)
	fmt.Printf("  Radius: %.3f Å\n\n", sphere.Radius)

	if src, ok := s.Engine().(host.SceneSource); ok {
		if box := src.Scene().Bounds(); !box.Empty() {
			size := box.Size()
			fmt.Println("Extents:")
			fmt.Printf("  Min: (%.3f, %.3f, %.3f)\n", box.Min.X, box.Min.Y, box.Min.Z)
			fmt.Printf("  Max: (%.3f, %.3f, %.3f)\n", box.Max.X, box.Max.Y, box.Max.Z)
			fmt.Printf("  Size: %.3f x %.3f x %.3f Å\n\n", size.X, size.Y, size.Z)
		}
	}

	fmt.Printf("Representation: %s\n", snap.Representation)
	fmt.Printf("Available: %s\n", strings.Join(snap.RepresentationTypes, ", "))
}
