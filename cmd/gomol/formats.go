package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/philipparndt/gomol/pkg/format"
	"github.com/philipparndt/gomol/pkg/molengine"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported file extensions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		topology := molengine.TopologyExtensions()
		coordinates := molengine.CoordinateExtensions()

		fmt.Println("Topology files:")
		fmt.Printf("  %s\n\n", strings.Join(topology, " "))
		fmt.Println("Trajectory files:")
		fmt.Printf("  %s\n", strings.Join(coordinates, " "))

		var unread []string
		for _, ext := range format.TopologyExtensions() {
			if !slices.Contains(topology, ext) {
				unread = append(unread, ext)
			}
		}
		for _, ext := range format.CoordinateExtensions() {
			if !slices.Contains(coordinates, ext) {
				unread = append(unread, ext)
			}
		}
		if len(unread) > 0 {
			fmt.Println()
			fmt.Println("Recognized, no reader yet:")
			fmt.Printf("  %s\n", strings.Join(unread, " "))
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
