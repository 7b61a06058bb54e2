package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/philipparndt/gomol/internal/platform/config"
	"github.com/philipparndt/gomol/internal/platform/logger"
	"github.com/philipparndt/gomol/version"
	"github.com/spf13/cobra"
)

var (
	envFile   string
	logLevel  string
	logFormat string

	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gomol",
	Short: "A molecular structure and trajectory viewer",
	Long: `gomol loads a molecular topology (PDB, mmCIF, GRO, XYZ, LAMMPS data) and an
optional trajectory (DCD, XTC, LAMMPS dump) and shows them in one or more
side by side viewports. It can also inspect and render files without a window.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			if err := config.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		} else {
			_ = config.Load()
		}
		cfg = config.FromEnv()
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		log = logger.New(cfg.LogLevel, cfg.LogFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to a .env file (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
