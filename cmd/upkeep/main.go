package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/upkeep-win/upkeep/internal/config"
	"github.com/upkeep-win/upkeep/internal/logging"
)

var (
	version = "0.3.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "upkeep",
	Short: "Windows software upkeep",
	Long:  `Upkeep - interactive winget bulk upgrades and Node.js refresh for Windows workstations`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("upkeep v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ProgramData\\Upkeep\\upkeep.yaml)")

	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config, degrading to defaults with a warning rather
// than refusing to run.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config not loaded, using defaults: %v\n", err)
		return config.Default()
	}
	return cfg
}

// setupLogging wires the session log. Returns a closer, nil when only
// console logging could be set up.
func setupLogging(cfg *config.Config) *logging.RotatingWriter {
	rw, err := logging.InitWithSessionLog(cfg.LogFormat, cfg.LogLevel, cfg.SessionLogPath(), os.Stderr)
	if err != nil {
		logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)
		logging.L("main").Warn("session log unavailable", "error", err)
		return nil
	}
	return rw
}
