package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/upkeep-win/upkeep/internal/elevate"
	"github.com/upkeep-win/upkeep/internal/winget"
	"github.com/upkeep-win/upkeep/internal/workflow"
)

var (
	machinePhase bool
	selectedList string
	sourceFlag   string
	logDirFlag   string
	noPause      bool
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Interactively run pending winget upgrades",
	Long: `Lists pending winget upgrades, lets you pick a subset by number or
range, runs them one at a time, and offers an elevated retry for anything
that failed.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runUpgrade())
	},
}

func init() {
	upgradeCmd.Flags().BoolVar(&machinePhase, "machine-phase", false, "run as the elevated machine-scope pass")
	upgradeCmd.Flags().StringVar(&selectedList, "selected", "", "comma-joined package ids relayed to the machine phase")
	upgradeCmd.Flags().MarkHidden("machine-phase")
	upgradeCmd.Flags().MarkHidden("selected")

	upgradeCmd.Flags().StringVar(&sourceFlag, "source", "", "restrict the listing to one winget source")
	upgradeCmd.Flags().StringVar(&logDirFlag, "log-dir", "", "directory for per-upgrade diagnostic logs")
	upgradeCmd.Flags().BoolVar(&noPause, "no-pause", false, "skip the final press-enter pause")
}

func runUpgrade() int {
	cfg := loadConfig()

	logDir := logDirFlag
	if logDir == "" {
		logDir = cfg.LogDir
	}
	source := sourceFlag
	if source == "" {
		source = cfg.DefaultSource
	}

	if rw := setupLogging(cfg); rw != nil {
		defer rw.Close()
	}

	client := winget.NewClient(winget.DefaultExec, cfg.WingetPath, logDir)

	return workflow.Run(workflow.Options{
		Service:      client,
		MachinePhase: machinePhase,
		SelectedIDs:  elevate.ParseIDs(selectedList),
		Source:       source,
		LogDir:       logDir,
		NoPause:      noPause || cfg.SkipPause,
	})
}
