package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/upkeep-win/upkeep/internal/nodeup"
	"github.com/upkeep-win/upkeep/internal/winget"
)

var (
	nvmOnly    bool
	systemOnly bool
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Refresh Node.js installations",
	Long: `Updates Node.js across both install models: the nvm-windows managed
install and the machine-wide winget install. Runs both unless restricted
with --nvm or --system.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runNode())
	},
}

func init() {
	nodeCmd.Flags().BoolVar(&nvmOnly, "nvm", false, "only refresh the nvm-managed install")
	nodeCmd.Flags().BoolVar(&systemOnly, "system", false, "only refresh the system install")
}

func runNode() int {
	cfg := loadConfig()

	if rw := setupLogging(cfg); rw != nil {
		defer rw.Close()
	}

	client := winget.NewClient(winget.DefaultExec, cfg.WingetPath, cfg.LogDir)
	refresher := nodeup.New(winget.DefaultExec, client, cfg.NodeDistURL, cfg.NodePackageID)

	if !systemOnly {
		renderSteps("Version-manager install (nvm)", refresher.UpdateVersionManagerNode())
	}
	if !nvmOnly {
		renderSteps("System install (winget)", refresher.UpdateSystemNode())
	}

	return 0
}

func renderSteps(title string, steps []nodeup.StepResult) {
	fmt.Printf("\n%s:\n", title)

	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	for _, step := range steps {
		if step.OK {
			good.Printf("  ok   ")
			fmt.Print(step.Name)
			if step.Output != "" {
				fmt.Printf(" (%s)", step.Output)
			}
			fmt.Println()
			continue
		}
		bad.Printf("  FAIL ")
		fmt.Printf("%s: %s\n", step.Name, step.Err)
	}
}
