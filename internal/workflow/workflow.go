// Package workflow drives the interactive upgrade session: list candidates,
// prompt for a selection and a run mode, run or relay, classify failures,
// optionally escalate the failed subset, then pause and exit.
package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/upkeep-win/upkeep/internal/elevate"
	"github.com/upkeep-win/upkeep/internal/logging"
	"github.com/upkeep-win/upkeep/internal/prompt"
	"github.com/upkeep-win/upkeep/internal/report"
	"github.com/upkeep-win/upkeep/internal/winget"
)

var log = logging.L("workflow")

// Exit codes. Any deliberate completion exits 0, including "nothing to do",
// "operator skipped" and "completed with failures". 1 is reserved for
// unexpected internal errors.
const (
	ExitOK            = 0
	ExitInternalError = 1
)

// UpgradeService is the slice of the winget client the workflow needs.
type UpgradeService interface {
	ListUpgrades(source string) []winget.UpgradeCandidate
	RunSelected(cands []winget.UpgradeCandidate, stage string) []winget.UpgradeOutcome
}

// Options configures one workflow run. In/Out default to the process
// standard streams; Relay defaults to the real elevation relay.
type Options struct {
	In  io.Reader
	Out io.Writer

	Service UpgradeService
	Relay   func(ids []string) error

	// MachinePhase marks the elevated relay pass; SelectedIDs carries the
	// relayed package ids in that case.
	MachinePhase bool
	SelectedIDs  []string

	Source  string
	LogDir  string
	NoPause bool
}

// Run executes the workflow and returns the process exit code. The final
// pause runs on every path, including after an internal error.
func Run(opts Options) (code int) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Relay == nil {
		logDir := opts.LogDir
		opts.Relay = func(ids []string) error {
			return elevate.RelayUpgrade(ids, logDir)
		}
	}

	p := prompt.New(opts.In, opts.Out)

	defer func() {
		if r := recover(); r != nil {
			log.Error("unexpected internal error", "panic", r)
			fmt.Fprintf(opts.Out, "\nUnexpected internal error: %v\n", r)
			code = ExitInternalError
		}
		if !opts.NoPause {
			p.Pause()
		}
	}()

	if opts.MachinePhase {
		return runMachinePhase(opts)
	}
	return runInteractive(opts, p)
}

// runMachinePhase is the elevated entry point: the relayed id list is the
// whole selection, no prompts.
func runMachinePhase(opts Options) int {
	cands := winget.BareCandidates(opts.SelectedIDs)
	if len(cands) == 0 {
		fmt.Fprintln(opts.Out, "No package ids were relayed; nothing to do.")
		return ExitOK
	}

	if !elevate.IsElevated() {
		log.Warn("machine-scope pass is running without elevation")
	}
	fmt.Fprintf(opts.Out, "Machine-scope pass: upgrading %d package(s).\n", len(cands))

	outcomes := opts.Service.RunSelected(cands, winget.StageMachine)
	report.NewSummarizer(opts.Out).Summarize(outcomes, len(cands)-len(outcomes))
	return ExitOK
}

func runInteractive(opts Options, p *prompt.Prompter) int {
	cands := opts.Service.ListUpgrades(opts.Source)
	if len(cands) == 0 {
		fmt.Fprintln(opts.Out, "No upgrades available.")
		return ExitOK
	}

	renderCandidates(opts.Out, cands)

	selection := p.Selection(len(cands))
	if len(selection) == 0 {
		fmt.Fprintln(opts.Out, "No selection made; nothing to do.")
		return ExitOK
	}

	chosen := make([]winget.UpgradeCandidate, 0, len(selection))
	for _, idx := range selection {
		chosen = append(chosen, cands[idx-1])
	}

	if p.RunMode() == prompt.RunElevated {
		relayOrWarn(opts, candidateIDs(chosen))
		return ExitOK
	}

	outcomes := opts.Service.RunSelected(chosen, winget.StageInteractive)
	report.NewSummarizer(opts.Out).Summarize(outcomes, len(chosen)-len(outcomes))

	if len(outcomes) > 0 {
		if p.Confirm("\nRetry the failed upgrades in an elevated session?", true) {
			failed := make([]string, 0, len(outcomes))
			for _, o := range outcomes {
				failed = append(failed, o.ID)
			}
			relayOrWarn(opts, failed)
		}
	}

	return ExitOK
}

func renderCandidates(out io.Writer, cands []winget.UpgradeCandidate) {
	fmt.Fprintf(out, "Pending upgrades (%d):\n", len(cands))
	for i, c := range cands {
		fmt.Fprintf(out, "  %2d) %s (%s)  %s -> %s", i+1,
			c.DisplayName(), c.ID, c.DisplayInstalled(), c.DisplayAvailable())
		if c.Source != "" {
			fmt.Fprintf(out, "  [%s]", c.Source)
		}
		fmt.Fprintln(out)
	}
}

func relayOrWarn(opts Options, ids []string) {
	err := opts.Relay(ids)
	switch {
	case err == nil:
		if len(ids) > 0 {
			fmt.Fprintf(opts.Out, "Started an elevated session for %d package(s). Results appear in its own window.\n", len(ids))
		}
	case errors.Is(err, elevate.ErrDeclined):
		log.Warn("elevation declined by the operator")
		fmt.Fprintln(opts.Out, "Elevation was declined; those upgrades did not run.")
	default:
		log.Warn("elevated relaunch failed", "error", err)
		fmt.Fprintf(opts.Out, "Could not start the elevated session: %v\n", err)
	}
}

func candidateIDs(cands []winget.UpgradeCandidate) []string {
	ids := make([]string, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.ID)
	}
	return ids
}
