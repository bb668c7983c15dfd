// Package report classifies failed upgrade outcomes and renders the final
// operator-facing summary.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/upkeep-win/upkeep/internal/logging"
	"github.com/upkeep-win/upkeep/internal/winget"
)

var log = logging.L("report")

const (
	remedyElevate        = "retry in an elevated session"
	remedyCloseProcesses = "close the related applications and retry"
)

// Summarizer renders the end-of-run report. Log re-reads and process
// enumeration are injected for tests.
type Summarizer struct {
	out            io.Writer
	signatures     []Signature
	readLog        func(path string) ([]byte, error)
	listInstallers func() []string

	good *color.Color
	bad  *color.Color
	dim  *color.Color
}

func NewSummarizer(out io.Writer) *Summarizer {
	return &Summarizer{
		out:            out,
		signatures:     loadSignatures(),
		readLog:        os.ReadFile,
		listInstallers: runningInstallers,
		good:           color.New(color.FgGreen),
		bad:            color.New(color.FgRed),
		dim:            color.New(color.Faint),
	}
}

// Summarize prints the failure report for the given outcomes. succeeded is
// the count of invocations that completed cleanly. Outcomes are not mutated
// except to backfill RetryHint once, the first time each is summarized.
func (s *Summarizer) Summarize(outcomes []winget.UpgradeOutcome, succeeded int) {
	if len(outcomes) == 0 {
		s.good.Fprintf(s.out, "\nAll selected upgrades completed successfully (%d done).\n", succeeded)
		return
	}

	s.bad.Fprintf(s.out, "\n%d upgrade(s) failed (%d succeeded):\n", len(outcomes), succeeded)

	for i := range outcomes {
		o := &outcomes[i]

		reason := s.classify(o)
		if o.RetryHint == "" {
			if o.Stage == winget.StageInteractive {
				o.RetryHint = remedyElevate
			} else {
				o.RetryHint = remedyCloseProcesses
			}
		}

		s.bad.Fprintf(s.out, "  x %s", o.ID)
		fmt.Fprintf(s.out, " - %s\n", reason)
		fmt.Fprintf(s.out, "      remedy: %s\n", o.RetryHint)
		if o.LogPath != "" {
			s.dim.Fprintf(s.out, "      log: %s\n", o.LogPath)
		}

		if s.isInstallerConflict(o) {
			if names := s.listInstallers(); len(names) > 0 {
				fmt.Fprintf(s.out, "      running installers: %s\n", strings.Join(names, ", "))
			}
		}
	}
}

// classify maps an outcome to a printed reason: first matching log
// signature, then the installer-exit-code hint, then a generic message.
func (s *Summarizer) classify(o *winget.UpgradeOutcome) string {
	if o.LogPath != "" {
		if data, err := s.readLog(o.LogPath); err == nil {
			content := string(data)
			for _, sig := range s.signatures {
				if sig.match(content) {
					return sig.Reason
				}
			}
		}
	}

	if o.Hint != "" {
		return o.Hint
	}
	return "upgrade failed"
}

func (s *Summarizer) isInstallerConflict(o *winget.UpgradeOutcome) bool {
	return o.InstallerExitCode != nil && winget.IsInProgress(*o.InstallerExitCode)
}
