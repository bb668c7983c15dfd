package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/upkeep-win/upkeep/internal/winget"
)

// newTestSummarizer builds a Summarizer with the log reader and installer
// enumeration stubbed out.
func newTestSummarizer(out *bytes.Buffer, logs map[string]string, installers []string) *Summarizer {
	s := NewSummarizer(out)
	s.readLog = func(path string) ([]byte, error) {
		if content, ok := logs[path]; ok {
			return []byte(content), nil
		}
		return nil, errors.New("no such log")
	}
	s.listInstallers = func() []string { return installers }
	return s
}

func TestSummarizeAllSucceeded(t *testing.T) {
	var out bytes.Buffer
	s := newTestSummarizer(&out, nil, nil)

	s.Summarize(nil, 4)

	got := out.String()
	if !strings.Contains(got, "completed successfully") || !strings.Contains(got, "4 done") {
		t.Errorf("unexpected success summary: %q", got)
	}
}

func TestSummarizeClassifiesBySignature(t *testing.T) {
	var out bytes.Buffer
	logs := map[string]string{
		"C:/logs/a.log": "Error: Application is currently running. Files in use.\n",
	}
	s := newTestSummarizer(&out, logs, nil)

	s.Summarize([]winget.UpgradeOutcome{{
		ID:      "Some.App",
		Stage:   winget.StageInteractive,
		LogPath: "C:/logs/a.log",
		Hint:    "winget returned exit code 1",
	}}, 0)

	got := out.String()
	if !strings.Contains(got, "a running application is blocking the upgrade") {
		t.Errorf("signature reason not used: %q", got)
	}
	if strings.Contains(got, "exit code 1") {
		t.Errorf("hint should be superseded by the signature: %q", got)
	}
}

func TestSummarizeFirstSignatureWins(t *testing.T) {
	var out bytes.Buffer
	// Log matches both blocking-process and user-cancelled patterns; the
	// ruleset order decides.
	logs := map[string]string{
		"x.log": "files in use\ncanceled by the user\n",
	}
	s := newTestSummarizer(&out, logs, nil)

	s.Summarize([]winget.UpgradeOutcome{{ID: "A.B", LogPath: "x.log"}}, 0)

	if !strings.Contains(out.String(), "blocking the upgrade") {
		t.Errorf("expected the first matching signature: %q", out.String())
	}
}

func TestSummarizeFallsBackToHintThenGeneric(t *testing.T) {
	var out bytes.Buffer
	s := newTestSummarizer(&out, nil, nil)

	s.Summarize([]winget.UpgradeOutcome{
		{ID: "With.Hint", LogPath: "missing.log", Hint: "installer exit code 1603: fatal error during installation"},
		{ID: "No.Hint"},
	}, 1)

	got := out.String()
	if !strings.Contains(got, "fatal error during installation") {
		t.Errorf("hint fallback missing: %q", got)
	}
	if !strings.Contains(got, "upgrade failed") {
		t.Errorf("generic fallback missing: %q", got)
	}
}

func TestSummarizeRemedyByStage(t *testing.T) {
	var out bytes.Buffer
	s := newTestSummarizer(&out, nil, nil)

	outcomes := []winget.UpgradeOutcome{
		{ID: "Interactive.Fail", Stage: winget.StageInteractive},
		{ID: "Machine.Fail", Stage: winget.StageMachine},
	}
	s.Summarize(outcomes, 0)

	got := out.String()
	if !strings.Contains(got, remedyElevate) {
		t.Errorf("interactive-stage remedy missing: %q", got)
	}
	if !strings.Contains(got, remedyCloseProcesses) {
		t.Errorf("machine-stage remedy missing: %q", got)
	}
	if outcomes[0].RetryHint != remedyElevate {
		t.Errorf("RetryHint not backfilled: %q", outcomes[0].RetryHint)
	}
}

func TestSummarizeKeepsExistingRetryHint(t *testing.T) {
	var out bytes.Buffer
	s := newTestSummarizer(&out, nil, nil)

	outcomes := []winget.UpgradeOutcome{
		{ID: "A.B", Stage: winget.StageInteractive, RetryHint: "reboot and retry"},
	}
	s.Summarize(outcomes, 0)

	if outcomes[0].RetryHint != "reboot and retry" {
		t.Errorf("existing RetryHint overwritten: %q", outcomes[0].RetryHint)
	}
	if !strings.Contains(out.String(), "reboot and retry") {
		t.Errorf("existing RetryHint not printed: %q", out.String())
	}
}

func TestSummarizeListsInstallersOnConflict(t *testing.T) {
	var out bytes.Buffer
	s := newTestSummarizer(&out, nil, []string{"msiexec.exe", "setup.exe"})

	code := 1618
	s.Summarize([]winget.UpgradeOutcome{
		{ID: "A.B", InstallerExitCode: &code},
	}, 0)

	if !strings.Contains(out.String(), "msiexec.exe, setup.exe") {
		t.Errorf("running installers not listed: %q", out.String())
	}
}

func TestSummarizeSkipsInstallerListWithoutConflict(t *testing.T) {
	var out bytes.Buffer
	s := newTestSummarizer(&out, nil, []string{"msiexec.exe"})

	code := 1603
	s.Summarize([]winget.UpgradeOutcome{
		{ID: "A.B", InstallerExitCode: &code},
	}, 0)

	if strings.Contains(out.String(), "running installers") {
		t.Errorf("installer list printed for non-conflict exit: %q", out.String())
	}
}

func TestEmbeddedSignaturesLoad(t *testing.T) {
	sigs := loadSignatures()
	if len(sigs) == 0 {
		t.Fatal("embedded ruleset yielded no signatures")
	}
	for _, sig := range sigs {
		if sig.Name == "" || sig.Reason == "" || len(sig.Patterns) == 0 {
			t.Errorf("incomplete signature: %+v", sig)
		}
	}
}

func TestSignatureMatchIsCaseInsensitive(t *testing.T) {
	sig := Signature{Patterns: []string{"Files In Use"}}
	if !sig.match("error: FILES IN USE by another process") {
		t.Error("expected case-insensitive match")
	}
	if sig.match("clean log") {
		t.Error("unexpected match")
	}
}

func TestIsInstallerNameFilter(t *testing.T) {
	for _, name := range []string{"msiexec.exe", "Setup.exe", "chrome_installer.exe"} {
		if !isInstallerName(name) {
			t.Errorf("%q should be treated as an installer", name)
		}
	}
	for _, name := range []string{"explorer.exe", "code.exe"} {
		if isInstallerName(name) {
			t.Errorf("%q should not be treated as an installer", name)
		}
	}
}
