// Package nodeup refreshes Node.js installations across the two install
// models: version-manager based (nvm-windows) and system package based
// (winget, with a direct MSI fallback).
package nodeup

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/upkeep-win/upkeep/internal/download"
	"github.com/upkeep-win/upkeep/internal/logging"
	"github.com/upkeep-win/upkeep/internal/winget"
)

var log = logging.L("nodeup")

// StepResult is one pass/fail step of a refresh run, with captured output
// and error text.
type StepResult struct {
	Name   string
	OK     bool
	Output string
	Err    string
}

// Refresher updates Node.js installs. The exec function and HTTP client are
// injected for tests.
type Refresher struct {
	exec      winget.ExecFunc
	wg        *winget.Client
	fetcher   *download.Fetcher
	client    *http.Client
	distURL   string
	packageID string
}

func New(exec winget.ExecFunc, wg *winget.Client, distURL, packageID string) *Refresher {
	if exec == nil {
		exec = winget.DefaultExec
	}
	if distURL == "" {
		distURL = "https://nodejs.org/dist/index.json"
	}
	if packageID == "" {
		packageID = "OpenJS.NodeJS.LTS"
	}
	return &Refresher{
		exec:      exec,
		wg:        wg,
		fetcher:   download.NewFetcher(),
		client:    &http.Client{Timeout: 60 * time.Second},
		distURL:   distURL,
		packageID: packageID,
	}
}

// UpdateVersionManagerNode refreshes the nvm-windows managed Node install.
// Steps run in order; a failed prerequisite ends the run with the steps
// recorded so far.
func (r *Refresher) UpdateVersionManagerNode() []StepResult {
	var steps []StepResult

	root, ok := r.step(&steps, "locate nvm", "nvm", "root")
	if !ok {
		return steps
	}
	log.Debug("nvm located", "root", strings.TrimSpace(root))

	version, err := r.latestLTS()
	if err != nil {
		steps = append(steps, StepResult{
			Name: "resolve latest LTS release",
			Err:  err.Error(),
		})
		return steps
	}
	steps = append(steps, StepResult{
		Name:   "resolve latest LTS release",
		OK:     true,
		Output: version,
	})

	if _, ok := r.step(&steps, "install via nvm", "nvm", "install", strings.TrimPrefix(version, "v")); !ok {
		return steps
	}
	if _, ok := r.step(&steps, "activate installed version", "nvm", "use", strings.TrimPrefix(version, "v")); !ok {
		return steps
	}
	r.step(&steps, "verify node version", "node", "--version")

	return steps
}

// UpdateSystemNode refreshes the machine-wide Node install through winget,
// falling back to a direct MSI install when winget cannot do it.
func (r *Refresher) UpdateSystemNode() []StepResult {
	var steps []StepResult

	if running := runningNodeProcesses(); len(running) > 0 {
		steps = append(steps, StepResult{
			Name:   "check for running node processes",
			OK:     true,
			Output: "still running: " + strings.Join(running, ", "),
		})
	} else {
		steps = append(steps, StepResult{Name: "check for running node processes", OK: true})
	}

	outcomes := r.wg.RunSelected(
		[]winget.UpgradeCandidate{{ID: r.packageID}},
		"node-refresh",
	)
	if len(outcomes) == 0 {
		steps = append(steps, StepResult{
			Name:   "upgrade via winget",
			OK:     true,
			Output: r.packageID,
		})
		return steps
	}
	steps = append(steps, StepResult{
		Name: "upgrade via winget",
		Err:  outcomes[0].Hint,
	})

	steps = append(steps, r.directInstall())
	return steps
}

// directInstall downloads the latest LTS MSI from the dist mirror and runs
// it silently.
func (r *Refresher) directInstall() StepResult {
	step := StepResult{Name: "direct MSI install"}

	version, err := r.latestLTS()
	if err != nil {
		step.Err = err.Error()
		return step
	}

	base := strings.TrimSuffix(r.distURL, "/index.json")
	url := fmt.Sprintf("%s/%s/node-%s-x64.msi", base, version, version)
	dest := filepath.Join(os.TempDir(), "upkeep", fmt.Sprintf("node-%s-x64.msi", version))
	logPath := dest + ".install.log"

	if _, err := r.fetcher.Fetch(url, dest); err != nil {
		step.Err = err.Error()
		return step
	}
	defer os.Remove(dest)

	code, err := download.RunInstallerSilent(dest, logPath)
	if err != nil {
		step.Err = err.Error()
		return step
	}
	if code != 0 {
		step.Err = winget.HintForInstallerExit(code)
		step.Output = "log: " + logPath
		return step
	}

	step.OK = true
	step.Output = version
	return step
}

// step runs one external command as a named step and records the result.
func (r *Refresher) step(steps *[]StepResult, name, cmd string, args ...string) (string, bool) {
	stdout, stderr, exitCode, err := r.exec(cmd, args)

	result := StepResult{
		Name:   name,
		Output: strings.TrimSpace(stdout),
	}
	switch {
	case err != nil:
		result.Err = err.Error()
	case exitCode != 0:
		result.Err = fmt.Sprintf("%s exited with code %d: %s", cmd, exitCode, strings.TrimSpace(stderr))
	default:
		result.OK = true
	}

	*steps = append(*steps, result)
	return result.Output, result.OK
}

// distRelease is one entry of the nodejs.org dist index. LTS is false for
// current releases and the codename string for LTS lines.
type distRelease struct {
	Version string `json:"version"`
	LTS     any    `json:"lts"`
}

func (r *Refresher) latestLTS() (string, error) {
	resp, err := r.client.Get(r.distURL)
	if err != nil {
		return "", fmt.Errorf("fetch dist index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch dist index: unexpected status %s", resp.Status)
	}

	var releases []distRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return "", fmt.Errorf("parse dist index: %w", err)
	}

	// The index is newest-first; the first LTS entry is the latest LTS.
	for _, rel := range releases {
		if name, ok := rel.LTS.(string); ok && name != "" {
			return rel.Version, nil
		}
	}
	return "", fmt.Errorf("no LTS release in dist index")
}

// runningNodeProcesses names node processes currently running, so the
// operator knows an in-place upgrade may misbehave.
func runningNodeProcesses() []string {
	procs, err := process.Processes()
	if err != nil {
		log.Debug("process enumeration failed", "error", err)
		return nil
	}

	seen := make(map[string]struct{})
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		lower := strings.ToLower(name)
		if lower == "node" || lower == "node.exe" {
			seen[lower] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}
