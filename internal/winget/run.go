package winget

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var sanitizePattern = regexp.MustCompile(`[^A-Za-z0-9._\-]`)

// Log phrasings winget uses when it reports the wrapped installer's own exit
// code. The wrapping tool's exit code alone does not convey installer failure
// causes for MSI-backed packages.
var installerExitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)install(?:ation)?\s+failed\s+with\s+exit\s+code:?\s*(-?\d+)`),
	regexp.MustCompile(`(?i)uninstall(?:ation)?\s+failed\s+with\s+exit\s+code:?\s*(-?\d+)`),
	regexp.MustCompile(`(?i)installer\s+(?:return|exit)\s+code:?\s*(-?\d+)`),
	regexp.MustCompile(`(?i)msi\s+(?:return|exit)\s+code:?\s*(-?\d+)`),
}

// RunSelected upgrades each candidate in order, one winget invocation at a
// time, and returns the failed outcomes. A failure never aborts the
// remaining candidates. Successes are logged and counted by the caller.
func (c *Client) RunSelected(cands []UpgradeCandidate, stage string) []UpgradeOutcome {
	var failures []UpgradeOutcome

	for _, cand := range cands {
		if cand.ID == "" {
			continue
		}
		if !validPackageID.MatchString(cand.ID) {
			log.Warn("skipping invalid package id", "packageId", cand.ID)
			continue
		}

		logPath := c.diagnosticLogPath(cand.ID)

		args := []string{
			"upgrade",
			"--include-unknown",
			"--silent",
			"--exact",
			"--id", cand.ID,
			"--accept-package-agreements",
			"--accept-source-agreements",
			"--disable-interactivity",
		}
		if cand.Source != "" {
			args = append(args, "--source", cand.Source)
		}
		if logPath != "" {
			args = append(args, "--log", logPath)
		}

		log.Info("upgrading package", "packageId", cand.ID, "stage", stage)

		_, stderr, exitCode, err := c.exec(c.bin, args)
		if err != nil {
			log.Warn("winget could not be started", "packageId", cand.ID, "error", err)
			failures = append(failures, UpgradeOutcome{
				ID:           cand.ID,
				Stage:        stage,
				ToolExitCode: -1,
				LogPath:      logPath,
				Hint:         fmt.Sprintf("winget could not be started: %v", err),
			})
			continue
		}

		if exitCode == 0 {
			log.Info("upgrade succeeded", "packageId", cand.ID, "stage", stage)
			continue
		}

		installerCode := scanInstallerExitCode(logPath)

		hint := fmt.Sprintf("winget returned exit code %d", exitCode)
		if installerCode != nil {
			hint = HintForInstallerExit(*installerCode)
		}

		log.Warn("upgrade failed",
			"packageId", cand.ID,
			"stage", stage,
			"exitCode", exitCode,
			"logPath", logPath,
			"stderr", strings.TrimSpace(stderr))

		failures = append(failures, UpgradeOutcome{
			ID:                cand.ID,
			Stage:             stage,
			ToolExitCode:      exitCode,
			InstallerExitCode: installerCode,
			LogPath:           logPath,
			Hint:              hint,
		})
	}

	return failures
}

// diagnosticLogPath builds a fresh, collision-free log path from the
// sanitized id plus a nanosecond timestamp, so repeated runs and the
// elevated pass never overwrite each other's diagnostics.
func (c *Client) diagnosticLogPath(id string) string {
	dir := c.logDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "upkeep")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Warn("cannot create diagnostic log directory", "dir", dir, "error", err)
		return ""
	}

	name := fmt.Sprintf("winget-%s-%d.log", sanitizeID(id), c.now().UnixNano())
	return filepath.Join(dir, name)
}

func sanitizeID(id string) string {
	return sanitizePattern.ReplaceAllString(id, "_")
}

// scanInstallerExitCode reads the winget diagnostic log and returns the first
// embedded installer exit code it can find, nil when the log is absent or
// holds none.
func scanInstallerExitCode(logPath string) *int {
	if logPath == "" {
		return nil
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil
	}

	for _, line := range strings.Split(string(data), "\n") {
		for _, pattern := range installerExitPatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			code, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return &code
		}
	}
	return nil
}
