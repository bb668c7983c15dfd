package winget

// Stage labels distinguish where an upgrade ran. The machine stage is the
// elevated relay pass.
const (
	StageInteractive = "current-session"
	StageMachine     = "machine-scope"
)

// UpgradeCandidate is one pending upgrade as reported by winget.
type UpgradeCandidate struct {
	Name             string // display name, may be empty
	ID               string // stable package identifier, required
	InstalledVersion string
	AvailableVersion string
	Source           string // repository tag, optional
}

// DisplayName returns the name, falling back to the id.
func (c UpgradeCandidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// DisplayInstalled renders the installed version, "unknown" when absent.
func (c UpgradeCandidate) DisplayInstalled() string {
	return orUnknown(c.InstalledVersion)
}

// DisplayAvailable renders the available version, "unknown" when absent.
func (c UpgradeCandidate) DisplayAvailable() string {
	return orUnknown(c.AvailableVersion)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// UpgradeOutcome records one failed upgrade invocation. Successes are counted
// by the caller but not detailed.
type UpgradeOutcome struct {
	ID                string
	Stage             string
	ToolExitCode      int
	InstallerExitCode *int   // recovered from the winget log, MSI-backed installs only
	LogPath           string // per-invocation diagnostic log, may be empty
	Hint              string
	RetryHint         string // backfilled once by the summary renderer
}

// BareCandidates rebuilds minimal candidates from relayed package ids.
// Name and source are not preserved across the elevation boundary.
func BareCandidates(ids []string) []UpgradeCandidate {
	cands := make([]UpgradeCandidate, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		cands = append(cands, UpgradeCandidate{ID: id})
	}
	return cands
}
