package report

import (
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// runningInstallers names installer-like processes currently running, used
// to substantiate the "another installation in progress" diagnosis.
func runningInstallers() []string {
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
		if isInstallerName(name) {
			seen[strings.ToLower(name)] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isInstallerName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "msiexec.exe" ||
		lower == "msiexec" ||
		strings.Contains(lower, "setup") ||
		strings.Contains(lower, "install")
}
