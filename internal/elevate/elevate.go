// Package elevate re-launches the current executable in an elevated context.
// The only state crossing the elevation boundary is a comma-joined list of
// package ids passed on the command line; the elevated pass owns its own
// logs and console.
package elevate

import (
	"errors"
	"os"
	"strings"

	"github.com/upkeep-win/upkeep/internal/logging"
)

var log = logging.L("elevate")

// ErrDeclined is returned when the operating environment refuses the
// privilege prompt. Callers treat it as "that subset did not run", not as a
// fatal error.
var ErrDeclined = errors.New("elevation was declined")

const (
	listSeparator = ","

	// Used only when host-executable discovery fails.
	fallbackExecutable = "upkeep"
)

// JoinIDs serializes package ids for the relay command line.
func JoinIDs(ids []string) string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			kept = append(kept, id)
		}
	}
	return strings.Join(kept, listSeparator)
}

// ParseIDs parses a relayed id list back into bare ids, dropping empties and
// duplicates while preserving order.
func ParseIDs(joined string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(joined, listSeparator) {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// RelayUpgrade re-invokes the current executable elevated, marked as the
// machine phase and carrying only the given subset of package ids. A no-op
// when ids is empty.
func RelayUpgrade(ids []string, logDir string) error {
	joined := JoinIDs(ids)
	if joined == "" {
		return nil
	}

	args := []string{"upgrade", "--machine-phase", "--selected", joined}
	if logDir != "" {
		args = append(args, "--log-dir", logDir)
	}

	exe := hostExecutable()
	log.Info("relaunching elevated", "executable", exe, "packageIds", joined)
	return runElevated(exe, args)
}

// hostExecutable discovers the process currently running the tool rather
// than assuming an install name.
func hostExecutable() string {
	if exe, err := os.Executable(); err == nil && exe != "" {
		return exe
	}
	if len(os.Args) > 0 && os.Args[0] != "" {
		return os.Args[0]
	}
	return fallbackExecutable
}
