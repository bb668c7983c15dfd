//go:build !windows

package elevate

import (
	"fmt"
	"os"
)

func runElevated(exe string, args []string) error {
	return fmt.Errorf("elevated relaunch is only supported on windows")
}

// IsElevated reports whether the process runs as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}
