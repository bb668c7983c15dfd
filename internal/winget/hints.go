package winget

import "fmt"

// knownInstallerExits maps well-known Windows Installer exit codes to
// human-readable causes. These are MSI error codes, not winget's own.
var knownInstallerExits = map[int]string{
	0:    "completed successfully",
	5:    "access denied, the installer needs elevation",
	1602: "installation was canceled by the user",
	1603: "fatal error during installation",
	1618: "another installation is already in progress",
	1619: "installation package could not be opened",
	1622: "installer could not open its log file",
	1625: "installation is forbidden by system policy",
	1638: "another version of this product is already installed",
	1641: "installer initiated a restart",
	3010: "installer requires a restart to complete",
}

// HintForInstallerExit returns a human-readable description of an installer
// exit code, falling back to a generic message for unrecognized codes.
func HintForInstallerExit(code int) string {
	if msg, ok := knownInstallerExits[code]; ok {
		return fmt.Sprintf("installer exit code %d: %s", code, msg)
	}
	return fmt.Sprintf("installer returned exit code %d", code)
}

// IsInProgress reports whether the code means a concurrent installation
// holds the Windows Installer mutex.
func IsInProgress(code int) bool {
	return code == 1618
}

// IsRestartRequired reports whether the code asks for a reboot.
func IsRestartRequired(code int) bool {
	return code == 3010 || code == 1641
}

// IsUserCancelled reports whether the installer was canceled interactively.
func IsUserCancelled(code int) bool {
	return code == 1602
}
