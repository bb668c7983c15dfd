//go:build windows

package elevate

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// runElevated launches exe with the given arguments through the shell
// "runas" verb, which raises the UAC consent prompt.
func runElevated(exe string, args []string) error {
	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}
	params, err := windows.UTF16PtrFromString(windows.ComposeCommandLine(args))
	if err != nil {
		return err
	}

	err = windows.ShellExecute(0, verb, file, params, nil, windows.SW_SHOWNORMAL)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == windows.ERROR_CANCELLED {
			return ErrDeclined
		}
		return fmt.Errorf("elevated relaunch failed: %w", err)
	}
	return nil
}

// IsElevated reports whether the current process token carries
// administrator rights.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
