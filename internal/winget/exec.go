package winget

import (
	"bytes"
	"os/exec"
)

// ExecFunc runs a command and returns stdout, stderr and the exit code.
// Injected so parsing and executor logic can be tested without winget.
type ExecFunc func(name string, args []string) (stdout, stderr string, exitCode int, err error)

// DefaultExec runs the command synchronously with no timeout. Upgrades are
// fully interactive-session driven; a stuck installer is the operator's call
// to cancel, not ours.
func DefaultExec(name string, args []string) (string, string, int, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			err = nil
		} else {
			exitCode = -1
		}
	}

	return stdout.String(), stderr.String(), exitCode, err
}
