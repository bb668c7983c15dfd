// Package download fetches installer packages over HTTP and runs them
// silently through msiexec.
package download

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/upkeep-win/upkeep/internal/logging"
)

var log = logging.L("download")

// Fetcher downloads installer packages.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Minute},
	}
}

// Fetch downloads url to dest and returns the SHA-256 of the payload.
func (f *Fetcher) Fetch(url, dest string) (string, error) {
	log.Info("downloading installer", "url", url, "dest", dest)

	resp, err := f.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	defer out.Close()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write download: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FetchVerified downloads url to dest and verifies the payload against the
// expected SHA-256. The file is removed on mismatch.
func (f *Fetcher) FetchVerified(url, dest, wantSHA256 string) error {
	sum, err := f.Fetch(url, dest)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, wantSHA256) {
		os.Remove(dest)
		return fmt.Errorf("checksum mismatch: got %s, want %s", sum, wantSHA256)
	}
	return nil
}

// RunInstallerSilent runs an MSI package non-interactively and returns the
// msiexec exit code.
func RunInstallerSilent(msiPath, logPath string) (int, error) {
	args := []string{"/i", msiPath, "/qn", "/norestart"}
	if logPath != "" {
		args = append(args, "/l*v", logPath)
	}

	log.Info("running installer silently", "msi", msiPath, "logPath", logPath)

	cmd := exec.Command("msiexec", args...)
	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("msiexec could not be started: %w", err)
	}
	return 0, nil
}
