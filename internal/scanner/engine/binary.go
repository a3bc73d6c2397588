package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	semver "github.com/blang/semver/v4"
)

// BinaryName is the engine executable looked up in $PATH and the cache dir.
const BinaryName = "asmscan-engine"

// BinaryManager handles detection of the engine binary.
type BinaryManager struct {
	customPath string
	cachePath  string
}

// NewBinaryManager creates a new binary manager.
// customPath: optional explicit path to the engine binary
// The cache directory defaults to ~/.asmscan/bin.
func NewBinaryManager(customPath string) *BinaryManager {
	homeDir, _ := os.UserHomeDir()
	cachePath := filepath.Join(homeDir, ".asmscan", "bin")

	return &BinaryManager{
		customPath: customPath,
		cachePath:  cachePath,
	}
}

// Find locates the engine binary using the following search order:
// 1. Custom path (if provided)
// 2. $PATH lookup
// 3. Cached binary in ~/.asmscan/bin
func (bm *BinaryManager) Find() (string, error) {
	if bm.customPath != "" {
		if _, err := os.Stat(bm.customPath); err == nil {
			return bm.customPath, nil
		}
		return "", fmt.Errorf("custom engine path not found: %s", bm.customPath)
	}

	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}

	cachedPath := filepath.Join(bm.cachePath, BinaryName)
	if runtime.GOOS == "windows" {
		cachedPath += ".exe"
	}
	if _, err := os.Stat(cachedPath); err == nil {
		return cachedPath, nil
	}

	return "", fmt.Errorf("%s binary not found in PATH or cache (%s)", BinaryName, cachedPath)
}

// Version runs `<engine> version` and returns the first line with any
// leading "v" or "version " removed.
func (bm *BinaryManager) Version(binaryPath string) (string, error) {
	output, err := exec.Command(binaryPath, "version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get engine version: %w", err)
	}
	version := strings.TrimSpace(string(output))
	if lines := strings.Split(version, "\n"); len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}
	version = strings.TrimPrefix(version, "version ")
	version = strings.TrimPrefix(version, "v")
	return version, nil
}

// checkMinVersion returns an error when version is older than minVersion.
// An empty minVersion accepts anything.
func checkMinVersion(version, minVersion string) error {
	if minVersion == "" {
		return nil
	}
	want, err := semver.ParseTolerant(minVersion)
	if err != nil {
		return fmt.Errorf("invalid engine min_version %q: %w", minVersion, err)
	}
	have, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot compare engine version %q against %s: %w", version, want, err)
	}
	if have.LT(want) {
		return fmt.Errorf("engine version %s is older than required %s", have, want)
	}
	return nil
}
