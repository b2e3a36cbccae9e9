package preflight

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// markerName is the file recording a successful preflight pass, kept in the
// build output directory. It stores the fingerprint of the configuration the
// pass validated, so editing crucible.yaml invalidates the marker.
const markerName = ".preflight-passed"

// Fingerprint hashes the configuration file content. Markers written for a
// different fingerprint do not satisfy NeedsCheck.
func Fingerprint(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("fingerprint config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// NeedsCheck reports whether preflight should run for this output directory:
// true when no marker exists or the marker was written for a different
// configuration.
func NeedsCheck(outDir, fingerprint string) bool {
	recorded, _, err := readMarker(outDir)
	if err != nil {
		return true
	}
	return recorded != fingerprint
}

// MarkPassed records a successful pass for the given configuration
// fingerprint.
func MarkPassed(outDir, fingerprint string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	content := fmt.Sprintf("%s\n%s\n", fingerprint, time.Now().Format(time.RFC3339))
	return os.WriteFile(filepath.Join(outDir, markerName), []byte(content), 0644)
}

// ClearMarker removes the marker, forcing a re-check on the next run.
func ClearMarker(outDir string) error {
	err := os.Remove(filepath.Join(outDir, markerName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove marker: %w", err)
	}
	return nil
}

// MarkerAge returns how long ago the recorded pass happened, or zero when no
// valid marker exists.
func MarkerAge(outDir string) time.Duration {
	_, stamp, err := readMarker(outDir)
	if err != nil {
		return 0
	}

	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return 0
	}
	return time.Since(t)
}

// readMarker returns the recorded fingerprint and timestamp.
func readMarker(outDir string) (fingerprint, stamp string, err error) {
	data, err := os.ReadFile(filepath.Join(outDir, markerName))
	if err != nil {
		return "", "", err
	}

	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	if len(lines) != 2 {
		return "", "", fmt.Errorf("malformed marker file")
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), nil
}
