package catalog

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/logging"
	"github.com/ptool-dev/ptool/internal/manifest"
	"github.com/ptool-dev/ptool/internal/runtime"
)

const (
	// freshnessFile is the name of the timestamp marker file.
	freshnessFile = ".ptool-updated"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// tmpSuffix is appended to the target dir during atomic clone.
	tmpSuffix = ".tmp"
)

var log = logging.GetLogger("catalog")

// Ensure clones the repository into repoDir unless it already exists.
func Ensure(ctx context.Context, repoDir, repoURL string) error {
	if info, err := os.Stat(repoDir); err == nil && info.IsDir() {
		return nil
	}
	log.Info().Str("url", repoURL).Str("dir", repoDir).Msg("Cloning template repository")
	return Clone(ctx, repoDir, repoURL)
}

// Clone performs a shallow clone of repoURL into targetDir.
//
// The clone is atomic: it writes to a .tmp directory first, then renames
// on success. On failure the .tmp directory is cleaned up.
func Clone(ctx context.Context, targetDir, repoURL string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	tmpDir := targetDir + tmpSuffix

	// Clean up any leftover tmp dir from a previous failed attempt.
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if _, err := git(ctx, "", "clone", "--depth=1", repoURL, tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return errors.Wrapf(err, errors.ErrGit, "cloning %s", repoURL)
	}

	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing template repository: %w", err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing template repository clone: %w", err)
	}

	WriteFreshnessMarker(targetDir)
	return nil
}

// Update pulls the latest changes into repoDir and returns the HEAD revision
// before and after the pull.
func Update(ctx context.Context, repoDir string) (before, after string, err error) {
	if err := ensureGit(); err != nil {
		return "", "", err
	}

	if before, err = Revision(ctx, repoDir); err != nil {
		return "", "", err
	}
	if _, err := git(ctx, repoDir, "pull", "--rebase"); err != nil {
		return "", "", errors.Wrapf(err, errors.ErrGit, "pulling template repository updates")
	}
	if after, err = Revision(ctx, repoDir); err != nil {
		return "", "", err
	}

	WriteFreshnessMarker(repoDir)
	log.Debug().Str("before", before).Str("after", after).Msg("Updated template repository")
	return before, after, nil
}

// Repair replaces repoDir with a fresh clone of repoURL.
func Repair(ctx context.Context, repoDir, repoURL string) error {
	log.Info().Str("url", repoURL).Str("dir", repoDir).Msg("Repairing template repository")
	return Clone(ctx, repoDir, repoURL)
}

// Revision returns the commit hash of HEAD in repoDir.
func Revision(ctx context.Context, repoDir string) (string, error) {
	out, err := git(ctx, repoDir, "rev-parse", "HEAD")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrGit, "reading revision of %s", repoDir)
	}
	return strings.TrimSpace(out), nil
}

// List returns the templates in repoDir in name order.
func List(repoDir string) ([]*manifest.Spec, error) {
	return manifest.ReadAll(repoDir)
}

// WriteFreshnessMarker writes the current Unix timestamp to the freshness file.
func WriteFreshnessMarker(repoDir string) {
	markerPath := filepath.Join(repoDir, freshnessFile)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath, []byte(ts), 0644)
}

// ReadFreshnessMarker reads the timestamp from the freshness file.
// Returns zero time if the file doesn't exist or can't be parsed.
func ReadFreshnessMarker(repoDir string) time.Time {
	markerPath := filepath.Join(repoDir, freshnessFile)
	data, err := os.ReadFile(markerPath)
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if the repository was last updated more than maxAge
// ago. Returns true if the freshness marker doesn't exist.
func IsStale(repoDir string, maxAge time.Duration) bool {
	lastUpdated := ReadFreshnessMarker(repoDir)
	if lastUpdated.IsZero() {
		return true
	}
	return time.Since(lastUpdated) > maxAge
}

// git runs a git subcommand and returns its stdout. A non-zero exit becomes
// an error carrying stderr.
func git(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := runtime.Exec(ctx, dir, "git", args...)
	if err != nil {
		return "", err
	}
	if !out.Success() {
		return "", fmt.Errorf("git %s: exit status %d\n%s", args[0], out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return out.Stdout, nil
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return errors.New(errors.ErrGit, "git is required but not found in PATH")
	}
	return nil
}
