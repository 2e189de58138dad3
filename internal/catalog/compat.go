package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/manifest"
	"go.yaml.in/yaml/v3"
)

// VersionKey is the repository configuration key holding the constraint.
const VersionKey = "ptool-version"

// DevVersion is the version reported by builds without release ldflags.
const DevVersion = "dev"

// CheckCompatibility verifies toolVersion against the constraint declared
// in the repository's root configuration file. Development builds,
// repositories without the file and files without the key all pass.
func CheckCompatibility(repoDir, toolVersion string) error {
	if toolVersion == "" || toolVersion == DevVersion {
		return nil
	}

	path := filepath.Join(repoDir, manifest.FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading repository configuration: %w", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing repository configuration %s: %w", path, err)
	}
	raw, ok := doc[VersionKey]
	if !ok || raw == nil {
		return nil
	}
	constraint := strings.TrimSpace(fmt.Sprint(raw))

	c, err := parseConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestInvalid, "invalid %s %q in %s", VersionKey, constraint, path)
	}
	v, err := parseSemver(toolVersion)
	if err != nil {
		return fmt.Errorf("parsing ptool version %q: %w", toolVersion, err)
	}

	if !c.Check(v) {
		return errors.Newf(errors.ErrIncompatibleRepo,
			"This version of ptool (%s) is not compatible with version constraint (%s) in %s",
			toolVersion, constraint, path)
	}
	return nil
}

// parseConstraint accepts "==" as an alias for "=". Constraints name a
// major.minor version, so "= 1.2" matches any 1.2.x.
func parseConstraint(s string) (*semver.Constraints, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "==") {
		s = "=" + strings.TrimPrefix(s, "==")
	}
	return semver.NewConstraint(s)
}

// parseSemver strips a leading "v" and any prerelease or build suffix, such
// as a git describe tail, before parsing.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, err
	}
	return semver.New(v.Major(), v.Minor(), v.Patch(), "", ""), nil
}
