package toml

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Options tunes which documents the parser accepts.
type Options struct {
	// Version selects the TOML revision. Nil means 1.1.0. Before 1.1.0,
	// inline tables may not span lines, hold comments or end with a comma.
	Version *semver.Version

	// DisallowGlobKeys reports keys containing '*' or '?'. Glob keys are not
	// TOML; they are accepted by default so configuration files can match
	// several tables at once.
	DisallowGlobKeys bool
}

var (
	version110 = semver.MustParse("1.1.0")

	supportedVersions = mustConstraint(">= 1.0.0, < 1.2.0")
)

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// ParseVersion parses a TOML revision such as "1.0.0" or "1.1" and checks
// that the parser supports it.
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("toml version %q: %w", s, err)
	}
	if !supportedVersions.Check(v) {
		return nil, fmt.Errorf("toml version %s is not supported (want %s)", v, supportedVersions)
	}
	return v, nil
}

func (o Options) legacy() bool {
	return o.Version != nil && o.Version.LessThan(version110)
}
