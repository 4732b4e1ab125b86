package domain

import (
	"cmp"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// Version is a major.minor.patch triple with lexicographic ordering.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseVersion parses a strict "major.minor.patch" string.
// Pre-release and build metadata components are rejected.
func ParseVersion(s string) (Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, err.Error()), "version", s)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, "pre-release and build metadata are not supported"), "version", s)
	}
	return Version{Major: v.Major(), Minor: v.Minor(), Patch: v.Patch()}, nil
}

// Compare returns -1, 0 or +1 comparing major, then minor, then patch.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, other.Patch)
}

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Compatible reports whether a candidate satisfies v as a required version.
// Only exact equality is accepted.
func (v Version) Compatible(candidate Version) bool {
	return v == candidate
}

// String formats the version as major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
