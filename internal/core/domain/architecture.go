package domain

import "go.trai.ch/zerr"

// Architecture is the target bytecode flavour of a build.
type Architecture string

const (
	// ArchitectureMove targets the core Move VM.
	ArchitectureMove Architecture = "move"
	// ArchitectureAsyncMove targets the actor-based Move dialect.
	ArchitectureAsyncMove Architecture = "async-move"
	// ArchitectureEthereum targets EVM bytecode.
	ArchitectureEthereum Architecture = "ethereum"
)

// ParseArchitecture validates an architecture tag.
func ParseArchitecture(s string) (Architecture, error) {
	switch a := Architecture(s); a {
	case ArchitectureMove, ArchitectureAsyncMove, ArchitectureEthereum:
		return a, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidArchitecture, "unknown architecture"), "arch", s)
	}
}

// String returns the tag as written in a manifest.
func (a Architecture) String() string {
	return string(a)
}
