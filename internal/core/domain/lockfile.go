package domain

import (
	"maps"
	"slices"
)

// LockfileVersion is the current lock file format version.
const LockfileVersion = 1

// Lockfile records the outcome of a resolution so it can be reproduced.
type Lockfile struct {
	// Version is the lock file format version.
	Version int
	Root    string
	Mode    string
	// Packages are ordered by name.
	Packages []LockedPackage
}

// LockedPackage is one resolved package as recorded in the lock file.
type LockedPackage struct {
	Name         string
	Version      string
	Source       string
	Digest       string
	Addresses    map[string]string
	Dependencies []string
}

// UnresolvedAddress is the lock file value of an address without a concrete binding.
const UnresolvedAddress = "_"

// NewLockfile builds a lock file from a resolved graph. Local sources are
// recorded relative to the root package.
func NewLockfile(g *ResolvedGraph) *Lockfile {
	var rootDir string
	if root, ok := g.Package(g.Root); ok {
		rootDir = root.Root
	}

	lock := &Lockfile{
		Version:  LockfileVersion,
		Root:     g.Root.String(),
		Mode:     g.Mode.String(),
		Packages: make([]LockedPackage, 0, len(g.Packages)),
	}
	for _, p := range g.Packages {
		locked := LockedPackage{
			Name:      p.Name.String(),
			Version:   p.Version.String(),
			Source:    RelativeSource(p.Source, rootDir),
			Digest:    p.Digest.String(),
			Addresses: make(map[string]string, len(p.Addresses)),
		}
		for name, addr := range p.Addresses {
			if addr == nil {
				locked.Addresses[name.String()] = UnresolvedAddress
				continue
			}
			locked.Addresses[name.String()] = addr.String()
		}
		for _, dep := range p.Dependencies {
			locked.Dependencies = append(locked.Dependencies, dep.String())
		}
		lock.Packages = append(lock.Packages, locked)
	}
	return lock
}

// Equal reports whether two lock files record the same resolution.
func (l *Lockfile) Equal(other *Lockfile) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.Version != other.Version || l.Root != other.Root || l.Mode != other.Mode {
		return false
	}
	return slices.EqualFunc(l.Packages, other.Packages, LockedPackage.Equal)
}

// Equal reports whether two entries are identical.
func (p LockedPackage) Equal(other LockedPackage) bool {
	return p.Name == other.Name &&
		p.Version == other.Version &&
		p.Source == other.Source &&
		p.Digest == other.Digest &&
		maps.Equal(p.Addresses, other.Addresses) &&
		slices.Equal(p.Dependencies, other.Dependencies)
}
