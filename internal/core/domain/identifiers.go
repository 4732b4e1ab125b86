package domain

import "slices"

// PackageName is the name a package declares for itself and the key under which
// consumers list it as a dependency.
type PackageName struct{ InternedString }

// NewPackageName interns s as a package name.
func NewPackageName(s string) PackageName {
	return PackageName{NewInternedString(s)}
}

// Compare orders package names by content.
func (n PackageName) Compare(other PackageName) int {
	return n.InternedString.Compare(other.InternedString)
}

// NamedAddress is a symbolic address scoped to a package's namespace.
type NamedAddress struct{ InternedString }

// NewNamedAddress interns s as a named address.
func NewNamedAddress(s string) NamedAddress {
	return NamedAddress{NewInternedString(s)}
}

// Compare orders named addresses by content.
func (a NamedAddress) Compare(other NamedAddress) int {
	return a.InternedString.Compare(other.InternedString)
}

// FileName is a path-like identifier used for sources and dependency locations.
type FileName struct{ InternedString }

// NewFileName interns s as a file name.
func NewFileName(s string) FileName {
	return FileName{NewInternedString(s)}
}

// Compare orders file names by content.
func (f FileName) Compare(other FileName) int {
	return f.InternedString.Compare(other.InternedString)
}

// PackageDigest is the content hash of a package. It is stored exactly as written.
type PackageDigest struct{ InternedString }

// NewPackageDigest interns s as a package digest.
func NewPackageDigest(s string) PackageDigest {
	return PackageDigest{NewInternedString(s)}
}

// Compare orders digests by content.
func (d PackageDigest) Compare(other PackageDigest) int {
	return d.InternedString.Compare(other.InternedString)
}

// Ordered is implemented by identifiers with a canonical order.
type Ordered[K any] interface {
	comparable
	Compare(K) int
}

// SortedKeys returns the keys of m in canonical order.
func SortedKeys[K Ordered[K], V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int { return a.Compare(b) })
	return keys
}
