package domain

import "runtime"

// NodeResolverKind names a built-in node resolver implementation.
type NodeResolverKind string

const (
	// NodeResolverHTTP downloads package archives over HTTP(S).
	NodeResolverHTTP NodeResolverKind = "http"
	// NodeResolverFile reads packages from a directory tree.
	NodeResolverFile NodeResolverKind = "file"
)

// Settings are the tool options read from mpkg.yaml.
type Settings struct {
	// CacheDir is the absolute root for fetched packages.
	CacheDir    string
	Concurrency int

	FixedAddressPolicy      FixedAddressMode
	DevDependencyPrecedence DevDependencyPrecedence
	// AllowUnresolved reports address classes without a value as warnings.
	AllowUnresolved bool

	// NodeResolvers maps a URL scheme to the resolver serving it.
	NodeResolvers map[string]NodeResolverKind
}

// DefaultSettings returns the settings used when no mpkg.yaml exists.
// CacheDir is left unexpanded.
func DefaultSettings() Settings {
	return Settings{
		CacheDir:                DefaultCacheDir,
		Concurrency:             runtime.NumCPU(),
		FixedAddressPolicy:      FixedAddressesDeclared,
		DevDependencyPrecedence: DevOverrides,
		NodeResolvers: map[string]NodeResolverKind{
			"file":  NodeResolverFile,
			"http":  NodeResolverHTTP,
			"https": NodeResolverHTTP,
		},
	}
}
