package domain

// ResolvedPackage is one package of a resolved dependency graph.
type ResolvedPackage struct {
	Name    PackageName
	Version Version
	// Root is the directory containing the package's Move.toml.
	Root   string
	Source string
	Digest PackageDigest
	// Addresses is the package's effective address table after collapse.
	Addresses AddressDeclarations
	// Dependencies are the direct dependencies in canonical order.
	Dependencies []PackageName
}

// ResolvedGraph is the output of a whole-graph resolution pass.
type ResolvedGraph struct {
	Root PackageName
	Mode BuildMode
	// Packages are ordered by name, the root included.
	Packages []ResolvedPackage
	// Unresolved lists classes without a concrete value. It is only non-empty
	// when unresolved addresses are tolerated.
	Unresolved []AddressClass
}

// Package returns the resolved package named name.
func (g *ResolvedGraph) Package(name PackageName) (ResolvedPackage, bool) {
	for _, p := range g.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return ResolvedPackage{}, false
}
