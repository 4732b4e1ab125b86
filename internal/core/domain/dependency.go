package domain

import (
	"net/url"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// DependencyKind is the fetch strategy of a dependency.
// It is one of LocalDependency, GitDependency or CustomDependency.
type DependencyKind interface {
	// Source returns a stable, human readable description of where the package comes from.
	Source() string
	isDependencyKind()
}

// LocalDependency is a package on the filesystem, relative to the consuming manifest.
type LocalDependency struct {
	Path FileName
}

// GitDependency is a package inside a git repository.
type GitDependency struct {
	URL    string
	Rev    string
	Subdir FileName
}

// CustomDependency is a package published to a node and fetched by the resolver
// registered for the node URL's scheme.
type CustomDependency struct {
	NodeURL        string
	PackageAddress string
	PackageName    PackageName
	Subdir         FileName
}

func (LocalDependency) isDependencyKind()  {}
func (GitDependency) isDependencyKind()    {}
func (CustomDependency) isDependencyKind() {}

// localSourcePrefix prefixes the source of a local dependency.
const localSourcePrefix = "local:"

// Source implements DependencyKind.
func (d LocalDependency) Source() string {
	return localSourcePrefix + d.Path.String()
}

// RelativeSource rewrites an absolute local source as a slash-separated path
// relative to dir. Any other source is returned unchanged.
func RelativeSource(source, dir string) string {
	path, ok := strings.CutPrefix(source, localSourcePrefix)
	if !ok || dir == "" || !filepath.IsAbs(path) {
		return source
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return source
	}
	return localSourcePrefix + filepath.ToSlash(rel)
}

// Source implements DependencyKind.
func (d GitDependency) Source() string {
	src := "git:" + d.URL + "@" + d.Rev
	if sub := d.Subdir.String(); sub != "" && sub != "." {
		src += "#" + sub
	}
	return src
}

// Source implements DependencyKind.
func (d CustomDependency) Source() string {
	src := "node:" + strings.TrimSuffix(d.NodeURL, "/") + "/" + d.PackageAddress + "/" + d.PackageName.String()
	if sub := d.Subdir.String(); sub != "" && sub != "." {
		src += "#" + sub
	}
	return src
}

// Scheme returns the URL scheme of the node, lower-cased.
func (d CustomDependency) Scheme() string {
	u, err := url.Parse(d.NodeURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// Dependency is a single entry of a manifest's dependency table.
type Dependency struct {
	Kind DependencyKind
	// Subst is nil when the consumer does not rebind any address.
	Subst Substitution
	// Version is the exact version the consumer requires, if any.
	Version *Version
	// Digest is the expected content hash, if any.
	Digest *PackageDigest
}

// LocateRequest is a validated, normalized request for a fetch collaborator.
type LocateRequest struct {
	// Name is the dependency key in the consuming manifest.
	Name PackageName
	// Kind carries the normalized fetch strategy. Local paths are absolute and clean.
	Kind DependencyKind
}

// Source returns the description of the request's origin.
func (r LocateRequest) Source() string {
	return r.Kind.Source()
}

// NormalizeDependency validates dep and produces a locate request.
// It performs no I/O. manifestDir is the directory of the consuming manifest.
func NormalizeDependency(manifestDir string, name PackageName, dep Dependency) (LocateRequest, error) {
	switch kind := dep.Kind.(type) {
	case LocalDependency:
		path := kind.Path.String()
		if path == "" {
			return LocateRequest{}, dependencyError(ErrInvalidPath, name, "local path is empty")
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(manifestDir, path)
		}
		return LocateRequest{Name: name, Kind: LocalDependency{Path: NewFileName(filepath.Clean(path))}}, nil

	case GitDependency:
		if kind.URL == "" {
			return LocateRequest{}, dependencyError(ErrInvalidDependency, name, "git url is empty")
		}
		if kind.Rev == "" {
			return LocateRequest{}, dependencyError(ErrInvalidDependency, name, "git rev is empty")
		}
		subdir, err := normalizeSubdir(name, kind.Subdir)
		if err != nil {
			return LocateRequest{}, err
		}
		kind.Subdir = subdir
		return LocateRequest{Name: name, Kind: kind}, nil

	case CustomDependency:
		switch {
		case kind.NodeURL == "":
			return LocateRequest{}, dependencyError(ErrInvalidDependency, name, "node url is empty")
		case kind.PackageAddress == "":
			return LocateRequest{}, dependencyError(ErrInvalidDependency, name, "package address is empty")
		case kind.PackageName.IsZero():
			return LocateRequest{}, dependencyError(ErrInvalidDependency, name, "package name is empty")
		}
		if _, parseErr := url.Parse(kind.NodeURL); parseErr != nil {
			err := zerr.Wrap(ErrInvalidDependency, "node url is not a valid URL")
			err = zerr.With(err, "dependency", name.String())
			return LocateRequest{}, zerr.With(err, "node_url", kind.NodeURL)
		}
		subdir, err := normalizeSubdir(name, kind.Subdir)
		if err != nil {
			return LocateRequest{}, err
		}
		kind.Subdir = subdir
		return LocateRequest{Name: name, Kind: kind}, nil

	default:
		return LocateRequest{}, dependencyError(ErrInvalidDependency, name, "dependency has no source")
	}
}

func normalizeSubdir(name PackageName, subdir FileName) (FileName, error) {
	s := subdir.String()
	if s == "" {
		return NewFileName("."), nil
	}
	if !filepath.IsLocal(s) {
		err := zerr.Wrap(ErrInvalidPath, "subdir must be a relative path inside the checkout")
		err = zerr.With(err, "dependency", name.String())
		return FileName{}, zerr.With(err, "subdir", s)
	}
	return NewFileName(filepath.Clean(s)), nil
}

func dependencyError(sentinel error, name PackageName, msg string) error {
	return zerr.With(zerr.Wrap(sentinel, msg), "dependency", name.String())
}
