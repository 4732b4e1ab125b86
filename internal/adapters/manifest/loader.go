// Package manifest reads Move.toml documents into domain manifests.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

// Loader implements ports.ManifestLoader for Move.toml files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads and validates the manifest of the package rooted at dir.
func (l *Loader) Load(dir string, mode domain.BuildMode) (*domain.SourceManifest, error) {
	path := domain.ManifestPath(dir)

	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a package root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "package has no manifest"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestReadFailed, err.Error()), "path", path)
	}

	m, err := Parse(string(data))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	if err := m.Validate(mode); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.Logger.Debug(fmt.Sprintf("loaded manifest %s %s", m.Package.Name, m.Package.Version))
	return m, nil
}

// Parse decodes a Move.toml document. The result is not validated.
func Parse(doc string) (*domain.SourceManifest, error) {
	var file manifestFile
	md, err := toml.Decode(doc, &file)
	if err != nil {
		return nil, parseError(err)
	}

	if err := checkUndecoded(md.Undecoded()); err != nil {
		return nil, err
	}

	if !md.IsDefined("package") {
		return nil, zerr.Wrap(domain.ErrMissingPackageName, "manifest has no [package] table")
	}

	m := &domain.SourceManifest{}
	if m.Package, m.FixedAddresses, err = decodePackage(&md, file.Package); err != nil {
		return nil, err
	}

	if file.Addresses != nil {
		decls, err := decodeAddresses(file.Addresses)
		if err != nil {
			return nil, err
		}
		m.Addresses = &decls
	}

	if file.DevAddresses != nil {
		dev, err := decodeDevAddresses(file.DevAddresses)
		if err != nil {
			return nil, err
		}
		m.DevAddressAssignments = &dev
	}

	if file.Build != nil {
		build, err := decodeBuild(file.Build)
		if err != nil {
			return nil, err
		}
		m.Build = build
	}

	if m.Dependencies, err = decodeDependencies(file.Dependencies); err != nil {
		return nil, err
	}
	if m.DevDependencies, err = decodeDependencies(file.DevDependencies); err != nil {
		return nil, err
	}

	return m, nil
}

func parseError(err error) error {
	wrapped := zerr.Wrap(domain.ErrManifestParse, err.Error())

	var perr toml.ParseError
	if errors.As(err, &perr) {
		wrapped = zerr.Wrap(domain.ErrManifestParse, perr.Message)
		wrapped = zerr.With(wrapped, "line", perr.Position.Line)
	}
	return wrapped
}

// checkUndecoded rejects unknown keys inside dependency entries.
func checkUndecoded(keys []toml.Key) error {
	for _, key := range keys {
		if len(key) < 3 || (key[0] != "dependencies" && key[0] != "dev-dependencies") {
			continue
		}
		err := zerr.Wrap(domain.ErrInvalidDependency, "unknown key in dependency entry")
		err = zerr.With(err, "dependency", key[1])
		return zerr.With(err, "key", strings.Join(key[2:], "."))
	}
	return nil
}

func decodePackage(md *toml.MetaData, prim toml.Primitive) (domain.PackageInfo, []domain.NamedAddress, error) {
	var section packageSection
	if err := md.PrimitiveDecode(prim, &section); err != nil {
		return domain.PackageInfo{}, nil, parseError(err)
	}

	var raw map[string]any
	if err := md.PrimitiveDecode(prim, &raw); err != nil {
		return domain.PackageInfo{}, nil, parseError(err)
	}

	info := domain.PackageInfo{
		Name:    domain.NewPackageName(section.Name),
		Authors: section.Authors,
		License: section.License,
	}

	if section.Version == "" {
		err := zerr.Wrap(domain.ErrMissingPackageVersion, "package table has no version")
		return domain.PackageInfo{}, nil, zerr.With(err, "package", section.Name)
	}
	version, err := domain.ParseVersion(section.Version)
	if err != nil {
		return domain.PackageInfo{}, nil, zerr.With(err, "package", section.Name)
	}
	info.Version = version

	for key, value := range raw {
		if _, known := packageKeys[key]; known {
			continue
		}
		s, ok := value.(string)
		if !ok {
			err := zerr.Wrap(domain.ErrManifestParse, "custom package property must be a string")
			return domain.PackageInfo{}, nil, zerr.With(err, "property", key)
		}
		if info.CustomProperties == nil {
			info.CustomProperties = make(map[string]string)
		}
		info.CustomProperties[key] = s
	}

	fixed := make([]domain.NamedAddress, 0, len(section.FixedAddresses))
	for _, name := range section.FixedAddresses {
		fixed = append(fixed, domain.NewNamedAddress(name))
	}
	slices.SortFunc(fixed, domain.NamedAddress.Compare)
	fixed = slices.Compact(fixed)
	if len(fixed) == 0 {
		fixed = nil
	}

	return info, fixed, nil
}

func decodeAddresses(table map[string]string) (domain.AddressDeclarations, error) {
	decls := make(domain.AddressDeclarations, len(table))
	for name, value := range table {
		if value == placeholder {
			decls[domain.NewNamedAddress(name)] = nil
			continue
		}
		addr, err := domain.ParseAccountAddress(value)
		if err != nil {
			return nil, zerr.With(err, "named_address", name)
		}
		decls[domain.NewNamedAddress(name)] = &addr
	}
	return decls, nil
}

func decodeDevAddresses(table map[string]string) (domain.DevAddressDeclarations, error) {
	dev := make(domain.DevAddressDeclarations, len(table))
	for name, value := range table {
		addr, err := domain.ParseAccountAddress(value)
		if err != nil {
			return nil, zerr.With(err, "named_address", name)
		}
		dev[domain.NewNamedAddress(name)] = addr
	}
	return dev, nil
}

func decodeBuild(section *buildSection) (*domain.BuildInfo, error) {
	build := &domain.BuildInfo{}
	if section.LanguageVersion != "" {
		v, err := domain.ParseVersion(section.LanguageVersion)
		if err != nil {
			return nil, zerr.With(err, "key", "language-version")
		}
		build.LanguageVersion = &v
	}
	if section.Arch != "" {
		arch, err := domain.ParseArchitecture(section.Arch)
		if err != nil {
			return nil, err
		}
		build.Architecture = &arch
	}
	return build, nil
}

func decodeDependencies(table map[string]dependencyEntry) (map[domain.PackageName]domain.Dependency, error) {
	deps := make(map[domain.PackageName]domain.Dependency, len(table))
	for name, entry := range table {
		dep, err := decodeDependency(name, &entry)
		if err != nil {
			return nil, zerr.With(err, "dependency", name)
		}
		deps[domain.NewPackageName(name)] = dep
	}
	return deps, nil
}

func decodeDependency(name string, entry *dependencyEntry) (domain.Dependency, error) {
	var dep domain.Dependency

	kinds := 0
	if entry.Local != nil {
		kinds++
		dep.Kind = domain.LocalDependency{Path: domain.NewFileName(*entry.Local)}
	}
	if entry.Git != nil {
		kinds++
		dep.Kind = domain.GitDependency{
			URL:    *entry.Git,
			Rev:    entry.Rev,
			Subdir: domain.NewFileName(entry.Subdir),
		}
	}
	if entry.Node != nil {
		kinds++
		pkg := entry.Package
		if pkg == "" {
			pkg = name
		}
		dep.Kind = domain.CustomDependency{
			NodeURL:        *entry.Node,
			PackageAddress: entry.Address,
			PackageName:    domain.NewPackageName(pkg),
			Subdir:         domain.NewFileName(entry.Subdir),
		}
	}
	if kinds != 1 {
		err := zerr.Wrap(domain.ErrInvalidDependency, "expected exactly one of 'local', 'git' or 'node'")
		return domain.Dependency{}, zerr.With(err, "kinds", kinds)
	}

	if entry.Version != "" {
		v, err := domain.ParseVersion(entry.Version)
		if err != nil {
			return domain.Dependency{}, err
		}
		dep.Version = &v
	}

	if entry.Digest != "" {
		digest := domain.NewPackageDigest(entry.Digest)
		dep.Digest = &digest
	}

	if entry.AddrSubst != nil {
		subst, err := decodeSubstitution(entry.AddrSubst)
		if err != nil {
			return domain.Dependency{}, err
		}
		dep.Subst = subst
	}

	return dep, nil
}

// decodeSubstitution reads addr_subst. Values that look like numbers are address
// literals, everything else names an address of the consuming package.
func decodeSubstitution(table map[string]string) (domain.Substitution, error) {
	subst := make(domain.Substitution, len(table))
	for name, value := range table {
		if isAddressLiteral(value) {
			addr, err := domain.ParseAccountAddress(value)
			if err != nil {
				return nil, zerr.With(err, "named_address", name)
			}
			subst[domain.NewNamedAddress(name)] = domain.Assign{Address: addr}
			continue
		}
		if value == "" {
			err := zerr.Wrap(domain.ErrInvalidDependency, "empty substitution")
			return nil, zerr.With(err, "named_address", name)
		}
		subst[domain.NewNamedAddress(name)] = domain.RenameFrom{Name: domain.NewNamedAddress(value)}
	}
	return subst, nil
}

func isAddressLiteral(s string) bool {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return true
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
