package domain

import (
	"go.trai.ch/zerr"
)

// SelfPackageName is the dependency name reserved for the root package's own namespace.
const SelfPackageName = "self"

// BuildMode selects which parts of a manifest are active.
type BuildMode int

const (
	// BuildModeDefault uses the ordinary dependency table and addresses only.
	BuildModeDefault BuildMode = iota
	// BuildModeDev adds dev-dependencies and dev address assignments.
	BuildModeDev
)

// String returns the mode name.
func (m BuildMode) String() string {
	if m == BuildModeDev {
		return "dev"
	}
	return "default"
}

// DevDependencyPrecedence decides what happens when a name appears in both
// dependency tables of a development build.
type DevDependencyPrecedence string

const (
	// DevOverrides uses the dev-dependencies entry.
	DevOverrides DevDependencyPrecedence = "dev-overrides"
	// DevDuplicateError rejects the manifest.
	DevDuplicateError DevDependencyPrecedence = "error"
)

// ParseDevDependencyPrecedence validates a precedence string. The empty string selects the default.
func ParseDevDependencyPrecedence(s string) (DevDependencyPrecedence, error) {
	switch p := DevDependencyPrecedence(s); p {
	case "":
		return DevOverrides, nil
	case DevOverrides, DevDuplicateError:
		return p, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidSettings, "unknown dev dependency precedence"), "dev_dependency_precedence", s)
	}
}

// PackageInfo is the identity of a package.
type PackageInfo struct {
	Name    PackageName
	Version Version
	// Authors keeps the order and duplicates of the manifest.
	Authors []string
	License *string
	// CustomProperties holds every other key of the package section.
	CustomProperties map[string]string
}

// BuildInfo holds optional build parameters. Absent values inherit toolchain defaults.
type BuildInfo struct {
	LanguageVersion *Version
	Architecture    *Architecture
}

// SourceManifest is the parsed and validated description of a package.
// It is not modified after construction.
type SourceManifest struct {
	Package               PackageInfo
	Addresses             *AddressDeclarations
	DevAddressAssignments *DevAddressDeclarations
	Build                 *BuildInfo
	Dependencies          map[PackageName]Dependency
	DevDependencies       map[PackageName]Dependency
	// FixedAddresses lists declared addresses that consumers may not override.
	FixedAddresses []NamedAddress
}

// Validate checks the manifest's own invariants for the given build mode.
// Substitution targets are checked when an edge is resolved, since that needs the
// dependency's manifest.
func (m *SourceManifest) Validate(mode BuildMode) error {
	if m.Package.Name.IsZero() {
		return ErrMissingPackageName
	}

	if err := m.validateDependencyNames(m.Dependencies, "dependencies"); err != nil {
		return err
	}
	if err := m.validateDependencyNames(m.DevDependencies, "dev-dependencies"); err != nil {
		return err
	}

	decls := m.declarations()
	for _, name := range m.FixedAddresses {
		if _, ok := decls.Lookup(name); !ok {
			err := zerr.Wrap(ErrUnknownAddress, "fixed address is not declared")
			err = zerr.With(err, "package", m.Package.Name.String())
			return zerr.With(err, "address", name.String())
		}
	}

	if mode == BuildModeDev {
		return m.validateDevAssignments(decls)
	}
	return nil
}

func (m *SourceManifest) validateDependencyNames(deps map[PackageName]Dependency, table string) error {
	for _, name := range SortedKeys(deps) {
		if name.String() == SelfPackageName || name == m.Package.Name {
			err := zerr.Wrap(ErrReservedDependencyName, "dependency collides with the root package namespace")
			err = zerr.With(err, "package", m.Package.Name.String())
			err = zerr.With(err, "dependency", name.String())
			return zerr.With(err, "table", table)
		}
	}
	return nil
}

func (m *SourceManifest) validateDevAssignments(decls AddressDeclarations) error {
	var dev DevAddressDeclarations
	if m.DevAddressAssignments != nil {
		dev = *m.DevAddressAssignments
	}

	for _, name := range dev.Names() {
		current, ok := decls.Lookup(name)
		if !ok {
			err := zerr.Wrap(ErrUnknownAddress, "dev address is not declared in addresses")
			err = zerr.With(err, "package", m.Package.Name.String())
			return zerr.With(err, "address", name.String())
		}
		if current != nil && *current != dev[name] {
			err := zerr.Wrap(ErrAddressConflict, "dev address contradicts a concrete binding")
			err = zerr.With(err, "package", m.Package.Name.String())
			err = zerr.With(err, "address", name.String())
			err = zerr.With(err, "bound", current.String())
			return zerr.With(err, "assigned", dev[name].String())
		}
	}

	var missing []string
	for _, name := range decls.Placeholders() {
		if _, ok := dev[name]; !ok {
			missing = append(missing, name.String())
		}
	}
	if len(missing) > 0 {
		err := zerr.Wrap(ErrMissingDevAssignment, "placeholders must be assigned in dev-addresses")
		err = zerr.With(err, "package", m.Package.Name.String())
		return zerr.With(err, "addresses", missing)
	}
	return nil
}

func (m *SourceManifest) declarations() AddressDeclarations {
	if m.Addresses == nil {
		return nil
	}
	return *m.Addresses
}

// EffectiveAddresses returns the package's own address table for mode.
// Development builds overlay the dev assignments onto the declarations.
func (m *SourceManifest) EffectiveAddresses(mode BuildMode) AddressDeclarations {
	out := m.declarations().Clone()
	if out == nil {
		out = AddressDeclarations{}
	}
	if mode != BuildModeDev || m.DevAddressAssignments == nil {
		return out
	}
	for name, addr := range *m.DevAddressAssignments {
		v := addr
		out[name] = &v
	}
	return out
}

// ActiveDependencies returns the dependency table in effect for mode.
// In development builds a name present in both tables follows precedence.
func (m *SourceManifest) ActiveDependencies(mode BuildMode, precedence DevDependencyPrecedence) (map[PackageName]Dependency, error) {
	out := make(map[PackageName]Dependency, len(m.Dependencies)+len(m.DevDependencies))
	for name, dep := range m.Dependencies {
		out[name] = dep
	}
	if mode != BuildModeDev {
		return out, nil
	}

	for _, name := range SortedKeys(m.DevDependencies) {
		if _, dup := m.Dependencies[name]; dup && precedence == DevDuplicateError {
			err := zerr.Wrap(ErrDuplicateDependency, "dependency is declared twice")
			err = zerr.With(err, "package", m.Package.Name.String())
			return nil, zerr.With(err, "dependency", name.String())
		}
		out[name] = m.DevDependencies[name]
	}
	return out, nil
}
