package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// SubstOrRename rebinds one named address of a dependency.
// It is either RenameFrom or Assign.
type SubstOrRename interface {
	isSubstOrRename()
}

// RenameFrom declares that the consumer's named address Name denotes the same
// logical address as the dependency-side name it is keyed by.
type RenameFrom struct {
	Name NamedAddress
}

// Assign fixes the dependency-side name to a concrete address.
type Assign struct {
	Address AccountAddress
}

func (RenameFrom) isSubstOrRename() {}
func (Assign) isSubstOrRename()     {}

// Substitution is keyed by the dependency-side named address.
type Substitution map[NamedAddress]SubstOrRename

// FixedAddressMode selects which existing bindings of a dependency cannot be
// overridden by an Assign.
type FixedAddressMode string

const (
	// FixedAddressesDeclared fixes only the names a dependency lists in fixed-addresses.
	FixedAddressesDeclared FixedAddressMode = "declared"
	// FixedAddressesAllBound fixes every concrete binding.
	FixedAddressesAllBound FixedAddressMode = "all-bound"
	// FixedAddressesNone lets consumers override any binding.
	FixedAddressesNone FixedAddressMode = "none"
)

// ParseFixedAddressMode validates a mode string. The empty string selects the default.
func ParseFixedAddressMode(s string) (FixedAddressMode, error) {
	switch m := FixedAddressMode(s); m {
	case "":
		return FixedAddressesDeclared, nil
	case FixedAddressesDeclared, FixedAddressesAllBound, FixedAddressesNone:
		return m, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidSettings, "unknown fixed address policy"), "fixed_address_policy", s)
	}
}

// FixedAddressPolicy decides whether a dependency's concrete binding may be overridden.
type FixedAddressPolicy struct {
	Mode FixedAddressMode
	// Declared lists the names the dependency marks as fixed.
	Declared []NamedAddress
}

// IsFixed reports whether a concrete binding of name is non-overridable.
func (p FixedAddressPolicy) IsFixed(name NamedAddress) bool {
	switch p.Mode {
	case FixedAddressesAllBound:
		return true
	case FixedAddressesNone:
		return false
	default:
		return slices.Contains(p.Declared, name)
	}
}

// AddressNode identifies a named address inside one package's namespace.
type AddressNode struct {
	Package PackageName
	Name    NamedAddress
}

// Compare orders nodes by package, then by name.
func (n AddressNode) Compare(other AddressNode) int {
	if c := n.Package.Compare(other.Package); c != 0 {
		return c
	}
	return n.Name.Compare(other.Name)
}

// String formats the node as package::name.
func (n AddressNode) String() string {
	return n.Package.String() + "::" + n.Name.String()
}

// RenameEdge states that two nodes denote the same logical address.
type RenameEdge struct {
	Consumer   AddressNode
	Dependency AddressNode
}

// Compare orders rename edges canonically.
func (e RenameEdge) Compare(other RenameEdge) int {
	if c := e.Consumer.Compare(other.Consumer); c != 0 {
		return c
	}
	return e.Dependency.Compare(other.Dependency)
}

// AppliedAssignment records an Assign that crossed a dependency edge.
type AppliedAssignment struct {
	Name    NamedAddress
	Address AccountAddress
	// Previous is the dependency's own binding before the assignment, nil for a placeholder.
	Previous *AccountAddress
}

// Edge is one consumer to dependency link with the consumer's substitution.
type Edge struct {
	Consumer   PackageName
	Dependency PackageName
	Subst      Substitution
}

// EdgeResolution is the outcome of crossing a single edge.
type EdgeResolution struct {
	Edge Edge
	// Addresses is the dependency's address table as seen by the consumer.
	Addresses   AddressDeclarations
	Assignments []AppliedAssignment
	Renames     []RenameEdge
}

// ResolveEdge applies the consumer's substitution to the dependency's declarations.
// Entries are processed in canonical key order. depDecls is not modified.
// Renames are only emitted; they are resolved graph-wide by an AddressUnifier.
func ResolveEdge(edge Edge, depDecls AddressDeclarations, fixed FixedAddressPolicy) (EdgeResolution, error) {
	res := EdgeResolution{
		Edge:      edge,
		Addresses: depDecls.Clone(),
	}
	if res.Addresses == nil {
		res.Addresses = AddressDeclarations{}
	}

	for _, d := range SortedKeys(edge.Subst) {
		current, declared := depDecls.Lookup(d)
		if !declared {
			err := zerr.Wrap(ErrUnknownAddress, "substitution references an address the dependency does not declare")
			return EdgeResolution{}, edgeError(err, edge, d)
		}

		switch s := edge.Subst[d].(type) {
		case Assign:
			if current != nil && *current != s.Address && fixed.IsFixed(d) {
				err := zerr.Wrap(ErrAddressConflict, "cannot override a fixed address")
				err = edgeError(err, edge, d)
				err = zerr.With(err, "bound", current.String())
				return EdgeResolution{}, zerr.With(err, "assigned", s.Address.String())
			}
			addr := s.Address
			res.Addresses[d] = &addr
			applied := AppliedAssignment{Name: d, Address: addr}
			if current != nil {
				prev := *current
				applied.Previous = &prev
			}
			res.Assignments = append(res.Assignments, applied)

		case RenameFrom:
			res.Renames = append(res.Renames, RenameEdge{
				Consumer:   AddressNode{Package: edge.Consumer, Name: s.Name},
				Dependency: AddressNode{Package: edge.Dependency, Name: d},
			})

		default:
			err := zerr.Wrap(ErrInvalidDependency, "substitution entry has no value")
			return EdgeResolution{}, edgeError(err, edge, d)
		}
	}

	slices.SortFunc(res.Renames, RenameEdge.Compare)
	res.Renames = slices.Compact(res.Renames)
	return res, nil
}

func edgeError(err error, edge Edge, name NamedAddress) error {
	err = zerr.With(err, "package", edge.Consumer.String())
	err = zerr.With(err, "dependency", edge.Dependency.String())
	return zerr.With(err, "address", name.String())
}
