package manifest

import "github.com/BurntSushi/toml"

// placeholder marks a declared address without a value.
const placeholder = "_"

// manifestFile represents the structure of a Move.toml document.
// The package table is kept raw so unknown keys survive as custom properties.
type manifestFile struct {
	Package         toml.Primitive             `toml:"package"`
	Addresses       map[string]string          `toml:"addresses"`
	DevAddresses    map[string]string          `toml:"dev-addresses"`
	Build           *buildSection              `toml:"build"`
	Dependencies    map[string]dependencyEntry `toml:"dependencies"`
	DevDependencies map[string]dependencyEntry `toml:"dev-dependencies"`
}

// packageSection holds the well-known keys of the package table.
type packageSection struct {
	Name           string   `toml:"name"`
	Version        string   `toml:"version"`
	Authors        []string `toml:"authors"`
	License        *string  `toml:"license"`
	FixedAddresses []string `toml:"fixed-addresses"`
}

var packageKeys = map[string]struct{}{
	"name":            {},
	"version":         {},
	"authors":         {},
	"license":         {},
	"fixed-addresses": {},
}

type buildSection struct {
	LanguageVersion string `toml:"language-version"`
	Arch            string `toml:"arch"`
}

// dependencyEntry is one inline table of the dependency sections.
// Exactly one of Local, Git or Node selects the kind.
type dependencyEntry struct {
	Local *string `toml:"local"`

	Git    *string `toml:"git"`
	Rev    string  `toml:"rev"`
	Subdir string  `toml:"subdir"`

	Node    *string `toml:"node"`
	Address string  `toml:"address"`
	Package string  `toml:"package"`

	Version   string            `toml:"version"`
	Digest    string            `toml:"digest"`
	AddrSubst map[string]string `toml:"addr_subst"`
}
