package domain

import "go.trai.ch/zerr"

var (
	// ErrManifestParse is returned when a manifest document is syntactically malformed.
	ErrManifestParse = zerr.New("failed to parse manifest")

	// ErrManifestNotFound is returned when no Move.toml can be found from the working directory upwards.
	ErrManifestNotFound = zerr.New("could not find Move.toml")

	// ErrManifestReadFailed is returned when a manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrUnknownAddress is returned when a named address is referenced but never declared.
	ErrUnknownAddress = zerr.New("unknown named address")

	// ErrAddressConflict is returned when an assignment contradicts a non-overridable binding.
	ErrAddressConflict = zerr.New("conflicting address assignment")

	// ErrMissingDevAssignment is returned when a placeholder is left unassigned in a development build.
	ErrMissingDevAssignment = zerr.New("missing dev address assignment")

	// ErrUnresolvedAddress is returned when an address equivalence class has no concrete value.
	ErrUnresolvedAddress = zerr.New("unresolved named address")

	// ErrUnknownNodeResolver is returned when no resolver is registered for a custom dependency's node scheme.
	ErrUnknownNodeResolver = zerr.New("no resolver registered for node")

	// ErrInvalidPath is returned when a local dependency path fails existence or containment checks.
	ErrInvalidPath = zerr.New("invalid dependency path")

	// ErrDigestMismatch is returned when fetched content does not hash to the declared digest.
	ErrDigestMismatch = zerr.New("package digest mismatch")

	// ErrInvalidVersion is returned when a version is not a major.minor.patch triple.
	ErrInvalidVersion = zerr.New("invalid version, expected major.minor.patch")

	// ErrVersionMismatch is returned when a fetched package does not have the version required by its consumer.
	ErrVersionMismatch = zerr.New("dependency version mismatch")

	// ErrInvalidAddress is returned when an account address literal is malformed.
	ErrInvalidAddress = zerr.New("invalid account address")

	// ErrInvalidArchitecture is returned when a build architecture tag is not recognized.
	ErrInvalidArchitecture = zerr.New("invalid architecture, expected 'move', 'async-move' or 'ethereum'")

	// ErrInvalidDependency is returned when a dependency entry is incomplete or ambiguous.
	ErrInvalidDependency = zerr.New("invalid dependency")

	// ErrReservedDependencyName is returned when a dependency uses a name reserved for the root package.
	ErrReservedDependencyName = zerr.New("dependency name is reserved")

	// ErrDuplicateDependency is returned when a dependency appears in both tables and duplicates are not allowed.
	ErrDuplicateDependency = zerr.New("dependency declared in both dependencies and dev-dependencies")

	// ErrMissingPackageName is returned when a manifest does not name its package.
	ErrMissingPackageName = zerr.New("missing package name")

	// ErrMissingPackageVersion is returned when a manifest does not declare a package version.
	ErrMissingPackageVersion = zerr.New("missing package version")

	// ErrDependencyCycle is returned when the dependency graph contains a cycle.
	ErrDependencyCycle = zerr.New("dependency cycle detected")

	// ErrFetchFailed is returned when a fetch collaborator cannot materialize a package.
	ErrFetchFailed = zerr.New("failed to fetch dependency")

	// ErrInvalidSettings is returned when the tool settings file contains an unknown value.
	ErrInvalidSettings = zerr.New("invalid settings")

	// ErrSettingsReadFailed is returned when the tool settings file cannot be read or parsed.
	ErrSettingsReadFailed = zerr.New("failed to read settings")

	// ErrLockWriteFailed is returned when the lock file cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lock file")

	// ErrLockReadFailed is returned when the lock file cannot be read or parsed.
	ErrLockReadFailed = zerr.New("failed to read lock file")

	// ErrFileHashFailed is returned when hashing a package file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrCacheCreateFailed is returned when the package cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create cache directory")
)
