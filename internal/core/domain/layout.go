package domain

import "path/filepath"

const (
	// ManifestFileName is the name of a package manifest.
	ManifestFileName = "Move.toml"

	// LockFileName is the name of the lock file written next to the root manifest.
	LockFileName = "Move.lock"

	// SettingsFileName is the name of the optional tool settings file.
	SettingsFileName = "mpkg.yaml"

	// SourcesDirName is the directory holding a package's sources.
	SourcesDirName = "sources"

	// BuildDirName is the build output directory, excluded from digests.
	BuildDirName = "build"

	// DefaultCacheDir is the default root of fetched packages.
	DefaultCacheDir = "~/.move"

	// GitCacheDirName is the cache subdirectory for git checkouts.
	GitCacheDirName = "git"

	// NodeCacheDirName is the cache subdirectory for packages downloaded from nodes.
	NodeCacheDirName = "node"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// ManifestPath returns the manifest path of the package rooted at dir.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestFileName)
}

// LockPath returns the lock file path of the package rooted at dir.
func LockPath(dir string) string {
	return filepath.Join(dir, LockFileName)
}

// GitCachePath returns the directory for git checkouts under cacheDir.
func GitCachePath(cacheDir string) string {
	return filepath.Join(cacheDir, GitCacheDirName)
}

// NodeCachePath returns the directory for node downloads under cacheDir.
func NodeCachePath(cacheDir string) string {
	return filepath.Join(cacheDir, NodeCacheDirName)
}
