// Package config locates the package root and loads the mpkg settings file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML settings file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// DiscoverRoot walks up from cwd until it finds a directory containing Move.toml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}

	currentDir := abs
	for {
		info, err := os.Stat(domain.ManifestPath(currentDir))
		if err == nil && !info.IsDir() {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "not inside a Move package"), "cwd", abs)
}

// LoadSettings reads mpkg.yaml from root. A missing file yields the defaults.
func (l *Loader) LoadSettings(root string) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	path := filepath.Join(root, domain.SettingsFileName)

	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the discovered root
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.Logger.Debug("no " + domain.SettingsFileName + " found, using defaults")
		return expandCacheDir(settings)
	case err != nil:
		return domain.Settings{}, zerr.With(zerr.Wrap(domain.ErrSettingsReadFailed, err.Error()), "path", path)
	}

	var file SettingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.Settings{}, zerr.With(zerr.Wrap(domain.ErrSettingsReadFailed, err.Error()), "path", path)
	}

	if err := apply(&settings, &file); err != nil {
		return domain.Settings{}, zerr.With(err, "path", path)
	}

	if !filepath.IsAbs(settings.CacheDir) && !strings.HasPrefix(settings.CacheDir, "~") {
		settings.CacheDir = filepath.Join(root, settings.CacheDir)
	}

	return expandCacheDir(settings)
}

func apply(settings *domain.Settings, file *SettingsFile) error {
	if file.CacheDir != "" {
		settings.CacheDir = file.CacheDir
	}

	if file.Concurrency != nil {
		if *file.Concurrency < 1 {
			err := zerr.Wrap(domain.ErrInvalidSettings, "concurrency must be at least 1")
			return zerr.With(err, "concurrency", *file.Concurrency)
		}
		settings.Concurrency = *file.Concurrency
	}

	mode, err := domain.ParseFixedAddressMode(file.FixedAddressPolicy)
	if err != nil {
		return err
	}
	settings.FixedAddressPolicy = mode

	precedence, err := domain.ParseDevDependencyPrecedence(file.DevDependencyPrecedence)
	if err != nil {
		return err
	}
	settings.DevDependencyPrecedence = precedence

	if file.AllowUnresolved != nil {
		settings.AllowUnresolved = *file.AllowUnresolved
	}

	for scheme, kind := range file.NodeResolvers {
		resolver := domain.NodeResolverKind(strings.ToLower(kind))
		if resolver != domain.NodeResolverHTTP && resolver != domain.NodeResolverFile {
			err := zerr.Wrap(domain.ErrInvalidSettings, "unknown node resolver kind")
			err = zerr.With(err, "scheme", scheme)
			return zerr.With(err, "kind", kind)
		}
		settings.NodeResolvers[strings.ToLower(scheme)] = resolver
	}

	return nil
}

func expandCacheDir(settings domain.Settings) (domain.Settings, error) {
	expanded, err := homedir.Expand(settings.CacheDir)
	if err != nil {
		err = zerr.Wrap(domain.ErrInvalidSettings, "failed to expand cache directory")
		return domain.Settings{}, zerr.With(err, "cache_dir", settings.CacheDir)
	}
	settings.CacheDir = filepath.Clean(expanded)
	return settings, nil
}
