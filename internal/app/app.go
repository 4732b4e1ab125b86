// Package app implements the application layer for mpkg.
package app

import (
	"context"

	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/mpkg/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	manifests    ports.ManifestLoader
	resolver     *resolver.Resolver
	locks        ports.LockStore
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	manifests ports.ManifestLoader,
	res *resolver.Resolver,
	locks ports.LockStore,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		manifests:    manifests,
		resolver:     res,
		locks:        locks,
		logger:       log,
	}
}

// Options selects the package and build mode of a command.
type Options struct {
	// Dir is where the search for the package root starts.
	Dir string
	Dev bool
}

// Mode returns the build mode selected by the options.
func (o Options) Mode() domain.BuildMode {
	if o.Dev {
		return domain.BuildModeDev
	}
	return domain.BuildModeDefault
}

// CheckResult is the outcome of validating the root manifest.
type CheckResult struct {
	Root     string
	Manifest *domain.SourceManifest
	// Dependencies are the active dependencies, normalized and in canonical order.
	Dependencies []domain.LocateRequest
}

// LockResult is the outcome of writing the lock file.
type LockResult struct {
	Path string
	Lock *domain.Lockfile
	// Changed is false when an identical lock file was already present.
	Changed bool
}

// Resolve resolves the dependency graph of the package containing opts.Dir.
func (a *App) Resolve(ctx context.Context, opts Options) (*domain.ResolvedGraph, error) {
	root, settings, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	g, err := a.resolver.Resolve(ctx, root, opts.Mode(), settings)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve dependencies")
	}
	return g, nil
}

// Check validates the root manifest without fetching anything.
func (a *App) Check(_ context.Context, opts Options) (*CheckResult, error) {
	root, settings, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	m, err := a.manifests.Load(root, opts.Mode())
	if err != nil {
		return nil, zerr.Wrap(err, "manifest is invalid")
	}

	deps, err := m.ActiveDependencies(opts.Mode(), settings.DevDependencyPrecedence)
	if err != nil {
		return nil, zerr.Wrap(err, "manifest is invalid")
	}

	res := &CheckResult{Root: root, Manifest: m}
	for _, name := range domain.SortedKeys(deps) {
		req, err := domain.NormalizeDependency(root, name, deps[name])
		if err != nil {
			return nil, zerr.Wrap(err, "manifest is invalid")
		}
		res.Dependencies = append(res.Dependencies, req)
	}
	return res, nil
}

// Lock resolves the dependency graph and records it in Move.lock at the package root.
func (a *App) Lock(ctx context.Context, opts Options) (*LockResult, error) {
	root, settings, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	g, err := a.resolver.Resolve(ctx, root, opts.Mode(), settings)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve dependencies")
	}

	lock := domain.NewLockfile(g)
	previous, err := a.locks.Read(root)
	if err != nil {
		a.logger.Warn("existing lock file is unreadable and will be replaced")
		a.logger.Debug(err.Error())
	}

	if err := a.locks.Write(root, lock); err != nil {
		return nil, err
	}

	return &LockResult{
		Path:    domain.LockPath(root),
		Lock:    lock,
		Changed: previous == nil || !previous.Equal(lock),
	}, nil
}

func (a *App) load(opts Options) (string, domain.Settings, error) {
	root, err := a.configLoader.DiscoverRoot(opts.Dir)
	if err != nil {
		return "", domain.Settings{}, err
	}

	settings, err := a.configLoader.LoadSettings(root)
	if err != nil {
		return "", domain.Settings{}, zerr.Wrap(err, "failed to load settings")
	}

	a.logger.Debug("package root: " + root)
	return root, settings, nil
}
