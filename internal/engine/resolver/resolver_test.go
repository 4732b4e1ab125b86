package resolver_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpkg/internal/adapters/telemetry"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports/mocks"
	"go.trai.ch/mpkg/internal/engine/resolver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// world maps package directories to their manifests.
type world map[string]*domain.SourceManifest

func pkg(w world, dir, name string, addrs domain.AddressDeclarations) *domain.SourceManifest {
	m := &domain.SourceManifest{
		Package: domain.PackageInfo{
			Name:    domain.NewPackageName(name),
			Version: domain.Version{Major: 1},
		},
		Addresses:    &addrs,
		Dependencies: map[domain.PackageName]domain.Dependency{},
	}
	w[dir] = m
	return m
}

func dependOn(m *domain.SourceManifest, name, dir string, subst domain.Substitution) {
	m.Dependencies[domain.NewPackageName(name)] = domain.Dependency{
		Kind:  domain.LocalDependency{Path: domain.NewFileName(dir)},
		Subst: subst,
	}
}

func addr(s string) *domain.AccountAddress {
	a := domain.MustParseAccountAddress(s)
	return &a
}

func named(s string) domain.NamedAddress {
	return domain.NewNamedAddress(s)
}

func rename(from string) domain.SubstOrRename {
	return domain.RenameFrom{Name: named(from)}
}

func assign(s string) domain.SubstOrRename {
	return domain.Assign{Address: *addr(s)}
}

type harness struct {
	resolver *resolver.Resolver
	logger   *mocks.MockLogger
	verifier *mocks.MockVerifier

	mu      sync.Mutex
	fetches map[string]int
}

func newHarness(t *testing.T, w world) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	loader := mocks.NewMockManifestLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), gomock.Any()).DoAndReturn(
		func(dir string, _ domain.BuildMode) (*domain.SourceManifest, error) {
			m, ok := w[dir]
			if !ok {
				return nil, zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "package has no manifest"), "path", dir)
			}
			return m, nil
		}).AnyTimes()

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().PackageDigest(gomock.Any()).Return(domain.NewPackageDigest("00000000000000aa"), nil).AnyTimes()

	h := &harness{
		logger:   mocks.NewMockLogger(ctrl),
		verifier: mocks.NewMockVerifier(ctrl),
		fetches:  make(map[string]int),
	}
	h.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	fetcher := mocks.NewMockPackageFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.LocateRequest) (string, error) {
			dir := req.Kind.(domain.LocalDependency).Path.String()
			h.mu.Lock()
			h.fetches[dir]++
			h.mu.Unlock()
			return dir, nil
		}).AnyTimes()

	factory := mocks.NewMockFetcherFactory(ctrl)
	factory.EXPECT().New(gomock.Any()).Return(fetcher, nil).AnyTimes()

	h.resolver = resolver.New(loader, factory, h.verifier, hasher, telemetry.NewNoOpTracer(), h.logger)
	return h
}

func settings() domain.Settings {
	s := domain.DefaultSettings()
	s.Concurrency = 4
	return s
}

func names(g *domain.ResolvedGraph) []string {
	var out []string
	for _, p := range g.Packages {
		out = append(out, p.Name.String())
	}
	return out
}

func TestResolve_Diamond(t *testing.T) {
	w := world{}
	app := pkg(w, "/work/app", "App", domain.AddressDeclarations{named("std"): nil})
	a := pkg(w, "/work/a", "A", domain.AddressDeclarations{named("std"): nil})
	b := pkg(w, "/work/b", "B", domain.AddressDeclarations{})
	pkg(w, "/work/std", "Std", domain.AddressDeclarations{named("std"): addr("0x1")})

	dependOn(app, "A", "/work/a", domain.Substitution{named("std"): rename("std")})
	dependOn(app, "B", "/work/b", nil)
	dependOn(a, "Std", "/work/std", domain.Substitution{named("std"): rename("std")})
	dependOn(b, "Std", "/work/std", nil)

	h := newHarness(t, w)
	g, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "App", "B", "Std"}, names(g))
	assert.Equal(t, 1, h.fetches["/work/std"], "a shared dependency is fetched once")

	root, ok := g.Package(domain.NewPackageName("App"))
	require.True(t, ok)
	assert.Equal(t, resolver.RootSource, root.Source)
	assert.Equal(t, "/work/app", root.Root)
	assert.Equal(t, []domain.PackageName{domain.NewPackageName("A"), domain.NewPackageName("B")}, root.Dependencies)
	assert.Equal(t, "0x1", root.Addresses[named("std")].String())

	std, ok := g.Package(domain.NewPackageName("Std"))
	require.True(t, ok)
	assert.Equal(t, "local:/work/std", std.Source)
	assert.Equal(t, "00000000000000aa", std.Digest.String())
	assert.Empty(t, g.Unresolved)
}

func TestResolve_Deterministic(t *testing.T) {
	build := func() *domain.ResolvedGraph {
		w := world{}
		app := pkg(w, "/work/app", "App", domain.AddressDeclarations{})
		for _, dep := range []string{"C", "A", "D", "B"} {
			pkg(w, "/work/"+dep, dep, domain.AddressDeclarations{named("x"): nil})
			dependOn(app, dep, "/work/"+dep, domain.Substitution{named("x"): assign("0x7")})
		}
		h := newHarness(t, w)
		g, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
		require.NoError(t, err)
		return g
	}

	first := build()
	for range 5 {
		assert.Equal(t, first, build())
	}
	assert.Equal(t, []string{"A", "App", "B", "C", "D"}, names(first))
}

func TestResolve_Cycle(t *testing.T) {
	w := world{}
	app := pkg(w, "/work/app", "App", domain.AddressDeclarations{})
	a := pkg(w, "/work/a", "A", domain.AddressDeclarations{})
	dependOn(app, "A", "/work/a", nil)
	dependOn(a, "App", "/work/app", nil)

	h := newHarness(t, w)
	_, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDependencyCycle))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, []string{"App", "A", "App"}, zErr.Metadata()["cycle"])
}

func TestResolve_EdgeChecks(t *testing.T) {
	v2 := domain.Version{Major: 2}

	tests := []struct {
		name    string
		setup   func(w world, app *domain.SourceManifest)
		wantErr error
	}{
		{
			name: "version mismatch",
			setup: func(w world, app *domain.SourceManifest) {
				pkg(w, "/work/std", "Std", domain.AddressDeclarations{})
				app.Dependencies[domain.NewPackageName("Std")] = domain.Dependency{
					Kind:    domain.LocalDependency{Path: domain.NewFileName("/work/std")},
					Version: &v2,
				}
			},
			wantErr: domain.ErrVersionMismatch,
		},
		{
			name: "name mismatch",
			setup: func(w world, app *domain.SourceManifest) {
				pkg(w, "/work/std", "Stdlib", domain.AddressDeclarations{})
				dependOn(app, "Std", "/work/std", nil)
			},
			wantErr: domain.ErrInvalidDependency,
		},
		{
			name: "same package at two locations",
			setup: func(w world, app *domain.SourceManifest) {
				a := pkg(w, "/work/a", "A", domain.AddressDeclarations{})
				b := pkg(w, "/work/b", "B", domain.AddressDeclarations{})
				pkg(w, "/work/std", "Std", domain.AddressDeclarations{})
				pkg(w, "/work/std-fork", "Std", domain.AddressDeclarations{})
				dependOn(app, "A", "/work/a", nil)
				dependOn(app, "B", "/work/b", nil)
				dependOn(a, "Std", "/work/std", nil)
				dependOn(b, "Std", "/work/std-fork", nil)
			},
			wantErr: domain.ErrInvalidDependency,
		},
		{
			name: "missing manifest",
			setup: func(_ world, app *domain.SourceManifest) {
				dependOn(app, "Ghost", "/work/ghost", nil)
			},
			wantErr: domain.ErrManifestNotFound,
		},
		{
			name: "substitution of an undeclared address",
			setup: func(w world, app *domain.SourceManifest) {
				pkg(w, "/work/std", "Std", domain.AddressDeclarations{})
				dependOn(app, "Std", "/work/std", domain.Substitution{named("nope"): assign("0x1")})
			},
			wantErr: domain.ErrUnknownAddress,
		},
		{
			name: "conflicting assignments from two consumers",
			setup: func(w world, app *domain.SourceManifest) {
				a := pkg(w, "/work/a", "A", domain.AddressDeclarations{})
				pkg(w, "/work/std", "Std", domain.AddressDeclarations{named("std"): nil})
				dependOn(app, "A", "/work/a", nil)
				dependOn(app, "Std", "/work/std", domain.Substitution{named("std"): assign("0x1")})
				dependOn(a, "Std", "/work/std", domain.Substitution{named("std"): assign("0x2")})
			},
			wantErr: domain.ErrAddressConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := world{}
			app := pkg(w, "/work/app", "App", domain.AddressDeclarations{})
			tt.setup(w, app)

			h := newHarness(t, w)
			_, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	setup := func() world {
		w := world{}
		app := pkg(w, "/work/app", "App", domain.AddressDeclarations{named("app"): nil})
		pkg(w, "/work/std", "Std", domain.AddressDeclarations{named("std"): nil})
		dependOn(app, "Std", "/work/std", domain.Substitution{named("std"): rename("app")})
		return w
	}

	t.Run("rejected by default", func(t *testing.T) {
		h := newHarness(t, setup())
		_, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnresolvedAddress))

		zErr, ok := err.(*zerr.Error)
		require.True(t, ok)
		assert.Equal(t, []string{"App::app = Std::std"}, zErr.Metadata()["addresses"])
	})

	t.Run("reported when allowed", func(t *testing.T) {
		h := newHarness(t, setup())
		h.logger.EXPECT().Warn("unresolved address App::app = Std::std").Times(1)

		s := settings()
		s.AllowUnresolved = true
		g, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, s)
		require.NoError(t, err)
		require.Len(t, g.Unresolved, 1)

		std, _ := g.Package(domain.NewPackageName("Std"))
		v, ok := std.Addresses[named("std")]
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}

func TestResolve_DevMode(t *testing.T) {
	w := world{}
	app := pkg(w, "/work/app", "App", domain.AddressDeclarations{named("app"): nil})
	app.DevAddressAssignments = &domain.DevAddressDeclarations{named("app"): *addr("0x42")}
	app.DevDependencies = map[domain.PackageName]domain.Dependency{
		domain.NewPackageName("TestUtil"): {Kind: domain.LocalDependency{Path: domain.NewFileName("/work/test-util")}},
	}
	tu := pkg(w, "/work/test-util", "TestUtil", domain.AddressDeclarations{})
	// Dev dependencies of a dependency are never followed.
	tu.DevDependencies = map[domain.PackageName]domain.Dependency{
		domain.NewPackageName("Ghost"): {Kind: domain.LocalDependency{Path: domain.NewFileName("/work/ghost")}},
	}

	h := newHarness(t, w)

	t.Run("default mode", func(t *testing.T) {
		s := settings()
		s.AllowUnresolved = true
		h.logger.EXPECT().Warn(gomock.Any()).Times(1)

		g, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, s)
		require.NoError(t, err)
		assert.Equal(t, []string{"App"}, names(g))
	})

	t.Run("dev mode", func(t *testing.T) {
		g, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDev, settings())
		require.NoError(t, err)
		assert.Equal(t, domain.BuildModeDev, g.Mode)
		assert.Equal(t, []string{"App", "TestUtil"}, names(g))

		root, _ := g.Package(domain.NewPackageName("App"))
		assert.Equal(t, "0x42", root.Addresses[named("app")].String())
	})
}

func TestResolve_DigestPinned(t *testing.T) {
	pinned := domain.NewPackageDigest("00000000000000BB")

	setup := func() world {
		w := world{}
		app := pkg(w, "/work/app", "App", domain.AddressDeclarations{})
		pkg(w, "/work/std", "Std", domain.AddressDeclarations{})
		app.Dependencies[domain.NewPackageName("Std")] = domain.Dependency{
			Kind:   domain.LocalDependency{Path: domain.NewFileName("/work/std")},
			Digest: &pinned,
		}
		return w
	}

	t.Run("verified", func(t *testing.T) {
		h := newHarness(t, setup())
		h.verifier.EXPECT().VerifyDigest("/work/std", pinned).Return(domain.NewPackageDigest("00000000000000bb"), nil)

		g, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
		require.NoError(t, err)
		std, _ := g.Package(domain.NewPackageName("Std"))
		assert.Equal(t, "00000000000000bb", std.Digest.String())
	})

	t.Run("mismatch", func(t *testing.T) {
		h := newHarness(t, setup())
		mismatch := zerr.With(zerr.Wrap(domain.ErrDigestMismatch, "content changed"), "expected", pinned.String())
		h.verifier.EXPECT().VerifyDigest("/work/std", pinned).Return(domain.NewPackageDigest("00000000000000cc"), mismatch)

		_, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDigestMismatch))
	})
}

func TestResolve_DigestPinnedOnLaterEdge(t *testing.T) {
	pinned := domain.NewPackageDigest("ffffffffffffffff")

	setup := func() world {
		w := world{}
		app := pkg(w, "/work/app", "App", domain.AddressDeclarations{})
		a := pkg(w, "/work/a", "A", domain.AddressDeclarations{})
		pkg(w, "/work/b", "B", domain.AddressDeclarations{})
		dependOn(app, "A", "/work/a", nil)
		dependOn(app, "B", "/work/b", nil)
		a.Dependencies[domain.NewPackageName("B")] = domain.Dependency{
			Kind:   domain.LocalDependency{Path: domain.NewFileName("/work/b")},
			Digest: &pinned,
		}
		return w
	}

	t.Run("mismatch", func(t *testing.T) {
		h := newHarness(t, setup())

		_, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDigestMismatch))

		var zErr *zerr.Error
		require.True(t, errors.As(err, &zErr))
		assert.Equal(t, "A", zErr.Metadata()["package"])
		assert.Equal(t, "B", zErr.Metadata()["dependency"])
		assert.Equal(t, "ffffffffffffffff", zErr.Metadata()["expected"])
		assert.Equal(t, "00000000000000aa", zErr.Metadata()["actual"])
		assert.Equal(t, 1, h.fetches["/work/b"])
	})

	t.Run("match ignores case", func(t *testing.T) {
		w := setup()
		upper := domain.NewPackageDigest("00000000000000AA")
		dep := w["/work/a"].Dependencies[domain.NewPackageName("B")]
		dep.Digest = &upper
		w["/work/a"].Dependencies[domain.NewPackageName("B")] = dep
		h := newHarness(t, w)

		g, err := h.resolver.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "App", "B"}, names(g))
	})
}

func TestResolve_FetchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	w := world{}
	app := pkg(w, "/work/app", "App", domain.AddressDeclarations{})
	app.Dependencies[domain.NewPackageName("Std")] = domain.Dependency{
		Kind: domain.GitDependency{URL: "https://example.com/std.git", Rev: "main"},
	}

	loader := mocks.NewMockManifestLoader(ctrl)
	loader.EXPECT().Load("/work/app", domain.BuildModeDefault).Return(app, nil)

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().PackageDigest("/work/app").Return(domain.NewPackageDigest("00000000000000aa"), nil)

	fetcher := mocks.NewMockPackageFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return("", zerr.Wrap(domain.ErrFetchFailed, "connection refused"))

	factory := mocks.NewMockFetcherFactory(ctrl)
	factory.EXPECT().New(gomock.Any()).Return(fetcher, nil)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	r := resolver.New(loader, factory, mocks.NewMockVerifier(ctrl), hasher, telemetry.NewNoOpTracer(), log)
	_, err := r.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetchFailed))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "git:https://example.com/std.git@main", zErr.Metadata()["source"])
}

func TestResolve_FetcherFactoryError(t *testing.T) {
	ctrl := gomock.NewController(t)

	w := world{}
	app := pkg(w, "/work/app", "App", domain.AddressDeclarations{})

	loader := mocks.NewMockManifestLoader(ctrl)
	loader.EXPECT().Load("/work/app", domain.BuildModeDefault).Return(app, nil)

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().PackageDigest("/work/app").Return(domain.NewPackageDigest("00000000000000aa"), nil)

	factory := mocks.NewMockFetcherFactory(ctrl)
	factory.EXPECT().New(gomock.Any()).Return(nil, zerr.Wrap(domain.ErrInvalidSettings, "unknown node resolver kind"))

	r := resolver.New(loader, factory, mocks.NewMockVerifier(ctrl), hasher, telemetry.NewNoOpTracer(), mocks.NewMockLogger(ctrl))
	_, err := r.Resolve(context.Background(), "/work/app", domain.BuildModeDefault, settings())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSettings))
}
