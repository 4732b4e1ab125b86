// Package resolver walks a package's dependency graph and collapses its named addresses.
package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// RootSource is the source recorded for the package resolution starts from.
const RootSource = "root"

// Resolver builds a ResolvedGraph from a root package directory.
type Resolver struct {
	loader   ports.ManifestLoader
	fetchers ports.FetcherFactory
	verifier ports.Verifier
	hasher   ports.Hasher
	tracer   ports.Tracer
	logger   ports.Logger
}

// New creates a new Resolver.
func New(
	loader ports.ManifestLoader,
	fetchers ports.FetcherFactory,
	verifier ports.Verifier,
	hasher ports.Hasher,
	tracer ports.Tracer,
	logger ports.Logger,
) *Resolver {
	return &Resolver{
		loader:   loader,
		fetchers: fetchers,
		verifier: verifier,
		hasher:   hasher,
		tracer:   tracer,
		logger:   logger,
	}
}

// pkgNode is a package reached during the walk.
type pkgNode struct {
	name     domain.PackageName
	dir      string
	source   string
	digest   domain.PackageDigest
	manifest *domain.SourceManifest
	mode     domain.BuildMode
	edges    []domain.Edge
}

// pendingEdge is a dependency of a package in the current wave.
type pendingEdge struct {
	consumer *pkgNode
	name     domain.PackageName
	dep      domain.Dependency
	req      domain.LocateRequest
}

// fetched is the materialized content behind one source.
type fetched struct {
	dir      string
	digest   domain.PackageDigest
	manifest *domain.SourceManifest
}

// run holds the state of a single Resolve call.
type run struct {
	*Resolver
	settings domain.Settings
	fetcher  ports.PackageFetcher
	nodes    map[domain.PackageName]*pkgNode
	sources  map[string]fetched
}

// Resolve loads the package at root in mode and resolves its whole dependency graph.
func (r *Resolver) Resolve(ctx context.Context, root string, mode domain.BuildMode, settings domain.Settings) (*domain.ResolvedGraph, error) {
	ctx, span := r.tracer.Start(ctx, "resolve", ports.WithAttribute("mode", mode.String()))
	defer span.End()

	g, err := r.resolve(ctx, root, mode, settings)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("packages", len(g.Packages))
	return g, nil
}

func (r *Resolver) resolve(ctx context.Context, root string, mode domain.BuildMode, settings domain.Settings) (*domain.ResolvedGraph, error) {
	manifest, err := r.loader.Load(root, mode)
	if err != nil {
		return nil, err
	}

	digest, err := r.hasher.PackageDigest(root)
	if err != nil {
		return nil, err
	}

	fetcher, err := r.fetchers.New(settings)
	if err != nil {
		return nil, err
	}

	st := &run{
		Resolver: r,
		settings: settings,
		fetcher:  fetcher,
		nodes:    make(map[domain.PackageName]*pkgNode),
		sources:  make(map[string]fetched),
	}

	rootNode := &pkgNode{
		name:     manifest.Package.Name,
		dir:      root,
		source:   RootSource,
		digest:   digest,
		manifest: manifest,
		mode:     mode,
	}
	st.nodes[rootNode.name] = rootNode

	wave := []*pkgNode{rootNode}
	for depth := 0; len(wave) > 0; depth++ {
		next, err := st.walkWave(ctx, depth, wave)
		if err != nil {
			return nil, err
		}
		wave = next
	}

	if err := st.checkCycles(rootNode.name); err != nil {
		return nil, err
	}

	resolution, err := st.collapse(ctx)
	if err != nil {
		return nil, err
	}

	unresolved := resolution.Unresolved()
	if len(unresolved) > 0 {
		if !settings.AllowUnresolved {
			err := zerr.Wrap(domain.ErrUnresolvedAddress, "address has no concrete value")
			return nil, zerr.With(err, "addresses", classNames(unresolved))
		}
		for _, class := range unresolved {
			r.logger.Warn("unresolved address " + strings.Join(memberNames(class), " = "))
		}
	}

	return st.graph(rootNode.name, mode, resolution, unresolved, settings.AllowUnresolved), nil
}

// walkWave fetches the dependencies of every package in wave and returns the
// packages seen for the first time.
func (st *run) walkWave(ctx context.Context, depth int, wave []*pkgNode) ([]*pkgNode, error) {
	pending, err := st.pendingEdges(wave)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	if err := st.fetchAll(ctx, depth, pending); err != nil {
		return nil, err
	}

	var next []*pkgNode
	for _, e := range pending {
		got := st.sources[e.req.Source()]
		if err := st.checkEdge(e, got); err != nil {
			return nil, err
		}

		e.consumer.edges = append(e.consumer.edges, domain.Edge{
			Consumer:   e.consumer.name,
			Dependency: e.name,
			Subst:      e.dep.Subst,
		})

		if existing, ok := st.nodes[e.name]; ok {
			if existing.dir != got.dir {
				err := zerr.Wrap(domain.ErrInvalidDependency, "package is reached at two different locations")
				err = zerr.With(err, "dependency", e.name.String())
				err = zerr.With(err, "first", existing.dir)
				return nil, zerr.With(err, "second", got.dir)
			}
			continue
		}

		node := &pkgNode{
			name:     e.name,
			dir:      got.dir,
			source:   e.req.Source(),
			digest:   got.digest,
			manifest: got.manifest,
			mode:     domain.BuildModeDefault,
		}
		st.nodes[e.name] = node
		next = append(next, node)
	}

	return next, nil
}

// pendingEdges lists the active dependencies of wave in canonical order.
func (st *run) pendingEdges(wave []*pkgNode) ([]pendingEdge, error) {
	var pending []pendingEdge
	for _, consumer := range wave {
		deps, err := consumer.manifest.ActiveDependencies(consumer.mode, st.settings.DevDependencyPrecedence)
		if err != nil {
			return nil, err
		}
		for _, name := range domain.SortedKeys(deps) {
			dep := deps[name]
			req, err := domain.NormalizeDependency(consumer.dir, name, dep)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, ""), "package", consumer.name.String())
			}
			pending = append(pending, pendingEdge{consumer: consumer, name: name, dep: dep, req: req})
		}
	}
	slices.SortStableFunc(pending, func(a, b pendingEdge) int {
		if c := a.consumer.name.Compare(b.consumer.name); c != 0 {
			return c
		}
		return a.name.Compare(b.name)
	})
	return pending, nil
}

// fetchJob is one source to materialize, with the digests its consumers pin.
type fetchJob struct {
	name    domain.PackageName
	req     domain.LocateRequest
	digests []domain.PackageDigest
}

// fetchAll materializes every source of pending not fetched yet, bounded by the
// configured concurrency.
func (st *run) fetchAll(ctx context.Context, depth int, pending []pendingEdge) error {
	jobs := make(map[string]*fetchJob)
	var order []string
	for _, e := range pending {
		source := e.req.Source()
		if _, done := st.sources[source]; done {
			continue
		}
		job, ok := jobs[source]
		if !ok {
			job = &fetchJob{name: e.name, req: e.req}
			jobs[source] = job
			order = append(order, source)
		}
		if e.dep.Digest != nil && !slices.ContainsFunc(job.digests, func(d domain.PackageDigest) bool {
			return strings.EqualFold(d.String(), e.dep.Digest.String())
		}) {
			job.digests = append(job.digests, *e.dep.Digest)
		}
	}
	if len(order) == 0 {
		return nil
	}

	names := make([]string, 0, len(order))
	for _, source := range order {
		names = append(names, jobs[source].name.String())
	}
	st.tracer.EmitPlan(ctx, names)
	st.logger.Debug(fmt.Sprintf("fetching %d package(s) at depth %d", len(order), depth))

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(st.settings.Concurrency, 1))

	for _, source := range order {
		job := jobs[source]
		eg.Go(func() error {
			got, err := st.fetchOne(egCtx, job)
			if err != nil {
				return err
			}
			mu.Lock()
			st.sources[source] = got
			mu.Unlock()
			return nil
		})
	}

	return eg.Wait()
}

func (st *run) fetchOne(ctx context.Context, job *fetchJob) (fetched, error) {
	ctx, span := st.tracer.Start(ctx, "fetch",
		ports.WithAttribute("package", job.name.String()),
		ports.WithAttribute("source", job.req.Source()),
	)
	defer span.End()

	got, err := st.materialize(ctx, job)
	if err != nil {
		span.RecordError(err)
		return fetched{}, zerr.With(zerr.Wrap(err, ""), "source", job.req.Source())
	}
	span.SetAttribute("digest", got.digest.String())
	return got, nil
}

func (st *run) materialize(ctx context.Context, job *fetchJob) (fetched, error) {
	dir, err := st.fetcher.Fetch(ctx, job.req)
	if err != nil {
		return fetched{}, err
	}

	var digest domain.PackageDigest
	if len(job.digests) == 0 {
		digest, err = st.hasher.PackageDigest(dir)
		if err != nil {
			return fetched{}, err
		}
	}
	for _, expected := range job.digests {
		digest, err = st.verifier.VerifyDigest(dir, expected)
		if err != nil {
			return fetched{}, zerr.With(zerr.Wrap(err, ""), "dependency", job.name.String())
		}
	}

	manifest, err := st.loader.Load(dir, domain.BuildModeDefault)
	if err != nil {
		return fetched{}, err
	}

	st.logger.Debug(fmt.Sprintf("located %s at %s", job.name, dir))
	return fetched{dir: dir, digest: digest, manifest: manifest}, nil
}

// checkEdge validates a fetched package against what its consumer asked for.
func (st *run) checkEdge(e pendingEdge, got fetched) error {
	if got.manifest.Package.Name != e.name {
		err := zerr.Wrap(domain.ErrInvalidDependency, "fetched package has a different name")
		err = zerr.With(err, "package", e.consumer.name.String())
		err = zerr.With(err, "dependency", e.name.String())
		return zerr.With(err, "found", got.manifest.Package.Name.String())
	}

	if e.dep.Version != nil && !e.dep.Version.Compatible(got.manifest.Package.Version) {
		err := zerr.Wrap(domain.ErrVersionMismatch, "fetched package does not have the required version")
		err = zerr.With(err, "package", e.consumer.name.String())
		err = zerr.With(err, "dependency", e.name.String())
		err = zerr.With(err, "required", e.dep.Version.String())
		return zerr.With(err, "found", got.manifest.Package.Version.String())
	}

	// Sources fetched in an earlier wave skip verification, so every pinned
	// digest is compared with the recorded one here.
	if e.dep.Digest != nil && !strings.EqualFold(e.dep.Digest.String(), got.digest.String()) {
		err := zerr.Wrap(domain.ErrDigestMismatch, "pinned digest does not match the fetched package")
		err = zerr.With(err, "package", e.consumer.name.String())
		err = zerr.With(err, "dependency", e.name.String())
		err = zerr.With(err, "expected", e.dep.Digest.String())
		return zerr.With(err, "actual", got.digest.String())
	}

	return nil
}

// checkCycles rejects dependency cycles, reporting the first one in canonical order.
func (st *run) checkCycles(root domain.PackageName) error {
	const (
		unvisited = iota
		active
		finished
	)
	state := make(map[domain.PackageName]int, len(st.nodes))
	var path []domain.PackageName

	var visit func(name domain.PackageName) error
	visit = func(name domain.PackageName) error {
		state[name] = active
		path = append(path, name)
		for _, e := range st.nodes[name].edges {
			switch state[e.Dependency] {
			case active:
				start := slices.Index(path, e.Dependency)
				cycle := make([]string, 0, len(path)-start+1)
				for _, p := range path[start:] {
					cycle = append(cycle, p.String())
				}
				cycle = append(cycle, e.Dependency.String())
				err := zerr.Wrap(domain.ErrDependencyCycle, strings.Join(cycle, " -> "))
				return zerr.With(err, "cycle", cycle)
			case unvisited:
				if err := visit(e.Dependency); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = finished
		return nil
	}

	return visit(root)
}

// collapse crosses every edge in canonical order and unifies the address classes.
func (st *run) collapse(ctx context.Context) (*domain.AddressResolution, error) {
	_, span := st.tracer.Start(ctx, "collapse")
	defer span.End()

	u := domain.NewAddressUnifier()
	var edges []domain.Edge
	for _, name := range domain.SortedKeys(st.nodes) {
		node := st.nodes[name]
		u.DeclareTable(name, node.manifest.EffectiveAddresses(node.mode))
		edges = append(edges, node.edges...)
	}

	slices.SortFunc(edges, func(a, b domain.Edge) int {
		if c := a.Consumer.Compare(b.Consumer); c != 0 {
			return c
		}
		return a.Dependency.Compare(b.Dependency)
	})

	for _, edge := range edges {
		dep := st.nodes[edge.Dependency]
		policy := domain.FixedAddressPolicy{
			Mode:     st.settings.FixedAddressPolicy,
			Declared: dep.manifest.FixedAddresses,
		}
		res, err := domain.ResolveEdge(edge, dep.manifest.EffectiveAddresses(dep.mode), policy)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		u.AddEdge(res)
	}

	resolution, err := u.Collapse()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("classes", len(resolution.Classes))
	return resolution, nil
}

func (st *run) graph(
	root domain.PackageName,
	mode domain.BuildMode,
	resolution *domain.AddressResolution,
	unresolved []domain.AddressClass,
	allowUnresolved bool,
) *domain.ResolvedGraph {
	g := &domain.ResolvedGraph{
		Root:     root,
		Mode:     mode,
		Packages: make([]domain.ResolvedPackage, 0, len(st.nodes)),
	}
	if allowUnresolved {
		g.Unresolved = unresolved
	}

	for _, name := range domain.SortedKeys(st.nodes) {
		node := st.nodes[name]
		deps := make([]domain.PackageName, 0, len(node.edges))
		for _, e := range node.edges {
			deps = append(deps, e.Dependency)
		}
		slices.SortFunc(deps, domain.PackageName.Compare)

		g.Packages = append(g.Packages, domain.ResolvedPackage{
			Name:         name,
			Version:      node.manifest.Package.Version,
			Root:         node.dir,
			Source:       node.source,
			Digest:       node.digest,
			Addresses:    resolution.Table(name),
			Dependencies: deps,
		})
	}
	return g
}

func memberNames(class domain.AddressClass) []string {
	out := make([]string, 0, len(class.Members))
	for _, m := range class.Members {
		out = append(out, m.String())
	}
	return out
}

func classNames(classes []domain.AddressClass) []string {
	var out []string
	for _, c := range classes {
		out = append(out, strings.Join(memberNames(c), " = "))
	}
	return out
}
