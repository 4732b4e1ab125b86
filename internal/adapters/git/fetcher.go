// Package git fetches git dependencies into the package cache using go-git.
package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PackageFetcher = (*Fetcher)(nil)

// Fetcher clones repositories into <cache>/git and checks out the requested revision.
type Fetcher struct {
	cacheDir string
	logger   ports.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFetcher creates a Fetcher rooted at cacheDir.
func NewFetcher(cacheDir string, logger ports.Logger) *Fetcher {
	return &Fetcher{
		cacheDir: cacheDir,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// CheckoutDir returns the cache directory holding url at rev.
func CheckoutDir(cacheDir, url, rev string) string {
	return filepath.Join(domain.GitCachePath(cacheDir), sanitize(url)+"@"+sanitize(rev))
}

// Fetch returns the package directory inside the checkout of req's repository.
// An existing checkout is reused without touching the network.
func (f *Fetcher) Fetch(ctx context.Context, req domain.LocateRequest) (string, error) {
	dep, ok := req.Kind.(domain.GitDependency)
	if !ok {
		err := zerr.Wrap(domain.ErrInvalidDependency, "not a git dependency")
		return "", zerr.With(err, "dependency", req.Name.String())
	}

	dir := CheckoutDir(f.cacheDir, dep.URL, dep.Rev)

	lock := f.lockFor(dir)
	lock.Lock()
	defer lock.Unlock()

	if err := f.ensureCheckout(ctx, dir, dep); err != nil {
		if !errors.Is(err, domain.ErrCacheCreateFailed) {
			err = zerr.Wrap(domain.ErrFetchFailed, err.Error())
		}
		err = zerr.With(err, "dependency", req.Name.String())
		err = zerr.With(err, "url", dep.URL)
		return "", zerr.With(err, "rev", dep.Rev)
	}

	return filepath.Join(dir, dep.Subdir.String()), nil
}

func (f *Fetcher) lockFor(dir string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, ok := f.locks[dir]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[dir] = lock
	}
	return lock
}

func (f *Fetcher) ensureCheckout(ctx context.Context, dir string, dep domain.GitDependency) error {
	repo, err := gogit.PlainOpen(dir)
	switch {
	case err == nil:
		f.logger.Debug("reusing checkout " + dir)
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		if err := os.MkdirAll(filepath.Dir(dir), domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrCacheCreateFailed, err.Error()), "path", filepath.Dir(dir))
		}
		f.logger.Debug("cloning " + dep.URL)
		repo, err = gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{URL: dep.URL})
		if err != nil {
			_ = os.RemoveAll(dir)
			return zerr.Wrap(err, "clone failed")
		}
	default:
		return zerr.Wrap(err, "failed to open checkout")
	}

	hash, err := resolveRevision(repo, dep.Rev)
	if err != nil {
		return err
	}

	head, err := repo.Head()
	if err == nil && head.Hash() == hash {
		return nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return zerr.Wrap(err, "failed to open worktree")
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return zerr.With(zerr.Wrap(err, "checkout failed"), "commit", hash.String())
	}
	return nil
}

// resolveRevision tries rev as a full commit hash, then as a tag, then as a branch,
// then as any revision expression go-git understands.
func resolveRevision(repo *gogit.Repository, rev string) (plumbing.Hash, error) {
	if plumbing.IsHash(rev) {
		hash := plumbing.NewHash(rev)
		if _, err := repo.CommitObject(hash); err == nil {
			return hash, nil
		}
	}

	candidates := []string{
		"refs/tags/" + rev,
		"refs/heads/" + rev,
		"refs/remotes/origin/" + rev,
		rev,
	}
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err == nil {
			return *hash, nil
		}
	}

	return plumbing.ZeroHash, zerr.With(zerr.New("revision not found"), "rev", rev)
}

func sanitize(s string) string {
	s = strings.TrimSuffix(s, ".git")
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "file://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
