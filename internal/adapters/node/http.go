package node

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-getter"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.NodeResolver = (*HTTPResolver)(nil)

// HTTPResolver downloads package archives from a node into the cache.
// A node serves each package at <node>/packages/<address>/<name>.tar.gz.
type HTTPResolver struct {
	cacheDir string
	logger   ports.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHTTPResolver creates an HTTPResolver storing archives below cacheDir.
func NewHTTPResolver(cacheDir string, logger ports.Logger) *HTTPResolver {
	return &HTTPResolver{
		cacheDir: cacheDir,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// ArchiveURL returns the URL of dep's package archive.
func ArchiveURL(dep domain.CustomDependency) string {
	return strings.TrimSuffix(dep.NodeURL, "/") + "/packages/" + dep.PackageAddress + "/" + dep.PackageName.String() + ".tar.gz"
}

// Resolve downloads and unpacks the archive once and returns <dst>/<subdir>.
func (r *HTTPResolver) Resolve(ctx context.Context, dep domain.CustomDependency) (string, error) {
	dst, err := r.destination(dep)
	if err != nil {
		return "", err
	}

	// Dependencies differing only in subdir share dst.
	lock := r.lockFor(dst)
	lock.Lock()
	defer lock.Unlock()

	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		r.logger.Debug("reusing download " + dst)
		return filepath.Join(dst, dep.Subdir.String()), nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrCacheCreateFailed, err.Error()), "path", filepath.Dir(dst))
	}

	src := ArchiveURL(dep)
	r.logger.Debug("downloading " + src)

	if err := getter.GetAny(dst, src, getter.WithContext(ctx)); err != nil {
		_ = os.RemoveAll(dst)
		err := zerr.Wrap(domain.ErrFetchFailed, err.Error())
		return "", zerr.With(err, "url", src)
	}

	return filepath.Join(dst, dep.Subdir.String()), nil
}

func (r *HTTPResolver) lockFor(dst string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[dst]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[dst] = lock
	}
	return lock
}

func (r *HTTPResolver) destination(dep domain.CustomDependency) (string, error) {
	u, err := url.Parse(dep.NodeURL)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrFetchFailed, err.Error()), "node", dep.NodeURL)
	}
	host := strings.ReplaceAll(u.Host, ":", "_")
	return filepath.Join(domain.NodeCachePath(r.cacheDir), host, dep.PackageAddress, dep.PackageName.String()), nil
}
