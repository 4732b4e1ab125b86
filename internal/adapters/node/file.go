package node

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.NodeResolver = (*FileResolver)(nil)

// FileResolver serves packages from a directory laid out as <root>/<address>/<name>.
type FileResolver struct{}

// NewFileResolver creates a new FileResolver.
func NewFileResolver() *FileResolver {
	return &FileResolver{}
}

// Resolve returns <path>/<package_address>/<package_name>/<subdir> for a file:// node.
func (r *FileResolver) Resolve(_ context.Context, dep domain.CustomDependency) (string, error) {
	u, err := url.Parse(dep.NodeURL)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrFetchFailed, err.Error()), "node", dep.NodeURL)
	}

	root := filepath.Join(
		filepath.FromSlash(u.Path),
		dep.PackageAddress,
		dep.PackageName.String(),
		dep.Subdir.String(),
	)

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		err := zerr.Wrap(domain.ErrFetchFailed, "package is not published on the node")
		err = zerr.With(err, "node", dep.NodeURL)
		return "", zerr.With(err, "path", root)
	}

	return root, nil
}
