package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes package digests from the manifest and the sources tree.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(domain.ErrFileHashFailed, err.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(domain.ErrFileHashFailed, err.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// PackageDigest hashes Move.toml and every file under sources/. Each file contributes
// its slash-separated relative path and content hash, in path order, so the digest
// does not depend on where the package lives.
func (h *Hasher) PackageDigest(root string) (domain.PackageDigest, error) {
	files := h.packageFiles(root)

	hasher := xxhash.New()
	for _, rel := range files {
		_, _ = hasher.WriteString(rel)
		_, _ = hasher.Write([]byte{0})

		sum, err := h.ComputeFileHash(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return domain.PackageDigest{}, err
		}
		if err := binary.Write(hasher, binary.LittleEndian, sum); err != nil {
			return domain.PackageDigest{}, zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return domain.NewPackageDigest(fmt.Sprintf("%016x", hasher.Sum64())), nil
}

func (h *Hasher) packageFiles(root string) []string {
	var files []string

	if info, err := os.Stat(domain.ManifestPath(root)); err == nil && !info.IsDir() {
		files = append(files, domain.ManifestFileName)
	}

	for path := range h.walker.WalkFiles(filepath.Join(root, domain.SourcesDirName), nil) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		files = append(files, filepath.ToSlash(rel))
	}

	slices.Sort(files)
	return files
}
