// Package lockfile persists resolution results as Move.lock.
package lockfile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockStore = (*Store)(nil)

// Store implements ports.LockStore with a TOML file next to the root manifest.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

type lockDTO struct {
	Version  int          `toml:"version"`
	Root     string       `toml:"root"`
	Mode     string       `toml:"mode"`
	Packages []packageDTO `toml:"package,omitempty"`
}

type packageDTO struct {
	Name         string            `toml:"name"`
	Version      string            `toml:"version"`
	Source       string            `toml:"source"`
	Digest       string            `toml:"digest"`
	Dependencies []string          `toml:"dependencies,omitempty"`
	Addresses    map[string]string `toml:"addresses,omitempty"`
}

// Encode renders lock as TOML. Packages are sorted by name.
func Encode(lock *domain.Lockfile) ([]byte, error) {
	dto := lockDTO{
		Version:  lock.Version,
		Root:     lock.Root,
		Mode:     lock.Mode,
		Packages: make([]packageDTO, 0, len(lock.Packages)),
	}
	for _, p := range lock.Packages {
		deps := slices.Clone(p.Dependencies)
		slices.Sort(deps)
		dto.Packages = append(dto.Packages, packageDTO{
			Name:         p.Name,
			Version:      p.Version,
			Source:       p.Source,
			Digest:       p.Digest,
			Dependencies: deps,
			Addresses:    p.Addresses,
		})
	}
	slices.SortFunc(dto.Packages, func(a, b packageDTO) int {
		return strings.Compare(a.Name, b.Name)
	})

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(dto); err != nil {
		return nil, zerr.Wrap(domain.ErrLockWriteFailed, err.Error())
	}
	return buf.Bytes(), nil
}

// Write replaces dir/Move.lock with lock. The file is renamed into place.
func (s *Store) Write(dir string, lock *domain.Lockfile) error {
	path := filepath.Join(dir, domain.LockFileName)

	data, err := Encode(lock)
	if err != nil {
		return zerr.With(err, "path", path)
	}

	tmp, err := os.CreateTemp(dir, domain.LockFileName+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockWriteFailed, err.Error()), "path", path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Best effort cleanup; gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(domain.ErrLockWriteFailed, err.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockWriteFailed, err.Error()), "path", path)
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockWriteFailed, err.Error()), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockWriteFailed, err.Error()), "path", path)
	}

	return nil
}

// Read loads dir/Move.lock. It returns nil, nil when the file does not exist.
func (s *Store) Read(dir string) (*domain.Lockfile, error) {
	path := filepath.Join(dir, domain.LockFileName)

	var dto lockDTO
	if _, err := toml.DecodeFile(path, &dto); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrLockReadFailed, err.Error()), "path", path)
	}

	if dto.Version != domain.LockfileVersion {
		err := zerr.Wrap(domain.ErrLockReadFailed, "unsupported lock file version")
		err = zerr.With(err, "path", path)
		return nil, zerr.With(err, "version", dto.Version)
	}

	lock := &domain.Lockfile{
		Version:  dto.Version,
		Root:     dto.Root,
		Mode:     dto.Mode,
		Packages: make([]domain.LockedPackage, 0, len(dto.Packages)),
	}
	for _, p := range dto.Packages {
		lock.Packages = append(lock.Packages, domain.LockedPackage{
			Name:         p.Name,
			Version:      p.Version,
			Source:       p.Source,
			Digest:       p.Digest,
			Addresses:    p.Addresses,
			Dependencies: p.Dependencies,
		})
	}
	return lock, nil
}
