package ports

import "go.trai.ch/mpkg/internal/core/domain"

// LockStore defines the interface for persisting resolution results.
//
//go:generate mockgen -source=lock_store.go -destination=mocks/mock_lock_store.go -package=mocks
type LockStore interface {
	// Write stores lock next to the root manifest in dir.
	Write(dir string, lock *domain.Lockfile) error

	// Read loads the lock file in dir. Returns nil, nil if there is none.
	Read(dir string) (*domain.Lockfile, error)
}
