package ports

import "go.trai.ch/mpkg/internal/core/domain"

// Hasher defines the interface for computing package digests.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// PackageDigest hashes the manifest and sources of the package rooted at root.
	PackageDigest(root string) (domain.PackageDigest, error)
}
