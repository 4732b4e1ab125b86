package ports

import "go.trai.ch/mpkg/internal/core/domain"

// Verifier checks fetched content against a pinned digest.
//
//go:generate mockgen -destination=mocks/verifier_mock.go -package=mocks -source=verifier.go
type Verifier interface {
	// VerifyDigest returns the actual digest of root, or ErrDigestMismatch when it differs from expected.
	VerifyDigest(root string, expected domain.PackageDigest) (domain.PackageDigest, error)
}
