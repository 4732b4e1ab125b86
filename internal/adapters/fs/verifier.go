package fs

import (
	"strings"

	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier checks package contents against pinned digests.
type Verifier struct {
	hasher ports.Hasher
}

// NewVerifier creates a new Verifier computing digests with hasher.
func NewVerifier(hasher ports.Hasher) *Verifier {
	return &Verifier{hasher: hasher}
}

// VerifyDigest computes the digest of root and compares it case-insensitively with expected.
func (v *Verifier) VerifyDigest(root string, expected domain.PackageDigest) (domain.PackageDigest, error) {
	actual, err := v.hasher.PackageDigest(root)
	if err != nil {
		return domain.PackageDigest{}, err
	}

	if !strings.EqualFold(actual.String(), expected.String()) {
		err := zerr.Wrap(domain.ErrDigestMismatch, "package content does not match the pinned digest")
		err = zerr.With(err, "expected", expected.String())
		err = zerr.With(err, "actual", actual.String())
		return actual, zerr.With(err, "root", root)
	}

	return actual, nil
}
