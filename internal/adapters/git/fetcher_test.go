package git_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpkg/internal/adapters/git"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newFetcher(t *testing.T, cacheDir string) *git.Fetcher {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return git.NewFetcher(cacheDir, mockLogger)
}

// initRepo creates a repository at dir with one commit per content and returns the commit hashes.
func initRepo(t *testing.T, dir string, contents ...string) []plumbing.Hash {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	var hashes []plumbing.Hash
	for i, content := range contents {
		pkgDir := filepath.Join(dir, "pkg")
		require.NoError(t, os.MkdirAll(pkgDir, domain.DirPerm))
		require.NoError(t, os.WriteFile(filepath.Join(pkgDir, domain.ManifestFileName), []byte(content), domain.FilePerm))

		_, err = wt.Add("pkg/" + domain.ManifestFileName)
		require.NoError(t, err)

		hash, err := wt.Commit("commit", &gogit.CommitOptions{
			Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(int64(1700000000+i), 0)},
		})
		require.NoError(t, err)
		hashes = append(hashes, hash)
	}

	_, err = repo.CreateTag("v1.0.0", hashes[0], nil)
	require.NoError(t, err)

	return hashes
}

func readManifest(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(domain.ManifestPath(dir))
	require.NoError(t, err)
	return string(data)
}

func TestCheckoutDir(t *testing.T) {
	got := git.CheckoutDir("/cache", "https://github.com/move-language/move.git", "v1.0.0")
	assert.Equal(t, filepath.Join("/cache", "git", "github.com_move-language_move@v1.0.0"), got)
}

func TestFetcher_ReusesExistingCheckout(t *testing.T) {
	cacheDir := t.TempDir()
	url := "https://example.com/std.git"
	dir := git.CheckoutDir(cacheDir, url, "v1.0.0")
	initRepo(t, dir, "first", "second")

	fetcher := newFetcher(t, cacheDir)
	got, err := fetcher.Fetch(t.Context(), domain.LocateRequest{
		Name: domain.NewPackageName("Std"),
		Kind: domain.GitDependency{URL: url, Rev: "v1.0.0", Subdir: domain.NewFileName("pkg")},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pkg"), got)
	assert.Equal(t, "first", readManifest(t, got), "tag must be checked out")
}

func TestFetcher_ChecksOutCommitHash(t *testing.T) {
	cacheDir := t.TempDir()
	url := "https://example.com/std.git"

	// The checkout for the hash is seeded by hand so no transport is needed.
	seed := t.TempDir()
	hashes := initRepo(t, seed, "first", "second")
	rev := hashes[0].String()
	dir := git.CheckoutDir(cacheDir, url, rev)
	require.NoError(t, os.MkdirAll(filepath.Dir(dir), domain.DirPerm))
	require.NoError(t, os.Rename(seed, dir))

	got, err := newFetcher(t, cacheDir).Fetch(t.Context(), domain.LocateRequest{
		Name: domain.NewPackageName("Std"),
		Kind: domain.GitDependency{URL: url, Rev: rev, Subdir: domain.NewFileName("pkg")},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", readManifest(t, got))
}

func TestFetcher_UnknownRevision(t *testing.T) {
	cacheDir := t.TempDir()
	url := "https://example.com/std.git"
	initRepo(t, git.CheckoutDir(cacheDir, url, "nope"), "first")

	_, err := newFetcher(t, cacheDir).Fetch(t.Context(), domain.LocateRequest{
		Name: domain.NewPackageName("Std"),
		Kind: domain.GitDependency{URL: url, Rev: "nope", Subdir: domain.NewFileName(".")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetchFailed))
}

func TestFetcher_ClonesLocalRepository(t *testing.T) {
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git is not installed")
		}
	}

	origin := t.TempDir()
	initRepo(t, origin, "first", "second")

	cacheDir := t.TempDir()
	fetcher := newFetcher(t, cacheDir)
	req := domain.LocateRequest{
		Name: domain.NewPackageName("Std"),
		Kind: domain.GitDependency{URL: origin, Rev: "master", Subdir: domain.NewFileName("pkg")},
	}

	got, err := fetcher.Fetch(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "second", readManifest(t, got))

	again, err := fetcher.Fetch(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFetcher_CloneFailureLeavesNoCheckout(t *testing.T) {
	cacheDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := newFetcher(t, cacheDir).Fetch(t.Context(), domain.LocateRequest{
		Name: domain.NewPackageName("Std"),
		Kind: domain.GitDependency{URL: missing, Rev: "main", Subdir: domain.NewFileName(".")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetchFailed))

	_, statErr := os.Stat(git.CheckoutDir(cacheDir, missing, "main"))
	assert.True(t, os.IsNotExist(statErr))
}
