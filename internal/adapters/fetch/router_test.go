package fetch_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpkg/internal/adapters/fetch"
	"go.trai.ch/mpkg/internal/adapters/fs"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestRouter_DispatchesByKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := mocks.NewMockPackageFetcher(ctrl)
	git := mocks.NewMockPackageFetcher(ctrl)
	node := mocks.NewMockPackageFetcher(ctrl)

	router := &fetch.Router{Local: local, Git: git, Node: node}

	localReq := domain.LocateRequest{Name: domain.NewPackageName("A"), Kind: domain.LocalDependency{Path: domain.NewFileName("/a")}}
	gitReq := domain.LocateRequest{Name: domain.NewPackageName("B"), Kind: domain.GitDependency{URL: "u", Rev: "r"}}
	nodeReq := domain.LocateRequest{Name: domain.NewPackageName("C"), Kind: domain.CustomDependency{NodeURL: "file:///n"}}

	local.EXPECT().Fetch(gomock.Any(), localReq).Return("/a", nil)
	git.EXPECT().Fetch(gomock.Any(), gitReq).Return("/b", nil)
	node.EXPECT().Fetch(gomock.Any(), nodeReq).Return("/c", nil)

	for req, want := range map[*domain.LocateRequest]string{&localReq: "/a", &gitReq: "/b", &nodeReq: "/c"} {
		got, err := router.Fetch(t.Context(), *req)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRouter_MissingFetcher(t *testing.T) {
	_, err := (&fetch.Router{}).Fetch(t.Context(), domain.LocateRequest{
		Name: domain.NewPackageName("A"),
		Kind: domain.LocalDependency{Path: domain.NewFileName("/a")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidDependency))
}

func TestFactory_New(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	nodeRoot := t.TempDir()
	pkgDir := filepath.Join(nodeRoot, "0x1", "Std")
	require.NoError(t, os.MkdirAll(pkgDir, domain.DirPerm))

	settings := domain.DefaultSettings()
	settings.CacheDir = t.TempDir()

	fetcher, err := fetch.NewFactory(mockLogger, fs.NewLocalFetcher()).New(settings)
	require.NoError(t, err)

	got, err := fetcher.Fetch(t.Context(), domain.LocateRequest{
		Name: domain.NewPackageName("Std"),
		Kind: domain.CustomDependency{
			NodeURL:        "file://" + filepath.ToSlash(nodeRoot),
			PackageAddress: "0x1",
			PackageName:    domain.NewPackageName("Std"),
			Subdir:         domain.NewFileName("."),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, pkgDir, got)

	_, err = fetcher.Fetch(t.Context(), domain.LocateRequest{
		Name: domain.NewPackageName("Std"),
		Kind: domain.CustomDependency{NodeURL: "ipfs://cid", PackageAddress: "0x1", PackageName: domain.NewPackageName("Std")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownNodeResolver))
}

func TestFactory_New_InvalidKind(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.NodeResolvers = map[string]domain.NodeResolverKind{"ipfs": "swarm"}

	_, err := fetch.NewFactory(nil, fs.NewLocalFetcher()).New(settings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSettings))
}
