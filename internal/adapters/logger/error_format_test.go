package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpkg/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, logger.CollectErrorEntriesExported(nil))
	})

	t.Run("stdlib error stops the walk", func(t *testing.T) {
		entries := logger.CollectErrorEntriesExported(errors.New("boom"))
		require.Len(t, entries, 1)
		assert.Equal(t, "boom", entries[0].Message)
		assert.Nil(t, entries[0].Metadata)
	})

	t.Run("zerr chain", func(t *testing.T) {
		err := zerr.With(zerr.Wrap(errors.New("cause"), "outer"), "k", "v")
		entries := logger.CollectErrorEntriesExported(err)
		require.Len(t, entries, 2)
		assert.Equal(t, "outer", entries[0].Message)
		assert.Equal(t, map[string]any{"k": "v"}, entries[0].Metadata)
		assert.Equal(t, "cause", entries[1].Message)
	})

	t.Run("metadata on an empty level moves to the next message", func(t *testing.T) {
		err := zerr.With(errors.New("disk full"), "path", "/tmp/x")
		entries := logger.CollectErrorEntriesExported(err)
		require.Len(t, entries, 1)
		assert.Equal(t, "disk full", entries[0].Message)
		assert.Equal(t, map[string]any{"path": "/tmp/x"}, entries[0].Metadata)
	})
}

func TestFormatErrorEntries(t *testing.T) {
	got := logger.FormatErrorEntriesExported([]logger.ErrorEntry{
		{Message: "failed to resolve", Metadata: map[string]any{"package": "App", "dependency": "Std"}},
		{Message: "multi\nline", Metadata: map[string]any{"values": []string{"0x1", "0x2"}}},
		{Message: "root cause"},
	})

	want := "Error: failed to resolve\n" +
		"       dependency: Std\n" +
		"       package: App\n" +
		"\n" +
		"  Caused by:\n" +
		"    → multi\n" +
		"      line\n" +
		"      values: 0x1, 0x2\n" +
		"    → root cause"
	assert.Equal(t, want, got)
}

func TestFormatErrorEntries_Empty(t *testing.T) {
	assert.Empty(t, logger.FormatErrorEntriesExported(nil))
}
