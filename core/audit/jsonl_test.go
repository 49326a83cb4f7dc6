package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/model"
)

func TestJSONLStore_AppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	store, err := NewJSONLStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	first := NewRecord(testReport(), "api", 0, nil)
	second := first
	second.ID = "second"
	second.Trigger = "cli"
	second.Timestamp = first.Timestamp.Add(time.Hour)
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	// garbage lines are ignored
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, _ = f.WriteString("not json\n")
	_ = f.Close()

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cli, err := store.Query(ctx, Query{Trigger: "cli"})
	require.NoError(t, err)
	require.Len(t, cli, 1)
	assert.Equal(t, "second", cli[0].ID)

	late, err := store.Query(ctx, Query{Start: first.Timestamp.Add(time.Minute), Scope: model.ScopeDowntown})
	require.NoError(t, err)
	assert.Len(t, late, 1)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rec := NewRecord(testReport(), "snapshot", 0, nil)
	for i := 0; i < 100; i++ {
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(path + "*")
	assert.NotEmpty(t, files)
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rec := NewRecord(testReport(), "snapshot", 0, nil)
	require.NoError(t, store.Append(context.Background(), rec))
	out, err := store.Query(context.Background(), Query{Cycle: "2023-2025"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, rec.ID, out[0].ID)
}
