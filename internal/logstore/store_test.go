package logstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jdelaney/gopoly/pkg/types"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func entry(n int) types.LogEntry {
	return types.LogEntry{
		ID:        fmt.Sprintf("e%03d", n),
		PlayerID:  "p1",
		Type:      "roll",
		Message:   fmt.Sprintf("event %d", n),
		Timestamp: time.Unix(int64(1700000000+n), 0).UTC(),
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestAppendAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, "r1", entry(i)))
	}
	require.NoError(t, s.Append(ctx, "r2", entry(99)))

	got, err := s.Recent(ctx, "r1", 10)
	require.NoError(t, err)
	require.Len(t, got, 5, "other rooms must not leak in")
	require.Equal(t, "e000", got[0].ID, "oldest first")
	require.Equal(t, "e004", got[4].ID)
	require.Equal(t, "event 4", got[4].Message)
	require.Equal(t, entry(4).Timestamp, got[4].Timestamp)
}

func TestRecent_ReturnsNewestWindow(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Append(ctx, "r1", entry(i)))
	}

	got, err := s.Recent(ctx, "r1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "e017", got[0].ID)
	require.Equal(t, "e019", got[2].ID)
}

func TestAppend_DuplicateIDIsNoOp(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	first := entry(1)
	require.NoError(t, s.Append(ctx, "r1", first))

	// A resync replays the same entries; the archive must not duplicate.
	replayed := first
	replayed.Message = "rewritten"
	require.NoError(t, s.Append(ctx, "r1", replayed))

	got, err := s.Recent(ctx, "r1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, first.Message, got[0].Message, "first write wins")
}

func TestAppend_RejectsEmptyID(t *testing.T) {
	s := openTemp(t)
	err := s.Append(context.Background(), "r1", types.LogEntry{Message: "anonymous"})
	require.Error(t, err)
}
