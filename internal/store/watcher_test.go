package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ludolib/notica/internal/model"
)

func TestFileWatcher_RehydratesOnExternalAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s := NewStore(p, 0)
	defer s.Close()

	w, err := NewFileWatcher(s, path)
	require.NoError(t, err)
	w.delay = time.Millisecond
	require.NoError(t, w.Start())
	defer w.Stop()

	// a second process appending to the same history file
	ext, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer ext.Close()

	a := makeNotification(t, "profile-1", model.PriorityNormal, 100)
	b := makeNotification(t, "profile-1", model.PriorityHigh, 200)
	require.NoError(t, ext.Append(a))
	require.NoError(t, ext.Append(b))

	require.Eventually(t, func() bool {
		return s.Get(a.ID) != nil && s.Get(b.ID) != nil
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 2, s.Count())
}

func TestFileWatcher_StartAndStopTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	s := NewStore(nil, 0)
	defer s.Close()

	w, err := NewFileWatcher(s, path)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
