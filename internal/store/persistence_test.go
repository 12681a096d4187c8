package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludolib/notica/internal/model"
)

func newTestPersistence(t *testing.T) (*JSONLPersistence, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, path
}

func TestJSONLPersistence_WritesHeader(t *testing.T) {
	_, path := newTestPersistence(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "notica_schema_version")
}

func TestJSONLPersistence_AppendLoadRoundTrip(t *testing.T) {
	p, _ := newTestPersistence(t)

	a := makeNotification(t, "profile-1", model.PriorityHigh, 100)
	b := makeNotification(t, "profile-2", model.PriorityLow, 200)
	require.NoError(t, p.Append(a))
	require.NoError(t, p.Append(b))

	loaded, err := p.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, a.ID, loaded[0].ID)
	assert.Equal(t, model.PriorityHigh, loaded[0].Priority)
	assert.Equal(t, b.ID, loaded[1].ID)
}

func TestJSONLPersistence_LoadSkipsMalformedLines(t *testing.T) {
	p, path := newTestPersistence(t)
	require.NoError(t, p.Append(makeNotification(t, "profile-1", model.PriorityNormal, 100)))
	require.NoError(t, p.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p2.Close()

	loaded, err := p2.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestJSONLPersistence_LoadRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"notica_schema_version":99,"created_at":1}`+"\n"), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Load()
	assert.ErrorContains(t, err, "unsupported schema version")
}

func TestJSONLPersistence_Rewrite(t *testing.T) {
	p, path := newTestPersistence(t)

	a := makeNotification(t, "profile-1", model.PriorityNormal, 100)
	b := makeNotification(t, "profile-1", model.PriorityNormal, 200)
	require.NoError(t, p.Append(a))
	require.NoError(t, p.Append(b))

	require.NoError(t, p.Rewrite([]model.Notification{b}))

	loaded, err := p.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, b.ID, loaded[0].ID)

	// backup is removed after a successful rewrite
	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
}

func TestJSONLPersistence_ClosedRejectsOperations(t *testing.T) {
	p, _ := newTestPersistence(t)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Append(makeNotification(t, "profile-1", model.PriorityNormal, 100)), ErrPersistenceClosed)
	_, err := p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
	assert.ErrorIs(t, p.Rewrite(nil), ErrPersistenceClosed)
}

func TestStoreWithPersistence_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s := NewStore(p, 0)

	n := makeNotification(t, "profile-1", model.PriorityNormal, 100)
	require.NoError(t, s.Add(n))
	require.NoError(t, s.MarkRead(n.ID))
	require.NoError(t, s.Close())

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s2 := NewStore(p2, 0)
	defer s2.Close()
	require.NoError(t, s2.Hydrate())

	got := s2.Get(n.ID)
	require.NotNil(t, got)
	assert.True(t, got.IsRead())
	assert.Equal(t, 0, s2.UnreadCount("profile-1"))
}

func TestJSONLPersistence_HeaderNotLoadedAsNotification(t *testing.T) {
	p, _ := newTestPersistence(t)

	loaded, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	data, err := os.ReadFile(p.path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}
