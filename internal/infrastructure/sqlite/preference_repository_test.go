package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/internal/preferences/domain"
)

func newTestRepo(t *testing.T) *preferenceRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "breathe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := newPreferenceRepository(db.Connection())
	repo.now = func() time.Time { return time.Unix(1760400000, 0) }
	return repo
}

func TestPreferenceRepository_GetBeforeSave(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get()
	var notFound *domain.PreferencesNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPreferenceRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	p := domain.New("box", 45).WithChannel("rain", true).WithChannel("ocean", false)
	require.NoError(t, repo.Save(p))

	got, err := repo.Get()
	require.NoError(t, err)
	require.Equal(t, "box", got.LastExercise)
	require.Equal(t, 45, got.MasterVolume)
	require.Equal(t, map[string]bool{"rain": true, "ocean": false}, got.Channels)
	require.Equal(t, time.Unix(1760400000, 0), got.UpdatedAt)
}

func TestPreferenceRepository_SaveReplaces(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Save(domain.New("box", 45).WithChannel("rain", false).WithChannel("forest", true)))
	require.NoError(t, repo.Save(domain.New("4-7-8", 80).WithChannel("ocean", true)))

	got, err := repo.Get()
	require.NoError(t, err)
	require.Equal(t, "4-7-8", got.LastExercise)
	require.Equal(t, 80, got.MasterVolume)
	require.Equal(t, map[string]bool{"ocean": true}, got.Channels, "channels from the previous save are dropped")
}

func TestPreferenceRepository_ClampsVolume(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Save(domain.Preferences{LastExercise: "box", MasterVolume: 300}))

	got, err := repo.Get()
	require.NoError(t, err)
	require.Equal(t, 100, got.MasterVolume)
	require.Empty(t, got.Channels)
}

func TestDB_PreferencesRepository(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "breathe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := db.Preferences()
	require.NoError(t, repo.Save(domain.New("coherent", 30)))

	got, err := repo.Get()
	require.NoError(t, err)
	require.Equal(t, "coherent", got.LastExercise)
}
