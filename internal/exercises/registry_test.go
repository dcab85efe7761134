package exercises

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/catalog"
)

const builtinYAML = `exercises:
  - id: "4-7-8"
    name: "4-7-8 Breathing"
    steps:
      - {instruction: "Inhale", seconds: 4}
      - {instruction: "Hold", seconds: 7}
      - {instruction: "Exhale", seconds: 8}
  - id: "box"
    name: "Box Breathing"
    steps:
      - {instruction: "Inhale", seconds: 4}
      - {instruction: "Hold", seconds: 4}
`

func builtinFS() fstest.MapFS {
	return fstest.MapFS{"breathing.yaml": &fstest.MapFile{Data: []byte(builtinYAML)}}
}

func writeUserFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Exercise.ID
	}
	return out
}

func TestRegistry_BuiltInOnly(t *testing.T) {
	r, err := NewRegistry(builtinFS(), "")
	require.NoError(t, err)

	require.Equal(t, []string{"4-7-8", "box"}, ids(r.All()))

	ex, ok := r.Get("box")
	require.True(t, ok)
	require.Equal(t, "Box Breathing", ex.Name)

	_, ok = r.Get("missing")
	require.False(t, ok)
}

func TestRegistry_UserOverridesBuiltIn(t *testing.T) {
	dir := t.TempDir()
	writeUserFile(t, dir, "mine.yaml", `exercises:
  - id: "zen"
    steps: [{instruction: "Sit", seconds: 10}]
  - id: "box"
    name: "My Box"
    steps: [{instruction: "In", seconds: 5}]
  - id: "alpha"
    steps: [{instruction: "Go", seconds: 2}]
`)

	r, err := NewRegistry(builtinFS(), dir)
	require.NoError(t, err)

	require.Equal(t, []string{"4-7-8", "box", "alpha", "zen"}, ids(r.All()),
		"overrides keep the built-in slot, user extras follow sorted by id")

	ex, ok := r.Get("box")
	require.True(t, ok)
	require.Equal(t, "My Box", ex.Name)

	require.Equal(t, []string{"4-7-8"}, ids(r.ListBySource(SourceBuiltIn)))
	require.Equal(t, []string{"box", "alpha", "zen"}, ids(r.ListBySource(SourceUser)))
}

func TestRegistry_Reload(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(builtinFS(), dir)
	require.NoError(t, err)
	require.Len(t, r.All(), 2)

	writeUserFile(t, dir, "calm.yaml", calmYAML)
	require.NoError(t, r.Reload())

	_, ok := r.Get("calm")
	require.True(t, ok)
	require.Len(t, r.Exercises(), 3)
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	r, err := NewRegistry(builtinFS(), "")
	require.NoError(t, err)

	all := r.All()
	all[0] = Entry{}
	require.Equal(t, "4-7-8", r.All()[0].Exercise.ID)
}

func TestRegistry_EmbeddedCatalog(t *testing.T) {
	r, err := NewRegistry(catalog.ExercisesFS(), "")
	require.NoError(t, err)

	ex, ok := r.Get("4-7-8")
	require.True(t, ok)
	require.Equal(t, "4-7-8", ex.Pattern())
	require.GreaterOrEqual(t, len(r.All()), 3)
}
