package exercises

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

const calmYAML = `exercises:
  - id: "calm"
    name: "Calm"
    description: "A short calming cycle"
    steps:
      - instruction: "Inhale"
        seconds: 3
      - instruction: "Exhale"
        seconds: 5
    benefits:
      - "Feels nice"
`

func TestLoadFromFS_ParsesExercises(t *testing.T) {
	fsys := fstest.MapFS{
		"calm.yaml": &fstest.MapFile{Data: []byte(calmYAML)},
	}

	entries, err := LoadFromFS(fsys, SourceUser)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	require.Equal(t, SourceUser, e.Source)
	require.Equal(t, "calm.yaml", e.FilePath)
	require.Equal(t, "calm", e.Exercise.ID)
	require.Equal(t, "Calm", e.Exercise.Name)
	require.Len(t, e.Exercise.Steps, 2)
	require.Equal(t, "Exhale", e.Exercise.Steps[1].Instruction)
	require.Equal(t, 5, e.Exercise.Steps[1].Seconds)
	require.Equal(t, []string{"Feels nice"}, e.Exercise.Benefits)
}

func TestLoadFromFS_SkipsInvalidEntries(t *testing.T) {
	fsys := fstest.MapFS{
		"mixed.yaml": &fstest.MapFile{Data: []byte(`exercises:
  - id: "no-steps"
    name: "No Steps"
  - name: "No ID"
    steps:
      - instruction: "Inhale"
        seconds: 4
  - id: "zero"
    steps:
      - instruction: "Inhale"
        seconds: 0
  - id: "ok"
    steps:
      - instruction: "Inhale"
        seconds: 4
`)},
		"broken.yaml": &fstest.MapFile{Data: []byte("exercises: [unterminated")},
		"notes.txt":   &fstest.MapFile{Data: []byte("not yaml")},
	}

	entries, err := LoadFromFS(fsys, SourceUser)
	require.NoError(t, err, "bad files are skipped, not fatal")
	require.Len(t, entries, 1)
	require.Equal(t, "ok", entries[0].Exercise.ID)
	require.Equal(t, "ok", entries[0].Exercise.Name, "name defaults to id")
}

func TestLoadFromFS_AcceptsYmlExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"calm.YML": &fstest.MapFile{Data: []byte(calmYAML)},
	}
	entries, err := LoadFromFS(fsys, SourceUser)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadFromDir_MissingDirectory(t *testing.T) {
	entries, err := LoadFromDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Nil(t, entries)

	entries, err = LoadFromDir("")
	require.NoError(t, err)
	require.Nil(t, entries)
}

func TestLoadFromDir_ReadsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calm.yaml"), []byte(calmYAML), 0600))

	entries, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, SourceUser, entries[0].Source)
}

func TestSource_String(t *testing.T) {
	require.Equal(t, "built-in", SourceBuiltIn.String())
	require.Equal(t, "user", SourceUser.String())
	require.Equal(t, "unknown", Source(42).String())
}
