package exercises

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/breathe/internal/breathing/domain"
	"github.com/zjrosen/breathe/internal/log"
)

// Entry is a loaded exercise together with its origin.
type Entry struct {
	Exercise *domain.Exercise
	Source   Source
	FilePath string // file the exercise came from (relative to its filesystem)
}

// exerciseFile is the on-disk format: a YAML document with an exercises list.
type exerciseFile struct {
	Exercises []domain.Exercise `yaml:"exercises"`
}

// LoadFromFS loads every *.yaml and *.yml file at the root of fsys.
// Files that fail to parse and exercises that fail validation are skipped
// with a WARN; only a failure to list the directory is returned as an error.
// Entries keep file order (files sorted by name) and, within a file, list order.
func LoadFromFS(fsys fs.FS, source Source) ([]Entry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing exercise files: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !isExerciseFile(e.Name()) {
			continue
		}
		loaded, err := loadFile(fsys, e.Name(), source)
		if err != nil {
			log.Warn(log.CatRegistry, "Skipping exercise file", "file", e.Name(), "source", source.String(), "error", err.Error())
			continue
		}
		out = append(out, loaded...)
	}
	return out, nil
}

// LoadFromDir loads user exercises from dir. A missing directory yields no
// exercises and no error.
func LoadFromDir(dir string) ([]Entry, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return LoadFromFS(os.DirFS(dir), SourceUser)
}

func isExerciseFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func loadFile(fsys fs.FS, name string, source Source) ([]Entry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	var doc exerciseFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	var out []Entry
	for i := range doc.Exercises {
		ex := doc.Exercises[i]
		if strings.TrimSpace(ex.ID) == "" {
			log.Warn(log.CatRegistry, "Skipping exercise without id", "file", name, "index", i)
			continue
		}
		if err := ex.Validate(); err != nil {
			log.Warn(log.CatRegistry, "Skipping invalid exercise", "file", name, "id", ex.ID, "error", err.Error())
			continue
		}
		if ex.Name == "" {
			ex.Name = ex.ID
		}
		out = append(out, Entry{Exercise: &ex, Source: source, FilePath: name})
	}
	return out, nil
}
