package job

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"datarec/core/errors"
)

// Dir is a directory of job files.
type Dir string

// List returns the job names in the directory, sorted.
func (d Dir) List() ([]string, error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, strings.TrimSuffix(e.Name(), ext))
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Path returns the file of the named job.
func (d Dir) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.NewNotFoundError("job", name)
	}
	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(string(d), name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.NewNotFoundError("job", name)
}

// Load reads the named job.
func (d Dir) Load(name string) (*Job, error) {
	p, err := d.Path(name)
	if err != nil {
		return nil, err
	}
	return Load(p)
}
