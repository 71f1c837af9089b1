package taxtable

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultTables embed.FS

// Source produces the full set of tables for one load.
type Source interface {
	Load() ([]*Table, error)
	Describe() string
}

// FSSource reads every *.yaml / *.yml file at the root of an fs.FS.
type FSSource struct {
	FS   fs.FS
	Name string
}

// Embedded returns the tables compiled into the binary.
func Embedded() *FSSource {
	sub, err := fs.Sub(defaultTables, "defaults")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return &FSSource{FS: sub, Name: "embedded"}
}

// Dir returns a source reading tables from a directory on disk.
func Dir(dir string) *FSSource {
	return &FSSource{FS: os.DirFS(dir), Name: dir}
}

// SourceFor picks the directory source when dir is set, embedded otherwise.
func SourceFor(dir string) Source {
	if strings.TrimSpace(dir) == "" {
		return Embedded()
	}
	return Dir(dir)
}

func (s *FSSource) Describe() string {
	return s.Name
}

func (s *FSSource) Load() ([]*Table, error) {
	entries, err := fs.ReadDir(s.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("read tax tables from %s: %w", s.Name, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(s.FS, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		table, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// Parse decodes and validates a single YAML table document.
func Parse(raw []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
