package response

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidName is returned when a response name cannot be used as a file name.
var ErrInvalidName = errors.New("invalid response name")

// Document is the config-shaped file written for each saved response.
type Document struct {
	Responses map[string]*Response `yaml:"responses"`
}

// Save writes resp to <dir>/<name>.yaml.
func Save(dir, name string, resp *Response) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating response dir: %w", err)
	}

	doc := Document{Responses: map[string]*Response{name: resp}}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding response %s: %w", name, err)
	}

	path := filepath.Join(dir, name+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing response %s: %w", name, err)
	}
	return nil
}

// Load reads every *.yaml file in dir and merges their responses. Files are
// read in lexical order, so a later file wins on a name collision. A missing
// directory yields an empty map.
func Load(dir string) (map[string]*Response, error) {
	out := make(map[string]*Response)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("reading response dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		for name, r := range doc.Responses {
			if r == nil {
				continue
			}
			out[name] = r
		}
	}

	return out, nil
}

// LoadStore builds a Store from the responses saved in dir.
func LoadStore(dir string) (*Store, error) {
	responses, err := Load(dir)
	if err != nil {
		return nil, err
	}
	s := NewStore()
	for name, r := range responses {
		s.Put(name, r)
	}
	return s, nil
}
