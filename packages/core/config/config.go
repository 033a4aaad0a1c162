package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/apictl/packages/core/env"
	"github.com/abdul-hamid-achik/apictl/packages/core/runner"
	"github.com/abdul-hamid-achik/apictl/packages/request"
	"github.com/abdul-hamid-achik/apictl/packages/response"
)

// ErrConfigNotFound is returned when the config path does not exist.
var ErrConfigNotFound = errors.New("config not found")

// Config is the merged content of one or more config files.
type Config struct {
	Contexts map[string]env.Context `yaml:"contexts,omitempty"`
	Requests request.Set            `yaml:"requests,omitempty"`
	Tests    runner.Set             `yaml:"tests,omitempty"`

	// Files lists the files that were read, in load order.
	Files []string `yaml:"-"`
}

// New returns an empty config.
func New() *Config {
	return &Config{
		Contexts: make(map[string]env.Context),
		Requests: make(request.Set),
		Tests:    make(runner.Set),
	}
}

// Load reads path, which may be a file or a directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile reads a single config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Files = []string{path}
	return cfg, nil
}

// LoadDir reads every YAML file directly inside dir and merges them.
func LoadDir(dir string) (*Config, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config dir: %w", err)
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

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no yaml files in %s", ErrConfigNotFound, dir)
	}

	cfg := New()
	for _, f := range files {
		next, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		cfg.Merge(next)
	}
	return cfg, nil
}

// Parse decodes a single YAML document. Missing sections are left empty.
func Parse(data []byte) (*Config, error) {
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]env.Context)
	}
	if cfg.Requests == nil {
		cfg.Requests = make(request.Set)
	}
	if cfg.Tests == nil {
		cfg.Tests = make(runner.Set)
	}
	return cfg, nil
}

// Merge copies other into c. Definitions in other replace those in c with
// the same name.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	for name, ctx := range other.Contexts {
		c.Contexts[name] = ctx
	}
	c.Requests.Merge(other.Requests)
	c.Tests.Merge(other.Tests)
	c.Files = append(c.Files, other.Files...)
}

// BaseDir is the directory relative file paths in requests and asserts
// resolve against: path itself when it is a directory, else its parent.
func BaseDir(path string) string {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

// ContextNames returns the defined context names in sorted order.
func (c *Config) ContextNames() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Context merges the named contexts on top of base, which may be nil.
func (c *Config) Context(base env.Context, names ...string) (env.Context, error) {
	named, err := env.MergeNamed(c.Contexts, names...)
	if err != nil {
		return nil, err
	}
	return env.Merge(base, named), nil
}

// Marshal encodes c as a single YAML document.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ResponsesDir is where saved responses live under the cache directory.
func ResponsesDir(cacheDir string) string {
	return filepath.Join(cacheDir, "responses")
}

// LoadResponses reads the saved responses under cacheDir, creating the
// directory when it does not exist yet.
func LoadResponses(cacheDir string) (*response.Store, error) {
	dir := ResponsesDir(cacheDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return response.LoadStore(dir)
}

// SaveResponse writes resp to the cache under name.
func SaveResponse(cacheDir, name string, resp *response.Response) error {
	return response.Save(ResponsesDir(cacheDir), name, resp)
}
