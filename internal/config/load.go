package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Find when no config file exists up to the root.
var ErrNotFound = errors.New("no quibble config found")

// FileNames are looked up in each directory, first match wins.
var FileNames = []string{"quibble.toml", ".quibble.yaml", ".quibble.yml"}

// Find walks up from startDir to locate a config file.
func Find(fs afero.Fs, startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := fs.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := fs.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", errors.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrNotFound
}

// Discover finds and loads the config for startDir, falling back to
// Default when there is none.
func Discover(fs afero.Fs, startDir string) (*Config, error) {
	path, err := Find(fs, startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Load(fs, path)
}

// Load reads and validates the config at path. Unset keys keep their defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("read %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		err = decodeTOML(data, cfg)
	}
	if err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return errors.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	// пустой список не равен отсутствующему ключу
	if meta.IsDefined("lint", "include") && len(cfg.Lint.Include) == 0 {
		return errors.New("lint.include must not be empty")
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return errors.Errorf("encode config: %w", err)
	}
	return nil
}
