package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultTOML is written by `quibble init`.
const DefaultTOML = `# quibble configuration

[lint]
include = ["**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts,vue,html,htm}"]
ignore = ["**/node_modules/**", "**/dist/**"]
# false parses .vue files without template support
template = true

[rules.no-excessive-whitespace]
severity = "warn" # off | info | warn | error
callees = ["classnames", "clsx", "ctl", "cva", "tv"]
class-regex = "^class(Name)?$"
`

// ErrExists is returned by WriteDefault when the target already exists.
var ErrExists = errors.New("config already exists")

// WriteDefault creates dir/quibble.toml unless it exists and force is false.
func WriteDefault(fs afero.Fs, dir string, force bool) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileNames[0])
	if !force {
		if _, err := fs.Stat(path); err == nil {
			return path, errors.Errorf("%w: %s", ErrExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", errors.Errorf("stat %s: %w", path, err)
		}
	}
	if err := afero.WriteFile(fs, path, []byte(DefaultTOML), 0o644); err != nil {
		return "", errors.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
