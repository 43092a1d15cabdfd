package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/config"
	"quibble/internal/parser"
)

// Discover lists the lintable files under root, sorted. A root that is a
// file is returned as is when its language is supported, whatever the
// include patterns say.
func Discover(ctx context.Context, fsys afero.Fs, root string, cfg *config.Config) ([]string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, errors.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if !parser.Supported(root) {
			return nil, errors.Errorf("%w: %s", parser.ErrUnsupportedLanguage, root)
		}
		return []string{root}, nil
	}

	logger := zerolog.Ctx(ctx)
	var files []string
	err = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if ignored(cfg.Lint.Ignore, rel+"/") {
				logger.Debug().Str("dir", rel).Msg("skip ignored directory")
				return filepath.SkipDir
			}
			return nil
		}
		if !parser.Supported(path) || ignored(cfg.Lint.Ignore, rel) || !matchAny(cfg.Lint.Include, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walk %s: %w", root, err)
	}

	// детерминированный порядок
	sort.Strings(files)
	logger.Debug().Str("root", root).Int("files", len(files)).Msg("discovered files")
	return files, nil
}

func ignored(patterns []string, rel string) bool {
	if matchAny(patterns, rel) {
		return true
	}
	// "dir/**" should prune dir itself
	return strings.HasSuffix(rel, "/") && matchAny(patterns, rel+"_")
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
