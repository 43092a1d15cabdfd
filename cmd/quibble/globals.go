package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/config"
)

// resolveColor decides whether output to w is coloured. Auto means w is a
// terminal and NO_COLOR is unset.
func resolveColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		f, ok := w.(*os.File)
		return ok && isTerminal(f) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, errors.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

// applyColor sets the process-wide default of fatih/color.
func applyColor(on bool) {
	color.NoColor = !on
}

func newLogger(w io.Writer, level string, verbose, colorOn bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), errors.Errorf("invalid --log-level: %w", err)
	}
	if verbose && lvl > zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !colorOn, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// loadConfig resolves the config for target: --config when given,
// otherwise the nearest config file above target, otherwise the defaults.
func loadConfig(cmd *cobra.Command, fsys afero.Fs, target string) (*config.Config, error) {
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if explicit != "" {
		cfg, err = config.Load(fsys, explicit)
	} else {
		start := target
		if abs, absErr := filepath.Abs(target); absErr == nil {
			start = abs
		}
		cfg, err = config.Discover(fsys, start)
	}
	if err != nil {
		return nil, err
	}
	loggerFrom(cmd).Debug().Str("config", cfg.Path).Msg("config resolved")
	return cfg, nil
}

func flagBool(cmd *cobra.Command, name string) (bool, error) {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, errors.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}

func flagInt(cmd *cobra.Command, name string) (int, error) {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, errors.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}

func flagString(cmd *cobra.Command, name string) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", errors.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}
