package main

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/config"
	"quibble/internal/lsp"
	"quibble/internal/version"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runLSP,
	}
}

func runLSP(cmd *cobra.Command, _ []string) error {
	fsys := afero.NewOsFs()
	opts := lsp.ServerOptions{Fs: fsys, Version: version.Version}
	maxDiags, err := flagInt(cmd, "max-diagnostics")
	if err != nil {
		return err
	}
	opts.MaxDiagnostics = maxDiags
	explicit, err := flagString(cmd, "config")
	if err != nil {
		return err
	}
	if explicit != "" {
		cfg, err := config.Load(fsys, explicit)
		if err != nil {
			return err
		}
		opts.Config = cfg
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, opts)
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		return err
	}
	return nil
}
