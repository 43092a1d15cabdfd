package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default quibble.toml",
		Long: `Create quibble.toml with the default settings in [dir], or in the current
directory when omitted. The directory is created if needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing quibble.toml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	force, err := flagBool(cmd, "force")
	if err != nil {
		return err
	}
	path, err := config.WriteDefault(afero.NewOsFs(), dir, force)
	if err != nil {
		if errors.Is(err, config.ErrExists) {
			return errors.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return err
}
