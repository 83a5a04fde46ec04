package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"photocopier/internal/app"
)

func newSelectDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select-dir",
		Short: "Ask for a directory and print its absolute path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			selector := terminalSelector(cmd.InOrStdin(), cmd.ErrOrStderr())
			path := ctx.service(cfg, selector).SelectDirectory(cmd.Context())
			if strings.HasPrefix(path, app.SelectionErrorPrefix) {
				return errors.New(strings.TrimSpace(strings.TrimPrefix(path, app.SelectionErrorPrefix)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
