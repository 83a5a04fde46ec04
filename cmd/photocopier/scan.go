package main

import (
	"github.com/spf13/cobra"

	"photocopier/internal/config"
	"photocopier/internal/presentation"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan [source]",
		Short: "List the image files a copy would pick up",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if err := sourceAndTarget(args, &cfg); err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := cfg.ScanOptions()
			files, err := ctx.service(cfg, nil).ScanImageFiles(cmd.Context(), opts)
			if err != nil {
				return err
			}

			printer := presentation.Printer{Writer: cmd.OutOrStdout(), Verbose: cfg.Verbose}
			if flags.json {
				return printer.PrintJSON(map[string]any{"files": files, "count": len(files)})
			}
			printer.PrintScan(opts.SourceDir, files)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newExtensionsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "extensions",
		Short:       "List the supported image extensions",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			service := ctx.service(config.Default(), nil)
			printer := presentation.Printer{Writer: cmd.OutOrStdout()}
			if asJSON {
				return printer.PrintJSON(service.ListSupportedExtensions())
			}
			printer.PrintExtensions(service.ListSupportedExtensions())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}
