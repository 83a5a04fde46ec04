package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"photocopier/internal/app"
	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
	"photocopier/internal/presentation"
	"photocopier/internal/tui"
)

func newCopyCommand(ctx *commandContext) *cobra.Command {
	var flags copyFlags

	cmd := &cobra.Command{
		Use:   "copy [source] [target]",
		Short: "Copy photos from source into an organized target tree",
		Long: "Copy every matching image below source into target, sorted into date and format folders.\n" +
			"Source and target default to the configured source_dir and target_dir.",
		Args: cobra.MaximumNArgs(2),
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

			service := ctx.service(cfg, nil)
			opts := cfg.CopyOptions()
			printer := presentation.Printer{Writer: cmd.OutOrStdout(), Verbose: cfg.Verbose}

			switch {
			case flags.json:
				result, err := service.CopyPhotos(cmd.Context(), opts, nil)
				if err != nil && !appErrors.Is(err, appErrors.Aborted) {
					return err
				}
				if jsonErr := printer.PrintJSON(result); jsonErr != nil {
					return jsonErr
				}
				return copyOutcome(result, err)
			case !flags.plain && isTerminal(os.Stdout):
				return copyInteractive(cmd.Context(), service, opts, cfg.Verbose)
			default:
				return copyPlain(cmd.Context(), service, opts, printer, cmd.ErrOrStderr())
			}
		},
	}

	flags.register(cmd)
	return cmd
}

// copyOutcome maps a printed result to the process exit status.
func copyOutcome(result domain.CopyResult, err error) error {
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	if result.ErrorCount > 0 {
		return &exitError{code: 2, err: errors.Errorf("%d files failed to copy", result.ErrorCount)}
	}
	return nil
}

func copyPlain(ctx context.Context, service *app.Service, opts domain.CopyOptions, printer presentation.Printer, barOut io.Writer) error {
	progress := app.NewProgress()
	snapshots, unsubscribe := progress.Subscribe()
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		renderProgressBar(barOut, snapshots, opts.DryRun)
	}()

	result, err := service.CopyPhotos(ctx, opts, progress)
	unsubscribe()
	<-rendered

	if err != nil && !appErrors.Is(err, appErrors.Aborted) {
		return err
	}
	printer.PrintResult(result)
	return copyOutcome(result, err)
}

// renderProgressBar draws snapshots until the subscription is closed.
func renderProgressBar(w io.Writer, snapshots <-chan domain.ProgressSnapshot, dryRun bool) {
	description := "Copying"
	if dryRun {
		description = "Planning"
	}

	var bar *progressbar.ProgressBar
	for snap := range snapshots {
		switch snap.Status {
		case domain.StateScanning:
			if bar == nil {
				bar = progressbar.NewOptions(-1,
					progressbar.OptionSetWriter(w),
					progressbar.OptionSetDescription("Scanning"),
					progressbar.OptionSpinnerType(14),
					progressbar.OptionClearOnFinish(),
				)
			}
		case domain.StateIdle:
		default:
			if snap.TotalCount == 0 {
				continue
			}
			if bar == nil {
				bar = progressbar.NewOptions(snap.TotalCount,
					progressbar.OptionSetWriter(w),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			if bar.GetMax() != snap.TotalCount {
				bar.ChangeMax(snap.TotalCount)
			}
			bar.Describe(description)
			_ = bar.Set(snap.ProcessedCount)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
}

func copyInteractive(ctx context.Context, service *app.Service, opts domain.CopyOptions, verbose bool) error {
	run := service.StartCopy(ctx, opts)
	snapshots, unsubscribe := run.Progress().Subscribe()
	defer unsubscribe()

	stop := context.AfterFunc(ctx, run.Cancel)
	defer stop()

	wait := func() (domain.CopyResult, error) {
		return run.Wait(context.Background())
	}
	model, err := tui.Run(tui.Config{
		SourceDir: opts.SourceDir,
		TargetDir: opts.TargetDir,
		DryRun:    opts.DryRun,
		Verbose:   verbose,
		Snapshots: snapshots,
		Wait:      wait,
		Cancel:    run.Cancel,
	})
	if err != nil {
		run.Cancel()
		<-run.Done()
		return errors.Errorf("run terminal UI: %w", err)
	}
	if model.Quitting {
		run.Cancel()
		select {
		case <-run.Done():
		default:
			fmt.Fprintln(os.Stderr, "Waiting for in-flight files to finish...")
		}
	}

	result, runErr := wait()
	return copyOutcome(result, runErr)
}
