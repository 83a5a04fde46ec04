package main

import (
	"strings"

	"github.com/spf13/cobra"

	"photocopier/internal/config"
)

// scanFlags override the scan settings of the loaded configuration.
type scanFlags struct {
	extensions   []string
	exclude      []string
	maxDepth     int
	ignoreHidden bool
	recursive    bool
	useEXIFDate  bool
	json         bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVarP(&f.extensions, "ext", "e", nil, "File extensions to include (default: all supported)")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "Glob patterns, relative to the source, to skip")
	flags.IntVar(&f.maxDepth, "max-depth", 0, "Deepest directory level to descend into (0 = source only)")
	flags.BoolVar(&f.ignoreHidden, "ignore-hidden", true, "Skip entries whose name starts with a dot")
	flags.BoolVarP(&f.recursive, "recursive", "r", true, "Descend into subdirectories")
	flags.BoolVar(&f.useEXIFDate, "exif", true, "Read capture dates from EXIF")
	flags.BoolVar(&f.json, "json", false, "Print machine-readable JSON")
}

func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("ext") {
		cfg.Extensions = trimAll(f.extensions)
	}
	if flags.Changed("exclude") {
		cfg.ExcludePatterns = trimAll(f.exclude)
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	overrideBool(cmd, "ignore-hidden", f.ignoreHidden, &cfg.IgnoreHidden)
	overrideBool(cmd, "recursive", f.recursive, &cfg.Recursive)
	overrideBool(cmd, "exif", f.useEXIFDate, &cfg.UseEXIFDate)
}

// copyFlags add the layout and copy settings to scanFlags.
type copyFlags struct {
	scanFlags

	dateDirs      bool
	useFileDate   bool
	granularity   string
	groupByFormat bool
	flatten       bool
	overwrite     bool
	dryRun        bool
	copyMetadata  bool
	generateHash  bool
	verifyCopy    bool
	workers       int
	plain         bool
}

func (f *copyFlags) register(cmd *cobra.Command) {
	f.scanFlags.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&f.dateDirs, "date-dirs", true, "Create date based folders")
	flags.BoolVar(&f.useFileDate, "use-file-date", true, "Date folders follow the photo date instead of today")
	flags.StringVarP(&f.granularity, "granularity", "g", "", "Date folder granularity: month or year")
	flags.BoolVar(&f.groupByFormat, "group-by-format", false, "Add a folder per file format (JPG, PNG, ...)")
	flags.BoolVar(&f.flatten, "flatten", false, "Drop the source subdirectory from destinations")
	flags.BoolVar(&f.overwrite, "overwrite", false, "Replace files that already exist in the target")
	flags.BoolVarP(&f.dryRun, "dry-run", "n", false, "Report what would be copied without writing")
	flags.BoolVar(&f.copyMetadata, "copy-metadata", true, "Preserve modification times and permissions")
	flags.BoolVar(&f.generateHash, "hash", false, "Record a SHA-256 fingerprint of every copy")
	flags.BoolVar(&f.verifyCopy, "verify", false, "Re-read every copy and compare fingerprints")
	flags.IntVarP(&f.workers, "workers", "w", 0, "Parallel copy workers (0 = number of CPUs)")
	flags.BoolVar(&f.plain, "plain", false, "Use a plain progress bar instead of the interactive view")
}

func (f *copyFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.scanFlags.apply(cmd, cfg)
	flags := cmd.Flags()
	if flags.Changed("granularity") {
		cfg.DateGranularity = strings.ToLower(strings.TrimSpace(f.granularity))
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	overrideBool(cmd, "date-dirs", f.dateDirs, &cfg.CreateDateBasedDir)
	overrideBool(cmd, "use-file-date", f.useFileDate, &cfg.UseFileDate)
	overrideBool(cmd, "group-by-format", f.groupByFormat, &cfg.GroupByFormat)
	overrideBool(cmd, "flatten", f.flatten, &cfg.Flatten)
	overrideBool(cmd, "overwrite", f.overwrite, &cfg.Overwrite)
	overrideBool(cmd, "dry-run", f.dryRun, &cfg.DryRun)
	overrideBool(cmd, "copy-metadata", f.copyMetadata, &cfg.CopyMetadata)
	overrideBool(cmd, "hash", f.generateHash, &cfg.GenerateHash)
	overrideBool(cmd, "verify", f.verifyCopy, &cfg.VerifyCopy)
}

func overrideBool(cmd *cobra.Command, name string, value bool, target *bool) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

// sourceAndTarget fills the directories from positional arguments.
func sourceAndTarget(args []string, cfg *config.Config) error {
	dirs := []*string{&cfg.SourceDir, &cfg.TargetDir}
	for i, arg := range args {
		expanded, err := config.ExpandPath(strings.TrimSpace(arg))
		if err != nil {
			return err
		}
		*dirs[i] = expanded
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
