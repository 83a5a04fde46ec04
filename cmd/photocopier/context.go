package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"photocopier/internal/app"
	"photocopier/internal/config"
	"photocopier/internal/infra/dialog"
	"photocopier/internal/infra/exif"
	"photocopier/internal/infra/fingerprint"
	fsimpl "photocopier/internal/infra/fs"
	"photocopier/internal/infra/lock"
	"photocopier/internal/logging"
)

type globalFlags struct {
	configPath string
	verbose    bool
	logFormat  string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     config.Config
	configFile string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once and applies the persistent flags on top.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		persistent := cmd.Flags()
		if persistent.Changed("verbose") {
			cfg.Verbose = c.flags.verbose
		}
		if persistent.Changed("log-format") {
			cfg.LogFormat = strings.ToLower(strings.TrimSpace(c.flags.logFormat))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
		c.configFile = path
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg config.Config) logging.Logger {
	return logging.NewWithFormat(os.Stderr, cfg.Verbose, logging.Format(cfg.LogFormat))
}

// service wires the engine to the real filesystem. selector may be nil.
func (c *commandContext) service(cfg config.Config, selector app.DirectorySelector) *app.Service {
	logger := c.logger(cfg)
	if c.configFile != "" {
		logger.Verbosef("Using config file %s", c.configFile)
	}
	return &app.Service{
		FS:            fsimpl.OSFS{},
		Exif:          exif.Reader{},
		Fingerprinter: fingerprint.SHA256{},
		Selector:      selector,
		Locker:        lock.TargetLocker{},
		Logger:        logger,
	}
}

func terminalSelector(in io.Reader, out io.Writer) app.DirectorySelector {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return &dialog.Prompt{In: in, Out: out}
	}
	return dialog.Unavailable{}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
