package config

import (
	"bytes"
	_ "embed"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
	"photocopier/internal/logging"
)

//go:embed sample_config.toml
var sampleConfig string

// API configures the HTTP server started by the serve command.
type API struct {
	Bind         string   `toml:"bind" yaml:"bind"`
	AllowOrigins []string `toml:"allow_origins" yaml:"allow_origins"`
}

type Config struct {
	SourceDir       string   `toml:"source_dir" yaml:"source_dir"`
	TargetDir       string   `toml:"target_dir" yaml:"target_dir"`
	Extensions      []string `toml:"extensions" yaml:"extensions"`
	IgnoreHidden    bool     `toml:"ignore_hidden" yaml:"ignore_hidden"`
	Recursive       bool     `toml:"recursive" yaml:"recursive"`
	MaxDepth        int      `toml:"max_depth" yaml:"max_depth"`
	ExcludePatterns []string `toml:"exclude" yaml:"exclude"`
	UseEXIFDate     bool     `toml:"use_exif_date" yaml:"use_exif_date"`

	CreateDateBasedDir bool   `toml:"date_dirs" yaml:"date_dirs"`
	UseFileDate        bool   `toml:"use_file_date" yaml:"use_file_date"`
	DateGranularity    string `toml:"date_granularity" yaml:"date_granularity"`
	GroupByFormat      bool   `toml:"group_by_format" yaml:"group_by_format"`
	Overwrite          bool   `toml:"overwrite" yaml:"overwrite"`
	DryRun             bool   `toml:"dry_run" yaml:"dry_run"`
	CopyMetadata       bool   `toml:"copy_metadata" yaml:"copy_metadata"`
	GenerateHash       bool   `toml:"generate_hash" yaml:"generate_hash"`
	VerifyCopy         bool   `toml:"verify_copy" yaml:"verify_copy"`
	Flatten            bool   `toml:"flatten" yaml:"flatten"`
	Workers            int    `toml:"workers" yaml:"workers"`

	Verbose   bool   `toml:"verbose" yaml:"verbose"`
	LogFormat string `toml:"log_format" yaml:"log_format"`

	API API `toml:"api" yaml:"api"`
}

func Default() Config {
	return Config{
		Extensions:         domain.SupportedExtensions(),
		IgnoreHidden:       true,
		Recursive:          true,
		MaxDepth:           5,
		UseEXIFDate:        true,
		CreateDateBasedDir: true,
		UseFileDate:        true,
		DateGranularity:    string(domain.GranularityMonth),
		CopyMetadata:       true,
		LogFormat:          string(logging.FormatConsole),
		API: API{
			Bind:         "127.0.0.1:7480",
			AllowOrigins: []string{"http://localhost:5173"},
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	return ExpandPath("~/.config/photocopier/config.toml")
}

// Load reads defaults, then the config file, then PHOTOCOPIER_* variables.
// With an empty path the default location is used when it exists; an explicit
// path must exist. The returned string is the file that was read, if any.
func Load(path string) (Config, string, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, "", err
	}
	if resolved != "" {
		if err := decodeFile(resolved, &cfg); err != nil {
			return Config{}, "", err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, "", err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, resolved, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", appErrors.Wrap(appErrors.InvalidConfig, "config", path, err)
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", appErrors.Wrap(appErrors.NotFound, "config", expanded, err)
			}
			return "", appErrors.Wrap(appErrors.InvalidConfig, "config", expanded, err)
		}
		return expanded, nil
	}

	defaultPath, err := DefaultPath()
	if err != nil {
		return "", nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, nil
	}
	return "", nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "config", path, errors.Errorf("reading config file: %w", err))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return appErrors.Wrap(appErrors.InvalidConfig, "config", path, errors.Errorf("parsing TOML: %w", err))
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return appErrors.Wrap(appErrors.InvalidConfig, "config", path, errors.Errorf("parsing YAML: %w", err))
		}
	default:
		return appErrors.New(appErrors.InvalidConfig, "config", path, "unsupported config file extension "+strconv.Quote(ext))
	}
	return nil
}

// ApplyEnv overlays PHOTOCOPIER_* environment variables. Unset or blank variables keep the current value.
func (c *Config) ApplyEnv() error {
	if v := envOrEmpty("PHOTOCOPIER_SOURCE_DIR"); v != "" {
		c.SourceDir = v
	}
	if v := envOrEmpty("PHOTOCOPIER_TARGET_DIR"); v != "" {
		c.TargetDir = v
	}
	if v := envOrEmpty("PHOTOCOPIER_EXTENSIONS"); v != "" {
		c.Extensions = SplitList(v)
	}
	if v := envOrEmpty("PHOTOCOPIER_EXCLUDE"); v != "" {
		c.ExcludePatterns = SplitList(v)
	}
	if v := envOrEmpty("PHOTOCOPIER_DATE_GRANULARITY"); v != "" {
		c.DateGranularity = v
	}
	if v := envOrEmpty("PHOTOCOPIER_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := envOrEmpty("PHOTOCOPIER_API_BIND"); v != "" {
		c.API.Bind = v
	}

	for key, target := range map[string]*int{
		"PHOTOCOPIER_MAX_DEPTH": &c.MaxDepth,
		"PHOTOCOPIER_WORKERS":   &c.Workers,
	} {
		v := envOrEmpty(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return appErrors.Wrap(appErrors.InvalidConfig, "env", key, errors.Errorf("expected an integer, got %q", v))
		}
		*target = n
	}

	for key, target := range map[string]*bool{
		"PHOTOCOPIER_DRY_RUN":       &c.DryRun,
		"PHOTOCOPIER_VERBOSE":       &c.Verbose,
		"PHOTOCOPIER_OVERWRITE":     &c.Overwrite,
		"PHOTOCOPIER_GENERATE_HASH": &c.GenerateHash,
		"PHOTOCOPIER_VERIFY_COPY":   &c.VerifyCopy,
		"PHOTOCOPIER_USE_EXIF_DATE": &c.UseEXIFDate,
	} {
		if v, ok := envBool(key); ok {
			*target = v
		}
	}
	return nil
}

func (c *Config) normalize() error {
	for _, dir := range []*string{&c.SourceDir, &c.TargetDir} {
		if strings.TrimSpace(*dir) == "" {
			*dir = ""
			continue
		}
		expanded, err := ExpandPath(*dir)
		if err != nil {
			return appErrors.Wrap(appErrors.InvalidConfig, "config", *dir, err)
		}
		*dir = expanded
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	return nil
}

// Validate checks the settings that are not covered by option validation.
func (c Config) Validate() error {
	if _, err := domain.ParseGranularity(c.DateGranularity); err != nil {
		return err
	}
	switch logging.Format(c.LogFormat) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return appErrors.New(appErrors.InvalidConfig, "config", "", "log format must be console or json, got "+c.LogFormat)
	}
	if c.MaxDepth < 0 {
		return appErrors.New(appErrors.InvalidConfig, "config", "", "max_depth must not be negative")
	}
	if c.Workers < 0 {
		return appErrors.New(appErrors.InvalidConfig, "config", "", "workers must not be negative")
	}
	return nil
}

func (c Config) ScanOptions() domain.ScanOptions {
	return domain.ScanOptions{
		SourceDir:       c.SourceDir,
		Extensions:      append([]string(nil), c.Extensions...),
		IgnoreHidden:    c.IgnoreHidden,
		Recursive:       c.Recursive,
		MaxDepth:        c.MaxDepth,
		ExcludePatterns: append([]string(nil), c.ExcludePatterns...),
		UseEXIFDate:     c.UseEXIFDate,
	}
}

func (c Config) CopyOptions() domain.CopyOptions {
	return domain.CopyOptions{
		ScanOptions:        c.ScanOptions(),
		TargetDir:          c.TargetDir,
		CreateDateBasedDir: c.CreateDateBasedDir,
		UseFileDate:        c.UseFileDate,
		DateGranularity:    domain.Granularity(c.DateGranularity),
		GroupByFormat:      c.GroupByFormat,
		Overwrite:          c.Overwrite,
		DryRun:             c.DryRun,
		CopyMetadata:       c.CopyMetadata,
		GenerateHash:       c.GenerateHash,
		VerifyCopy:         c.VerifyCopy,
		Flatten:            c.Flatten,
		Workers:            c.Workers,
	}
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", errors.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return appErrors.New(appErrors.DestinationExists, "config", path, "config file already exists")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return errors.Errorf("write sample config: %w", err)
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrEmpty(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envTruthy(key string) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "y"
}

// envBool is envTruthy that can also turn a setting off.
func envBool(key string) (bool, bool) {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch val {
	case "":
		return false, false
	case "0", "false", "no", "n":
		return false, true
	default:
		return envTruthy(key), true
	}
}
