package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"PHOTOCOPIER_SOURCE_DIR", "PHOTOCOPIER_TARGET_DIR", "PHOTOCOPIER_EXTENSIONS",
		"PHOTOCOPIER_EXCLUDE", "PHOTOCOPIER_DATE_GRANULARITY", "PHOTOCOPIER_LOG_FORMAT",
		"PHOTOCOPIER_API_BIND", "PHOTOCOPIER_MAX_DEPTH", "PHOTOCOPIER_WORKERS",
		"PHOTOCOPIER_DRY_RUN", "PHOTOCOPIER_VERBOSE", "PHOTOCOPIER_OVERWRITE",
		"PHOTOCOPIER_GENERATE_HASH", "PHOTOCOPIER_VERIFY_COPY", "PHOTOCOPIER_USE_EXIF_DATE",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	isolateHome(t)

	cfg, resolved, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, "month", cfg.DateGranularity)
	assert.True(t, cfg.CopyMetadata)
	assert.True(t, cfg.Recursive)
	assert.Equal(t, domain.SupportedExtensions(), cfg.Extensions)
}

func TestLoadTOML(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(t.TempDir(), "photocopier.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
source_dir = "~/DCIM"
target_dir = "/library"
extensions = ["JPG", "png"]
date_granularity = "year"
group_by_format = true
workers = 3

[api]
bind = ":9000"
`), 0o600))

	cfg, resolved, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, filepath.Join(home, "DCIM"), cfg.SourceDir)
	assert.Equal(t, "/library", cfg.TargetDir)
	assert.Equal(t, []string{"JPG", "png"}, cfg.Extensions)
	assert.Equal(t, "year", cfg.DateGranularity)
	assert.True(t, cfg.GroupByFormat)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, ":9000", cfg.API.Bind)
	assert.Equal(t, 5, cfg.MaxDepth, "unset keys keep defaults")
}

func TestLoadYAML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "photocopier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source_dir: /photos
target_dir: /library
exclude:
  - "**/thumbs/**"
copy_metadata: false
verify_copy: true
`), 0o600))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/photos", cfg.SourceDir)
	assert.Equal(t, []string{"**/thumbs/**"}, cfg.ExcludePatterns)
	assert.False(t, cfg.CopyMetadata)
	assert.True(t, cfg.VerifyCopy)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("colour = \"red\"\n"), 0o600))
	_, _, err := Load(tomlPath)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.InvalidConfig))

	yamlPath := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("colour: red\n"), 0o600))
	_, _, err = Load(yamlPath)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.InvalidConfig))
}

func TestLoadRejectsUnsupportedExtensionAndMissingFile(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o600))
	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file extension")

	_, _, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.NotFound))
}

func TestLoadFindsDefaultPath(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, ".config", "photocopier", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("max_depth = 2\n"), 0o600))

	cfg, resolved, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, 2, cfg.MaxDepth)
}

func TestApplyEnvOverridesFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "photocopier.toml")
	require.NoError(t, os.WriteFile(path, []byte("dry_run = true\nworkers = 2\n"), 0o600))

	t.Setenv("PHOTOCOPIER_DRY_RUN", "false")
	t.Setenv("PHOTOCOPIER_WORKERS", "8")
	t.Setenv("PHOTOCOPIER_EXTENSIONS", "jpg, ,heic")
	t.Setenv("PHOTOCOPIER_VERBOSE", "yes")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"jpg", "heic"}, cfg.Extensions)
	assert.True(t, cfg.Verbose)
}

func TestApplyEnvRejectsBadInteger(t *testing.T) {
	isolateHome(t)
	t.Setenv("PHOTOCOPIER_MAX_DEPTH", "deep")

	_, _, err := Load("")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.InvalidConfig))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.DateGranularity = "week"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Workers = -1
	assert.Error(t, cfg.Validate())
}

func TestCopyOptionsConversion(t *testing.T) {
	cfg := Default()
	cfg.SourceDir = "/photos"
	cfg.TargetDir = "/library"
	cfg.Flatten = true
	cfg.DateGranularity = "year"

	opts := cfg.CopyOptions()
	assert.Equal(t, "/photos", opts.SourceDir)
	assert.Equal(t, "/library", opts.TargetDir)
	assert.Equal(t, domain.GranularityYear, opts.DateGranularity)
	assert.True(t, opts.Flatten)
	assert.True(t, opts.CopyMetadata)
	assert.Equal(t, 5, opts.MaxDepth)

	opts.Extensions[0] = ".changed"
	assert.NotEqual(t, ".changed", cfg.Extensions[0])
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, CreateSample(path))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7480", cfg.API.Bind)
	assert.Contains(t, cfg.Extensions, ".heic")

	err = CreateSample(path)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.DestinationExists))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a,,b ,"))
	assert.Nil(t, SplitList(""))
}
