package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photocopier/internal/app"
	"photocopier/internal/config"
	"photocopier/internal/domain"
	"photocopier/internal/infra/fingerprint"
	fsimpl "photocopier/internal/infra/fs"
	"photocopier/internal/logging"
)

type stubSelector struct{ dir string }

func (s stubSelector) SelectDirectory(context.Context) (string, error) {
	return s.dir, nil
}

// blockingFS holds every copy until release is closed.
type blockingFS struct {
	fsimpl.OSFS
	release chan struct{}
}

func (b blockingFS) CopyFile(src, dst string, tee io.Writer) (int64, error) {
	<-b.release
	return b.OSFS.CopyFile(src, dst, tee)
}

func newTestServer(t *testing.T) (*Server, afero.Fs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.FromZerolog(zerolog.New(zerolog.NewTestWriter(t)), true)
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/src/trip", 0o755))
	require.NoError(t, afero.WriteFile(mem, "/src/a.jpg", []byte("aaaa"), 0o644))
	require.NoError(t, afero.WriteFile(mem, "/src/trip/b.png", []byte("bb"), 0o644))
	require.NoError(t, afero.WriteFile(mem, "/src/notes.txt", []byte("n"), 0o644))

	service := &app.Service{
		FS:            fsimpl.OSFS{Fs: mem},
		Fingerprinter: fingerprint.SHA256{Fs: mem},
		Selector:      stubSelector{dir: "/picked"},
		Logger:        logger,
	}
	defaults := config.Default()
	defaults.CreateDateBasedDir = false
	defaults.UseEXIFDate = false
	return NewServer(service, defaults, logger), mem
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndExtensions(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	rec := do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/extensions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]string](t, rec)
	assert.Equal(t, domain.SupportedExtensions(), body["extensions"])
}

func TestSelectDirectory(t *testing.T) {
	server, _ := newTestServer(t)
	rec := do(t, server.Router(), http.MethodPost, "/api/select-directory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/picked", decode[map[string]string](t, rec)["path"])
}

func TestScan(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	rec := do(t, router, http.MethodPost, "/api/scan", map[string]any{
		"sourceDir":      "/src",
		"fileExtensions": []string{"jpg", "png"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Files []string `json:"files"`
		Count int      `json:"count"`
	}](t, rec)
	assert.Equal(t, []string{"/src/a.jpg", "/src/trip/b.png"}, body.Files)
	assert.Equal(t, 2, body.Count)
}

func TestScanErrors(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	rec := do(t, router, http.MethodPost, "/api/scan", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scan", map[string]any{"sourceDir": "/missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[map[string]string](t, rec)["kind"])
}

func waitDone(t *testing.T, router http.Handler, id string) RunStatus {
	t.Helper()
	var status RunStatus
	require.Eventually(t, func() bool {
		rec := do(t, router, http.MethodGet, "/api/copy/"+id, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Done
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestCopyRunLifecycle(t *testing.T) {
	server, mem := newTestServer(t)
	router := server.Router()

	rec := do(t, router, http.MethodPost, "/api/copy", map[string]any{
		"sourceDir":     "/src",
		"targetDir":     "/target",
		"groupByFormat": true,
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	id := decode[map[string]string](t, rec)["id"]
	require.NotEmpty(t, id)

	status := waitDone(t, router, id)
	require.NotNil(t, status.Result)
	assert.Empty(t, status.Error)
	assert.Equal(t, 2, status.Result.SuccessCount)
	assert.Equal(t, domain.StateCompleted, status.Progress.Status)
	assert.InDelta(t, 100.0, status.Progress.Percentage, 0.001)

	for _, path := range []string{"/target/JPG/a.jpg", "/target/PNG/trip/b.png"} {
		exists, err := afero.Exists(mem, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}

	rec = do(t, router, http.MethodDelete, "/api/copy/"+id, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/copy", nil)
	assert.Equal(t, []string{id}, decode[[]string](t, rec))
}

func TestCopyRunReportsConfigurationError(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	rec := do(t, router, http.MethodPost, "/api/copy", map[string]any{
		"sourceDir":      "/src",
		"targetDir":      "/target",
		"fileExtensions": []string{},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := decode[map[string]string](t, rec)["id"]

	status := waitDone(t, router, id)
	assert.Equal(t, "invalid_config", status.ErrorKind)
	assert.Equal(t, domain.StateFailed, status.Progress.Status)
}

func TestCopyRequestValidation(t *testing.T) {
	server, _ := newTestServer(t)
	rec := do(t, server.Router(), http.MethodPost, "/api/copy", map[string]any{"sourceDir": "/src"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRun(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/copy/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/copy/nope", nil).Code)
}

func TestCopyRequestDefaults(t *testing.T) {
	defaults := config.Default()
	defaults.Workers = 3
	req := newCopyRequest(defaults)
	require.NoError(t, json.Unmarshal([]byte(`{"sourceDir":"/a","targetDir":"/b","dryRun":true}`), &req))

	opts := req.Options()
	assert.Equal(t, "/a", opts.SourceDir)
	assert.True(t, opts.DryRun)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, 5, opts.MaxDepth)
	assert.True(t, opts.CopyMetadata)
	assert.Equal(t, domain.GranularityMonth, opts.DateGranularity)
}

func TestFinishedRunsExpire(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()
	body := map[string]any{"sourceDir": "/src", "targetDir": "/target", "dryRun": true}

	rec := do(t, router, http.MethodPost, "/api/copy", body)
	require.Equal(t, http.StatusAccepted, rec.Code)
	oldID := decode[map[string]string](t, rec)["id"]
	status := waitDone(t, router, oldID)
	require.NotNil(t, status.FinishedAt)
	assert.False(t, status.StartedAt.IsZero())
	assert.False(t, status.FinishedAt.Before(status.StartedAt))

	rec = do(t, router, http.MethodGet, "/api/copy", nil)
	assert.Equal(t, []string{oldID}, decode[[]string](t, rec))

	server.now = func() time.Time { return time.Now().Add(2 * DefaultRunRetention) }

	rec = do(t, router, http.MethodPost, "/api/copy", body)
	require.Equal(t, http.StatusAccepted, rec.Code)
	newID := decode[map[string]string](t, rec)["id"]

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/copy/"+oldID, nil).Code)
	waitDone(t, router, newID)
}

func TestUnfinishedRunsAreKept(t *testing.T) {
	server, _ := newTestServer(t)
	release := make(chan struct{})
	server.Service.FS = blockingFS{OSFS: server.Service.FS.(fsimpl.OSFS), release: release}
	router := server.Router()

	rec := do(t, router, http.MethodPost, "/api/copy", map[string]any{"sourceDir": "/src", "targetDir": "/target"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := decode[map[string]string](t, rec)["id"]

	server.now = func() time.Time { return time.Now().Add(2 * DefaultRunRetention) }
	rec = do(t, router, http.MethodGet, "/api/copy", nil)
	assert.Equal(t, []string{id}, decode[[]string](t, rec))

	close(release)
	waitDone(t, router, id)
}
