// Package api exposes the copy engine over HTTP for the web front end.
package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"photocopier/internal/app"
	"photocopier/internal/config"
	appErrors "photocopier/internal/errors"
	"photocopier/internal/logging"
)

// DefaultRunRetention is how long a finished run stays queryable.
const DefaultRunRetention = time.Hour

// Server owns the runs started through the API.
type Server struct {
	Service  *app.Service
	Defaults config.Config
	Logger   logging.Logger
	// Retention bounds how long finished runs are kept; zero means DefaultRunRetention.
	Retention time.Duration

	mu   sync.RWMutex
	runs map[string]*app.Run
	now  func() time.Time
}

func NewServer(service *app.Service, defaults config.Config, logger logging.Logger) *Server {
	return &Server{
		Service:   service,
		Defaults:  defaults,
		Logger:    logger,
		Retention: DefaultRunRetention,
		runs:      make(map[string]*app.Run),
		now:       time.Now,
	}
}

// Router creates and configures the Gin router
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.Defaults.API.AllowOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", s.healthCheck)

	api := router.Group("/api")
	{
		api.GET("/extensions", s.listExtensions)
		api.POST("/select-directory", s.selectDirectory)
		api.POST("/scan", s.scan)

		api.POST("/copy", s.startCopy)
		api.GET("/copy", s.listRuns)
		api.GET("/copy/:id", s.runStatus)
		api.DELETE("/copy/:id", s.cancelRun)
	}

	return router
}

// Shutdown cancels every unfinished run and waits for them until ctx is done.
func (s *Server) Shutdown(ctx context.Context) {
	s.mu.RLock()
	runs := make([]*app.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	s.mu.RUnlock()

	for _, run := range runs {
		run.Cancel()
	}
	for _, run := range runs {
		if _, err := run.Wait(ctx); err != nil && ctx.Err() != nil {
			s.Logger.Warnf("Run %s did not stop before shutdown: %v", run.ID, err)
			return
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Verbosef("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

func (s *Server) listExtensions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"extensions": s.Service.ListSupportedExtensions()})
}

func (s *Server) selectDirectory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"path": s.Service.SelectDirectory(c.Request.Context())})
}

func (s *Server) scan(c *gin.Context) {
	req := newScanRequest(s.Defaults)
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := s.Service.ScanImageFiles(c.Request.Context(), req.Options())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

func (s *Server) startCopy(c *gin.Context) {
	req := newCopyRequest(s.Defaults)
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run := s.Service.StartCopy(c.Request.Context(), req.Options())
	s.mu.Lock()
	s.pruneLocked()
	s.runs[run.ID] = run
	s.mu.Unlock()

	s.Logger.Infof("Started copy run %s: %s -> %s", run.ID, req.SourceDir, req.TargetDir)
	c.JSON(http.StatusAccepted, gin.H{"id": run.ID})
}

// pruneLocked drops finished runs older than the retention window. s.mu must be held.
func (s *Server) pruneLocked() {
	retention := s.Retention
	if retention <= 0 {
		retention = DefaultRunRetention
	}
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	for id, run := range s.runs {
		if finishedAt, ok := run.FinishedAt(); ok && now.Sub(finishedAt) > retention {
			delete(s.runs, id)
			s.Logger.Verbosef("Forgot copy run %s", id)
		}
	}
}

func (s *Server) lookup(c *gin.Context) (*app.Run, bool) {
	s.mu.RLock()
	run, ok := s.runs[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
	}
	return run, ok
}

func (s *Server) listRuns(c *gin.Context) {
	s.mu.Lock()
	s.pruneLocked()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	c.JSON(http.StatusOK, ids)
}

func (s *Server) runStatus(c *gin.Context) {
	run, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, statusOf(run))
}

func (s *Server) cancelRun(c *gin.Context) {
	run, ok := s.lookup(c)
	if !ok {
		return
	}
	if _, finished, _ := run.Result(); finished {
		c.JSON(http.StatusConflict, gin.H{"error": "run already finished", "status": statusOf(run)})
		return
	}
	run.Cancel()
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func statusOf(run *app.Run) RunStatus {
	status := RunStatus{
		ID:        run.ID,
		StartedAt: run.StartedAt,
		Progress:  run.Progress().Snapshot(),
	}
	result, finished, err := run.Result()
	if !finished {
		return status
	}
	if finishedAt, ok := run.FinishedAt(); ok {
		status.FinishedAt = &finishedAt
	}
	status.Done = true
	status.Result = &result
	if err != nil {
		status.Error = appErrors.UserMessage(err)
		status.ErrorKind = string(appErrors.KindOf(err))
	}
	return status
}

func writeError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch appErrors.KindOf(err) {
	case appErrors.InvalidConfig, appErrors.NotADirectory:
		code = http.StatusBadRequest
	case appErrors.NotFound:
		code = http.StatusNotFound
	case appErrors.TargetBusy:
		code = http.StatusConflict
	}
	c.JSON(code, gin.H{
		"error": appErrors.UserMessage(err),
		"kind":  appErrors.KindOf(err),
	})
}
