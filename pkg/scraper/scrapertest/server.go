// Package scrapertest runs an in-memory scrape backend for tests and local
// development.
//
// Jobs never advance on their own. Tests move them through their lifecycle
// with UpdateJob, FinishTermination and friends so polling assertions stay
// deterministic. Advance and Simulate step jobs the way the real worker does.
package scrapertest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"scrape-dash-go/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type storedFile struct {
	info models.GeneratedFile
	data []byte
}

// Server is a fake scrape backend. NewServer serves it over httptest; New
// leaves serving to the caller through Handler.
type Server struct {
	mu        sync.Mutex
	jobs      map[string]*models.Job
	order     []string
	lastJobID string
	files     map[string]*storedFile
	offline   bool
	failures  map[string]int
	hits      map[string]int
	now       func() time.Time
	log       *zap.Logger

	engine *gin.Engine
	srv    *httptest.Server
}

// NewServer starts a fake backend. Call Close when done.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)

	s := New()
	s.srv = httptest.NewServer(s.engine)
	return s
}

// Option customizes a Server built with New.
type Option func(*Server)

// WithLogger logs every request through l.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a backend without a listener.
func New(opts ...Option) *Server {
	s := &Server{
		jobs:     make(map[string]*models.Job),
		files:    make(map[string]*storedFile),
		failures: make(map[string]int),
		hits:     make(map[string]int),
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.newRouter()
	return s
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()

	router.Use(s.requestLogger())
	router.Use(errorHandler())
	router.Use(s.faultInjector())

	router.GET("/health", s.health)

	api := router.Group("/api")
	{
		api.POST("/scrape", s.startScrape)
		api.GET("/status/:id", s.jobStatus)
		api.GET("/active-job", s.activeJob)
		api.POST("/terminate/:id", s.terminate)
		api.DELETE("/clear-status/:id", s.clearStatus)

		api.GET("/files", s.listFiles)
		api.DELETE("/delete/:filename", s.deleteFile)
		api.DELETE("/delete-all-csv", s.deleteAllFiles)
		api.GET("/download/:filename", s.download)
		api.GET("/download-all", s.downloadZip)
		api.GET("/download-all-csv", s.downloadMerged)
	}

	return router
}

// URL is the base URL clients should use. It is empty for servers built with New.
func (s *Server) URL() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.URL
}

// Handler exposes the router for direct httptest recorders.
func (s *Server) Handler() http.Handler { return s.engine }

// Close shuts the listener down.
func (s *Server) Close() {
	if s.srv != nil {
		s.srv.Close()
	}
}

// SetOffline makes every route answer 503 until turned off again.
func (s *Server) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// Fail makes route (e.g. "POST /api/scrape") answer with status until Recover is called.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// Recover clears a failure set with Fail.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Hits returns how many requests matched route, including failed ones.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Job returns a copy of the stored job.
func (s *Server) Job(id string) (*models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// UpdateJob mutates a stored job in place. It reports false for unknown ids.
func (s *Server) UpdateJob(id string, fn func(*models.Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// FinishTermination moves a terminating job to terminated the way the worker does.
func (s *Server) FinishTermination(id string) bool {
	return s.UpdateJob(id, s.terminateLocked)
}

// ForgetJob drops a job as a backend restart would.
func (s *Server) ForgetJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeJobLocked(id)
}

// AddFile stores a CSV file. created orders the listing, newest first.
func (s *Server) AddFile(name string, data []byte, created time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putFileLocked(name, data, created)
}

func (s *Server) putFileLocked(name string, data []byte, created time.Time) {
	s.files[name] = &storedFile{
		info: models.GeneratedFile{
			Filename:  name,
			Size:      int64(len(data)),
			Created:   models.NewTimestamp(created),
			Completed: models.NewTimestamp(created),
			Status:    models.FileStatusComplete,
		},
		data: data,
	}
}

// HasFile reports whether name is still stored.
func (s *Server) HasFile(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok
}

func (s *Server) removeJobLocked(id string) {
	delete(s.jobs, id)
	for i, jid := range s.order {
		if jid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.lastJobID == id {
		s.lastJobID = ""
	}
}

// activeFilesLocked lists files a queued or processing job is still writing.
func (s *Server) activeFilesLocked() map[string]bool {
	active := make(map[string]bool)
	for _, job := range s.jobs {
		if job.Status.IsActive() && job.CurrentCSVFile != nil {
			active[*job.CurrentCSVFile] = true
		}
	}
	return active
}

func (s *Server) sortedFilesLocked() []models.GeneratedFile {
	active := s.activeFilesLocked()
	files := make([]models.GeneratedFile, 0, len(s.files))
	for name, f := range s.files {
		info := f.info
		if active[name] {
			info.Status = models.FileStatusProcessing
		} else {
			info.Status = models.FileStatusComplete
		}
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Created.Equal(files[j].Created.Time) {
			return files[i].Filename < files[j].Filename
		}
		return files[i].Created.After(files[j].Created.Time)
	})
	return files
}
