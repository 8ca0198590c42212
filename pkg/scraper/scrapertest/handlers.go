package scrapertest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"scrape-dash-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) startScrape(c *gin.Context) {
	var req models.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No queries provided"})
		return
	}

	s.mu.Lock()
	job := models.NewQueuedJob(uuid.NewString(), req.Queries, s.now())
	job.Location = req.Location
	created := *job.StartedAt
	job.CreatedAt = &created
	s.jobs[job.JobID] = job
	s.order = append(s.order, job.JobID)
	s.lastJobID = job.JobID
	s.mu.Unlock()

	c.JSON(http.StatusAccepted, models.ScrapeStarted{
		JobID:        job.JobID,
		Message:      "Scraping started",
		TotalQueries: len(req.Queries),
	})
}

func (s *Server) jobStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) activeJob(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		job := s.jobs[id]
		if job.Status.IsActive() || job.Status == models.JobStatusTerminating {
			c.JSON(http.StatusOK, job)
			return
		}
	}
	if job, ok := s.jobs[s.lastJobID]; ok {
		c.JSON(http.StatusOK, job)
		return
	}
	c.JSON(http.StatusOK, nil)
}

func (s *Server) terminate(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Job not found"})
		return
	}
	if job.Status.IsActive() || job.Status == models.JobStatusTerminating {
		job.Status = models.JobStatusTerminating
		job.CurrentQuery = nil
		job.CurrentQueryIndex = nil
	}
	c.JSON(http.StatusOK, models.Ack{Message: "Job termination requested", JobID: id})
}

func (s *Server) clearStatus(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Job not found"})
		return
	}
	s.removeJobLocked(id)
	c.JSON(http.StatusOK, models.Ack{Message: "Job status cleared", JobID: id})
}

func (s *Server) listFiles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.sortedFilesLocked())
}

func (s *Server) deleteFile(c *gin.Context) {
	name := c.Param("filename")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[name]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}
	delete(s.files, name)
	c.JSON(http.StatusOK, models.Ack{Message: "Deleted"})
}

func (s *Server) deleteAllFiles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.activeFilesLocked()
	deleted := []string{}
	for name := range s.files {
		if active[name] {
			continue
		}
		delete(s.files, name)
		deleted = append(deleted, name)
	}
	c.JSON(http.StatusOK, models.Ack{
		Message:      fmt.Sprintf("Deleted %d CSV files", len(deleted)),
		DeletedFiles: deleted,
	})
}

func (s *Server) download(c *gin.Context) {
	name := c.Param("filename")

	s.mu.Lock()
	f, ok := s.files[name]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, "text/csv", f.data)
}

func (s *Server) finishedFiles() []*storedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.activeFilesLocked()
	var out []*storedFile
	for _, info := range s.sortedFilesLocked() {
		if active[info.Filename] {
			continue
		}
		out = append(out, s.files[info.Filename])
	}
	return out
}

func (s *Server) downloadZip(c *gin.Context) {
	files := s.finishedFiles()
	if len(files) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No files to download"})
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.info.Filename)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		if _, err := w.Write(f.data); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
	}
	if err := zw.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/x-zip-compressed", buf.Bytes())
}

// downloadMerged concatenates finished files under the first file's header.
func (s *Server) downloadMerged(c *gin.Context) {
	var header string
	var rows []string
	for _, f := range s.finishedFiles() {
		if strings.HasSuffix(f.info.Filename, "_EMPTY.csv") {
			continue
		}
		lines := strings.Split(strings.TrimRight(string(f.data), "\n"), "\n")
		if len(lines) == 0 || lines[0] == "" {
			continue
		}
		if header == "" {
			header = lines[0]
		}
		rows = append(rows, lines[1:]...)
	}
	if header == "" {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No data available to merge. Generate some results first!"})
		return
	}
	body := header + "\n" + strings.Join(rows, "\n")
	if len(rows) > 0 {
		body += "\n"
	}
	c.Data(http.StatusOK, "text/csv", []byte(body))
}
