package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleIndex serves the first visit: no uploads, the default question and
// the example dataset
func (s *Server) handleIndex(c *gin.Context) {
	state := s.renderer.Render(c.Request.Context(), s.renderer.InitialSnapshot())
	s.renderPage(c, state, false)
}

// handleRender recomputes the page from the submitted form
func (s *Server) handleRender(c *gin.Context) {
	snap, err := snapshotFromRequest(c.Request, s.renderer.MaxUploadBytes())
	if err != nil {
		log.Printf("[Render] Bad form: %v", err)
		c.JSON(statusFor(err), newErrorView(err))
		return
	}

	state := s.renderer.Render(c.Request.Context(), snap)
	s.renderPage(c, state, isHTMX(c.Request))
}

// handleQuery answers one question as JSON
func (s *Server) handleQuery(c *gin.Context) {
	snap, err := snapshotFromRequest(c.Request, s.renderer.MaxUploadBytes())
	if err != nil {
		c.JSON(statusFor(err), newErrorView(err))
		return
	}

	result, err := s.renderer.Query(c.Request.Context(), snap)
	if err != nil {
		log.Printf("[Query] Failed: %v", err)
		body := gin.H{"error": err.Error(), "code": newErrorView(err).Code}
		if result != nil {
			body["datasets"] = result.Datasets
			body["file_errors"] = result.FileErrors
		}
		c.JSON(statusFor(err), body)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleDatasetsPreview describes the ingested uploads without querying
func (s *Server) handleDatasetsPreview(c *gin.Context) {
	snap, err := snapshotFromRequest(c.Request, s.renderer.MaxUploadBytes())
	if err != nil {
		c.JSON(statusFor(err), newErrorView(err))
		return
	}

	result, err := s.renderer.Preview(c.Request.Context(), snap)
	if err != nil {
		c.JSON(statusFor(err), newErrorView(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
