package ui

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxUploadHeader = "X-Max-Upload-Bytes"

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.MaxMultipartMemory = multipartMemory
	s.router.Use(uploadLimit(s.renderer.deps.Config.Server.MaxUploadBytes))

	log.Printf("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", staticFS())
}

// uploadLimit advertises the per-file limit so the page can warn before
// sending an oversized file, and caps the request body
func uploadLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Header(maxUploadHeader, strconv.FormatInt(maxBytes, 10))
			limitBody(c.Writer, c.Request, maxBytes)
		}
		c.Next()
	}
}
