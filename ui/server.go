package ui

import (
	"log"

	"github.com/gin-gonic/gin"
)

// Server is the gin web server for the chatbot page
type Server struct {
	router   *gin.Engine
	renderer *Renderer
}

// NewServer creates a new web server instance
func NewServer(renderer *Renderer) *Server {
	return &Server{
		router:   gin.Default(),
		renderer: renderer,
	}
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	s.setupMiddleware()
	s.setupRoutes()
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/render", s.handleRender)
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/query", s.handleQuery)
	api.POST("/datasets/preview", s.handleDatasetsPreview)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting Construction chatbot on http://%s", addr)
	return s.router.Run(addr)
}
