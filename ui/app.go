package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App serves the chatbot page through chi and plain net/http handlers
type App struct {
	router   *chi.Mux
	renderer *Renderer
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates a new UI application
func NewApp(renderer *Renderer) *App {
	app := &App{
		router:   chi.NewRouter(),
		renderer: renderer,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)

	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(staticFS())))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/render", a.handleRender)
	a.router.Get("/health", a.handleHealth)
}

// ServeHTTP makes the app usable as an http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (a *App) Start(config Config) error {
	port := config.Port
	if port == "" {
		port = "8501"
	}
	log.Printf("Starting Construction chatbot (lightweight UI) on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := a.renderer.Render(r.Context(), a.renderer.InitialSnapshot())
	a.renderPage(w, state, false)
}

func (a *App) handleRender(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r, a.renderer.MaxUploadBytes())
	snap, err := snapshotFromRequest(r, a.renderer.MaxUploadBytes())
	if err != nil {
		log.Printf("[Render] request %s: bad form: %v", middleware.GetReqID(r.Context()), err)
		writeJSON(w, statusFor(err), newErrorView(err))
		return
	}

	state := a.renderer.Render(r.Context(), snap)
	a.renderPage(w, state, isHTMX(r))
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}
