package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates static
var embeddedFiles embed.FS

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"upper": strings.ToUpper,
		"bytes": formatBytes,
		"plural": func(n int, word string) string {
			if n == 1 {
				return fmt.Sprintf("%d %s", n, word)
			}
			return fmt.Sprintf("%d %ss", n, word)
		},
	}
}

func parseTemplates() (*template.Template, error) {
	templates, err := template.New("").Funcs(templateFuncs()).ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	log.Printf("[TemplateInit] Parsed templates: %s", templates.DefinedTemplates())
	return templates, nil
}

func staticFS() http.FileSystem {
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		// only fails for an invalid path
		panic(err)
	}
	return http.FS(sub)
}

// renderPage writes a rendered page through gin. The page is buffered by the
// renderer so a failed template turns into a clean 500.
func (s *Server) renderPage(c *gin.Context, state *RenderState, fragment bool) {
	var buf strings.Builder
	if err := s.renderer.WriteHTML(&buf, state, fragment); err != nil {
		log.Printf("Template error for render %s: %v", state.RenderID.Short(), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(buf.String()))
}

// renderPage writes a rendered page to a plain net/http response
func (a *App) renderPage(w http.ResponseWriter, state *RenderState, fragment bool) {
	var buf strings.Builder
	if err := a.renderer.WriteHTML(&buf, state, fragment); err != nil {
		log.Printf("Template error for render %s: %v", state.RenderID.Short(), err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(buf.String())); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
