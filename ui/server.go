package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"minevision/app"
	"minevision/internal/config"
)

// Server represents the web server for the MineVision dashboard
type Server struct {
	router        *gin.Engine
	pipeline      *app.PipelineService
	chat          *app.ChatService
	config        *config.Config
	templates     *template.Template
	embeddedFiles embed.FS
}

// NewServer creates a new web server instance
func NewServer(embeddedFiles embed.FS) *Server {
	return &Server{
		router:        gin.Default(),
		embeddedFiles: embeddedFiles,
	}
}

// Initialize sets up the server with dependencies
func (s *Server) Initialize(pipeline *app.PipelineService, chat *app.ChatService, cfg *config.Config) error {
	s.pipeline = pipeline
	s.chat = chat
	s.config = cfg

	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"sec": func(v *float64) string {
			if v == nil {
				return "—"
			}
			return fmt.Sprintf("%.2fs", *v)
		},
		"safe": func(v string) template.HTML {
			return template.HTML(v)
		},
	}

	templates, err := parseTemplates(s.embeddedFiles, funcMap)
	if err != nil {
		return err
	}
	s.templates = templates

	s.setupRoutes()
	return nil
}

// parseTemplates re-roots the embedded filesystem so template names stay
// short. The main binary embeds from the repo root ("ui/templates"); the
// package's own tests embed from the package directory ("templates").
func parseTemplates(files embed.FS, funcMap template.FuncMap) (*template.Template, error) {
	for _, root := range []string{"ui/templates", "templates"} {
		sub, err := fs.Sub(files, root)
		if err != nil {
			continue
		}
		templates, err := template.New("").Funcs(funcMap).ParseFS(sub, "*.html")
		if err == nil {
			return templates, nil
		}
	}
	return nil, fmt.Errorf("no templates found in embedded filesystem")
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	api := s.router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/summary", s.handleSummary)
		api.GET("/aggregate", s.handleAggregate)
		api.GET("/insights", s.handleInsights)
		api.GET("/profile", s.handleSpeedProfile)
		api.GET("/export.csv", s.handleExportCSV)

		api.POST("/chat/session", s.handleChatSession)
		api.POST("/chat", s.handleChat)
		api.GET("/chat/history", s.handleChatHistory)
	}
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting MineVision dashboard on http://%s", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	c.Header("Content-Type", "text/html")
	if err := s.templates.ExecuteTemplate(c.Writer, templateName, data); err != nil {
		log.Printf("Template error: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
