package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orderboard/internal"
	"orderboard/internal/api"
	"orderboard/ports"
)

// Server is the HTML order board
type Server struct {
	router    *gin.Engine
	board     ports.BoardPort
	events    *EventHub
	templates *template.Template
	files     fs.FS
	location  *time.Location
	logger    *internal.Logger
}

// NewServer parses the templates under ui/templates in files and wires the
// routes. files is usually the binary's embedded FS.
func NewServer(files fs.FS, board ports.BoardPort, location *time.Location, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if location == nil {
		location = time.UTC
	}

	s := &Server{
		router:   gin.New(),
		board:    board,
		events:   NewEventHub(logger),
		files:    files,
		location: location,
		logger:   logger.WithComponent("UI"),
	}

	templatesFS, err := fs.Sub(files, "ui/templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	s.templates, err = template.New("").Funcs(s.funcMap()).ParseFS(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/refresh", s.handleRefresh)
	s.router.GET("/export.csv", s.handleExportCSV)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/events", s.events.HandleSSE)

	apiHandler := http.StripPrefix("/api", api.NewRouter(s.board, s.logger))
	s.router.Any("/api/*path", gin.WrapH(apiHandler))
}

// Events returns the hub that pushes load notifications to browsers
func (s *Server) Events() *EventHub {
	return s.events
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting order board on http://%s", addr)
	return s.router.Run(addr)
}

// Close stops the event hub
func (s *Server) Close() {
	s.events.Close()
}
