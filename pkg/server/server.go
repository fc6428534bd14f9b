package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/config"
	"github.com/denysvitali/share-viewer/pkg/form"
	"github.com/denysvitali/share-viewer/pkg/lookup"
	"github.com/denysvitali/share-viewer/pkg/metrics"
	"github.com/denysvitali/share-viewer/pkg/server/web"
	"github.com/denysvitali/share-viewer/pkg/sysinfo"
	"github.com/denysvitali/share-viewer/pkg/telemetry"
	"github.com/denysvitali/share-viewer/pkg/theme"
	"github.com/denysvitali/share-viewer/pkg/tree"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *logrus.Logger
	lookup *lookup.Client
	form   *form.Controller
	themes *theme.Controller
	engine *gin.Engine
	server *http.Server

	mu         sync.RWMutex
	startTime  time.Time
	lastLookup time.Time
	lookups    uint64
}

// New creates a new server instance. A nil theme controller uses the process-wide one.
func New(cfg *config.Config, logger *logrus.Logger, themes *theme.Controller) (*Server, error) {
	if themes == nil {
		themes = theme.Default()
	}

	client := lookup.New(lookup.Config{
		Endpoint:  cfg.Lookup.Endpoint,
		Timeout:   cfg.Lookup.Timeout,
		UserAgent: cfg.Lookup.UserAgent,
	}, logger)

	// Set gin mode based on log level
	if logger.Level == logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ginLogger(logger))
	engine.Use(securityHeaders(cfg.Server.EnableSecurity))

	if cfg.Server.EnableMetrics {
		engine.Use(metrics.Middleware())
	}

	// Add OpenTelemetry middleware if telemetry is enabled
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(telemetry.ServiceName))
	}

	engine.SetHTMLTemplate(web.PageTemplate)

	now := time.Now()
	server := &Server{
		config:     cfg,
		logger:     logger,
		lookup:     client,
		form:       form.NewController(client, logger),
		themes:     themes,
		engine:     engine,
		startTime:  now,
		lastLookup: now,
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Server.Address(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting server on %s", s.config.Server.Address())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Engine returns the gin engine for testing purposes
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check
	s.engine.GET("/alive", s.handleAlive)
	s.engine.GET("/server_info", s.handleServerInfo)

	if s.config.Server.EnableMetrics {
		s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Widget
	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/", s.handleIndex)
	s.engine.StaticFS("/static", http.FS(web.Static()))

	api := s.engine.Group("/api")
	api.GET("/lookup", s.handleLookup)
	api.GET("/theme", s.handleTheme)
	api.POST("/theme/toggle", s.handleThemeToggle)
	api.POST("/theme/system", s.handleThemeSystem)
}

// handleAlive handles health check requests
func (s *Server) handleAlive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleServerInfo handles server info requests
func (s *Server) handleServerInfo(c *gin.Context) {
	currentTime := time.Now()
	info := s.Info()

	response := models.ServerInfoResponse{
		Uptime:    currentTime.Sub(info.StartTime).Seconds(),
		IdleTime:  currentTime.Sub(info.LastLookupTime).Seconds(),
		Lookups:   info.Lookups,
		Resources: sysinfo.Collect(s.logger),
	}

	s.logger.Debugf("Server info endpoint response: uptime=%.2fs, idle_time=%.2fs", response.Uptime, response.IdleTime)
	c.JSON(http.StatusOK, response)
}

// Info returns server information
func (s *Server) Info() models.ServerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ServerInfo{
		StartTime:      s.startTime,
		LastLookupTime: s.lastLookup,
		Lookups:        s.lookups,
		Endpoint:       s.lookup.Endpoint(),
	}
}

type pageData struct {
	Theme     string
	ThemeIcon string
	ShareURL  string
	Password  string
	Panels    form.Panels
	Tree      template.HTML
	Folders   int
	Files     int
}

// handleIndex renders the widget. A request carrying a link runs a submission first.
func (s *Server) handleIndex(c *gin.Context) {
	shareURL, hasURL := s.formValue(c, "url")
	password, _ := s.formValue(c, "pwd")

	current := s.themes.Current()
	data := pageData{
		Theme:     string(current),
		ThemeIcon: current.Icon(),
		ShareURL:  shareURL,
		Password:  password,
	}

	if hasURL || c.Request.Method == http.MethodPost {
		view := s.submit(c, shareURL, password)
		data.Panels = view.Panels()

		if data.Panels.Result {
			t := view.Display().Tree()
			html, err := tree.HTML(t)
			if err != nil {
				s.logger.Errorf("Failed to render tree: %v", err)
				c.String(http.StatusInternalServerError, "failed to render listing")
				return
			}
			data.Tree = html
			data.Folders, data.Files = t.Stats()
		}
	}

	c.HTML(http.StatusOK, "index.html", data)
}

// handleLookup runs a submission and returns the panels and tree as JSON
func (s *Server) handleLookup(c *gin.Context) {
	shareURL := c.Query("url")
	password := c.Query("pwd")

	view := s.submitView()
	err := s.runSubmit(c, view, shareURL, password)

	t := view.Display().Tree()
	folders, files := t.Stats()
	resp := models.LookupResultResponse{
		Panels:  view.Panels().Response(),
		Tree:    tree.Response(t),
		Folders: folders,
		Files:   files,
	}
	if key, kerr := form.ExtractKey(shareURL); kerr == nil {
		resp.Key = key
	}

	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, resp)
	case err != nil:
		c.JSON(http.StatusBadGateway, resp)
	default:
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) submitView() *form.PanelView {
	return form.NewPanelView(tree.NewDisplay())
}

func (s *Server) submit(c *gin.Context, shareURL, password string) *form.PanelView {
	view := s.submitView()
	_ = s.runSubmit(c, view, shareURL, password)
	return view
}

func (s *Server) runSubmit(c *gin.Context, view *form.PanelView, shareURL, password string) error {
	tracer := otel.Tracer(telemetry.ServiceName)
	ctx, span := tracer.Start(c.Request.Context(), "handle_submit")
	defer span.End()

	err := s.form.Submit(ctx, view, shareURL, password)

	s.mu.Lock()
	s.lastLookup = time.Now()
	s.lookups++
	s.mu.Unlock()

	panels := view.Panels()
	span.SetAttributes(attribute.Bool("panels.error", panels.Error), attribute.Bool("panels.result", panels.Result))
	if err != nil {
		span.RecordError(err)
	}

	if s.config.Telemetry.Enabled {
		folders, files := view.Display().Tree().Stats()
		telemetry.ReportJSON(ctx, s.logger, "submit_result", map[string]interface{}{
			"error":   panels.ErrorText,
			"result":  panels.Result,
			"folders": folders,
			"files":   files,
		})
	}

	return err
}

func (s *Server) formValue(c *gin.Context, key string) (string, bool) {
	if c.Request.Method == http.MethodPost {
		if v, ok := c.GetPostForm(key); ok {
			return v, true
		}
	}
	return c.GetQuery(key)
}

func (s *Server) themeResponse() models.ThemeResponse {
	current := s.themes.Current()
	return models.ThemeResponse{
		Theme:     string(current),
		Icon:      current.Icon(),
		Persisted: s.themes.Persisted(),
	}
}

// handleTheme reports the applied theme
func (s *Server) handleTheme(c *gin.Context) {
	c.JSON(http.StatusOK, s.themeResponse())
}

// handleThemeToggle flips and persists the theme
func (s *Server) handleThemeToggle(c *gin.Context) {
	t := s.themes.Toggle()
	s.logger.WithField("theme", t).Info("Theme toggled")
	c.JSON(http.StatusOK, s.themeResponse())
}

// handleThemeSystem follows a system dark-mode change reported by the browser
func (s *Server) handleThemeSystem(c *gin.Context) {
	var req models.ThemeSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.themes.SystemChanged(*req.Dark)
	c.JSON(http.StatusOK, s.themeResponse())
}

// ginLogger creates a gin logger middleware using logrus
func ginLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		// The query is not logged: it carries share passwords.
		entry := logger.WithFields(logrus.Fields{
			"status":     statusCode,
			"method":     c.Request.Method,
			"path":       path,
			"ip":         c.ClientIP(),
			"latency":    latency,
			"user_agent": c.Request.UserAgent(),
		})

		if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request completed")
		}
	}
}

// securityHeaders applies common security headers to responses
func securityHeaders(enableCSP bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if enableCSP {
			c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' data:")
		}
		c.Next()
	}
}
