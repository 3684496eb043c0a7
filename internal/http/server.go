package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"rentdash/internal/core"
	applog "rentdash/internal/log"
	"rentdash/internal/middleware/ratelimit"
	"rentdash/internal/middleware/security"
	"rentdash/internal/middleware/trace"
	"rentdash/internal/services"
	appweb "rentdash/web"
)

// DashboardProvider builds the page model for a city selection.
type DashboardProvider interface {
	Dashboard(ctx context.Context, sel services.Selection) (core.Dashboard, error)
	Listings(ctx context.Context) (core.Listings, error)
	Source() string
}

// Options configure the server beyond its address.
type Options struct {
	RateLimitRPM int
	ReadyTimeout time.Duration
	StaticMaxAge int // seconds, 0 disables Cache-Control on /static/
	Logger       *applog.Logger
}

type Server struct {
	http.Server
	templates  *template.Template
	dashboards DashboardProvider
	logger     *applog.Logger

	ipResolver  *security.ClientIPResolver
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	readyTimeout time.Duration
	startedAt    time.Time
	shutdownOnce sync.Once
}

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	"brl": core.FormatBRL,
}

// ParseTemplates parses the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func NewServer(addr string, dp DashboardProvider, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 10 * time.Second
	}
	if opts.StaticMaxAge < 0 {
		opts.StaticMaxAge = 0
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	resolver := security.NewClientIPResolver()

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitRPM > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitRPM
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		dashboards:   dp,
		logger:       logger,
		ipResolver:   resolver,
		rateLimiter:  ratelimit.NewLimiter(rlConfig),
		tracer:       trace.NewMiddleware(logger, resolver.ExtractClientIP),
		readyTimeout: opts.ReadyTimeout,
		startedAt:    time.Now(),
	}

	t, err := ParseTemplates()
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(opts.StaticMaxAge)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/", s.rateLimiter.Middleware(resolver.ExtractClientIP, nil)(http.HandlerFunc(s.handleDashboard)))

	// Outermost first: security headers, tracing, then the request logger.
	var handler http.Handler = mux
	handler = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	s.Handler = handler

	return s
}

// TotalRequests is the number of requests served since start.
func (s *Server) TotalRequests() int64 { return s.tracer.TotalRequests() }

func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Run serves on ln until ctx is cancelled, then shuts down and waits for
// in-flight requests to finish or for timeout to pass.
func (s *Server) Run(ctx context.Context, ln net.Listener, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown, "timeout", timeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		done <- s.Shutdown(shutdownCtx)
	}()

	if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Serve returns as soon as Shutdown starts closing listeners.
	if err := <-done; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
