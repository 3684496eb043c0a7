package http

import (
	"context"
	"net/http"
	"time"

	"rentdash/internal/core"
	applog "rentdash/internal/log"
)

// PageTitle heads the dashboard page.
const PageTitle = "Análise Completa de Imóveis para Aluguel"

type dashboardPage struct {
	Title     string
	Source    string
	Dashboard core.Dashboard
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports ready once the dataset loads and the templates parsed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	ls, err := s.dashboards.Listings(ctx)
	if err != nil {
		checks["dataset"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]any{
			"source": s.dashboards.Source(),
			"rows":   len(ls),
			"cities": len(ls.Cities()),
		}
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.NewStructuredLogger(applog.FromContext(ctx))

	sel := ParseSelection(r.URL.Query())
	d, err := s.dashboards.Dashboard(ctx, sel)
	if err != nil {
		logger.LogError(ctx, "Dashboard render failed", err, applog.ComponentDashboard, applog.OpRender,
			applog.NewFields().WithDataset(s.dashboards.Source(), 0))
		s.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	resp := NewResponse().Page(s.templates, "dashboard.html", dashboardPage{
		Title:     PageTitle,
		Source:    s.dashboards.Source(),
		Dashboard: d,
	})
	if err := resp.Err(); err != nil {
		logger.LogError(ctx, "Dashboard template failed", err, applog.ComponentHTTP, applog.OpRender, nil)
	}
	resp.Write(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := NewResponse().Status(status).Page(s.templates, "error.html", errorPage{
		Title:   PageTitle,
		Status:  status,
		Message: message,
	})
	if resp.Err() != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Error page failed",
			applog.FieldError, resp.Err())
		ErrorResponse(status, message).Write(w)
		return
	}
	resp.Write(w)
}
