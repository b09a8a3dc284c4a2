package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rewards/internal/log"
	"rewards/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the transaction source.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.reports.Ping(ctx); err != nil {
		checks["transactions"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["transactions"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateMetrics := s.limiter.GetMetrics()
	secMetrics := s.detector.GetMetrics()

	var latestSeq uint64
	latestOK := 0
	if snap, ok := s.reports.Latest(); ok {
		latestSeq = snap.Seq
		if snap.OK() {
			latestOK = 1
		}
	}
	cacheEntries := 0
	if s.provider != nil && s.provider.Cache() != nil {
		cacheEntries = s.provider.Cache().Size()
	}

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_request_duration_avg_microseconds", "gauge", "Average request duration", traceMetrics.AverageResponseTime)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", secMetrics.SuspiciousRequests)
	metric("report_latest_seq", "gauge", "Sequence number of the latest applied report", latestSeq)
	metric("report_latest_ok", "gauge", "Whether the latest report run succeeded", latestOK)
	metric("transaction_cache_entries", "gauge", "Cached transaction snapshots", cacheEntries)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := s.now()
	q := r.URL.Query()
	data := pageData{
		MaxDate:     DefaultDateRange(now, 0).To.String(),
		RangeMonths: s.rangeMonths,
	}

	rng, err := ParseDateRange(q, now, s.rangeMonths)
	if err != nil {
		data.From, data.To = sanitizeInput(q.Get("from")), sanitizeInput(q.Get("to"))
		data.FilterError = rangeErrorMessage(err)
	} else {
		data.From, data.To = rng.From.String(), rng.To.String()
		snap, _ := s.reports.Run(r.Context(), rng)
		view := newReportView(snap)
		data.Report = &view
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, log.FieldOperation, log.OpRender)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleReportPartial recomputes the report for the submitted range.
func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	rng, err := ParseDateRange(r.URL.Query(), s.now(), s.rangeMonths)
	if err != nil {
		UnprocessableEntityError(rangeErrorMessage(err)).Write(w)
		return
	}

	snap, _ := s.reports.Run(r.Context(), rng)
	s.renderReport(w, r, snap)
}

// handleRetry re-runs the last requested range, or the default one.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	snap, err := s.reports.Retry(r.Context())
	if errors.Is(err, services.ErrNoRange) {
		snap, _ = s.reports.Run(r.Context(), DefaultDateRange(s.now(), s.rangeMonths))
	}
	s.renderReport(w, r, snap)
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, snap services.Snapshot) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	view := newReportView(snap)
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "report", view); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report template execution failed",
			log.FieldError, err, log.FieldOperation, log.OpRender)
		InternalServerError("Failed to render report").Write(w)
		return
	}

	resp := NewHTMXResponse().BodyHTML(buf.String())
	if snap.OK() {
		resp.TriggerReportUpdated(snap.Seq, snap.Range.From.String(), snap.Range.To.String())
	} else {
		resp.Status(http.StatusBadGateway).TriggerErrorNotification(fetchFailedMessage)
	}
	resp.Write(w)
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	rng, err := ParseDateRange(r.URL.Query(), s.now(), s.rangeMonths)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: rangeErrorMessage(err)})
		return
	}

	snap, err := s.reports.Run(r.Context(), rng)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, newReportResponse(snap))
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(snap))
}

// handleAPILatest returns the newest applied report without recomputing.
func (s *Server) handleAPILatest(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	snap, ok := s.reports.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no report has been computed yet"})
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(snap))
}
