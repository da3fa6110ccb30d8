package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	dashboardRoute       = "/api/dashboard"
	dashboardSpanName    = "crm.dashboard.request"
	dashboardEventName   = "dashboard.request"
	dashboardEventDomain = "crm"
)

// dashboardMetrics collects per-request timings for the dashboard route and
// emits them as one otel span plus one structured observability event.
type dashboardMetrics struct {
	logger        *log.Logger
	span          trace.Span
	start         time.Time
	authDuration  time.Duration
	fetchDuration time.Duration
	buildDuration time.Duration
	transactions  int
	contacts      int
	tasks         int
	pipelineItems int
	errorStage    string
}

func newDashboardMetrics(ctx context.Context, logger *log.Logger) (*dashboardMetrics, context.Context) {
	tracer := otel.Tracer("crm-api/api")
	spanCtx, span := tracer.Start(ctx, dashboardSpanName)
	return &dashboardMetrics{logger: logger, span: span, start: time.Now()}, spanCtx
}

func (m *dashboardMetrics) ObserveAuth(d time.Duration) {
	if d > 0 {
		m.authDuration = d
	}
}

func (m *dashboardMetrics) ObserveFetch(d time.Duration) {
	if d > 0 {
		m.fetchDuration = d
	}
}

func (m *dashboardMetrics) ObserveBuild(d time.Duration) {
	if d > 0 {
		m.buildDuration = d
	}
}

func (m *dashboardMetrics) SetSnapshotSizes(transactions, contacts, tasks, pipelineItems int) {
	m.transactions = transactions
	m.contacts = contacts
	m.tasks = tasks
	m.pipelineItems = pipelineItems
}

func (m *dashboardMetrics) SetErrorStage(stage string) {
	if stage != "" {
		m.errorStage = stage
	}
}

// Log finishes the span and writes the observability event. It must be
// called exactly once per request.
func (m *dashboardMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	total := time.Since(m.start)

	attrs := []attribute.KeyValue{
		attribute.String("http.route", dashboardRoute),
		attribute.Int("http.status_code", status),
		attribute.Float64("crm.dashboard.total_ms", durationToMillis(total)),
		attribute.Int("crm.dashboard.transactions", m.transactions),
		attribute.Int("crm.dashboard.contacts", m.contacts),
		attribute.Int("crm.dashboard.tasks", m.tasks),
		attribute.Int("crm.dashboard.pipeline_items", m.pipelineItems),
	}
	if m.authDuration > 0 {
		attrs = append(attrs, attribute.Float64("crm.dashboard.auth_ms", durationToMillis(m.authDuration)))
	}
	if m.fetchDuration > 0 {
		attrs = append(attrs, attribute.Float64("crm.dashboard.fetch_ms", durationToMillis(m.fetchDuration)))
	}
	if m.buildDuration > 0 {
		attrs = append(attrs, attribute.Float64("crm.dashboard.build_ms", durationToMillis(m.buildDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("crm.dashboard.error_stage", m.errorStage))
	}

	if m.span != nil {
		m.span.SetAttributes(attrs...)
		m.span.AddEvent("observability.event")
		if err != nil || status >= http.StatusInternalServerError {
			m.span.SetStatus(codes.Error, m.errorStage)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}

	attrMap := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		attrMap[string(kv.Key)] = kv.Value.AsInterface()
	}
	fields := log.Fields{
		"event.name":      dashboardEventName,
		"event.domain":    dashboardEventDomain,
		"attributes":      attrMap,
		"severity_text":   "INFO",
		"severity_number": 9,
	}
	if m.span != nil {
		sc := m.span.SpanContext()
		if sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
		}
		if sc.HasSpanID() {
			fields["span_id"] = sc.SpanID().String()
		}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	m.logger.WithFields(fields).Info("observability.event")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
