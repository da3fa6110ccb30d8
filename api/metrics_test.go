package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracing(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func spanAttr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDashboardMetricsEmitsSpanAndEvent(t *testing.T) {
	exporter := setupTracing(t)
	logger, hook := logtest.NewNullLogger()

	metrics, spanCtx := newDashboardMetrics(context.Background(), logger)
	if spanCtx == nil {
		t.Fatal("expected span context")
	}
	metrics.ObserveAuth(2 * time.Millisecond)
	metrics.ObserveFetch(5 * time.Millisecond)
	metrics.ObserveBuild(time.Millisecond)
	metrics.SetSnapshotSizes(4, 2, 7, 3)
	metrics.Log(http.StatusOK, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != dashboardSpanName {
		t.Fatalf("span name = %q", span.Name)
	}
	if span.Status.Code != codes.Ok {
		t.Fatalf("span status = %v", span.Status)
	}
	if v, ok := spanAttr(span, "http.status_code"); !ok || v.AsInt64() != http.StatusOK {
		t.Fatalf("http.status_code attribute wrong: %v", v)
	}
	if v, ok := spanAttr(span, "crm.dashboard.transactions"); !ok || v.AsInt64() != 4 {
		t.Fatalf("transactions attribute wrong: %v", v)
	}
	if _, ok := spanAttr(span, "crm.dashboard.fetch_ms"); !ok {
		t.Fatal("missing fetch_ms attribute")
	}
	if _, ok := spanAttr(span, "crm.dashboard.error_stage"); ok {
		t.Fatal("error_stage must be absent on success")
	}

	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Data["event.name"] != dashboardEventName || entry.Data["event.domain"] != dashboardEventDomain {
		t.Fatalf("event identity wrong: %v", entry.Data)
	}
	if entry.Data["severity_text"] != "INFO" || entry.Data["severity_number"] != 9 {
		t.Fatalf("severity fields wrong: %v", entry.Data)
	}
	if _, ok := entry.Data["trace_id"]; !ok {
		t.Fatal("missing trace_id")
	}
	attrs, ok := entry.Data["attributes"].(map[string]any)
	if !ok {
		t.Fatalf("attributes field wrong: %T", entry.Data["attributes"])
	}
	if attrs["crm.dashboard.tasks"] != int64(7) {
		t.Fatalf("tasks attribute = %v", attrs["crm.dashboard.tasks"])
	}
}

func TestDashboardMetricsRecordsErrorStage(t *testing.T) {
	exporter := setupTracing(t)
	logger, hook := logtest.NewNullLogger()

	metrics, _ := newDashboardMetrics(context.Background(), logger)
	metrics.SetErrorStage("storage")
	metrics.Log(http.StatusInternalServerError, errors.New("kv down"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Fatalf("span status = %v, want error", spans[0].Status)
	}
	if v, ok := spanAttr(spans[0], "crm.dashboard.error_stage"); !ok || v.AsString() != "storage" {
		t.Fatalf("error_stage attribute wrong: %v", v)
	}

	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].Data["error"] != "kv down" {
		t.Fatalf("error field = %v", entries[0].Data["error"])
	}
}

func TestDurationToMillis(t *testing.T) {
	if got := durationToMillis(1500 * time.Microsecond); got != 1.5 {
		t.Fatalf("durationToMillis = %v", got)
	}
	if got := durationToMillis(-time.Second); got != 0 {
		t.Fatalf("negative duration should clamp to 0, got %v", got)
	}
}
