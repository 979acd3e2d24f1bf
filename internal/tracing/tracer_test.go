package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaithtours/margin-engine/internal/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestInitDisabled(t *testing.T) {
	tp, err := Init(config.TracingConfig{Enabled: false})
	if err != nil || tp != nil {
		t.Fatalf("disabled tracing should return nil provider, got %v %v", tp, err)
	}
}

func TestStartAndRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := Start(context.Background(), "margin.evaluate")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "margin.evaluate" {
		t.Fatalf("unexpected span name %s", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("span should be marked as error")
	}
}

func TestGinMiddlewareCreatesServerSpan(t *testing.T) {
	recorder := installRecorder(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "GET /healthz" {
		t.Fatalf("expected one server span, got %d", len(spans))
	}
}
