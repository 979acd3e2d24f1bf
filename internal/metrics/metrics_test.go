package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEvaluation(t *testing.T) {
	before := testutil.ToFloat64(marginEvaluations.WithLabelValues("simulate", OutcomeDefaultApplied))
	ObserveEvaluation("simulate", OutcomeDefaultApplied, 3*time.Millisecond)
	after := testutil.ToFloat64(marginEvaluations.WithLabelValues("simulate", OutcomeDefaultApplied))
	if after-before != 1 {
		t.Fatalf("evaluation counter want +1 got %v", after-before)
	}
}

func TestAddRecordedMarginIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(marginAmountApplied.WithLabelValues("SAR"))
	AddRecordedMargin("SAR", 0)
	AddRecordedMargin("SAR", 70)
	after := testutil.ToFloat64(marginAmountApplied.WithLabelValues("SAR"))
	if after-before != 70 {
		t.Fatalf("recorded margin want +70 got %v", after-before)
	}
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ping status want 200 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	if !strings.Contains(body, `http_requests_total{method="GET",route="/ping",status="200"}`) {
		t.Fatalf("metrics output missing request counter")
	}
}
