package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

var (
	errSentinelInvalid  = errors.New("booking context invalid")
	errSentinelConflict = errors.New("resource conflict")
)

func runMappedError(t *testing.T, err error, rules []MappedError) (int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request.Header.Set("X-Locale", "en-US")

	RespondWithMappedError(c, err, rules, 500, "error.internal")

	var resp struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &resp); decodeErr != nil {
		t.Fatalf("unmarshal response failed: %v", decodeErr)
	}
	return resp.StatusCode, resp.Msg
}

func TestRespondWithMappedError(t *testing.T) {
	rules := []MappedError{
		{Target: errSentinelInvalid, Code: 400, Key: "error.margin_context_invalid", Detail: true},
		{Target: errSentinelConflict, Code: 409, Key: "error.margin_rule_in_use"},
	}

	code, msg := runMappedError(t, fmt.Errorf("%w: check_in_date is required", errSentinelInvalid), rules)
	if code != 400 {
		t.Fatalf("detail rule want 400 got %d", code)
	}
	if msg != "Invalid booking context: check_in_date is required" {
		t.Fatalf("unexpected detail message %q", msg)
	}

	code, _ = runMappedError(t, fmt.Errorf("delete: %w", errSentinelConflict), rules)
	if code != 409 {
		t.Fatalf("wrapped conflict want 409 got %d", code)
	}

	code, _ = runMappedError(t, errors.New("database is locked"), rules)
	if code != 500 {
		t.Fatalf("unmapped error want fallback 500 got %d", code)
	}
}

func TestConcatMappedErrors(t *testing.T) {
	merged := ConcatMappedErrors(
		[]MappedError{{Target: errSentinelInvalid, Code: 400}},
		nil,
		[]MappedError{{Target: errSentinelConflict, Code: 409}},
	)
	if len(merged) != 2 || merged[0].Code != 400 || merged[1].Code != 409 {
		t.Fatalf("unexpected merged rules %+v", merged)
	}
}

func TestErrorDetail(t *testing.T) {
	if got := errorDetail(fmt.Errorf("%w: star_rating must be between 1 and 5", errSentinelInvalid), errSentinelInvalid); got != "star_rating must be between 1 and 5" {
		t.Fatalf("unexpected detail %q", got)
	}
	if got := errorDetail(errSentinelInvalid, errSentinelInvalid); got != "booking context invalid" {
		t.Fatalf("bare sentinel should keep full text, got %q", got)
	}
}
