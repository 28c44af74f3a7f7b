package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/service"

	"github.com/gin-gonic/gin"
)

var errTestMissing = errors.New("missing")

var testRules = []MappedError{
	{Target: errTestMissing, Code: response.CodeNotFound, Key: "error.product_not_found"},
}

func TestResolveErrorFollowsRuleOrder(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		key  string
	}{
		{"own rule", fmt.Errorf("lookup: %w", errTestMissing), response.CodeNotFound, "error.product_not_found"},
		{"backend fallback", backend.ErrUnavailable, response.CodeBadGateway, "error.backend_unavailable"},
		{"session", service.ErrSessionExpired, response.CodeUnauthorized, "error.session_expired"},
		{"unmapped", errors.New("boom"), response.CodeInternal, "error.internal"},
		{"classified", fmt.Errorf("wrap: %w", response.WrapError(response.CodeConflict, "error.bad_request", nil)), response.CodeConflict, "error.bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appErr := ResolveError(tc.err, testRules, BackendErrorRules)
			if appErr.Code != tc.code || appErr.Key != tc.key {
				t.Fatalf("want %d %s got %d %s", tc.code, tc.key, appErr.Code, appErr.Key)
			}
		})
	}
}

func TestResolveErrorKeepsCause(t *testing.T) {
	appErr := ResolveError(fmt.Errorf("lookup: %w", errTestMissing), testRules)
	if !errors.Is(appErr, errTestMissing) {
		t.Fatalf("resolved error should wrap the original cause")
	}
}

func TestRespondMappedErrorLocalizesMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?lang=en-US", nil)

	RespondMappedError(c, errTestMissing, testRules)

	if w.Code != http.StatusOK {
		t.Fatalf("envelope errors keep http 200, got %d", w.Code)
	}
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.StatusCode != response.CodeNotFound || body.Msg != "Product not found" {
		t.Fatalf("unexpected body %+v", body)
	}
}
