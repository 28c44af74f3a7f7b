package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/orderline"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(config.BackendConfig{BaseURL: server.URL, RetryAttempts: 3}, WithRetryInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(config.BackendConfig{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid got %v", err)
	}
}

func TestListProductsDecodesMoney(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Windows 11 Pro","unit_price":"45.00"},{"id":2,"name":"Office 2021","unit_price":65}]`))
	}))

	products, err := client.Products().List(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) != 2 || !products[1].UnitPrice.Equal(models.MustMoney("65")) {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	if _, err := client.Categories().List(context.Background(), nil, nil); err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("want 3 attempts got %d", got)
	}
}

func TestGetGivesUpAfterMaxTries(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.PaymentMethods().List(context.Background(), nil, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("want 3 attempts got %d", got)
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Orders().Get(context.Background(), nil, 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
		t.Fatalf("want StatusError 404 got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("want 1 attempt got %d", got)
	}
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Categories().Create(context.Background(), nil, CategoryInput{Name: "OS"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("want 1 attempt got %d", got)
	}
}

func TestRefreshesTokenOnUnauthorizedAndReplays(t *testing.T) {
	var meCalls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			var body RefreshRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Refresh != "refresh-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad refresh"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"access": "access-2"})
		case "/users/me":
			atomic.AddInt32(&meCalls, 1)
			if r.Header.Get("Authorization") != "Bearer access-2" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
				return
			}
			writeJSON(w, http.StatusOK, models.User{ID: 3, Username: "awa", Role: "client"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	auth := NewAuth(TokenPair{Access: "access-1", Refresh: "refresh-1"})
	user, err := client.Me(context.Background(), auth)
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if user.ID != 3 {
		t.Fatalf("unexpected user %+v", user)
	}
	if !auth.Refreshed() || auth.Pair().Access != "access-2" {
		t.Fatalf("auth should hold refreshed access token, got %+v", auth.Pair())
	}
	if got := atomic.LoadInt32(&meCalls); got != 2 {
		t.Fatalf("want original call plus one replay, got %d", got)
	}
}

func TestUnauthorizedWithoutRefreshToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Me(context.Background(), NewAuth(TokenPair{Access: "stale"}))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized got %v", err)
	}
}

func TestInvalidDTOIsRejectedBeforeSending(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	cases := []Validatable{
		CheckoutRequest{PaymentMethodID: 1, PaymentReference: "REF"},
		CheckoutRequest{PaymentMethodID: 1, PaymentReference: "REF", Items: []CheckoutItem{{ProductID: 1, Quantity: 0}}},
		ProductInput{Name: "Windows", CategoryID: 1, UnitPrice: models.MustMoney("-1")},
		ProductInput{Name: "Windows", CategoryID: 1, Validity: "5 ans"},
		ActionInput{Type: "vente", ClientID: 1, PaymentMethodID: 1},
		UserInput{Username: "u", Email: "u@example.com", FullName: "U", Role: "root"},
	}
	for i, in := range cases {
		if err := in.Validate(); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("case %d want ErrInvalidRequest got %v", i, err)
		}
	}

	if _, err := client.Checkout(context.Background(), nil, CheckoutRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("checkout want ErrInvalidRequest got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("invalid requests must not reach the backend, got %d calls", got)
	}
}

func TestProductInputAcceptsValidPayload(t *testing.T) {
	lo, hi := models.MustMoney("10"), models.MustMoney("20")
	in := ProductInput{Name: "Office 2021", CategoryID: 2, UnitPrice: models.MustMoney("65"), Validity: "a vie", MinPrice: &lo, MaxPrice: &hi}
	if err := in.Validate(); err != nil {
		t.Fatalf("valid product rejected: %v", err)
	}
	in.MinPrice, in.MaxPrice = &hi, &lo
	if err := in.Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("min above max want ErrInvalidRequest got %v", err)
	}
}

func TestLineWriterAppliesPlan(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodPost {
			var in OrderLineInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.ActionID != 4 || !in.LineTotal.Equal(models.MustMoney("130")) {
				t.Errorf("unexpected create payload %+v", in)
			}
		}
		writeJSON(w, http.StatusOK, map[string]int{"id": 1})
	}))

	plan := orderline.Plan{
		ToDelete: []models.ActionLine{{ID: 10}},
		ToCreate: []orderline.NewLine{{Item: orderline.Item{ProductID: 2, Quantity: 2, UnitPrice: models.MustMoney("65")}}},
	}
	report := plan.Apply(context.Background(), 4, client.LineWriter(nil), orderline.ApplyOptions{})
	if !report.OK() || report.Deleted != 1 || report.Created != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(seen) != 2 || seen[0] != "DELETE /order-lines/10" || seen[1] != "POST /order-lines" {
		t.Fatalf("unexpected calls %v", seen)
	}
}

func TestListOrderLinesSendsOrderQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order-lines" || r.URL.Query().Get("order") != "4" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"id":10,"action_id":4,"product_id":1,"quantity":2,"unit_price":"45.00"}]`))
	}))

	lines, err := client.ListOrderLines(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("list lines failed: %v", err)
	}
	if len(lines) != 1 || lines[0].ID != 10 {
		t.Fatalf("unexpected lines %+v", lines)
	}
}

func TestFailedEmailResolveAndRetry(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/failed-emails/5":
			var body FailedEmailInput
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusOK, models.FailedEmail{ID: 5, Error: "smtp timeout", Resolved: body.Resolved})
		case r.Method == http.MethodPost && r.URL.Path == "/failed-emails/5/retry":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/failed-emails/6/retry":
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	auth := NewAuth(TokenPair{Access: "acc"})
	email, err := client.ResolveFailedEmail(context.Background(), auth, 5, true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !email.Resolved {
		t.Fatalf("want resolved email got %+v", email)
	}
	if err := client.RetryFailedEmail(context.Background(), auth, 5); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if err := client.RetryFailedEmail(context.Background(), auth, 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
	if len(seen) != 3 || seen[0] != "PATCH /failed-emails/5" {
		t.Fatalf("unexpected calls %v", seen)
	}
}

func TestRequestPasswordReset(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/password-reset" || r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected request %s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		var body PasswordResetRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "awa@example.com" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "no user"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: "awa@example.com"}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := client.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: "nobody@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
	if err := client.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: "not-an-email"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("want ErrInvalidRequest got %v", err)
	}
}
