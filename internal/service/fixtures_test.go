package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/storage"
)

const (
	testUserID      uint = 7
	testAccessToken      = "acc-1"
)

// fakeBackend 内存版 REST 后端，只实现服务层用到的接口
type fakeBackend struct {
	mu sync.Mutex

	products       []models.Product
	paymentMethods []models.PaymentMethod
	actions        map[uint]models.Action
	lines          map[uint]models.ActionLine
	nextLineID     uint
	nextActionID   uint
	failedEmails   map[uint]models.FailedEmail
	retried        []uint

	productCalls  int
	checkouts     []backend.CheckoutRequest
	checkoutFails bool
	lineCreateErr bool
	deleted       []uint
	updated       []uint
	created       []uint
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: []models.Product{
			{ID: 1, Name: "Windows 11 Pro", Description: "Licence OEM", UnitPrice: models.MustMoney("45.00"), Validity: constants.ValidityLifetime, Category: &models.CategoryRef{ID: 1}},
			{ID: 2, Name: "Office 2021", Description: "Suite bureautique", UnitPrice: models.MustMoney("30.00"), Validity: constants.ValidityOneYear, Category: &models.CategoryRef{ID: 2}},
			{ID: 3, Name: "Antivirus Plus", Description: "Protection", UnitPrice: models.MustMoney("15.00"), Validity: constants.ValidityOneYear, Category: &models.CategoryRef{ID: 2}},
		},
		paymentMethods: []models.PaymentMethod{{ID: 1, Name: "Virement"}, {ID: 2, Name: "Mobile Money"}},
		actions:        map[uint]models.Action{},
		lines:          map[uint]models.ActionLine{},
		nextLineID:     100,
		nextActionID:   500,
		failedEmails: map[uint]models.FailedEmail{
			1: {ID: 1, ClientName: "John Doe", ClientEmail: "john@example.com", ActionCode: "VTE-0001", Error: "smtp timeout"},
			2: {ID: 2, ClientName: "Bruno Noel", ClientEmail: "bruno@example.com", ActionCode: "DEV-0002", Error: "mailbox full", Resolved: true},
		},
	}
}

func (f *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req backend.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeTestJSON(w, backend.TokenPair{Access: testAccessToken, Refresh: "ref-1"})
	})
	mux.HandleFunc("GET /users/me", authed(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, models.User{ID: testUserID, Username: "alice", FullName: "Alice Martin", Role: constants.RoleAdmin, IsActive: true})
	}))
	mux.HandleFunc("GET /users", authed(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, []models.User{
			{ID: 1, Username: "jdoe", FullName: "John Doe", Email: "john@example.com"},
			{ID: 2, Username: "amartin", FullName: "Alice Martin", Email: "alice@example.com", Phone: "0102"},
			{ID: 3, Username: "bnoel", FullName: "Bruno Noel", Email: "bruno@example.com"},
		})
	}))
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.productCalls++
		items := append([]models.Product(nil), f.products...)
		f.mu.Unlock()
		writeTestJSON(w, items)
	})
	mux.HandleFunc("POST /products", authed(func(w http.ResponseWriter, r *http.Request) {
		var in backend.ProductInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		product := models.Product{ID: uint(len(f.products) + 1), Name: in.Name, UnitPrice: in.UnitPrice}
		f.products = append(f.products, product)
		f.mu.Unlock()
		writeTestJSON(w, product)
	}))
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, []models.Category{{ID: 1, Name: "Systemes"}, {ID: 2, Name: "Bureautique"}})
	})
	mux.HandleFunc("GET /payment-methods", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, f.paymentMethods)
	})
	mux.HandleFunc("POST /checkout", authed(func(w http.ResponseWriter, r *http.Request) {
		var req backend.CheckoutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.checkoutFails {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.checkouts = append(f.checkouts, req)
		writeTestJSON(w, models.Action{ID: 900, Type: constants.ActionTypePurchase})
	}))
	mux.HandleFunc("GET /orders", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		items := make([]models.Action, 0, len(f.actions))
		for _, action := range f.actions {
			if typ := r.URL.Query().Get("type"); typ != "" && action.Type != typ {
				continue
			}
			items = append(items, action)
		}
		writeTestJSON(w, items)
	}))
	mux.HandleFunc("GET /orders/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		action, ok := f.actions[pathID(r)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeTestJSON(w, action)
	}))
	mux.HandleFunc("POST /orders", authed(func(w http.ResponseWriter, r *http.Request) {
		var in backend.ActionInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextActionID++
		action := actionFromInput(f.nextActionID, in)
		f.actions[action.ID] = action
		writeTestJSON(w, action)
	}))
	mux.HandleFunc("PUT /orders/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		var in backend.ActionInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		id := pathID(r)
		if _, ok := f.actions[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		action := actionFromInput(id, in)
		f.actions[id] = action
		writeTestJSON(w, action)
	}))
	mux.HandleFunc("POST /orders/{id}/approve", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		action, ok := f.actions[pathID(r)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		action.Paid, action.Delivered = true, true
		f.actions[action.ID] = action
		writeTestJSON(w, action)
	}))
	mux.HandleFunc("GET /order-lines", authed(func(w http.ResponseWriter, r *http.Request) {
		orderID, _ := strconv.ParseUint(r.URL.Query().Get("order"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		items := []models.ActionLine{}
		for _, line := range f.lines {
			if line.ActionID == uint(orderID) {
				items = append(items, line)
			}
		}
		writeTestJSON(w, items)
	}))
	mux.HandleFunc("POST /order-lines", authed(func(w http.ResponseWriter, r *http.Request) {
		var in backend.OrderLineInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.lineCreateErr {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		f.nextLineID++
		line := models.ActionLine{ID: f.nextLineID, ActionID: in.ActionID, ProductID: in.ProductID, Quantity: in.Quantity, UnitPrice: in.UnitPrice, LineTotal: in.LineTotal}
		f.lines[line.ID] = line
		f.created = append(f.created, in.ProductID)
		writeTestJSON(w, line)
	}))
	mux.HandleFunc("PUT /order-lines/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		var in backend.OrderLineInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		id := pathID(r)
		line := models.ActionLine{ID: id, ActionID: in.ActionID, ProductID: in.ProductID, Quantity: in.Quantity, UnitPrice: in.UnitPrice, LineTotal: in.LineTotal}
		f.lines[id] = line
		f.updated = append(f.updated, id)
		writeTestJSON(w, line)
	}))
	mux.HandleFunc("DELETE /order-lines/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := pathID(r)
		delete(f.lines, id)
		f.deleted = append(f.deleted, id)
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /auth/password-reset", func(w http.ResponseWriter, r *http.Request) {
		var req backend.PasswordResetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "alice@example.com" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /failed-emails", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		items := []models.FailedEmail{}
		for _, email := range f.failedEmails {
			items = append(items, email)
		}
		writeTestJSON(w, items)
	}))
	mux.HandleFunc("PATCH /failed-emails/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		var in backend.FailedEmailInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		email, ok := f.failedEmails[pathID(r)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		email.Resolved = in.Resolved
		f.failedEmails[email.ID] = email
		writeTestJSON(w, email)
	}))
	mux.HandleFunc("POST /failed-emails/{id}/retry", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := pathID(r)
		if _, ok := f.failedEmails[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.retried = append(f.retried, id)
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

func (f *fakeBackend) seedAction(action models.Action, lines ...models.ActionLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions[action.ID] = action
	for _, line := range lines {
		line.ActionID = action.ID
		f.lines[line.ID] = line
	}
}

func actionFromInput(id uint, in backend.ActionInput) models.Action {
	return models.Action{
		ID:               id,
		Type:             in.Type,
		Price:            in.Price,
		Paid:             in.Paid,
		Delivered:        in.Delivered,
		ClientID:         in.ClientID,
		SellerID:         in.SellerID,
		PaymentMethodID:  in.PaymentMethodID,
		PaymentReference: in.PaymentReference,
		Comment:          in.Comment,
	}
}

func pathID(r *http.Request) uint {
	id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return uint(id)
}

func writeTestJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// testEnv 组装服务层依赖
type testEnv struct {
	fake     *fakeBackend
	store    *storage.MemoryStore
	client   *backend.Client
	auth     *AuthService
	catalog  *CatalogService
	carts    *CartService
	checkout *CheckoutService
	drafts   *DraftOrderService
	stats    *SalesStatsService
	admin    *AdminResourceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := newFakeBackend()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client, err := backend.NewClient(config.BackendConfig{BaseURL: server.URL, RetryAttempts: 1}, backend.WithRetryInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("new backend client failed: %v", err)
	}
	cfg := &config.Config{
		JWT:     config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1},
		Catalog: config.CatalogConfig{CacheTTLSeconds: 60, PageSize: 2},
	}
	store := storage.NewMemoryStore()
	auth := NewAuthService(cfg, client, NewTokenStore(store))
	catalogService := NewCatalogService(client, cfg.Catalog, nil)
	carts := NewCartService(store, catalogService, cfg.Cart, nil)
	return &testEnv{
		fake:     fake,
		store:    store,
		client:   client,
		auth:     auth,
		catalog:  catalogService,
		carts:    carts,
		checkout: NewCheckoutService(client, auth, carts, catalogService, nil),
		drafts:   NewDraftOrderService(store, client, auth, catalogService, nil, nil),
		stats:    NewSalesStatsService(client, auth),
		admin:    NewAdminResourceService(client, auth, catalogService, nil),
	}
}

// login 以测试用户登录，写入后端令牌
func (e *testEnv) login(t *testing.T) *LoginResult {
	t.Helper()
	result, err := e.auth.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return result
}
