package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"payswiftly/internal/domain"
)

// ──────────────────────────────────────────────
// FAKE PAYMENT BACKEND
// ──────────────────────────────────────────────

// FakeBackend is an in-process stand-in for the payment backend API.
type FakeBackend struct {
	*httptest.Server

	mu           sync.Mutex
	drivers      map[string]domain.Driver
	transactions map[string][]domain.Transaction
	statuses     []domain.TransactionStatusResponse
	payments     []domain.PaymentRequest
	authHeaders  []string
	token        string

	// Error injection. A non-empty body is written with the given status.
	LoginStatus int
	LoginBody   string
	PayStatus   int
	PayBody     string

	PayCalls    int32
	StatusCalls int32
}

// NewFakeBackend starts a backend issuing token on successful logins.
func NewFakeBackend(token string) *FakeBackend {
	b := &FakeBackend{
		drivers:      make(map[string]domain.Driver),
		transactions: make(map[string][]domain.Transaction),
		token:        token,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// AddDriver registers a driver profile.
func (b *FakeBackend) AddDriver(driver domain.Driver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drivers[driver.ID] = driver
}

// SetTransactions sets the driver's transaction list.
func (b *FakeBackend) SetTransactions(driverID string, txs []domain.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transactions[driverID] = txs
}

// ScriptStatuses sets the collection statuses returned by successive status queries.
// The last one repeats.
func (b *FakeBackend) ScriptStatuses(statuses ...domain.TransactionStatusResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = statuses
}

// Payments returns the payment requests received so far.
func (b *FakeBackend) Payments() []domain.PaymentRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.PaymentRequest(nil), b.payments...)
}

// AuthHeaders returns the Authorization headers seen on driver profile requests.
func (b *FakeBackend) AuthHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authHeaders...)
}

func (b *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && path == "/api/login":
		b.login(w, r)
	case r.Method == http.MethodPost && path == "/api/register_driver":
		writeJSON(w, http.StatusOK, domain.RegisterDriverResponse{Status: "success", DriverID: "d-new"})
	case r.Method == http.MethodPost && path == "/api/pay":
		b.pay(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/transaction/") && strings.HasSuffix(path, "/status"):
		b.status(w, strings.TrimSuffix(strings.TrimPrefix(path, "/api/transaction/"), "/status"))
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/driver/") && strings.HasSuffix(path, "/transactions"):
		b.driverTransactions(w, strings.TrimSuffix(strings.TrimPrefix(path, "/api/driver/"), "/transactions"))
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/driver/"):
		b.driver(w, r, strings.TrimPrefix(path, "/api/driver/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	if b.LoginStatus != 0 {
		w.WriteHeader(b.LoginStatus)
		_, _ = w.Write([]byte(b.LoginBody))
		return
	}
	var req domain.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.drivers {
		if d.Phone == req.Phone {
			writeJSON(w, http.StatusOK, domain.LoginResponse{Status: "success", DriverID: d.ID, Token: b.token})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
}

func (b *FakeBackend) pay(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt32(&b.PayCalls, 1)
	var req domain.PaymentRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.payments = append(b.payments, req)
	b.mu.Unlock()

	if b.PayStatus != 0 {
		w.WriteHeader(b.PayStatus)
		_, _ = w.Write([]byte(b.PayBody))
		return
	}
	writeJSON(w, http.StatusOK, domain.PaymentInitiateResponse{
		Status:        "success",
		TransactionID: fmt.Sprintf("tx-%d", n),
		Message:       "STK push sent",
		Amount:        req.Amount,
	})
}

func (b *FakeBackend) status(w http.ResponseWriter, transactionID string) {
	n := int(atomic.AddInt32(&b.StatusCalls, 1))

	b.mu.Lock()
	defer b.mu.Unlock()
	resp := domain.TransactionStatusResponse{CollectionStatus: domain.CollectionStatusPending}
	if len(b.statuses) > 0 {
		resp = b.statuses[min(n, len(b.statuses))-1]
	}
	resp.TransactionID = transactionID
	writeJSON(w, http.StatusOK, resp)
}

func (b *FakeBackend) driver(w http.ResponseWriter, r *http.Request, driverID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
	d, ok := b.drivers[driverID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Driver not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (b *FakeBackend) driverTransactions(w http.ResponseWriter, driverID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	txs := b.transactions[driverID]
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
