package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"payswiftly/internal/apiclient"
	"payswiftly/internal/domain"
)

var errBackendDown = errors.New("backend down")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

// ──────────────────────────────────────────────
// MOCK STATUS API
// ──────────────────────────────────────────────

// statusReply is one scripted answer of MockStatusAPI.
type statusReply struct {
	status domain.CollectionStatus
	amount float64
	err    error
}

// MockStatusAPI answers status queries from a script; the last reply repeats.
type MockStatusAPI struct {
	mu      sync.Mutex
	replies []statusReply

	CallCount int32
}

func NewMockStatusAPI(replies ...statusReply) *MockStatusAPI {
	return &MockStatusAPI{replies: replies}
}

func (m *MockStatusAPI) GetTransactionStatus(ctx context.Context, transactionID string) (*domain.TransactionStatusResponse, error) {
	n := atomic.AddInt32(&m.CallCount, 1)

	m.mu.Lock()
	reply := statusReply{status: domain.CollectionStatusPending}
	if len(m.replies) > 0 {
		idx := int(n) - 1
		if idx >= len(m.replies) {
			idx = len(m.replies) - 1
		}
		reply = m.replies[idx]
	}
	m.mu.Unlock()

	if reply.err != nil {
		return nil, reply.err
	}
	return &domain.TransactionStatusResponse{
		TransactionID:    transactionID,
		CollectionStatus: reply.status,
		AmountPaid:       reply.amount,
	}, nil
}

// SetReplies replaces the script. The replacement applies from the next query on.
func (m *MockStatusAPI) SetReplies(replies ...statusReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = replies
}

func (m *MockStatusAPI) Calls() int {
	return int(atomic.LoadInt32(&m.CallCount))
}

// ──────────────────────────────────────────────
// MOCK PAYMENT API
// ──────────────────────────────────────────────

// MockPaymentAPI records payment requests.
type MockPaymentAPI struct {
	mu       sync.Mutex
	requests []domain.PaymentRequest

	CallCount int32

	// Error injection
	InitiateError error

	// Block, when set, holds every call until it is closed. Started receives a value per call.
	Block   chan struct{}
	Started chan struct{}
}

func NewMockPaymentAPI() *MockPaymentAPI {
	return &MockPaymentAPI{}
}

func (m *MockPaymentAPI) InitiatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentInitiateResponse, error) {
	n := atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Block != nil {
		<-m.Block
	}
	if m.InitiateError != nil {
		return nil, m.InitiateError
	}
	return &domain.PaymentInitiateResponse{
		Status:        "success",
		TransactionID: fmt.Sprintf("tx-%d", n),
		CollectionID:  "col-1",
		Amount:        req.Amount,
		PlatformFee:   req.Amount * 0.03,
		DriverAmount:  req.Amount * 0.97,
	}, nil
}

func (m *MockPaymentAPI) LastRequest() domain.PaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

// ──────────────────────────────────────────────
// MOCK DRIVER API
// ──────────────────────────────────────────────

// MockDriverAPI serves one driver and its transactions.
type MockDriverAPI struct {
	mu           sync.Mutex
	driver       domain.Driver
	transactions []domain.Transaction

	GetDriverCallCount    int32
	TransactionsCallCount int32
	Tokens                []apiclient.TokenSource

	// Error injection
	GetDriverError    error
	TransactionsError error
}

func NewMockDriverAPI(driver domain.Driver) *MockDriverAPI {
	return &MockDriverAPI{driver: driver}
}

// Factory returns a DriverAPIFactory that records the token sources it is bound to.
func (m *MockDriverAPI) Factory() DriverAPIFactory {
	return func(tokens apiclient.TokenSource) DriverAPI {
		m.mu.Lock()
		m.Tokens = append(m.Tokens, tokens)
		m.mu.Unlock()
		return m
	}
}

func (m *MockDriverAPI) SetDriver(driver domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = driver
}

func (m *MockDriverAPI) SetGetDriverError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetDriverError = err
}

func (m *MockDriverAPI) SetTransactions(txs []domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = txs
}

func (m *MockDriverAPI) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	atomic.AddInt32(&m.GetDriverCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetDriverError != nil {
		return nil, m.GetDriverError
	}
	if driverID != m.driver.ID {
		return nil, &apiclient.APIError{StatusCode: 404, Message: "Driver not found"}
	}
	copy := m.driver
	return &copy, nil
}

func (m *MockDriverAPI) GetDriverTransactions(ctx context.Context, driverID string) ([]domain.Transaction, error) {
	atomic.AddInt32(&m.TransactionsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TransactionsError != nil {
		return nil, m.TransactionsError
	}
	return append([]domain.Transaction(nil), m.transactions...), nil
}

// ──────────────────────────────────────────────
// MOCK AUTH API
// ──────────────────────────────────────────────

// MockAuthAPI accepts one phone/password pair.
type MockAuthAPI struct {
	Phone    string
	Password string
	DriverID string
	Token    string

	LoginCallCount    int32
	RegisterCallCount int32
	LastRegistration  domain.RegisterDriverRequest

	// Error injection
	RegisterError error
}

func (m *MockAuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	atomic.AddInt32(&m.LoginCallCount, 1)
	if req.Phone != m.Phone || req.Password != m.Password {
		return nil, &apiclient.APIError{StatusCode: 401, Message: "Invalid credentials"}
	}
	return &domain.LoginResponse{Status: "success", DriverID: m.DriverID, Token: m.Token}, nil
}

func (m *MockAuthAPI) RegisterDriver(ctx context.Context, req domain.RegisterDriverRequest) (*domain.RegisterDriverResponse, error) {
	atomic.AddInt32(&m.RegisterCallCount, 1)
	m.LastRegistration = req
	if m.RegisterError != nil {
		return nil, m.RegisterError
	}
	return &domain.RegisterDriverResponse{Status: "success", DriverID: m.DriverID, QRCodeURL: "https://qr.example.com/" + m.DriverID}, nil
}

// ──────────────────────────────────────────────
// MOCK TOKEN STORE
// ──────────────────────────────────────────────

// MockTokenStore is an in-memory browser session.
type MockTokenStore struct {
	mu    sync.Mutex
	token string

	// Error injection
	SetError error
}

func (m *MockTokenStore) SetToken(ctx context.Context, token string) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MockTokenStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MockTokenStore) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}
