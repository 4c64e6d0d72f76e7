package service

import (
	"context"

	"payswiftly/internal/apiclient"
	"payswiftly/internal/domain"
)

// AuthAPI is the backend surface used for driver accounts.
type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	RegisterDriver(ctx context.Context, req domain.RegisterDriverRequest) (*domain.RegisterDriverResponse, error)
}

// DriverAPI is the backend surface used to read driver data.
type DriverAPI interface {
	GetDriver(ctx context.Context, driverID string) (*domain.Driver, error)
	GetDriverTransactions(ctx context.Context, driverID string) ([]domain.Transaction, error)
}

// PaymentAPI is the backend surface used to start a payment.
type PaymentAPI interface {
	InitiatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentInitiateResponse, error)
}

// StatusAPI is the backend surface used to poll a transaction.
type StatusAPI interface {
	GetTransactionStatus(ctx context.Context, transactionID string) (*domain.TransactionStatusResponse, error)
}

// DriverAPIFactory binds a DriverAPI to the token source of one session.
type DriverAPIFactory func(tokens apiclient.TokenSource) DriverAPI

// SessionDriverAPI returns a DriverAPIFactory backed by client.
func SessionDriverAPI(client *apiclient.Client) DriverAPIFactory {
	return func(tokens apiclient.TokenSource) DriverAPI {
		return client.WithSession(tokens)
	}
}

// TokenStore is the write side of a browser session.
type TokenStore interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

var (
	_ AuthAPI    = (*apiclient.Client)(nil)
	_ DriverAPI  = (*apiclient.Client)(nil)
	_ PaymentAPI = (*apiclient.Client)(nil)
	_ StatusAPI  = (*apiclient.Client)(nil)
)
