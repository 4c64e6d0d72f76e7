package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"payswiftly/internal/domain"
)

// Login authenticates a driver with phone and password.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	resp, err := Do[domain.LoginResponse](ctx, c, Request{
		Operation: "login",
		Method:    http.MethodPost,
		Endpoint:  "/api/login",
		Body:      req,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterDriver creates a driver account.
func (c *Client) RegisterDriver(ctx context.Context, req domain.RegisterDriverRequest) (*domain.RegisterDriverResponse, error) {
	resp, err := Do[domain.RegisterDriverResponse](ctx, c, Request{
		Operation: "register_driver",
		Method:    http.MethodPost,
		Endpoint:  "/api/register_driver",
		Body:      req,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDriver fetches a driver profile.
func (c *Client) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	resp, err := Do[domain.Driver](ctx, c, Request{
		Operation: "get_driver",
		Endpoint:  "/api/driver/" + url.PathEscape(driverID),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDriverTransactions fetches the driver's recent transactions.
func (c *Client) GetDriverTransactions(ctx context.Context, driverID string) ([]domain.Transaction, error) {
	resp, err := Do[[]domain.Transaction](ctx, c, Request{
		Operation: "get_driver_transactions",
		Endpoint:  "/api/driver/" + url.PathEscape(driverID) + "/transactions",
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []domain.Transaction{}
	}
	return resp, nil
}

// InitiatePayment asks the backend to send a mobile-money charge request to the passenger.
func (c *Client) InitiatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentInitiateResponse, error) {
	resp, err := Do[domain.PaymentInitiateResponse](ctx, c, Request{
		Operation: "initiate_payment",
		Method:    http.MethodPost,
		Endpoint:  "/api/pay",
		Body:      req,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactionStatus fetches the collection and payout status of a transaction.
func (c *Client) GetTransactionStatus(ctx context.Context, transactionID string) (*domain.TransactionStatusResponse, error) {
	resp, err := Do[domain.TransactionStatusResponse](ctx, c, Request{
		Operation: "transaction_status",
		Endpoint:  "/api/transaction/" + url.PathEscape(transactionID) + "/status",
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
