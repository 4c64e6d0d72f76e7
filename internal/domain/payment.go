package domain

// CollectionStatus is the state of the passenger-to-platform charge.
type CollectionStatus string

const (
	CollectionStatusPending   CollectionStatus = "pending"
	CollectionStatusCompleted CollectionStatus = "completed"
	CollectionStatusFailed    CollectionStatus = "failed"
)

// IsTerminal reports whether no further transition can follow this status.
// Values the backend may invent later are treated as still pending.
func (s CollectionStatus) IsTerminal() bool {
	return s == CollectionStatusCompleted || s == CollectionStatusFailed
}

// Placeholder passenger details sent when the payer leaves them blank.
const (
	GuestPassengerName  = "Guest Passenger"
	GuestPassengerEmail = "guest@example.com"
)

// PaymentRequest is the body of POST /api/pay.
type PaymentRequest struct {
	DriverID       string  `json:"driver_id"`
	Amount         float64 `json:"amount"`
	PassengerPhone string  `json:"passenger_phone"`
	PassengerEmail string  `json:"passenger_email"`
	PassengerName  string  `json:"passenger_name"`
}

// PaymentInitiateResponse is returned by the backend once the charge request is created.
type PaymentInitiateResponse struct {
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id" validate:"required"`
	CollectionID  string  `json:"collection_id"`
	Message       string  `json:"message"`
	Amount        float64 `json:"amount"`
	PlatformFee   float64 `json:"platform_fee"`
	DriverAmount  float64 `json:"driver_amount"`
}

// TransactionStatusResponse is returned by GET /api/transaction/{id}/status.
type TransactionStatusResponse struct {
	TransactionID    string           `json:"transaction_id"`
	Status           string           `json:"status"`
	CollectionStatus CollectionStatus `json:"collection_status"`
	PayoutStatus     string           `json:"payout_status"`
	Message          string           `json:"message"`
	AmountPaid       float64          `json:"amount_paid"`
}
