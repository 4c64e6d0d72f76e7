package domain

// Transaction is one passenger payment attempt as stored by the backend.
type Transaction struct {
	ID                    string     `json:"id" validate:"required"`
	DriverID              string     `json:"driver_id"`
	PassengerPhone        string     `json:"passenger_phone"`
	AmountPaid            float64    `json:"amount_paid"`
	PlatformFee           float64    `json:"platform_fee"`
	DriverAmount          float64    `json:"driver_amount"`
	Status                string     `json:"status"`
	CollectionStatus      string     `json:"collection_status"`
	PayoutStatus          string     `json:"payout_status"`
	CreatedAt             *Timestamp `json:"created_at"`
	UpdatedAt             *Timestamp `json:"updated_at"`
	CollectionCompletedAt *Timestamp `json:"collection_completed_at"`
	PayoutCompletedAt     *Timestamp `json:"payout_completed_at"`
}

// Completed reports whether the transaction is shown as settled in the activity list.
func (t *Transaction) Completed() bool {
	return t.Status == string(CollectionStatusCompleted)
}
