package domain

// VehicleType is the kind of vehicle a driver operates.
type VehicleType string

const (
	VehicleTypeBoda VehicleType = "boda"
	VehicleTypeTaxi VehicleType = "taxi"
	VehicleTypeUber VehicleType = "uber"
	VehicleTypeBolt VehicleType = "bolt"
)

// PayoutThreshold is the pending balance (KES) at which a driver joins the next payout batch.
const PayoutThreshold = 100.0

// Driver is the driver profile as returned by the backend.
type Driver struct {
	ID             string      `json:"id" validate:"required"`
	Name           string      `json:"name"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email"`
	VehicleType    VehicleType `json:"vehicle_type"`
	VehicleNumber  string      `json:"vehicle_number"`
	QRCodeURL      string      `json:"qr_code_url"`
	Balance        float64     `json:"balance"`
	TotalEarnings  float64     `json:"total_earnings"`
	PendingBalance float64     `json:"pending_balance"`
	PaidBalance    float64     `json:"paid_balance"`
	LastPayoutDate *Timestamp  `json:"last_payout_date"`
	PayoutSchedule string      `json:"payout_schedule"`
}

// PayoutEligible reports whether the pending balance has reached the payout threshold.
func (d *Driver) PayoutEligible() bool {
	return d.PendingBalance >= PayoutThreshold
}

// AmountToPayout returns how much more the driver has to earn before the next payout.
func (d *Driver) AmountToPayout() float64 {
	if d.PayoutEligible() {
		return 0
	}
	return PayoutThreshold - d.PendingBalance
}

// Initial returns the first letter of the driver's name for the avatar.
func (d *Driver) Initial() string {
	for _, r := range d.Name {
		return string(r)
	}
	return "?"
}
