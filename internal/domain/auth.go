package domain

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginResponse carries the session token issued by the backend.
type LoginResponse struct {
	Status   string `json:"status"`
	DriverID string `json:"driver_id" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Message  string `json:"message"`
}

// RegisterDriverRequest is the body of POST /api/register_driver.
type RegisterDriverRequest struct {
	Name          string      `json:"name"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email"`
	VehicleType   VehicleType `json:"vehicle_type"`
	VehicleNumber string      `json:"vehicle_number"`
	Password      string      `json:"password"`
}

// RegisterDriverResponse is returned once the backend created the driver account.
type RegisterDriverResponse struct {
	Status    string `json:"status"`
	DriverID  string `json:"driver_id" validate:"required"`
	QRCodeURL string `json:"qr_code_url"`
}
