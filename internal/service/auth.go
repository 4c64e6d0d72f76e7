package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"payswiftly/internal/domain"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// AuthService handles driver login, registration and logout.
type AuthService struct {
	api     AuthAPI
	drivers DriverAPI
	log     *logrus.Entry
}

// NewAuthService creates a new AuthService.
func NewAuthService(api AuthAPI, drivers DriverAPI, logger *logrus.Logger) *AuthService {
	return &AuthService{
		api:     api,
		drivers: drivers,
		log:     logger.WithField("component", "auth"),
	}
}

// Login authenticates with phone and password and stores the issued token in the session.
func (s *AuthService) Login(ctx context.Context, sess TokenStore, req domain.LoginRequest) (*domain.LoginResponse, error) {
	resp, err := s.api.Login(ctx, req)
	if err != nil {
		s.log.WithError(err).Info("login rejected")
		return nil, err
	}

	if err := sess.SetToken(ctx, resp.Token); err != nil {
		return nil, err
	}

	s.log.WithField("driver_id", resp.DriverID).Info("driver logged in")
	return resp, nil
}

// Registration holds the values entered on the sign-up form.
type Registration struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           string
	VehicleType     domain.VehicleType
	VehicleNumber   string
	Password        string
	ConfirmPassword string
}

// Register creates a driver account. The passwords are checked before anything is sent.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*domain.RegisterDriverResponse, error) {
	if reg.Password != reg.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(reg.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	resp, err := s.api.RegisterDriver(ctx, domain.RegisterDriverRequest{
		Name:          strings.TrimSpace(reg.FirstName + " " + reg.LastName),
		Phone:         reg.Phone,
		Email:         reg.Email,
		VehicleType:   reg.VehicleType,
		VehicleNumber: reg.VehicleNumber,
		Password:      reg.Password,
	})
	if err != nil {
		s.log.WithError(err).Info("registration rejected")
		return nil, err
	}

	s.log.WithField("driver_id", resp.DriverID).Info("driver registered")
	return resp, nil
}

// Logout clears the session token. The backend session is not invalidated.
func (s *AuthService) Logout(ctx context.Context, sess TokenStore) error {
	return sess.Clear(ctx)
}

// LookupDriver checks that driverID exists. Every failure, including network
// errors, is reported as ErrDriverNotFound.
func (s *AuthService) LookupDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.drivers.GetDriver(ctx, driverID)
	if err != nil {
		s.log.WithError(err).WithField("driver_id", driverID).Info("driver lookup failed")
		return nil, ErrDriverNotFound
	}
	return driver, nil
}
