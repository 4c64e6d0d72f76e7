package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"payswiftly/internal/domain"
	"payswiftly/internal/observability"
)

// PaymentService starts passenger payments.
type PaymentService struct {
	api PaymentAPI
	log *logrus.Entry
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(api PaymentAPI, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		api: api,
		log: logger.WithField("component", "payment"),
	}
}

// Initiate sends exactly one charge request for req. Blank passenger name and
// email are replaced with guest placeholders. Amount and phone are checked by
// the form binding and are not validated again here.
func (s *PaymentService) Initiate(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentInitiateResponse, error) {
	req.DriverID = strings.TrimSpace(req.DriverID)
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	req.PassengerName = strings.TrimSpace(req.PassengerName)
	if req.PassengerName == "" {
		req.PassengerName = domain.GuestPassengerName
	}
	req.PassengerEmail = strings.TrimSpace(req.PassengerEmail)
	if req.PassengerEmail == "" {
		req.PassengerEmail = domain.GuestPassengerEmail
	}

	resp, err := s.api.InitiatePayment(ctx, req)
	if err != nil {
		observability.PaymentsInitiatedTotal.WithLabelValues("error").Inc()
		s.log.WithError(err).WithField("driver_id", req.DriverID).Warn("payment initiation failed")
		return nil, err
	}

	observability.PaymentsInitiatedTotal.WithLabelValues("success").Inc()
	s.log.WithFields(logrus.Fields{
		"driver_id":      req.DriverID,
		"transaction_id": resp.TransactionID,
		"amount":         req.Amount,
	}).Info("payment request sent")

	return resp, nil
}
