package service

import "errors"

var (
	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTransactionID is returned when a transaction ID is empty.
	ErrInvalidTransactionID = errors.New("invalid transaction id")

	// ErrDriverNotFound is returned when a driver lookup fails for any reason.
	ErrDriverNotFound = errors.New("Driver ID not found. Please check and try again.")

	// ErrPasswordMismatch is returned when the registration passwords differ.
	ErrPasswordMismatch = errors.New("Passwords do not match")

	// ErrPasswordTooShort is returned when the registration password is under MinPasswordLength.
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters")

	// ErrSubmissionInFlight is returned when a payment submission is already being sent.
	ErrSubmissionInFlight = errors.New("a payment request is already being submitted")

	// ErrPaymentAlreadySubmitted is returned when submitting a flow that has left the form.
	ErrPaymentAlreadySubmitted = errors.New("payment already submitted")

	// ErrFlowNotFound is returned when a payment flow does not exist or has expired.
	ErrFlowNotFound = errors.New("payment not found")
)
