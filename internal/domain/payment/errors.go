package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment record not found")
)
