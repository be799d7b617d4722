package payment

import (
	"database/sql/driver"
	"errors"
)

// Method is how an order was paid for.
type Method string

const (
	// MethodOnline is a gateway-confirmed online payment.
	MethodOnline Method = "online"
	// MethodCOD is cash on delivery; no gateway confirmation exists.
	MethodCOD Method = "cash-on-delivery"
)

var ErrInvalidMethod = errors.New("invalid payment method")

func (m Method) String() string {
	return string(m)
}

func (m Method) Value() (driver.Value, error) {
	return m.String(), nil
}

func ParseMethod(s string) (Method, error) {
	switch s {
	case MethodOnline.String():
		return MethodOnline, nil
	case MethodCOD.String():
		return MethodCOD, nil
	default:
		return "", ErrInvalidMethod
	}
}

// GatewayCallback is the untrusted payload the hosted payment widget posts
// back after the user completes payment.
type GatewayCallback struct {
	GatewayOrderID   string `json:"gatewayOrderId"   validate:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" validate:"required"`
	Signature        string `json:"signature"        validate:"required"`
}
