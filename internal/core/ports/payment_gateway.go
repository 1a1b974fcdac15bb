package ports

import (
	"context"
	"errors"
)

// Payment gateway error classes. Handlers map these to distinct API
// responses: timeouts and transport failures are infrastructure errors,
// a decline is a business outcome.
var (
	// ErrPaymentGatewayTimeout is returned when the gateway did not
	// answer within the configured deadline.
	ErrPaymentGatewayTimeout = errors.New("payment gateway timed out")
	// ErrPaymentGatewayUnavailable is returned on transport failures and
	// unexpected gateway responses.
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrPaymentDeclined is returned when the gateway processed the
	// verification and reports the charge did not succeed.
	ErrPaymentDeclined = errors.New("payment declined")
)

// PaymentIntent is the result of initializing a payment: where to send
// the customer and the reference to verify with later.
type PaymentIntent struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
}

// PaymentVerification is the gateway's verdict on a completed checkout.
type PaymentVerification struct {
	Reference   string
	AmountMinor int64
}

// PaymentGateway abstracts the external payment provider. Amounts are in
// minor currency units (the price multiplied by 100).
type PaymentGateway interface {
	// Initialize registers a pending charge with the gateway and returns
	// the checkout redirect for the customer.
	Initialize(ctx context.Context, reference string, amountMinor int64, email string) (PaymentIntent, error)

	// Verify asks the gateway whether the charge under reference
	// succeeded. Returns ErrPaymentDeclined when the gateway reports a
	// failed or abandoned charge.
	Verify(ctx context.Context, reference string) (PaymentVerification, error)
}
