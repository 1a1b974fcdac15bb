// Package paystack implements the payment gateway port against the
// Paystack transaction API. Amounts cross the wire in minor units (kobo),
// matching how the pricing side rounds order totals.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const defaultTimeout = 10 * time.Second

// Config holds the Paystack API connection settings.
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Validate checks that the configuration is complete.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errs.NewValueIsRequiredError("baseURL")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("baseURL", err)
	}
	if c.SecretKey == "" {
		return errs.NewValueIsRequiredError("secretKey")
	}
	if c.Timeout < 0 {
		return errs.NewValueIsInvalidError("timeout")
	}
	return nil
}

// Gateway implements ports.PaymentGateway using the Paystack REST API.
type Gateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewGateway creates a Paystack payment gateway client.
func NewGateway(cfg Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Gateway{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type initializeRequest struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Email     string `json:"email"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// Initialize starts a checkout session for the given payment reference.
// The returned intent carries the hosted payment page the customer must
// visit to authorize the charge.
func (g *Gateway) Initialize(
	ctx context.Context,
	reference string,
	amountMinor int64,
	email string,
) (ports.PaymentIntent, error) {
	if reference == "" {
		return ports.PaymentIntent{}, errs.NewValueIsRequiredError("reference")
	}
	if amountMinor <= 0 {
		return ports.PaymentIntent{}, errs.NewValueIsInvalidError("amountMinor")
	}
	if email == "" {
		return ports.PaymentIntent{}, errs.NewValueIsRequiredError("email")
	}

	body, err := json.Marshal(initializeRequest{
		Reference: reference,
		Amount:    amountMinor,
		Email:     email,
	})
	if err != nil {
		return ports.PaymentIntent{}, err
	}

	var parsed initializeResponse
	err = g.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &parsed)
	if err != nil {
		return ports.PaymentIntent{}, err
	}

	if !parsed.Status {
		return ports.PaymentIntent{}, fmt.Errorf(
			"%w: %s", ports.ErrPaymentDeclined, parsed.Message)
	}

	return ports.PaymentIntent{
		Reference:        parsed.Data.Reference,
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
	}, nil
}

// Verify fetches the settled state of a charge. Only a charge Paystack
// reports as successful yields a verification; anything else maps to
// ports.ErrPaymentDeclined.
func (g *Gateway) Verify(ctx context.Context, reference string) (ports.PaymentVerification, error) {
	if reference == "" {
		return ports.PaymentVerification{}, errs.NewValueIsRequiredError("reference")
	}

	var parsed verifyResponse
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := g.do(ctx, http.MethodGet, path, nil, &parsed); err != nil {
		return ports.PaymentVerification{}, err
	}

	if !parsed.Status || parsed.Data.Status != "success" {
		return ports.PaymentVerification{}, fmt.Errorf(
			"%w: charge status %q", ports.ErrPaymentDeclined, parsed.Data.Status)
	}

	return ports.PaymentVerification{
		Reference:   parsed.Data.Reference,
		AmountMinor: parsed.Data.Amount,
	}, nil
}

// do executes one API call and decodes the response body into out.
// Timeouts map to ports.ErrPaymentGatewayTimeout, transport failures and
// server errors to ports.ErrPaymentGatewayUnavailable.
func (g *Gateway) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ports.ErrPaymentGatewayTimeout, method, path)
		}
		return fmt.Errorf("%w: %v", ports.ErrPaymentGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ports.ErrPaymentGatewayUnavailable, resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ports.ErrPaymentGatewayUnavailable, err)
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
