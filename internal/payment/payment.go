// Package payment isolates every assumption about the payment gateway's
// request and response shapes behind a narrow client interface, so the rest
// of the bot can be tested against a fake.
package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// GatewayError is any failure reported by (or while reaching) the gateway.
// Callers distinguish it from programming errors with errors.As.
type GatewayError struct {
	StatusCode int // 0 when the request never got a response
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("payment gateway unreachable: %s", e.Message)
	}
	return fmt.Sprintf("payment gateway returned %d: %s", e.StatusCode, e.Message)
}

// PreferenceRequest asks for a redirect-link checkout.
type PreferenceRequest struct {
	Title             string
	Amount            decimal.Decimal
	PayerEmail        string
	ExternalReference string
}

type Preference struct {
	ID        string
	InitPoint string
}

// ChargeRequest asks for a direct PIX charge.
type ChargeRequest struct {
	Amount            decimal.Decimal
	Description       string
	PayerEmail        string
	ExternalReference string
}

// Charge carries the PIX payload: the copy-and-paste string and the QR
// image already rendered by the gateway, base64-encoded.
type Charge struct {
	ID           int64
	Status       string
	QRCode       string
	QRCodeBase64 string
}

// Payment is the slice of a gateway payment object the webhook needs.
type Payment struct {
	ID                int64
	Status            string
	ExternalReference string
}

const StatusApproved = "approved"

type Client interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	CreatePIXCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}
