package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.mercadopago.com"

// MercadoPago implements Client against the Mercado Pago REST API.
type MercadoPago struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	log         zerolog.Logger
}

func NewMercadoPago(accessToken string, log zerolog.Logger) *MercadoPago {
	return &MercadoPago{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		log:         log.With().Str("component", "mercadopago").Logger(),
	}
}

type preferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type preferenceBody struct {
	Items             []preferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	Payer             payerBody        `json:"payer"`
}

type payerBody struct {
	Email string `json:"email"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

func (c *MercadoPago) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	body := preferenceBody{
		Items: []preferenceItem{{
			Title:     req.Title,
			Quantity:  1,
			UnitPrice: req.Amount.InexactFloat64(),
		}},
		ExternalReference: req.ExternalReference,
		Payer:             payerBody{Email: req.PayerEmail},
	}

	var resp preferenceResponse
	if err := c.post(ctx, "/checkout/preferences", body, &resp); err != nil {
		return nil, err
	}
	if resp.InitPoint == "" {
		return nil, &GatewayError{Message: "preference response missing init_point"}
	}
	return &Preference{ID: resp.ID, InitPoint: resp.InitPoint}, nil
}

type chargeBody struct {
	TransactionAmount float64   `json:"transaction_amount"`
	Description       string    `json:"description"`
	PaymentMethodID   string    `json:"payment_method_id"`
	ExternalReference string    `json:"external_reference"`
	Payer             payerBody `json:"payer"`
}

type chargeResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (c *MercadoPago) CreatePIXCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	body := chargeBody{
		TransactionAmount: req.Amount.InexactFloat64(),
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: req.ExternalReference,
		Payer:             payerBody{Email: req.PayerEmail},
	}

	var resp chargeResponse
	if err := c.post(ctx, "/v1/payments", body, &resp); err != nil {
		return nil, err
	}

	data := resp.PointOfInteraction.TransactionData
	if data.QRCode == "" && data.QRCodeBase64 == "" {
		return nil, &GatewayError{Message: "charge response missing PIX transaction data"}
	}
	return &Charge{
		ID:           resp.ID,
		Status:       resp.Status,
		QRCode:       data.QRCode,
		QRCodeBase64: data.QRCodeBase64,
	}, nil
}

type paymentResponse struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

func (c *MercadoPago) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &Payment{ID: resp.ID, Status: resp.Status, ExternalReference: resp.ExternalReference}, nil
}

func (c *MercadoPago) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *MercadoPago) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("payment: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("payment: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		// A fresh key per attempt keeps a network-level duplicate of this
		// request from creating a second charge.
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("gateway rejected request")
		return &GatewayError{StatusCode: resp.StatusCode, Message: gatewayMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Message: "unparseable response body"}
	}
	return nil
}

// gatewayMessage pulls the human-readable message out of an error body,
// falling back to the raw payload.
func gatewayMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}
