package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *MercadoPago {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewMercadoPago("test-token", zerolog.Nop())
	c.baseURL = srv.URL
	return c
}

func TestCreatePIXCharge(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotIdemKey string

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("X-Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Write([]byte(`{
			"id": 123456,
			"status": "pending",
			"point_of_interaction": {"transaction_data": {
				"qr_code": "00020126pix", "qr_code_base64": "aW1hZ2U="
			}}
		}`))
	})

	charge, err := c.CreatePIXCharge(context.Background(), ChargeRequest{
		Amount:            decimal.New(23000, -2),
		Description:       "Pedido abc (2 itens)",
		PayerEmail:        "100@cliente.bot",
		ExternalReference: "order-abc",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(123456), charge.ID)
	assert.Equal(t, "00020126pix", charge.QRCode)
	assert.Equal(t, "aW1hZ2U=", charge.QRCodeBase64)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.NotEmpty(t, gotIdemKey)
	assert.Equal(t, 230.0, gotBody["transaction_amount"])
	assert.Equal(t, "pix", gotBody["payment_method_id"])
	assert.Equal(t, "order-abc", gotBody["external_reference"])
	payer := gotBody["payer"].(map[string]any)
	assert.Equal(t, "100@cliente.bot", payer["email"])
}

func TestCreatePIXChargeMissingTransactionData(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1, "status": "pending"}`))
	})

	_, err := c.CreatePIXCharge(context.Background(), ChargeRequest{Amount: decimal.New(100, -2)})
	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Message, "transaction data")
}

func TestCreatePreference(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		w.Write([]byte(`{"id": "pref-1", "init_point": "https://mp.example/redirect"}`))
	})

	pref, err := c.CreatePreference(context.Background(), PreferenceRequest{
		Title:  "Pedido",
		Amount: decimal.New(6500, -2),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://mp.example/redirect", pref.InitPoint)
}

func TestGatewayRejectionSurfacesStatusAndMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "invalid transaction_amount"}`))
	})

	_, err := c.CreatePIXCharge(context.Background(), ChargeRequest{Amount: decimal.New(100, -2)})
	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusBadRequest, gerr.StatusCode)
	assert.Equal(t, "invalid transaction_amount", gerr.Message)
}

func TestUnreachableGateway(t *testing.T) {
	c := NewMercadoPago("tok", zerolog.Nop())
	c.baseURL = "http://127.0.0.1:1" // nothing listens there

	_, err := c.GetPayment(context.Background(), "1")
	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Zero(t, gerr.StatusCode)
}

func TestGetPayment(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/555", r.URL.Path)
		w.Write([]byte(`{"id": 555, "status": "approved", "external_reference": "order-x"}`))
	})

	p, err := c.GetPayment(context.Background(), "555")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p.Status)
	assert.Equal(t, "order-x", p.ExternalReference)
}
