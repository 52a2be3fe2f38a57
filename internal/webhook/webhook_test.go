package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-shop-bot/internal/payment"
	"telegram-shop-bot/internal/storage"
)

type fakeNotifier struct {
	notified []int64
}

func (f *fakeNotifier) NotifyChat(chatID int64, text string) error {
	f.notified = append(f.notified, chatID)
	return nil
}

type fakeGateway struct {
	payments map[string]*payment.Payment
}

func (f *fakeGateway) GetPayment(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, &payment.GatewayError{StatusCode: 404, Message: "payment not found"}
	}
	return p, nil
}

func (f *fakeGateway) CreatePreference(context.Context, payment.PreferenceRequest) (*payment.Preference, error) {
	panic("not used")
}

func (f *fakeGateway) CreatePIXCharge(context.Context, payment.ChargeRequest) (*payment.Charge, error) {
	panic("not used")
}

func newTestServer(t *testing.T) (*httptest.Server, storage.Store, *fakeNotifier, *fakeGateway) {
	t.Helper()
	store := storage.NewMemory()
	notifier := &fakeNotifier{}
	gateway := &fakeGateway{payments: make(map[string]*payment.Payment)}

	srv := httptest.NewServer(NewServer(store, gateway, notifier, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv, store, notifier, gateway
}

func post(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestApprovedPaymentMarksOrderAndNotifiesOnce(t *testing.T) {
	srv, store, notifier, gateway := newTestServer(t)

	require.NoError(t, store.SaveOrder(storage.Order{
		ID:     "order-1",
		UserID: 100,
		Total:  decimal.New(6500, -2),
		Status: storage.StatusPending,
	}))
	gateway.payments["555"] = &payment.Payment{
		ID: 555, Status: payment.StatusApproved, ExternalReference: "order-1",
	}

	resp := post(t, srv, `{"topic":"payment","id":"555"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	o, err := store.GetOrder("order-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusApproved, o.Status)
	assert.Equal(t, []int64{100}, notifier.notified)

	// Redelivery of the same notification changes nothing.
	post(t, srv, `{"topic":"payment","id":"555"}`)
	assert.Equal(t, []int64{100}, notifier.notified, "customer must not be messaged twice")
}

func TestNewNotificationShapeAccepted(t *testing.T) {
	srv, store, notifier, gateway := newTestServer(t)

	require.NoError(t, store.SaveOrder(storage.Order{
		ID: "order-2", UserID: 200, Status: storage.StatusPending,
	}))
	gateway.payments["777"] = &payment.Payment{
		ID: 777, Status: payment.StatusApproved, ExternalReference: "order-2",
	}

	resp := post(t, srv, `{"type":"payment","data":{"id":"777"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int64{200}, notifier.notified)
}

func TestNonApprovedPaymentIgnored(t *testing.T) {
	srv, store, notifier, gateway := newTestServer(t)

	require.NoError(t, store.SaveOrder(storage.Order{
		ID: "order-3", UserID: 300, Status: storage.StatusPending,
	}))
	gateway.payments["888"] = &payment.Payment{
		ID: 888, Status: "in_process", ExternalReference: "order-3",
	}

	post(t, srv, `{"topic":"payment","id":"888"}`)

	o, err := store.GetOrder("order-3")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPending, o.Status)
	assert.Empty(t, notifier.notified)
}

func TestUnrelatedTopicIgnored(t *testing.T) {
	srv, _, notifier, _ := newTestServer(t)

	resp := post(t, srv, `{"topic":"merchant_order","id":"1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, notifier.notified)
}

func TestGatewayLookupFailureReturnsBadGateway(t *testing.T) {
	srv, _, notifier, _ := newTestServer(t)

	resp := post(t, srv, `{"topic":"payment","id":"missing"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Empty(t, notifier.notified)
}

func TestHealthz(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
