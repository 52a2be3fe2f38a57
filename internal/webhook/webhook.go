// Package webhook receives Mercado Pago payment notifications, reconciles
// them with stored orders and tells the customer their payment went through.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/payment"
	"telegram-shop-bot/internal/storage"
)

// Notifier sends a message to a chat. The bot implements it.
type Notifier interface {
	NotifyChat(chatID int64, text string) error
}

type Server struct {
	store    storage.Store
	payments payment.Client
	notifier Notifier
	log      zerolog.Logger
}

func NewServer(store storage.Store, payments payment.Client, notifier Notifier, log zerolog.Logger) *Server {
	return &Server{
		store:    store,
		payments: payments,
		notifier: notifier,
		log:      log.With().Str("component", "webhook").Logger(),
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Use(instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", MetricsHandler())
	r.Post("/webhook", s.handleNotification)

	return r
}

// notification covers both payload shapes Mercado Pago sends: the legacy
// topic/id pair and the newer type/data.id form.
type notification struct {
	Topic string `json:"topic"`
	ID    any    `json:"id"`
	Type  string `json:"type"`
	Data  struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (n notification) paymentID() (string, bool) {
	if n.Topic == "payment" && n.ID != nil {
		switch v := n.ID.(type) {
		case string:
			return v, v != ""
		case float64:
			return strconv.FormatInt(int64(v), 10), true
		}
	}
	if n.Type == "payment" && n.Data.ID != "" {
		return n.Data.ID, true
	}
	return "", false
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	var n notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	// Always answer 200 for payloads we recognize but do not act on;
	// the gateway retries anything else.
	paymentID, ok := n.paymentID()
	if !ok {
		writeOK(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	p, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		s.log.Error().Err(err).Str("payment_id", paymentID).Msg("payment lookup failed")
		http.Error(w, "gateway lookup failed", http.StatusBadGateway)
		return
	}

	if p.Status != payment.StatusApproved {
		writeOK(w)
		return
	}

	s.applyApproval(p)
	writeOK(w)
}

// applyApproval marks the referenced order approved and notifies its chat.
// Gateways redeliver notifications, so an already-approved order is left
// alone and the customer is not messaged twice.
func (s *Server) applyApproval(p *payment.Payment) {
	if p.ExternalReference == "" {
		s.log.Warn().Int64("payment_id", p.ID).Msg("approved payment without external_reference")
		return
	}

	order, err := s.store.GetOrder(p.ExternalReference)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Warn().Str("order_id", p.ExternalReference).Msg("approved payment for unknown order")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("order_id", p.ExternalReference).Msg("order lookup failed")
		return
	}

	if order.Status != storage.StatusPending {
		return
	}

	if err := s.store.UpdateOrderStatus(order.ID, storage.StatusApproved); err != nil {
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("mark approved failed")
		return
	}

	if err := s.notifier.NotifyChat(order.UserID, "✅ Pagamento confirmado com sucesso! Seu pedido está sendo preparado."); err != nil {
		s.log.Error().Err(err).Int64("chat_id", order.UserID).Msg("confirmation message failed")
	}
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
