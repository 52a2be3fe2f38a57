package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-shop-bot/internal/storage"
)

const maxOrderListing = 10

func (b *Bot) requireAdmin(userID int64) bool {
	if b.cfg.IsAdmin(userID) {
		return true
	}
	b.send(userID, "⛔ Você não tem permissão para usar este comando.")
	return false
}

func (b *Bot) adminListOrders(userID int64) {
	if !b.requireAdmin(userID) {
		return
	}

	orders, err := b.store.ListOrders()
	if err != nil {
		b.log.Error().Err(err).Msg("list orders failed")
		b.send(userID, "⚠️ Não foi possível listar os pedidos.")
		return
	}
	if len(orders) == 0 {
		b.send(userID, "Nenhum pedido registrado.")
		return
	}
	if len(orders) > maxOrderListing {
		orders = orders[:maxOrderListing]
	}

	var sb strings.Builder
	sb.WriteString("📋 Últimos pedidos:\n\n")
	for _, o := range orders {
		fmt.Fprintf(&sb, "%s — %s — R$ %s — %s — %s\n",
			shortID(o.ID), o.UserName, o.Total.StringFixed(2), statusLabel(o.Status),
			o.CreatedAt.Format("02/01 15:04"))
	}
	sb.WriteString("\nUse /entregar <id> para marcar um pedido como entregue.")
	b.send(userID, sb.String())
}

func (b *Bot) adminDeliver(userID int64, orderID string) {
	if !b.requireAdmin(userID) {
		return
	}
	if orderID == "" {
		b.send(userID, "Uso: /entregar <id do pedido>")
		return
	}

	order, err := b.findOrder(orderID)
	if errors.Is(err, storage.ErrNotFound) {
		b.send(userID, fmt.Sprintf("❌ Pedido %s não encontrado.", orderID))
		return
	}
	if err != nil {
		b.log.Error().Err(err).Str("order_id", orderID).Msg("lookup order failed")
		b.send(userID, "⚠️ Não foi possível consultar o pedido.")
		return
	}

	if err := b.store.UpdateOrderStatus(order.ID, storage.StatusDelivered); err != nil {
		b.log.Error().Err(err).Str("order_id", order.ID).Msg("mark delivered failed")
		b.send(userID, "⚠️ Não foi possível atualizar o pedido.")
		return
	}

	b.send(order.UserID, fmt.Sprintf("📦 Seu pedido %s foi entregue! Obrigado pela compra.", shortID(order.ID)))
	b.send(userID, fmt.Sprintf("✅ Pedido %s marcado como entregue.", shortID(order.ID)))
}

// findOrder accepts either the full order id or the shortened prefix shown
// in listings and notifications.
func (b *Bot) findOrder(id string) (storage.Order, error) {
	order, err := b.store.GetOrder(id)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Order{}, err
	}

	orders, err := b.store.ListOrders()
	if err != nil {
		return storage.Order{}, err
	}
	for _, o := range orders {
		if strings.HasPrefix(o.ID, id) {
			return o, nil
		}
	}
	return storage.Order{}, storage.ErrNotFound
}

func (b *Bot) adminReport(userID int64) {
	if !b.requireAdmin(userID) {
		return
	}

	totals, err := b.store.RevenueByMonth()
	if err != nil {
		b.log.Error().Err(err).Msg("revenue aggregation failed")
		b.send(userID, "⚠️ Não foi possível gerar o relatório.")
		return
	}

	month := time.Now().Format("2006-01")
	t := totals[month]
	b.send(userID, fmt.Sprintf(
		"📊 Relatório %s\n\nPedidos pagos: %d\nItens vendidos: %d\nArrecadado: R$ %s",
		month, t.Orders, t.Items, t.Revenue.StringFixed(2)))
}

func statusLabel(s storage.Status) string {
	switch s {
	case storage.StatusPending:
		return "⏳ pendente"
	case storage.StatusApproved:
		return "💰 pago"
	case storage.StatusDelivered:
		return "📦 entregue"
	default:
		return string(s)
	}
}
