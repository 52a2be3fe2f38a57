// Package catalog defines the fixed product table the bot sells from.
// Products are baked into the binary; there is no runtime mutation.
package catalog

import "github.com/shopspring/decimal"

const (
	CategoryActivation = "ATIVAR APP"
	CategoryCredits    = "COMPRAR CRÉDITOS"
)

type Product struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	RequiresMAC bool
}

func price(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

var products = []Product{
	{Name: "➕ ASSIST+ R$ 65", Price: price(6500), Category: CategoryActivation, RequiresMAC: true},
	{Name: "📱 NINJA PLAYER R$65", Price: price(6500), Category: CategoryActivation, RequiresMAC: true},
	{Name: "📺 MEGA IPTV R$ 75", Price: price(7500), Category: CategoryActivation, RequiresMAC: true},
	{Name: "🧠 SMART ONE R$60", Price: price(7000), Category: CategoryActivation, RequiresMAC: true},
	{Name: "🎮 IBO PRO PLAYER R$50", Price: price(5000), Category: CategoryActivation, RequiresMAC: true},
	{Name: "📡 IBO TV OFICIAL R$50", Price: price(5000), Category: CategoryActivation, RequiresMAC: true},
	{Name: "🧩 DUPLECAST R$60", Price: price(6000), Category: CategoryActivation, RequiresMAC: true},
	{Name: "🌐 BAY TV R$60", Price: price(6000), Category: CategoryActivation, RequiresMAC: true},
	{Name: "🟣 QUICK PLAYER R$65", Price: price(6500), Category: CategoryActivation, RequiresMAC: true},
	{Name: "▶️ TIVI PLAYER R$65", Price: price(6500), Category: CategoryActivation, RequiresMAC: true},
	{Name: "🔥 SUPER PLAY R$50", Price: price(5000), Category: CategoryActivation, RequiresMAC: true},
	{Name: "☁️ CLOUDDY R$65", Price: price(6500), Category: CategoryActivation, RequiresMAC: true},

	{Name: "🎯 X SERVER PLAY (13,50und)", Price: price(1350), Category: CategoryCredits},
	{Name: "⚡ FAST PLAYER (13,50und)", Price: price(1350), Category: CategoryCredits},
	{Name: "👑 GOLD PLAY (13,50und)", Price: price(1350), Category: CategoryCredits},
	{Name: "📺 EI TV (13,50und)", Price: price(1350), Category: CategoryCredits},
	{Name: "🛰️ Z TECH (13,50und)", Price: price(1350), Category: CategoryCredits},
	{Name: "🧠 GENIAL PLAY (13,50und)", Price: price(1350), Category: CategoryCredits},
	{Name: "🚀 UPPER PLAY (15,00und)", Price: price(15000), Category: CategoryCredits},
}

// Categories returns the category names in menu order.
func Categories() []string {
	return []string{CategoryActivation, CategoryCredits}
}

// ByCategory returns the products of one category, in catalog order.
func ByCategory(category string) []Product {
	var out []Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Find looks a product up by its exact display name.
func Find(name string) (Product, bool) {
	for _, p := range products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
