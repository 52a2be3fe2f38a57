// Package callback encodes and parses the inline-button callback payloads.
// The wire shape stays colon-delimited so older clients with in-flight
// keyboards keep working, but every handler goes through the typed codec
// instead of splitting strings itself.
package callback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCategory  Kind = "categoria"
	KindProduct   Kind = "produto"
	KindViewCart  Kind = "ver_carrinho"
	KindCheckout  Kind = "finalizar"
	KindClearCart Kind = "limpar"
	KindBack      Kind = "voltar"
	KindDelivered Kind = "entregue"
)

var (
	ErrUnknownKind = errors.New("callback: unknown kind")
	ErrMalformed   = errors.New("callback: malformed payload")
)

// Data is the decoded form of one callback payload. Only the fields
// relevant to the Kind are populated.
type Data struct {
	Kind     Kind
	Category string          // KindCategory
	Product  string          // KindProduct
	Price    decimal.Decimal // KindProduct
	OrderID  string          // KindDelivered
}

// Encode renders d into its wire form. Encode and Parse round-trip.
func Encode(d Data) string {
	switch d.Kind {
	case KindCategory:
		return fmt.Sprintf("%s:%s", KindCategory, d.Category)
	case KindProduct:
		return fmt.Sprintf("%s:%s:%s", KindProduct, d.Product, d.Price.StringFixed(2))
	case KindDelivered:
		return fmt.Sprintf("%s:%s", KindDelivered, d.OrderID)
	default:
		return string(d.Kind)
	}
}

// Parse decodes a wire payload. Unknown kinds and payloads with missing or
// invalid fields are rejected with distinguished errors.
func Parse(raw string) (Data, error) {
	kind, rest, _ := strings.Cut(raw, ":")

	switch Kind(kind) {
	case KindViewCart, KindCheckout, KindClearCart, KindBack:
		if rest != "" {
			return Data{}, fmt.Errorf("%w: %q carries unexpected payload", ErrMalformed, raw)
		}
		return Data{Kind: Kind(kind)}, nil

	case KindCategory:
		if rest == "" {
			return Data{}, fmt.Errorf("%w: %q lacks category", ErrMalformed, raw)
		}
		return Data{Kind: KindCategory, Category: rest}, nil

	case KindDelivered:
		if rest == "" {
			return Data{}, fmt.Errorf("%w: %q lacks order id", ErrMalformed, raw)
		}
		return Data{Kind: KindDelivered, OrderID: rest}, nil

	case KindProduct:
		// Product names may themselves contain colons, so the price is
		// taken from the last separator.
		idx := strings.LastIndex(rest, ":")
		if idx <= 0 || idx == len(rest)-1 {
			return Data{}, fmt.Errorf("%w: %q lacks product or price", ErrMalformed, raw)
		}
		name, priceStr := rest[:idx], rest[idx+1:]
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return Data{}, fmt.Errorf("%w: bad price %q", ErrMalformed, priceStr)
		}
		return Data{Kind: KindProduct, Product: name, Price: price}, nil

	default:
		return Data{}, fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}
