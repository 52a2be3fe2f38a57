// Package session keeps the per-user conversation state: registration
// progress, cart contents and the product awaiting a MAC address.
package session

import (
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"telegram-shop-bot/internal/catalog"
	"telegram-shop-bot/internal/conversation"
)

// CartItem is a denormalized snapshot of a selected product. MAC is empty
// for products that do not require one.
type CartItem struct {
	Name  string
	Price decimal.Decimal
	MAC   string
}

type Session struct {
	State   conversation.State
	Name    string
	Phone   string
	Cart    []CartItem
	Pending *catalog.Product
}

// Registered reports whether the registration flow has completed.
func (s *Session) Registered() bool {
	return s.Name != "" && s.Phone != ""
}

// CartTotal sums the prices of every item in the cart.
func (s *Session) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Cart {
		total = total.Add(item.Price)
	}
	return total
}

// Store is the in-memory session map keyed by chat id. All mutation goes
// through Update so callers never hold a reference across updates.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// GetOrCreate returns a copy of the user's session, creating an idle one on
// first contact.
func (s *Store) GetOrCreate(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{State: conversation.StateIdle}
		s.sessions[userID] = sess
	}

	out := *sess
	out.Cart = append([]CartItem(nil), sess.Cart...)
	if sess.Pending != nil {
		p := *sess.Pending
		out.Pending = &p
	}
	return out
}

// Update applies fn to the user's session under the store lock.
func (s *Store) Update(userID int64, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{State: conversation.StateIdle}
		s.sessions[userID] = sess
	}
	fn(sess)
}

var macRe = regexp.MustCompile(`^[0-9A-F]{12}$`)

// NormalizeMAC strips common separators, uppercases the rest and reports
// whether the result is a valid 12-hex-digit MAC address.
func NormalizeMAC(raw string) (string, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	for _, sep := range []string{":", "-", ".", " "} {
		cleaned = strings.ReplaceAll(cleaned, sep, "")
	}
	return cleaned, macRe.MatchString(cleaned)
}
