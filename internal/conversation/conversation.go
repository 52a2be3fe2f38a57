// Package conversation models the bot's dialogue as a named state enum with
// an explicit transition table, so the flow can be exercised without a live
// chat transport.
package conversation

import "fmt"

type State int

const (
	StateIdle State = iota
	StateAskName
	StateAskPhone
	StateMenu
	StateSelectCategory
	StateSelectProduct
	StateAskMAC
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAskName:
		return "ask_name"
	case StateAskPhone:
		return "ask_phone"
	case StateMenu:
		return "menu"
	case StateSelectCategory:
		return "select_category"
	case StateSelectProduct:
		return "select_product"
	case StateAskMAC:
		return "ask_mac"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Event int

const (
	EventStart Event = iota
	EventAlreadyRegistered
	EventNameGiven
	EventPhoneGiven
	EventBrowse
	EventCategoryChosen
	EventProductAdded
	EventMACRequired
	EventMACGiven
	EventBack
	EventCheckout
	EventCancel
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventAlreadyRegistered:
		return "already_registered"
	case EventNameGiven:
		return "name_given"
	case EventPhoneGiven:
		return "phone_given"
	case EventBrowse:
		return "browse"
	case EventCategoryChosen:
		return "category_chosen"
	case EventProductAdded:
		return "product_added"
	case EventMACRequired:
		return "mac_required"
	case EventMACGiven:
		return "mac_given"
	case EventBack:
		return "back"
	case EventCheckout:
		return "checkout"
	case EventCancel:
		return "cancel"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStart:             StateAskName,
		EventAlreadyRegistered: StateMenu,
	},
	StateAskName: {
		EventNameGiven: StateAskPhone,
		EventCancel:    StateIdle,
	},
	StateAskPhone: {
		EventPhoneGiven: StateMenu,
		EventCancel:     StateIdle,
	},
	StateMenu: {
		EventBrowse:   StateSelectCategory,
		EventCheckout: StateMenu,
		EventCancel:   StateMenu,
	},
	StateSelectCategory: {
		EventCategoryChosen: StateSelectProduct,
		EventBack:           StateMenu,
		EventCancel:         StateMenu,
	},
	StateSelectProduct: {
		EventProductAdded: StateSelectProduct,
		EventMACRequired:  StateAskMAC,
		EventBack:         StateSelectCategory,
		EventCheckout:     StateMenu,
		EventCancel:       StateMenu,
	},
	StateAskMAC: {
		EventMACGiven: StateSelectProduct,
		EventCancel:   StateMenu,
	},
}

// Next returns the state reached from s on event e, or an error when the
// transition table does not define that move.
func Next(s State, e Event) (State, error) {
	row, ok := transitions[s]
	if !ok {
		return s, fmt.Errorf("conversation: no transitions from %s", s)
	}
	next, ok := row[e]
	if !ok {
		return s, fmt.Errorf("conversation: event %s not allowed in state %s", e, s)
	}
	return next, nil
}
