package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPath(t *testing.T) {
	steps := []struct {
		event Event
		want  State
	}{
		{EventStart, StateAskName},
		{EventNameGiven, StateAskPhone},
		{EventPhoneGiven, StateMenu},
		{EventBrowse, StateSelectCategory},
		{EventCategoryChosen, StateSelectProduct},
		{EventMACRequired, StateAskMAC},
		{EventMACGiven, StateSelectProduct},
		{EventCheckout, StateMenu},
	}

	state := StateIdle
	for _, step := range steps {
		next, err := Next(state, step.event)
		require.NoError(t, err, "event %s in state %s", step.event, state)
		assert.Equal(t, step.want, next)
		state = next
	}
}

func TestReturningUserSkipsRegistration(t *testing.T) {
	next, err := Next(StateIdle, EventAlreadyRegistered)
	require.NoError(t, err)
	assert.Equal(t, StateMenu, next)
}

func TestCancelDiscardsInProgressFlow(t *testing.T) {
	for _, from := range []State{StateMenu, StateSelectCategory, StateSelectProduct, StateAskMAC} {
		next, err := Next(from, EventCancel)
		require.NoError(t, err)
		assert.Equal(t, StateMenu, next, "cancel from %s", from)
	}
}

func TestUndefinedTransitionsRejected(t *testing.T) {
	cases := []struct {
		state State
		event Event
	}{
		{StateIdle, EventCheckout},
		{StateAskName, EventBrowse},
		{StateAskMAC, EventProductAdded},
		{StateMenu, EventMACGiven},
	}
	for _, c := range cases {
		_, err := Next(c.state, c.event)
		assert.Error(t, err, "event %s in state %s", c.event, c.state)
	}
}
