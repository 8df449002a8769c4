package conversation

import (
	"strings"

	"github.com/tseretelitornike/payout-bot/internal/chat"
)

// Keyboard choices offered to the user, compared verbatim against
// inbound text.
const (
	ChoiceDelayed        = "delayed"
	ChoiceCancelled      = "cancelled"
	ChoiceDifferentTrain = "took different train"
	ChoiceCancelledTrip  = "I cancelled my trip"
)

// Next is the single-step transition relation of the conversation
// machine, assuming side effects succeed. It is total: an event with no
// defined transition for the state returns the state unchanged, which
// the dispatcher answers with a re-prompt. Terminal states absorb every
// event. Transient states (StateAskCause, StateSubmitting) advance on
// any event; the dispatcher steps through them synchronously.
func Next(s State, ev chat.Event) State {
	if s.Terminal() {
		return s
	}
	if ev.Type == chat.EventCancel {
		return StateCancelled
	}

	switch s {
	case StateStart:
		return StateAskCause

	case StateAskCause:
		return StateAwaitCauseChoice

	case StateAwaitCauseChoice:
		if ev.Type == chat.EventText {
			switch strings.TrimSpace(ev.Text) {
			case ChoiceDelayed:
				return StateAwaitTicketPhotoDelayed
			case ChoiceCancelled:
				return StateAwaitTicketPhotoCancelled
			}
		}

	case StateAwaitTicketPhotoDelayed, StateAwaitTicketPhotoReplacement:
		if ev.Type == chat.EventPhoto {
			return StateSubmitting
		}

	case StateAwaitTicketPhotoCancelled:
		if ev.Type == chat.EventPhoto {
			return StateAskReplacementChoice
		}

	case StateAskReplacementChoice:
		if ev.Type == chat.EventText {
			switch strings.TrimSpace(ev.Text) {
			case ChoiceDifferentTrain:
				return StateAwaitTicketPhotoReplacement
			case ChoiceCancelledTrip:
				return StateSubmitting
			}
		}

	case StateSubmitting:
		return StateAskCause
	}

	return s
}
