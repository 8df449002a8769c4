package conversation

import "github.com/tseretelitornike/payout-bot/internal/claim"

// State is a conversation state. The set is closed; every transition
// the machine can make is enumerated in Next.
type State string

const (
	// StateStart is the state of a freshly created session, before the
	// first event is handled.
	StateStart State = "start"

	// StateAskCause is the transient state in which the cause keyboard
	// is presented. Dispatch moves through it within one event.
	StateAskCause State = "ask_cause"

	// StateAwaitCauseChoice waits for the user to pick delayed or
	// cancelled.
	StateAwaitCauseChoice State = "await_cause_choice"

	// StateAwaitTicketPhotoDelayed waits for the delayed-train ticket.
	StateAwaitTicketPhotoDelayed State = "await_ticket_photo_delayed"

	// StateAwaitTicketPhotoCancelled waits for the cancelled-train
	// ticket.
	StateAwaitTicketPhotoCancelled State = "await_ticket_photo_cancelled"

	// StateAskReplacementChoice waits for the replacement-train answer.
	StateAskReplacementChoice State = "ask_replacement_choice"

	// StateAwaitTicketPhotoReplacement waits for the replacement-train
	// ticket.
	StateAwaitTicketPhotoReplacement State = "await_ticket_photo_replacement"

	// StateSubmitting is the transient state while a claim is handed to
	// the form collaborator. Dispatch always leaves it within the same
	// event, back to StateAskCause.
	StateSubmitting State = "submitting"

	// StateDone marks a session that finished normally.
	StateDone State = "done"

	// StateCancelled marks a session the user cancelled.
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further events are processed in s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// AwaitTicketPhoto returns the photo-wait state parameterized by cause.
func AwaitTicketPhoto(cause claim.Cause) State {
	switch cause {
	case claim.CauseDelayed:
		return StateAwaitTicketPhotoDelayed
	case claim.CauseCancelled:
		return StateAwaitTicketPhotoCancelled
	case claim.CauseReplacement:
		return StateAwaitTicketPhotoReplacement
	}
	return StateStart
}

// PhotoCause reports the cause a photo-wait state is parameterized by.
func (s State) PhotoCause() (claim.Cause, bool) {
	switch s {
	case StateAwaitTicketPhotoDelayed:
		return claim.CauseDelayed, true
	case StateAwaitTicketPhotoCancelled:
		return claim.CauseCancelled, true
	case StateAwaitTicketPhotoReplacement:
		return claim.CauseReplacement, true
	}
	return "", false
}
