package conversation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tseretelitornike/payout-bot/internal/chat"
	"github.com/tseretelitornike/payout-bot/internal/claim"
)

var allStates = []State{
	StateStart,
	StateAskCause,
	StateAwaitCauseChoice,
	StateAwaitTicketPhotoDelayed,
	StateAwaitTicketPhotoCancelled,
	StateAskReplacementChoice,
	StateAwaitTicketPhotoReplacement,
	StateSubmitting,
	StateDone,
	StateCancelled,
}

var _ = Describe("Next", func() {
	probeEvents := []chat.Event{
		{Type: chat.EventText, UserID: "u", Text: "hello"},
		{Type: chat.EventText, UserID: "u", Text: ChoiceDelayed},
		{Type: chat.EventText, UserID: "u", Text: ChoiceCancelled},
		{Type: chat.EventText, UserID: "u", Text: ChoiceDifferentTrain},
		{Type: chat.EventText, UserID: "u", Text: ChoiceCancelledTrip},
		{Type: chat.EventPhoto, UserID: "u", Photo: chat.PhotoRef{FileID: "f"}},
		{Type: chat.EventCancel, UserID: "u"},
	}

	It("should be total: every state and event maps to a known state", func() {
		for _, s := range allStates {
			for _, ev := range probeEvents {
				Expect(allStates).To(ContainElement(Next(s, ev)))
			}
		}
	})

	It("should stay put on events with no defined transition", func() {
		unrelated := chat.Event{Type: chat.EventText, UserID: "u", Text: "hello"}
		for _, s := range []State{
			StateAwaitCauseChoice,
			StateAwaitTicketPhotoDelayed,
			StateAwaitTicketPhotoCancelled,
			StateAwaitTicketPhotoReplacement,
			StateAskReplacementChoice,
		} {
			Expect(Next(s, unrelated)).To(Equal(s))
		}
	})

	It("should move a fresh session toward the cause question", func() {
		ev := chat.Event{Type: chat.EventText, UserID: "u", Text: "Hi"}
		Expect(Next(StateStart, ev)).To(Equal(StateAskCause))
		Expect(Next(StateAskCause, ev)).To(Equal(StateAwaitCauseChoice))
	})

	It("should branch on the cause choice", func() {
		delayed := chat.Event{Type: chat.EventText, UserID: "u", Text: ChoiceDelayed}
		cancelled := chat.Event{Type: chat.EventText, UserID: "u", Text: ChoiceCancelled}
		Expect(Next(StateAwaitCauseChoice, delayed)).To(Equal(StateAwaitTicketPhotoDelayed))
		Expect(Next(StateAwaitCauseChoice, cancelled)).To(Equal(StateAwaitTicketPhotoCancelled))
	})

	It("should accept photos only in photo-wait states", func() {
		photo := chat.Event{Type: chat.EventPhoto, UserID: "u", Photo: chat.PhotoRef{FileID: "f"}}
		Expect(Next(StateAwaitTicketPhotoDelayed, photo)).To(Equal(StateSubmitting))
		Expect(Next(StateAwaitTicketPhotoCancelled, photo)).To(Equal(StateAskReplacementChoice))
		Expect(Next(StateAwaitTicketPhotoReplacement, photo)).To(Equal(StateSubmitting))
		Expect(Next(StateAwaitCauseChoice, photo)).To(Equal(StateAwaitCauseChoice))
	})

	It("should branch on the replacement choice", func() {
		different := chat.Event{Type: chat.EventText, UserID: "u", Text: ChoiceDifferentTrain}
		abandoned := chat.Event{Type: chat.EventText, UserID: "u", Text: ChoiceCancelledTrip}
		Expect(Next(StateAskReplacementChoice, different)).To(Equal(StateAwaitTicketPhotoReplacement))
		Expect(Next(StateAskReplacementChoice, abandoned)).To(Equal(StateSubmitting))
	})

	It("should loop back to the cause question after submitting", func() {
		ev := chat.Event{Type: chat.EventText, UserID: "u"}
		Expect(Next(StateSubmitting, ev)).To(Equal(StateAskCause))
	})

	It("should cancel from every non-terminal state", func() {
		cancel := chat.Event{Type: chat.EventCancel, UserID: "u"}
		for _, s := range allStates {
			if s.Terminal() {
				continue
			}
			Expect(Next(s, cancel)).To(Equal(StateCancelled))
		}
	})

	It("should absorb every event in terminal states", func() {
		for _, s := range []State{StateDone, StateCancelled} {
			for _, ev := range probeEvents {
				Expect(Next(s, ev)).To(Equal(s))
			}
		}
	})
})

var _ = Describe("State", func() {
	It("should map causes to photo-wait states and back", func() {
		for _, cause := range []claim.Cause{claim.CauseDelayed, claim.CauseCancelled, claim.CauseReplacement} {
			s := AwaitTicketPhoto(cause)
			got, ok := s.PhotoCause()
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(cause))
		}
	})

	It("should report no cause for non-photo states", func() {
		_, ok := StateAskCause.PhotoCause()
		Expect(ok).To(BeFalse())
	})
})
