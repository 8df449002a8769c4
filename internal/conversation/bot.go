package conversation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tseretelitornike/payout-bot/internal/chat"
	"github.com/tseretelitornike/payout-bot/internal/claim"
	"github.com/tseretelitornike/payout-bot/internal/extract"
	"github.com/tseretelitornike/payout-bot/internal/ocr"
)

// Messages sent to the user. The submission texts keep the German
// wording of the forms they accompany.
const (
	msgGreeting = "Hi! My name is delay bot and I will assist you with claiming your refund. " +
		"Send cancel to stop talking to me.\n\n" +
		"Did your train get delayed or was completely canceled?"
	msgDelayedTicket     = "So your train was delayed. Please send me a screenshot of your mobile ticket."
	msgCancelledTicket   = "So your train was cancelled. Please send me a screenshot of your mobile ticket."
	msgReplacementAsk    = "Did you take a different train instead of cancel your trip?"
	msgReplacementTicket = "Please send me a screenshot of your mobile ticket."
	msgProcessing        = "Danke! Ich beantrage deine Erstattung."
	msgSendingForm       = "Ok. Ich sende dir das aufgefüllte Formular."
	msgSubmitted         = "Super! Deine Daten wurde übermittelt."
	msgSubmitFailed      = "Entschuldigung, es ist leider ein Fehler aufgetreten mit der Datei."
	msgBye               = "Bye! I hope we can talk again some day."
	msgNeedChoice        = "Please pick one of the offered options."
	msgNeedPhoto         = "I need a photo of your ticket to continue. Please send one, or cancel to stop."
	msgDownloadFailed    = "Sorry, I could not fetch that photo. Please try sending it again."
	msgOCRFailed         = "Sorry, I could not read your ticket right now. Please send the photo again."
)

// IDGenerator generates unique IDs for sessions and claims.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs.
type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// systemClock provides the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Bot drives conversations: it looks up the session for an inbound
// event, dispatches to the state handler, and emits outbound actions
// through the transport.
type Bot struct {
	store      *Store
	transport  chat.Transport
	downloader chat.Downloader
	recognizer ocr.Recognizer
	workspace  Workspace
	filler     claim.FormFiller
	archive    claim.Archive
	patterns   []extract.Pattern
	ids        IDGenerator
	clock      TimeSource
}

// New creates a Bot with the default ID generator, clock, and ticket
// pattern table.
func New(store *Store, transport chat.Transport, downloader chat.Downloader, recognizer ocr.Recognizer, workspace Workspace, filler claim.FormFiller, archive claim.Archive) *Bot {
	return NewWithDeps(store, transport, downloader, recognizer, workspace, filler, archive,
		extract.TicketPatterns(), uuidGenerator{}, systemClock{})
}

// NewWithDeps creates a Bot with custom dependencies for testing.
func NewWithDeps(store *Store, transport chat.Transport, downloader chat.Downloader, recognizer ocr.Recognizer, workspace Workspace, filler claim.FormFiller, archive claim.Archive, patterns []extract.Pattern, ids IDGenerator, clock TimeSource) *Bot {
	return &Bot{
		store:      store,
		transport:  transport,
		downloader: downloader,
		recognizer: recognizer,
		workspace:  workspace,
		filler:     filler,
		archive:    archive,
		patterns:   patterns,
		ids:        ids,
		clock:      clock,
	}
}

// HandleEvent processes one inbound event. Events for the same user are
// serialized on the session; the caller may invoke HandleEvent from any
// number of goroutines.
func (b *Bot) HandleEvent(ev chat.Event) error {
	if ev.UserID == "" {
		return fmt.Errorf("event without user id")
	}

	// Cancel is accepted in any state and bypasses the session lock so
	// that an in-flight handler cannot delay it.
	if ev.Type == chat.EventCancel {
		return b.cancel(ev.UserID)
	}

	s, ok := b.store.Get(ev.UserID)
	for !ok {
		fresh, err := b.openSession(ev.UserID)
		if err != nil {
			slog.Error("Failed to open session", "user_id", ev.UserID, "error", err)
			return err
		}
		if b.store.Add(fresh) {
			s = fresh
			break
		}
		// Lost a first-contact race. The winning session owns the same
		// working directory handle, so pick it up and discard ours.
		s, ok = b.store.Get(ev.UserID)
	}
	b.store.Put(s) // refresh TTL on every event

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Cancelled() || s.State.Terminal() {
		return nil
	}
	return b.dispatch(s, ev)
}

// openSession creates the session and allocates its working storage.
func (b *Bot) openSession(userID string) (*Session, error) {
	s := NewSession(b.ids.Generate(), userID)
	dir, err := b.workspace.Create(userID)
	if err != nil {
		return nil, fmt.Errorf("allocating working storage: %w", err)
	}
	s.WorkDir = dir
	slog.Info("Session opened", "user_id", userID, "session_id", s.ID)
	return s, nil
}

func (b *Bot) dispatch(s *Session, ev chat.Event) error {
	switch s.State {
	case StateStart:
		return b.askCause(s)
	case StateAskCause:
		// A previous cause prompt failed to send; retry it.
		return b.askCause(s)
	case StateAwaitCauseChoice:
		return b.handleCauseChoice(s, ev)
	case StateAwaitTicketPhotoDelayed:
		return b.handleTicketPhoto(s, ev, claim.CauseDelayed)
	case StateAwaitTicketPhotoCancelled:
		return b.handleCancelledPhoto(s, ev)
	case StateAwaitTicketPhotoReplacement:
		return b.handleTicketPhoto(s, ev, claim.CauseReplacement)
	case StateAskReplacementChoice:
		return b.handleReplacementChoice(s, ev)
	}
	return nil
}

// askCause presents the cause keyboard and moves the session into the
// choice-wait state. Every completed claim loops back here, so one
// session can file any number of claims. A failed send leaves the
// session in StateAskCause so the next event retries the prompt.
func (b *Bot) askCause(s *Session) error {
	s.State = StateAskCause
	if err := b.transport.SendTextWithChoices(s.UserID, msgGreeting, []string{ChoiceDelayed, ChoiceCancelled}); err != nil {
		return err
	}
	s.State = StateAwaitCauseChoice
	return nil
}

func (b *Bot) handleCauseChoice(s *Session, ev chat.Event) error {
	next := Next(s.State, ev)
	if next == s.State {
		return b.transport.SendTextWithChoices(s.UserID, msgNeedChoice, []string{ChoiceDelayed, ChoiceCancelled})
	}
	s.State = next
	switch next {
	case StateAwaitTicketPhotoDelayed:
		return b.transport.ClearChoices(s.UserID, msgDelayedTicket)
	case StateAwaitTicketPhotoCancelled:
		return b.transport.ClearChoices(s.UserID, msgCancelledTicket)
	}
	return nil
}

// handleTicketPhoto runs the full pipeline for causes that extract
// ticket data: download, OCR, extraction, assembly, submission. Every
// failure leaves the session in a state the user can retry from.
func (b *Bot) handleTicketPhoto(s *Session, ev chat.Event, cause claim.Cause) error {
	if ev.Type != chat.EventPhoto {
		return b.transport.SendText(s.UserID, msgNeedPhoto)
	}

	data, err := b.downloader.Download(ev.Photo)
	if err != nil {
		slog.Error("Photo download failed", "user_id", s.UserID, "error", err)
		return b.transport.SendText(s.UserID, msgDownloadFailed)
	}
	if s.Cancelled() {
		return nil
	}
	if _, err := b.workspace.SaveTicket(s.WorkDir, data, ev.Photo.ContentType); err != nil {
		slog.Warn("Failed to save ticket photo", "user_id", s.UserID, "error", err)
	}

	text, err := b.recognizer.RecognizeText(data, ev.Photo.ContentType)
	if err != nil {
		slog.Error("OCR failed", "user_id", s.UserID, "error", err)
		return b.transport.SendText(s.UserID, msgOCRFailed)
	}
	if s.Cancelled() {
		return nil
	}
	if err := b.workspace.SaveText(s.WorkDir, "ticket_ocr.txt", text); err != nil {
		slog.Warn("Failed to save OCR output", "user_id", s.UserID, "error", err)
	}

	if err := b.transport.SendText(s.UserID, msgProcessing); err != nil {
		slog.Warn("Failed to send processing notice", "user_id", s.UserID, "error", err)
	}

	fields := extract.Extract(text, b.patterns)
	for name, field := range fields {
		if field.Matched {
			s.ClaimData[name] = field.Value
		}
	}

	c := claim.Assemble(cause, fields, claim.Context{
		ClaimID:   b.ids.Generate(),
		SessionID: s.ID,
		UserID:    s.UserID,
	})
	if !c.Complete {
		slog.Warn("Claim incomplete", "user_id", s.UserID, "claim_id", c.ID, "missing", c.Missing)
	}
	return b.submit(s, c)
}

// handleCancelledPhoto stores the cancelled-train ticket and asks the
// replacement sub-question. Extraction for this path happens later, if
// the user took a replacement train.
func (b *Bot) handleCancelledPhoto(s *Session, ev chat.Event) error {
	if ev.Type != chat.EventPhoto {
		return b.transport.SendText(s.UserID, msgNeedPhoto)
	}

	data, err := b.downloader.Download(ev.Photo)
	if err != nil {
		slog.Error("Photo download failed", "user_id", s.UserID, "error", err)
		return b.transport.SendText(s.UserID, msgDownloadFailed)
	}
	if s.Cancelled() {
		return nil
	}
	if _, err := b.workspace.SaveTicket(s.WorkDir, data, ev.Photo.ContentType); err != nil {
		slog.Warn("Failed to save ticket photo", "user_id", s.UserID, "error", err)
	}

	s.State = StateAskReplacementChoice
	return b.transport.SendTextWithChoices(s.UserID, msgReplacementAsk, []string{ChoiceDifferentTrain, ChoiceCancelledTrip})
}

func (b *Bot) handleReplacementChoice(s *Session, ev chat.Event) error {
	next := Next(s.State, ev)
	if next == s.State {
		return b.transport.SendTextWithChoices(s.UserID, msgNeedChoice, []string{ChoiceDifferentTrain, ChoiceCancelledTrip})
	}

	switch next {
	case StateAwaitTicketPhotoReplacement:
		s.State = next
		return b.transport.ClearChoices(s.UserID, msgReplacementTicket)
	case StateSubmitting:
		// The user cancelled the trip outright. No ticket data was
		// extracted, so the claim goes out incomplete and the form
		// collaborator sees which fields are absent.
		if err := b.transport.ClearChoices(s.UserID, msgSendingForm); err != nil {
			slog.Warn("Failed to send form notice", "user_id", s.UserID, "error", err)
		}
		c := claim.Assemble(claim.CauseCancelled, nil, claim.Context{
			ClaimID:   b.ids.Generate(),
			SessionID: s.ID,
			UserID:    s.UserID,
		})
		return b.submit(s, c)
	}
	return nil
}

// submit hands the claim to the form collaborator and loops the session
// back to the cause question. Submission failure is reported to the
// user but never strands the session.
func (b *Bot) submit(s *Session, c claim.Claim) error {
	s.State = StateSubmitting

	if err := b.filler.Submit(s.WorkDir, c); err != nil {
		slog.Error("Form submission failed", "user_id", s.UserID, "claim_id", c.ID, "error", err)
		if err := b.transport.SendText(s.UserID, msgSubmitFailed); err != nil {
			slog.Warn("Failed to send failure notice", "user_id", s.UserID, "error", err)
		}
		return b.askCause(s)
	}

	if b.archive != nil {
		record := &claim.Record{Claim: c, SubmittedAt: b.clock.Now()}
		if err := b.archive.SaveRecord(record); err != nil {
			slog.Warn("Failed to archive claim", "claim_id", c.ID, "error", err)
		}
	}
	slog.Info("Claim submitted", "user_id", s.UserID, "claim_id", c.ID, "cause", c.Cause, "complete", c.Complete)

	if err := b.transport.SendText(s.UserID, msgSubmitted); err != nil {
		slog.Warn("Failed to send confirmation", "user_id", s.UserID, "error", err)
	}
	return b.askCause(s)
}

// cancel terminates a user's session from any state: the working
// storage is released, the session leaves the store, and any in-flight
// handler discards its results when its blocking call returns.
func (b *Bot) cancel(userID string) error {
	s, ok := b.store.Get(userID)
	if ok {
		s.Cancel()
		s.Release(b.workspace)
		b.store.Delete(userID)
		slog.Info("Session cancelled", "user_id", userID, "session_id", s.ID)
	}
	return b.transport.ClearChoices(userID, msgBye)
}
