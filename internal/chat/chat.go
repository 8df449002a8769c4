package chat

import "fmt"

// EventType classifies an inbound chat event.
type EventType string

const (
	// EventText is a free-text message from the user.
	EventText EventType = "text"
	// EventPhoto is a message carrying a photo reference.
	EventPhoto EventType = "photo"
	// EventCancel is the explicit cancel command.
	EventCancel EventType = "cancel"
)

// PhotoRef is an opaque reference to a photo held by the transport.
// The core never interprets FileID; it hands it back to a Downloader.
type PhotoRef struct {
	FileID      string
	ContentType string
}

// Event is one inbound user interaction delivered by the transport.
type Event struct {
	Type   EventType
	UserID string
	Text   string
	Photo  PhotoRef
}

// Transport delivers outbound messages to a user. Implementations own
// their own timeouts; the core never inspects transport internals.
type Transport interface {
	// SendText sends a plain text message.
	SendText(userID, text string) error

	// SendTextWithChoices sends a text message together with a
	// one-time choice keyboard.
	SendTextWithChoices(userID, text string, choices []string) error

	// ClearChoices sends a text message and removes any choice
	// keyboard previously offered to the user.
	ClearChoices(userID, text string) error
}

// Downloader fetches the raw bytes behind a photo reference.
type Downloader interface {
	Download(ref PhotoRef) ([]byte, error)
}

// DownloadError wraps a failed photo retrieval.
type DownloadError struct {
	Ref PhotoRef
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading photo %q: %v", e.Ref.FileID, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
