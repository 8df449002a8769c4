package chat

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ConsoleTransport prints outbound messages to a writer. It is the
// development transport used by the payout-bot binary; real chat
// transports implement the same interface externally.
type ConsoleTransport struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleTransport creates a ConsoleTransport writing to w.
func NewConsoleTransport(w io.Writer) *ConsoleTransport {
	return &ConsoleTransport{w: w}
}

// SendText prints a plain text message.
func (c *ConsoleTransport) SendText(userID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "bot> %s\n", text)
	return err
}

// SendTextWithChoices prints a text message followed by the offered choices.
func (c *ConsoleTransport) SendTextWithChoices(userID, text string, choices []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "bot> %s\n", text); err != nil {
		return err
	}
	quoted := make([]string, 0, len(choices))
	for _, choice := range choices {
		quoted = append(quoted, fmt.Sprintf("[%s]", choice))
	}
	_, err := fmt.Fprintf(c.w, "bot> options: %s\n", strings.Join(quoted, " "))
	return err
}

// ClearChoices prints a text message. A console has no keyboard to remove.
func (c *ConsoleTransport) ClearChoices(userID, text string) error {
	return c.SendText(userID, text)
}

// FileDownloader resolves photo references as local file paths. It backs
// the console transport, where the user names a file instead of sending
// an actual photo message.
type FileDownloader struct{}

// Download reads the referenced file from disk.
func (FileDownloader) Download(ref PhotoRef) ([]byte, error) {
	data, err := os.ReadFile(ref.FileID)
	if err != nil {
		return nil, &DownloadError{Ref: ref, Err: err}
	}
	return data, nil
}
