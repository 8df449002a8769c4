package conversation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is the per-user scratch storage collaborator. It holds the
// downloaded ticket photo and intermediate OCR output for the lifetime
// of a session. Handles are opaque to the state machine.
type Workspace interface {
	// Create allocates (or reuses) the scratch directory for a user
	// and returns its handle.
	Create(userID string) (string, error)

	// Delete reclaims a scratch directory.
	Delete(dir string) error

	// SaveTicket stores the downloaded ticket under the directory and
	// returns the file path. The extension follows the content type.
	SaveTicket(dir string, data []byte, contentType string) (string, error)

	// SaveText stores a text artifact (such as the raw OCR output)
	// under the directory.
	SaveText(dir, name, text string) error
}

// LocalWorkspace implements Workspace with one directory per user under
// a base path.
type LocalWorkspace struct {
	base string
}

// NewLocalWorkspace creates the base directory if needed.
func NewLocalWorkspace(base string) (*LocalWorkspace, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace base: %w", err)
	}
	return &LocalWorkspace{base: base}, nil
}

// Create allocates the user's scratch directory.
func (w *LocalWorkspace) Create(userID string) (string, error) {
	dir := filepath.Join(w.base, userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating user directory: %w", err)
	}
	return dir, nil
}

// Delete removes a scratch directory. Deleting paths outside the base
// is refused.
func (w *LocalWorkspace) Delete(dir string) error {
	rel, err := filepath.Rel(w.base, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("directory %q is not under workspace base", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("deleting user directory: %w", err)
	}
	return nil
}

// SaveTicket writes the downloaded ticket bytes into the directory.
func (w *LocalWorkspace) SaveTicket(dir string, data []byte, contentType string) (string, error) {
	path := filepath.Join(dir, "ticket"+ticketExt(contentType))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing ticket file: %w", err)
	}
	return path, nil
}

// SaveText writes a text artifact into the directory.
func (w *LocalWorkspace) SaveText(dir, name, text string) error {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Sweep removes every user directory under the base. Run at startup to
// reclaim storage left behind by a previous process.
func (w *LocalWorkspace) Sweep() error {
	entries, err := os.ReadDir(w.base)
	if err != nil {
		return fmt.Errorf("reading workspace base: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(w.base, entry.Name())); err != nil {
			return fmt.Errorf("sweeping %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func ticketExt(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/heic", "image/heif":
		return ".heic"
	default:
		return ".jpg"
	}
}
