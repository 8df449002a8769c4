package claim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FormFiller produces the filled refund form artifact for a claim. The
// dir argument is the user's working directory handle.
type FormFiller interface {
	Submit(dir string, c Claim) error
}

// SubmissionError wraps a failed form submission.
type SubmissionError struct {
	ClaimID string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submitting claim %s: %v", e.ClaimID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// LocalFormFiller writes the claim as a JSON artifact into the working
// directory. It stands in for the external PDF form service; swapping
// in a real renderer only needs another FormFiller.
type LocalFormFiller struct{}

// Submit writes claim_<id>.json next to the downloaded ticket.
func (LocalFormFiller) Submit(dir string, c Claim) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return &SubmissionError{ClaimID: c.ID, Err: err}
	}
	path := filepath.Join(dir, fmt.Sprintf("claim_%s.json", c.ID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &SubmissionError{ClaimID: c.ID, Err: err}
	}
	return nil
}
