package ocr

import "fmt"

// Recognizer turns a ticket photo into raw recognized text. The text is
// noisy and unstructured; field extraction happens downstream.
type Recognizer interface {
	// RecognizeText runs optical character recognition over an image
	// or PDF and returns the recognized text.
	RecognizeText(imageData []byte, contentType string) (string, error)

	// Close closes the recognizer and releases resources.
	Close() error
}

// ServiceError wraps failures of the external recognition service:
// network errors, quota errors, and unrecognizable content.
type ServiceError struct {
	Backend string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s ocr: %v", e.Backend, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
