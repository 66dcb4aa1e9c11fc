package extraction

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument is returned when a document yields no extractable text.
	ErrEmptyDocument = errors.New("no text found in document")
	// ErrNotPDF is returned for uploads without a PDF signature.
	ErrNotPDF = errors.New("only PDF files are allowed")
	// ErrTooLarge is returned for uploads above MaxDocumentSize.
	ErrTooLarge = errors.New("document exceeds size limit")
)

// ExtractionError reports a decode or IO fault while extracting text.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to parse document: %s", e.Reason)
	}
	return fmt.Sprintf("failed to parse document: %s: %v", e.Reason, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
