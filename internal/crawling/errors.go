// Package crawling discovers and ranks follow-up pages on a company website.
package crawling

import "fmt"

// EmptyInputError is returned when a run is started without any usable seed URL
type EmptyInputError struct {
	Message string
	Cause   error
}

func (e *EmptyInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("empty input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("empty input: %s", e.Message)
}

func (e *EmptyInputError) Unwrap() error {
	return e.Cause
}

// LinkExtractionError represents a failure in extracting links from HTML
type LinkExtractionError struct {
	Message string
	Cause   error
}

func (e *LinkExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link extraction error: %s", e.Message)
}

func (e *LinkExtractionError) Unwrap() error {
	return e.Cause
}
