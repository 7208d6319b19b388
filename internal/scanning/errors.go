package scanning

import "errors"

// Kind classifies why a scan could not produce a result
type Kind string

const (
	KindUnknown      Kind = ""
	KindConfig       Kind = "config_error"
	KindInvalidInput Kind = "invalid_request"
	KindProcessing   Kind = "processing_error"
)

var (
	// ErrNotConfigured is returned when no OCR provider can be called
	ErrNotConfigured = errors.New("ocr provider not configured")
	// ErrNoImage is returned when the request carries no image
	ErrNoImage = errors.New("no image provided")
	// ErrNoText is returned when the OCR provider found nothing to read
	ErrNoText = errors.New("no text detected in image")
)

// Error carries the Kind of a failed scan along with its cause
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var scanErr *Error
	if errors.As(err, &scanErr) {
		return scanErr.Kind
	}
	return KindUnknown
}
