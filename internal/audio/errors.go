package audio

import "fmt"

// Reason identifies why an upload was rejected. Values are part of the wire
// contract and surfaced verbatim in the error response.
type Reason string

const (
	ReasonWrongFormat     Reason = "wrong-format"
	ReasonWrongSampleRate Reason = "wrong-sample-rate"
	ReasonTooShort        Reason = "duration-too-short"
	ReasonTooLong         Reason = "duration-too-long"
	ReasonDecodeError     Reason = "decode-error"
)

// ValidationError marks a client-caused rejection of the uploaded audio.
type ValidationError struct {
	Reason Reason
	cause  error
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.cause)
	}
	return string(e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func newValidationError(reason Reason, cause error) *ValidationError {
	return &ValidationError{Reason: reason, cause: cause}
}
