package api

import "errors"

const unexpectedMessage = "An unexpected error occurred"

// Error is the normalised failure of a backend call. Its message is what the
// pages show to the user.
type Error struct {
	StatusCode int    // 0 when no response was received
	Detail     string // server detail, HTTP status text or transport message
	Err        error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return unexpectedMessage
	}
	return "API Error: " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message renders any error the way the pages display it: API errors keep
// their normalised text, anything else becomes the generic message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return unexpectedMessage
}
