package dialog

import "errors"

var (
	// ErrMissingSessionValue means a step needed data an earlier step should have stored.
	// The engine answers with a generic error and ends the dialog.
	ErrMissingSessionValue = errors.New("session value missing")
	// ErrEmptyUserID rejects events without a sender.
	ErrEmptyUserID = errors.New("event has no user id")
	// ErrNilContext rejects nil contexts.
	ErrNilContext = errors.New("context cannot be nil")
)

// ErrorReply is what adapters send when Handle returns an error.
func ErrorReply() Reply {
	return text(msgGenericError)
}
