package chat

import "errors"

// ErrorKind classifies user-visible failures reported back to the caller.
type ErrorKind string

// Error kinds.
const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindProfanity  ErrorKind = "profanity"
	KindUnknown    ErrorKind = "unknown"
)

// Error is a recoverable, user-visible failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Sentinel errors.
var (
	ErrUsernameRoomRequired = &Error{Kind: KindValidation, Message: "username and room are required!"}
	ErrUsernameTaken        = &Error{Kind: KindConflict, Message: "user name is in use!"}
	ErrAlreadyJoined        = &Error{Kind: KindConflict, Message: "already joined a room!"}
	ErrUserNotFound         = &Error{Kind: KindNotFound, Message: "user not found!"}
	ErrSessionClosed        = &Error{Kind: KindNotFound, Message: "session is closed!"}
	ErrProfanity            = &Error{Kind: KindProfanity, Message: "Profanity is not allowed!"}
)

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
