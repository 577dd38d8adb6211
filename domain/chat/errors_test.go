package chat

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", ErrUsernameRoomRequired, KindValidation},
		{"conflict", ErrUsernameTaken, KindConflict},
		{"already joined", ErrAlreadyJoined, KindConflict},
		{"not found", ErrUserNotFound, KindNotFound},
		{"closed", ErrSessionClosed, KindNotFound},
		{"profanity", ErrProfanity, KindProfanity},
		{"wrapped", fmt.Errorf("join: %w", ErrUsernameTaken), KindConflict},
		{"plain", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUsernameRoomRequired, "username and room are required!"},
		{ErrUsernameTaken, "user name is in use!"},
		{ErrUserNotFound, "user not found!"},
		{ErrProfanity, "Profanity is not allowed!"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestSentinelsMatchWithErrorsIs(t *testing.T) {
	err := fmt.Errorf("send: %w", ErrProfanity)
	if !errors.Is(err, ErrProfanity) {
		t.Error("expected wrapped error to match ErrProfanity")
	}
	if errors.Is(err, ErrUserNotFound) {
		t.Error("did not expect wrapped error to match ErrUserNotFound")
	}
}
