package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "test message: %s", "value")

	if err.Code != ErrCodeConfigInvalid {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConfigInvalid)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "CONFIG_INVALID: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeImageRead, cause, "failed to decode")

	if err.Code != ErrCodeImageRead {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeImageRead)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeConfigInvalid, "test"),
			code:     ErrCodeConfigInvalid,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeConfigInvalid, "test"),
			code:     ErrCodeImageRead,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeConfigInvalid,
			expected: false,
		},
		{
			name:     "wrapped structured error",
			err:      Wrap(ErrCodeLimitExceeded, errors.New("inner"), "outer"),
			code:     ErrCodeLimitExceeded,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRenderIO, "oops")); got != ErrCodeRenderIO {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeRenderIO)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeImageRead, "cannot read page.png")); got != "cannot read page.png" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
