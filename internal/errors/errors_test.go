package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "session not found",
			},
			want: "session not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeTokenExchangeFailed,
				Message: "token exchange failed",
				Cause:   errors.New("connection refused"),
			},
			want: "token exchange failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeDecryptionFailed, "decrypt")

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{"invalid argument", InvalidArgument("verifier is blank"), ErrCodeInvalidArgument, "verifier is blank"},
		{"invalid argument formatted", InvalidArgumentf("%s is blank", "state"), ErrCodeInvalidArgument, "state is blank"},
		{"configuration", Configurationf("provider %s lacks %s", "p1", "token_endpoint"), ErrCodeConfiguration, "provider p1 lacks token_endpoint"},
		{"token exchange", TokenExchangeFailed("no id_token"), ErrCodeTokenExchangeFailed, "no id_token"},
		{"invalid id token", InvalidIDTokenf("kid %q not found", "k1"), ErrCodeInvalidIDToken, `kid "k1" not found`},
		{"not found", NotFoundf("session %s", "abc"), ErrCodeNotFound, "session abc"},
		{"invalid state", InvalidStatef("session is %s", "completed"), ErrCodeInvalidState, "session is completed"},
		{"format verbs kept without args", InvalidArgumentf("100%"), ErrCodeInvalidArgument, "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestInvalidArgumentField(t *testing.T) {
	err := InvalidArgumentField("source_path", "source path cannot be empty")
	if err.Field != "source_path" {
		t.Errorf("Field = %v, want source_path", err.Field)
	}
	if GetField(err) != "source_path" {
		t.Errorf("GetField() = %v, want source_path", GetField(err))
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "wrapped"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, ErrCodeInternal, "wrapped %d", 1); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestPredicates_SurviveWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"invalid argument", InvalidArgument("x"), IsInvalidArgument},
		{"configuration", Configuration("x"), IsConfiguration},
		{"token exchange", TokenExchangeFailed("x"), IsTokenExchangeFailed},
		{"invalid id token", InvalidIDToken("x"), IsInvalidIDToken},
		{"not found", NotFound("x"), IsNotFound},
		{"invalid state", InvalidState("x"), IsInvalidState},
		{"decryption", Wrap(errors.New("tag"), ErrCodeDecryptionFailed, "x"), IsDecryptionFailed},
		{"encryption", Wrap(errors.New("rand"), ErrCodeEncryptionFailed, "x"), IsEncryptionFailed},
		{"conflict", Conflict("x"), IsConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("predicate did not match wrapped %v", wrapped)
			}
			if tt.check(errors.New("plain")) {
				t.Error("predicate matched a plain error")
			}
			if tt.check(nil) {
				t.Error("predicate matched nil")
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(fmt.Errorf("ctx: %w", InvalidState("done"))); got != ErrCodeInvalidState {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInvalidState)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}
