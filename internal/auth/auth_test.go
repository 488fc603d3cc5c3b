package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/genai"
)

func TestGetAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		explicit []string
		want     string
	}{
		{"env", "test-api-key-12345", nil, "test-api-key-12345"},
		{"explicit wins over env", "from-env", []string{"", "  from-config  "}, "from-config"},
		{"blank explicit falls through", "from-env", []string{"   "}, "from-env"},
		{"env is trimmed", "  padded  ", nil, "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("GEMINI_API_KEY", tt.env)

			got, err := GetAPIKey(tt.explicit...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("GetAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	_, err := GetAPIKey()
	var valErr *ValidationError
	if !errors.As(err, &valErr) || valErr.Type != ErrTypeNoKey {
		t.Fatalf("expected ErrTypeNoKey ValidationError, got %v", err)
	}
	if valErr.Err != nil {
		t.Errorf("missing credentials file should not be reported as a read error, got %v", valErr.Err)
	}
}

func TestGetCredentialPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := getCredentialPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := filepath.Join(home, ".media-rename", "credentials.gpg")
	if path != expected {
		t.Errorf("expected path %q, got %q", expected, path)
	}
}

func TestGetFromGPGFileNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := getFromGPG(); !errors.Is(err, errNoSource) {
		t.Errorf("getFromGPG() error = %v, want errNoSource", err)
	}
}

func TestPassphraseArgs(t *testing.T) {
	dir := t.TempDir()

	if _, ok := passphraseArgs(filepath.Join(dir, "missing")); ok {
		t.Error("missing passphrase file should be ignored")
	}

	open := filepath.Join(dir, "open")
	if err := os.WriteFile(open, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := passphraseArgs(open); ok {
		t.Error("world-readable passphrase file should be ignored")
	}

	private := filepath.Join(dir, "private")
	if err := os.WriteFile(private, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	args, ok := passphraseArgs(private)
	if !ok || args[len(args)-1] != private {
		t.Errorf("passphraseArgs(private) = %v, %v", args, ok)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expected   ErrorType
		persistent bool
	}{
		{"invalid key message", errors.New("API key not valid. Please pass a valid API key."), ErrTypeInvalidKey, true},
		{"quota message", errors.New("RESOURCE EXHAUSTED: quota"), ErrTypeQuotaExceeded, true},
		{"network message", errors.New("dial tcp: lookup generativelanguage.googleapis.com: no such host"), ErrTypeNetworkError, false},
		{"deadline", errors.New("context deadline exceeded"), ErrTypeNetworkError, false},
		{"unknown", errors.New("something odd"), ErrTypeUnknown, false},
		{"api 401", genai.APIError{Code: 401, Message: "unauthenticated"}, ErrTypeInvalidKey, true},
		{"api 429", genai.APIError{Code: 429, Message: "slow down"}, ErrTypeQuotaExceeded, true},
		{"api 503 wrapped", fmt.Errorf("call: %w", genai.APIError{Code: 503}), ErrTypeNetworkError, false},
		{"api pointer 403", fmt.Errorf("call: %w", &genai.APIError{Code: 403}), ErrTypeInvalidKey, true},
		{"api 418", genai.APIError{Code: 418, Message: "teapot"}, ErrTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Type != tt.expected {
				t.Errorf("Classify(%v).Type = %v, want %v", tt.err, got.Type, tt.expected)
			}
			if got.Type.Persistent() != tt.persistent {
				t.Errorf("%v.Persistent() = %v, want %v", got.Type, got.Type.Persistent(), tt.persistent)
			}
			if got.Unwrap() == nil {
				t.Errorf("ValidationError should wrap the original error")
			}
		})
	}
}

func TestClassifyPassesThroughValidationError(t *testing.T) {
	orig := &ValidationError{Type: ErrTypeNoKey, Message: "none"}
	if got := Classify(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Errorf("Classify should return the wrapped ValidationError, got %v", got)
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestErrorTypeString(t *testing.T) {
	if ErrTypeQuotaExceeded.String() != "quota" || ErrorType(42).String() != "unknown" {
		t.Errorf("unexpected labels: %q %q", ErrTypeQuotaExceeded, ErrorType(42))
	}
}
