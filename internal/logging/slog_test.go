package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "regular email", email: "alice@example.com"},
		{name: "another email", email: "bob@example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail(%q) = %q, want user: prefix", tt.email, got)
			}
			if strings.Contains(got, tt.email) {
				t.Errorf("AnonymizeEmail(%q) = %q leaks the raw email", tt.email, got)
			}
			// Same input must produce the same hash for correlation
			if again := AnonymizeEmail(tt.email); again != got {
				t.Errorf("AnonymizeEmail not deterministic: %q != %q", again, got)
			}
		})
	}

	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty", got)
	}
}

func TestAnonymizeEmail_DistinctInputs(t *testing.T) {
	a := AnonymizeEmail("alice@example.com")
	b := AnonymizeEmail("bob@example.com")
	if a == b {
		t.Error("Expected different hashes for different emails")
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: "<empty>"},
		{name: "short token", token: "abc", want: "[token:3 chars]"},
		{name: "jwt-like token", token: "eyJhbGciOiJSUzI1NiJ9.e30.sig", want: "[token:28 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "regular email", email: "alice@example.com", want: "example.com"},
		{name: "empty", email: "", want: ""},
		{name: "no at sign", email: "not-an-email", want: ""},
		{name: "multiple at signs", email: "a@b@c", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDomain(tt.email); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestErr_NilError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("operation", Err(nil))

	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("Expected no error attribute for nil error, got: %s", buf.String())
	}
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	l := WithOperation(logger, "calendar.create_event")
	l = WithCalendar(l, "primary")
	l.Info("done", Status(StatusSuccess))

	out := buf.String()
	for _, want := range []string{"operation=calendar.create_event", "calendar=primary", "status=success"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got: %s", want, out)
		}
	}
}
