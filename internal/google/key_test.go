package google

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParseKey(t *testing.T) {
	valid, _ := generateTestKey(t)
	validJSON, err := json.Marshal(valid)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	tests := []struct {
		name      string
		data      string
		expectErr bool
	}{
		{name: "valid key", data: string(validJSON)},
		{name: "not json", data: "not json at all", expectErr: true},
		{name: "missing client_email", data: `{"private_key":"pem"}`, expectErr: true},
		{name: "missing private_key", data: `{"client_email":"a@b.iam.gserviceaccount.com"}`, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseKey([]byte(tt.data))
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey failed: %v", err)
			}
			if key.ClientEmail != valid.ClientEmail {
				t.Errorf("Expected client email %q, got %q", valid.ClientEmail, key.ClientEmail)
			}
		})
	}
}

func TestLoadKey(t *testing.T) {
	valid, _ := generateTestKey(t)
	validJSON, err := json.Marshal(valid)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, validJSON, 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	key, err := LoadKey(path)
	if err != nil {
		t.Fatalf("LoadKey failed: %v", err)
	}
	if key.ClientEmail != valid.ClientEmail {
		t.Errorf("Expected client email %q, got %q", valid.ClientEmail, key.ClientEmail)
	}

	if _, err := LoadKey(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing key file")
	}
}
