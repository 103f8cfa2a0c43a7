package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"api_key", "sk-live",
		"email", "grower@example.com",
		"plant_id", "abc",
	})
	if out[1] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("email not redacted: %v", out[3])
	}
	if out[5] != "abc" {
		t.Fatalf("plant_id should pass through, got %v", out[5])
	}
}

func TestSanitizeKVsHashesIdentities(t *testing.T) {
	out := sanitizeKVs([]interface{}{"external_id", "firebase-uid-1"})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("expected hashed value, got %v", out[1])
	}
	if strings.Contains(got, "firebase-uid-1") {
		t.Fatalf("raw identity leaked: %s", got)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"plant_id", "abc", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"production", "development", "test"} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		log.With("service", "LoggerTest").Debug("hello", "k", "v")
	}
}
