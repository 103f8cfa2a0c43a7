package gcp

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDiagnosisImageKey(t *testing.T) {
	id := uuid.MustParse("6f1c2b9e-3f4a-4c55-9a1b-0e2d3c4b5a69")
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600))

	key := DiagnosisImageKey(id, at, ".JPEG")
	if !strings.HasPrefix(key, "diagnoses/"+id.String()+"/20260304T040607Z-") {
		t.Fatalf("unexpected key %q", key)
	}
	if !strings.HasSuffix(key, ".jpeg") {
		t.Fatalf("unexpected extension in %q", key)
	}
	if other := DiagnosisImageKey(id, at, ""); other == key || !strings.HasSuffix(other, ".jpg") {
		t.Fatalf("keys must be unique and default to jpg: %q", other)
	}
}
