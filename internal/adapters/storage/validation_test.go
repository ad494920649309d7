package storage

import (
	"strings"
	"testing"
)

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		contentType string
		ok          bool
	}{
		{"application/pdf", true},
		{"Application/PDF; charset=binary", true},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"image/png", false},
		{"text/csv", false},
	}
	for _, tt := range tests {
		err := validateContentType(tt.contentType)
		if (err == nil) != tt.ok {
			t.Errorf("%q: expected ok=%v, got %v", tt.contentType, tt.ok, err)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := validateFileSize(0, 100); err == nil {
		t.Fatalf("expected empty file to be rejected")
	}
	if err := validateFileSize(101, 100); err == nil {
		t.Fatalf("expected oversized file to be rejected")
	}
	if err := validateFileSize(100, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("2026/03", "vergelijking.pdf")
	if !strings.HasPrefix(key, "2026/03/vergelijking_") || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("unexpected key %s", key)
	}
	if ObjectKey("2026/03", "vergelijking.pdf") == key {
		t.Fatalf("expected unique keys")
	}
}
