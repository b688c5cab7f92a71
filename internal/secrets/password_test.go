// internal/secrets/password_test.go
//
// Run: go test ./internal/secrets -v

package secrets

import (
	"strings"
	"testing"
)

func TestPassword(t *testing.T) {
	pw, err := Password(16)
	if err != nil {
		t.Fatalf("Password error: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("length = %d, want 16", len(pw))
	}
	for _, r := range pw {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Fatalf("rune %q outside alphabet", r)
		}
	}

	again, err := Password(16)
	if err != nil {
		t.Fatalf("Password error: %v", err)
	}
	if again == pw {
		t.Fatalf("two generations produced the same password")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash("s3cret", "LZeJ3nSdrC")
	h2 := Hash("s3cret", "LZeJ3nSdrC")
	if h1 != h2 {
		t.Fatalf("hash is not deterministic")
	}
	// 50 derived bytes, hex encoded.
	if len(h1) != 100 {
		t.Fatalf("hash length = %d, want 100", len(h1))
	}
	if Hash("s3cret", "othersalt") == h1 {
		t.Fatalf("salt does not affect hash")
	}
}

func TestIsRef(t *testing.T) {
	if !IsRef("vault:secret/grafana#admin") {
		t.Errorf("vault reference not recognized")
	}
	if IsRef("hunter2") {
		t.Errorf("literal misclassified as reference")
	}
}
