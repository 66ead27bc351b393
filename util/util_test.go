package util

import (
	"testing"
)

func TestUIDMatcher(t *testing.T) {
	valid := []string{"alice", "Alice.Smith", "a", "user_42", "user-2.b"}
	for _, username := range valid {
		if !UIDMatcher.MatchString(username) {
			t.Errorf("Expected %q to be valid", username)
		}
	}

	invalid := []string{"", ".alice", "-bob", "_carol", "da ve", "ev@l"}
	for _, username := range invalid {
		if UIDMatcher.MatchString(username) {
			t.Errorf("Expected %q to be invalid", username)
		}
	}
}

func TestConvertStringToInt64(t *testing.T) {
	got, err := ConvertStringToInt64("9223372036854775807")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != 9223372036854775807 {
		t.Fatalf("Unexpected value: %d", got)
	}

	if _, err := ConvertStringToInt64("not-a-number"); err == nil {
		t.Fatal("Expected an error")
	}
}

func TestGenerateSecret(t *testing.T) {
	first, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("Expected 64 hex chars, got %d", len(first))
	}

	second, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("Secrets should not repeat")
	}
}
