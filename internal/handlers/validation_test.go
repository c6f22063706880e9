package handlers

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	day, err := parseDay("", "", now)
	if err != nil || !day.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected UTC midnight today, got %v %v", day, err)
	}

	day, err = parseDay("2026-01-31", "America/New_York", now)
	if err != nil {
		t.Fatalf("parseDay: %v", err)
	}
	if day.UTC() != time.Date(2026, 1, 31, 5, 0, 0, 0, time.UTC) {
		t.Fatalf("expected New York midnight, got %v", day.UTC())
	}

	if _, err := parseDay("2026-02-30", "", now); err == nil {
		t.Fatal("expected invalid calendar date to fail")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if email, ok := normalizeEmail("  Priya@Example.COM "); !ok || email != "priya@example.com" {
		t.Fatalf("unexpected normalized email %q %v", email, ok)
	}
	if _, ok := normalizeEmail("not-an-email"); ok {
		t.Fatal("expected invalid email to be rejected")
	}
}

func TestValidateFullName(t *testing.T) {
	long := make([]byte, maxFullNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if validateFullName(string(long)) == "" {
		t.Fatal("expected overlong name to be rejected")
	}
	if validateFullName("") != "" {
		t.Fatal("full name is optional at registration")
	}
}
