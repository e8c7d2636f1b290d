package message

import "testing"

func TestLevenshteinEmptyStrings(t *testing.T) {
	if got := Levenshtein("", "kitten"); got != len("kitten") {
		t.Fatalf("expected %d, got %d", len("kitten"), got)
	}
	if got := Levenshtein("kitten", ""); got != len("kitten") {
		t.Fatalf("expected %d, got %d", len("kitten"), got)
	}
	if got := Levenshtein("", ""); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestLevenshteinAscii(t *testing.T) {
	if got := Levenshtein("sitting", "kitten"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestLevenshteinUTF8(t *testing.T) {
	// One rune substitution, not a byte-level diff.
	if got := Levenshtein("Kamil", "Kamił"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestLevenshteinSubstrings(t *testing.T) {
	if got := Levenshtein("alamakota", "kotamaala"); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
}

func TestLevenshteinDifferentStrings(t *testing.T) {
	if got := Levenshtein("aaa", "bb"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestLevenshteinEqualStrings(t *testing.T) {
	if got := Levenshtein("lorem ipsum sit dolorem", "lorem ipsum sit dolorem"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
