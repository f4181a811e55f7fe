package fsio

import (
	"strings"
	"testing"
	"time"
)

func TestSanitizeGameNameStripsPunctuation(t *testing.T) {
	if got := sanitizeGameName("Zork I: The Great Underground Empire"); got != "ZorkITheGreatUndergroundEmpire" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
}

func TestSanitizeGameNameFallsBackToUnknown(t *testing.T) {
	if got := sanitizeGameName("!!!"); got != "Unknown" {
		t.Fatalf("expected Unknown fallback, got %q", got)
	}
	if got := sanitizeGameName(""); got != "Unknown" {
		t.Fatalf("expected Unknown fallback for empty name, got %q", got)
	}
}

func TestSaveFileURLUsesGnustoExtension(t *testing.T) {
	url := SaveFileURL("Cloak of Darkness", "quicksave")
	if !strings.HasSuffix(url, "quicksave.gnusto") {
		t.Fatalf("expected .gnusto extension, got %q", url)
	}
	if !strings.Contains(url, "CloakofDarkness") {
		t.Fatalf("expected sanitized game name in path, got %q", url)
	}
}

func TestTranscriptFileURLUsesMarkdownExtensionAndTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 5, 9, 7, 0, 0, time.Local)
	url := TranscriptFileURL("Cloak of Darkness", at)
	if !strings.HasSuffix(url, "2026.03.05-09.07.md") {
		t.Fatalf("expected zero-padded timestamp with .md extension, got %q", url)
	}
}
