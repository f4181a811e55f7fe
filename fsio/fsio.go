// Package fsio resolves the on-disk paths a game's saves and transcripts
// live under (spec.md §6): a per-game ".gnusto" directory in the player's
// home, sanitized from the game's title so arbitrary game-supplied strings
// never escape into a path component.
package fsio

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GnustoDirectory returns (creating if absent) the directory a game's saves
// and transcripts live under: ~/.gnusto/<sanitized game name>.
func GnustoDirectory(gameName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".gnusto", sanitizeGameName(gameName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// SaveFileURL returns the path a named save file lives at. filename is the
// player-chosen save name (e.g. "quicksave"), not sanitized further — it is
// never used as more than one path segment.
func SaveFileURL(gameName, filename string) string {
	dir, err := GnustoDirectory(gameName)
	if err != nil {
		dir = filepath.Join(".", sanitizeGameName(gameName))
	}
	return filepath.Join(dir, filename+".gnusto")
}

// TranscriptFileURL returns the path a transcript log started at the given
// time should be written to, timestamped to the minute so successive
// sessions never collide.
func TranscriptFileURL(gameName string, at time.Time) string {
	dir, err := GnustoDirectory(gameName)
	if err != nil {
		dir = filepath.Join(".", sanitizeGameName(gameName))
	}
	stamp := at.Format("2006.01.02-15.04")
	return filepath.Join(dir, stamp+".md")
}

// sanitizeGameName strips everything but ASCII letters, digits, and
// underscore, falling back to "Unknown" when that leaves nothing — a game's
// title is free-form prose and must never be used as a raw path component.
func sanitizeGameName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Unknown"
	}
	return b.String()
}
