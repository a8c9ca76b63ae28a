package segmentation

import (
	"regexp"
	"strings"
)

// PlaceholderIdentity is the literal fallback for an unresolved student
// ID or display name.
const PlaceholderIdentity = "Unknown"

// Identity is a best-effort extracted student identity.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// identityScanWindow bounds how far into the text the extractor looks.
// Identity headers sit at the top of a submission; scanning further only
// invites false positives from body content.
const identityScanWindow = 1500

const maxNameLength = 50

// Ordered by priority; the first matching pattern wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Student\s*ID[:\s]+([A-Za-z0-9\-]+)`),
	regexp.MustCompile(`(?i)ID[:\s]+([A-Za-z0-9\-]+)`),
	regexp.MustCompile(`(?i)Roll\s*No[.:\s]+([A-Za-z0-9\-]+)`),
	regexp.MustCompile(`(?i)Registration[:\s]+([A-Za-z0-9\-]+)`),
	regexp.MustCompile(`(?i)Matric(?:ulation)?\s*(?:No)?[.:\s]+([A-Za-z0-9\-]+)`),
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Name[:\s]+([A-Za-z\s.]+?)(?:\n|Student|ID|$)`),
	regexp.MustCompile(`(?i)Student\s*Name[:\s]+([A-Za-z\s.]+?)(?:\n|ID|$)`),
	regexp.MustCompile(`(?i)By[:\s]+([A-Za-z\s.]+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)Submitted\s+by[:\s]+([A-Za-z\s.]+?)(?:\n|$)`),
}

// ExtractIdentity recovers a student ID and display name from a text
// blob. Both default to PlaceholderIdentity when no pattern matches. Pure
// function of its input: no I/O, deterministic.
func ExtractIdentity(text string) Identity {
	// The window counts runes, not bytes, so multi-byte text is never
	// cut mid-sequence.
	if runes := []rune(text); len(runes) > identityScanWindow {
		text = string(runes[:identityScanWindow])
	}

	ident := Identity{ID: PlaceholderIdentity, Name: PlaceholderIdentity}

	for _, pattern := range idPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			ident.ID = strings.TrimSpace(m[1])
			break
		}
	}

	for _, pattern := range namePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name := normalizeName(m[1]); name != "" {
			ident.Name = name
			break
		}
	}

	return ident
}

// normalizeName collapses whitespace runs, caps length, and rejects
// degenerate single-character matches. Returns "" for no match.
func normalizeName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")

	runes := []rune(name)
	if len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}

	if len([]rune(name)) <= 1 {
		return ""
	}
	return name
}
