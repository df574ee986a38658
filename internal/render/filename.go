package render

import "strings"

// ContentTypePDF is the content type of every rendered document.
const ContentTypePDF = "application/pdf"

// NormalizeFilePart canonicalizes one filename component: slashes become
// underscores, every character outside [A-Za-z0-9_] is stripped, and the
// result is lower-cased. The function is idempotent.
func NormalizeFilePart(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// DocumentFilename derives the deterministic download filename from the
// report number and its criminal typification.
func DocumentFilename(reportNumber, typification string) string {
	return NormalizeFilePart(reportNumber) + "$" + NormalizeFilePart(typification) + ".pdf"
}
