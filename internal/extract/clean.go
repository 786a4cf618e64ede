package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes line endings and whitespace and strips control
// characters, keeping line structure intact for the section parsers.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	text = b.String()

	text = reSpaces.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var (
	englishHints = []string{" the ", " and ", " of ", " with ", " for ", " in ", "experience", "education", "skills"}
	frenchHints  = []string{" le ", " la ", " les ", " et ", " des ", " avec ", " pour ", "expérience", "formation", "compétences"}
)

// DetectLanguage returns "fr" or "en" as a best-guess routing hint. It counts
// common stopwords and section words on the lower-cased text; ties resolve to
// English.
func DetectLanguage(text string) string {
	lower := " " + strings.ToLower(text) + " "
	english, french := 0, 0
	for _, hint := range englishHints {
		english += strings.Count(lower, hint)
	}
	for _, hint := range frenchHints {
		french += strings.Count(lower, hint)
	}
	if french > english {
		return "fr"
	}
	return "en"
}
