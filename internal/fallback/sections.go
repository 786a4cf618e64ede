package fallback

import (
	"regexp"
	"strings"
)

// Section headers are matched as whole lines. Every alternation is a bilingual
// union so one pass covers English and French CVs regardless of the detected
// primary language.
var (
	experienceHeaderRe = regexp.MustCompile(`(?i)^\s*(?:work\s+experience|professional\s+experience|experiences?|employment(?:\s+history)?|work\s+history|exp[ée]riences?(?:\s+professionnelles?)?|parcours\s+professionnel|historique\s+d'emploi)\s*:?\s*$`)

	educationHeaderRe = regexp.MustCompile(`(?i)^\s*(?:education|academic\s+background|studies|formations?(?:\s+acad[ée]miques?)?|[ée]tudes|scolarit[ée]|dipl[ôo]mes?)\s*:?\s*$`)

	skillsHeaderRe = regexp.MustCompile(`(?i)^\s*(?:(?:technical\s+|core\s+|key\s+)?skills|technologies|comp[ée]tences(?:\s+techniques)?|savoir[\s-]faire)\s*:?\s*$`)

	certificationsHeaderRe = regexp.MustCompile(`(?i)^\s*(?:certifications?|certificats?|licenses?\s*(?:&|and|et)?\s*certifications?|attestations?)\s*:?\s*$`)

	otherHeaderRe = regexp.MustCompile(`(?i)^\s*(?:summary|profile|objective|about(?:\s+me)?|projects?|interests?|hobbies|references?|languages?|awards?|publications?|profil|objectif|[àa]\s+propos|projets?|centres?\s+d'int[ée]r[êe]ts?|loisirs|r[ée]f[ée]rences?|langues?|distinctions?)\s*:?\s*$`)
)

// isSectionHeader reports whether the line is any recognized section header.
func isSectionHeader(line string) bool {
	return experienceHeaderRe.MatchString(line) ||
		educationHeaderRe.MatchString(line) ||
		skillsHeaderRe.MatchString(line) ||
		certificationsHeaderRe.MatchString(line) ||
		otherHeaderRe.MatchString(line)
}

// sectionBody returns the lines between the first line matching header and the
// next recognized header of any kind. The boolean reports whether the header
// was found at all.
func sectionBody(lines []string, header *regexp.Regexp) ([]string, bool) {
	start := -1
	for i, line := range lines {
		if header.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, false
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if isSectionHeader(lines[i]) {
			end = i
			break
		}
	}
	return lines[start:end], true
}

// splitLines splits text into trimmed lines, keeping empty lines so callers
// that care about document position still see them.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, len(raw))
	for i, line := range raw {
		out[i] = strings.TrimSpace(line)
	}
	return out
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
