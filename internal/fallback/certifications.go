package fallback

import (
	"regexp"
	"strings"

	"cv-backend/internal/cvs"
)

var bulletRe = regexp.MustCompile(`^\s*(?:[-•*▪◦‣·]|\d+[.)])\s+(.+)$`)

// extractCertifications collects bullet-prefixed lines from a certifications
// section. Lines naming a degree type are discarded so education bullets that
// leak into the section are not misclassified.
func extractCertifications(lines []string) []cvs.CertificationEntry {
	body, ok := sectionBody(lines, certificationsHeaderRe)
	if !ok {
		return nil
	}

	var entries []cvs.CertificationEntry
	for _, line := range body {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		if text == "" || degreeRe.MatchString(text) {
			continue
		}
		entry := cvs.CertificationEntry{Name: text}
		if y := eduSingleYear.FindString(text); y != "" {
			entry.Year = y
			entry.Name = strings.Trim(strings.ReplaceAll(text, y, ""), " -–—(),")
		}
		// "Name - Issuer" and "Name, Issuer" forms.
		for _, sep := range []string{" - ", " – ", ", ", " | "} {
			if i := strings.Index(entry.Name, sep); i > 0 {
				entry.Issuer = strings.TrimSpace(entry.Name[i+len(sep):])
				entry.Name = strings.TrimSpace(entry.Name[:i])
				break
			}
		}
		if entry.Name != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
