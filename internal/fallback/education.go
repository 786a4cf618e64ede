package fallback

import (
	"regexp"
	"strings"

	"cv-backend/internal/cvs"
)

// Go's \b is ASCII-only, so it fails next to accented letters (after
// "Université", before "École"). Boundaries are spelled out as explicit
// character classes instead, the same way wordBoundaryPattern does for skills.
var (
	degreeRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])((?:bachelor(?:'s)?|master(?:'s)?|ph\.?d|doctorat(?:e)?|mba|licence|baccalaur[ée]at|bac(?:\s*\+\s*\d)?|bts|dut|deug|deust|dipl[ôo]me|diploma|degree|ing[ée]nieur(?:\s+d'[ée]tat)?|technicien\s+sp[ée]cialis[ée]|engineering)(?:[^\p{L}\p{N},|()][^,|()]*)?)(?:$|[^\p{L}\p{N}])`)

	institutionRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])((?:university|universit[ée]|college|school|[ée]cole|facult[ée]|institut(?:e)?|ista|ofppt|academy|acad[ée]mie|polytechnic|polytechnique)(?:$|[^\p{L}\p{N}][\w\sÀ-ÿ'.&-]*))`)

	eduYearRangeRe = regexp.MustCompile(`((?:19|20)\d{2})\s*[-–—/]\s*((?:19|20)\d{2})`)
	eduSingleYear  = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

// extractEducation parses the education section line by line: a degree phrase
// plus an institution-type keyword makes an entry, with an optional year range.
func extractEducation(lines []string) []cvs.EducationEntry {
	body, ok := sectionBody(lines, educationHeaderRe)
	if !ok {
		return nil
	}

	var entries []cvs.EducationEntry
	for _, line := range nonEmpty(body) {
		var degree, institution string
		if m := degreeRe.FindStringSubmatch(line); m != nil {
			degree = strings.TrimSpace(m[1])
		}
		if m := institutionRe.FindStringSubmatch(line); m != nil {
			institution = strings.TrimSpace(m[1])
		}
		if degree == "" && institution == "" {
			continue
		}
		// Comma-free lines let the degree phrase swallow the institution.
		if institution != "" {
			if i := strings.Index(degree, institution); i > 0 {
				degree = strings.TrimSpace(degree[:i])
			}
		}
		entry := cvs.EducationEntry{
			Degree:      strings.Trim(degree, " -–—|,"),
			Institution: strings.Trim(institution, " -–—|,"),
		}
		if m := eduYearRangeRe.FindStringSubmatch(line); m != nil {
			entry.StartDate = m[1]
			entry.EndDate = m[2]
		} else if y := eduSingleYear.FindString(line); y != "" {
			entry.EndDate = y
		}
		entries = append(entries, entry)
	}
	return entries
}
