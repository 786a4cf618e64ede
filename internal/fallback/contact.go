package fallback

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Tolerant of international formats: optional +country code, parenthesized
	// area codes, and space/dot/dash separators. Candidates are filtered on
	// digit count so bare years never qualify.
	phoneRe = regexp.MustCompile(`\+?\d{1,4}[\s.-]?(?:\(\d{1,4}\)[\s.-]?)?\d{1,4}(?:[\s.-]?\d{1,4}){1,6}`)

	locationRe = regexp.MustCompile(`(?im)^\s*(?:location|address|adresse|localisation)\s*:\s*(.+)$`)

	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[A-Za-z0-9_%-]+`)
)

func findEmail(text string) string {
	return emailRe.FindString(text)
}

func findPhone(text string) string {
	for _, candidate := range phoneRe.FindAllString(text, 10) {
		digits := 0
		for _, r := range candidate {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 8 && digits <= 15 {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// findLocation matches an explicit "Location: City, Country" style line and
// splits city/country on the first comma when present.
func findLocation(text string) (location, city, country string) {
	m := locationRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", ""
	}
	location = strings.TrimSpace(m[1])
	if i := strings.Index(location, ","); i > 0 {
		city = strings.TrimSpace(location[:i])
		country = strings.TrimSpace(location[i+1:])
	} else {
		city = location
	}
	return location, city, country
}

func findLinkedIn(text string) string {
	url := linkedinRe.FindString(text)
	if url == "" {
		return ""
	}
	if !strings.Contains(strings.ToLower(url), "http") {
		url = "https://" + url
	}
	return url
}
