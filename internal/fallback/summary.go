package fallback

import (
	"fmt"
	"strings"

	"cv-backend/internal/cvs"
)

// Summarize builds a recruiter-facing paragraph entirely from already
// extracted fields. No new inference happens here.
func Summarize(data cvs.ExtractedData) string {
	name := data.FullName
	if name == "" || name == cvs.NameNotExtracted {
		name = "The candidate"
	}
	seniority := data.SeniorityLevel
	if seniority == "" {
		seniority = cvs.SeniorityFromYears(data.TotalExperienceYears)
	}

	var b strings.Builder
	if data.Industry != "" {
		fmt.Fprintf(&b, "%s is a professional at %s level in %s.", name, seniority, data.Industry)
	} else {
		fmt.Fprintf(&b, "%s is a professional at %s level.", name, seniority)
	}

	var details []string
	if n := len(data.Experience); n > 0 {
		details = append(details, fmt.Sprintf("%d experience %s", n, plural(n, "entry", "entries")))
	}
	if n := len(data.Education); n > 0 {
		details = append(details, fmt.Sprintf("%d education %s", n, plural(n, "entry", "entries")))
	}
	if skills := topSkills(data, 5); len(skills) > 0 {
		details = append(details, "key skills: "+strings.Join(skills, ", "))
	}
	if len(details) > 0 {
		b.WriteString(" The profile lists ")
		b.WriteString(strings.Join(details, ", "))
		b.WriteString(".")
	}
	return b.String()
}

func topSkills(data cvs.ExtractedData, limit int) []string {
	merged := dedupe(append(append([]string{}, data.TechnicalSkills...), data.Tools...))
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
