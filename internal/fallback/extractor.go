// Package fallback is the deterministic CV extractor used whenever LLM
// processing is disabled or unconfigured. It is pure pattern matching over the
// document text: no randomness, no external calls, and it never fails. The
// worst case is a result with near-empty fields. Results carry a fixed
// confidence of 0.4 to mark them as unverified heuristics downstream.
package fallback

import (
	"strings"

	"cv-backend/internal/cvs"
)

// Confidence is the fixed score attached to every heuristic extraction.
const Confidence = 0.4

// Result is one deterministic extraction pass. Language is the scored primary
// language of the document ("en" or "fr"), a routing and logging hint only.
type Result struct {
	Data     cvs.ExtractedData
	Language string
}

// Keyword sets for the language preference score. Section-header words are the
// strongest signal a CV offers about its language.
var (
	englishSignals = []string{
		"experience", "education", "skills", "summary", "objective",
		"employment", "work history", "certifications", "languages",
		"references", "projects", "present",
	}
	frenchSignals = []string{
		"expérience", "formation", "compétences", "profil", "objectif",
		"emploi", "parcours", "certificats", "langues", "références",
		"projets", "présent", "diplôme",
	}
)

// Extract runs every heuristic pass over the text and assembles the result.
// It is deterministic: identical text yields identical output apart from
// open-ended experience durations, which resolve against currentYear.
func Extract(text string, currentYear int) Result {
	lines := splitLines(text)
	lang := scoreLanguage(text)

	data := cvs.ExtractedData{}

	data.Email = findEmail(text)
	data.Phone = findPhone(text)
	data.Location, data.City, data.Country = findLocation(text)
	data.LinkedInURL = findLinkedIn(text)

	if name := extractName(lines); name != "" {
		data.FullName = name
	} else {
		data.FullName = cvs.NameNotExtracted
	}

	data.TechnicalSkills, data.SoftSkills, data.Tools, data.Languages = extractSkills(text)

	data.Experience = extractExperience(lines, currentYear)
	data.Education = extractEducation(lines)
	data.Certifications = extractCertifications(lines)

	data.TotalExperienceYears = totalExperienceYears(data.Experience)
	data.SeniorityLevel = cvs.SeniorityFromYears(data.TotalExperienceYears)

	data.Keywords = dedupe(append(append(append(
		append([]string{}, data.TechnicalSkills...),
		data.SoftSkills...), data.Tools...), data.Languages...))

	return Result{Data: data, Language: lang}
}

// scoreLanguage counts English vs French signal words in the lower-cased text
// and returns the side with more hits. Ties resolve to English.
func scoreLanguage(text string) string {
	lower := strings.ToLower(text)
	en, fr := 0, 0
	for _, w := range englishSignals {
		en += strings.Count(lower, w)
	}
	for _, w := range frenchSignals {
		fr += strings.Count(lower, w)
	}
	if fr > en {
		return "fr"
	}
	return "en"
}
