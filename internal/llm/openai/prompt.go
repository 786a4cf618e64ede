package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"cv-backend/internal/cvs"
)

// Message is one chat turn sent to the provider.
type Message struct {
	Role    string
	Content string
}

const extractionSystemPrompt = `You are a CV data extraction engine. You receive the plain text of a candidate CV
(in English or French) and return a single JSON object with this shape:

{
  "full_name": string|null,
  "email": string|null,
  "phone": string|null,
  "location": string|null,
  "city": string|null,
  "country": string|null,
  "age": number|null,
  "gender": string|null,
  "linkedin_url": string|null,
  "education": [{"degree": string, "institution": string, "field_of_study": string|null, "start_date": string|null, "end_date": string|null}],
  "experience": [{"position": string, "company": string|null, "location": string|null, "start_date": string|null, "end_date": string|null, "duration_years": number}],
  "certifications": [{"name": string, "issuer": string|null, "year": string|null}],
  "internships": [{"position": string, "company": string|null, "start_date": string|null, "end_date": string|null, "duration_years": number}],
  "technical_skills": [string],
  "soft_skills": [string],
  "tools": [string],
  "languages": [string],
  "keywords": [string],
  "total_experience_years": number,
  "seniority_level": string|null,
  "industry": string|null,
  "confidence_score": number
}

Extract only what the text states. Never invent values. confidence_score is your
0-1 estimate of extraction completeness. If the text is not a CV or contains no
extractable data, return exactly {"error": true, "reason": "<short explanation>"}.`

// BuildExtractionPrompt builds the chat messages for structured CV extraction.
func BuildExtractionPrompt(text string) []Message {
	return []Message{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: "CV text:\n\n" + text},
	}
}

const summarySystemPrompt = `You write one short recruiter-facing paragraph (2-3 sentences) summarizing a
candidate from structured CV data. Mention seniority, total experience, and the
strongest skills. Plain text only, no markdown, no lists.`

// BuildSummaryPrompt builds the chat messages for summary generation.
func BuildSummaryPrompt(data cvs.ExtractedData) []Message {
	payload, err := json.Marshal(map[string]any{
		"full_name":              data.FullName,
		"seniority_level":        data.SeniorityLevel,
		"industry":               data.Industry,
		"total_experience_years": data.TotalExperienceYears,
		"technical_skills":       data.TechnicalSkills,
		"experience_count":       len(data.Experience),
		"education_count":        len(data.Education),
		"languages":              data.Languages,
	})
	if err != nil {
		payload = []byte("{}")
	}
	return []Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Candidate data:\n%s", payload)},
	}
}

// BuildFixJSONPrompt asks the provider to repair a previous non-JSON reply.
func BuildFixJSONPrompt(raw []byte) []Message {
	return []Message{
		{Role: "system", Content: "You repair malformed JSON. Return only the corrected JSON object, nothing else."},
		{Role: "user", Content: "Fix this JSON:\n\n" + strings.TrimSpace(string(raw))},
	}
}
