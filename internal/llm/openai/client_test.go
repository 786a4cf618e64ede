package openai

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		model   string
		wantErr bool
	}{
		{name: "valid", apiKey: "sk-test", model: "gpt-4o-mini", wantErr: false},
		{name: "missing key", apiKey: "  ", model: "gpt-4o-mini", wantErr: true},
		{name: "missing model", apiKey: "sk-test", model: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.apiKey, tt.model)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient(%q, %q) err = %v, wantErr %v", tt.apiKey, tt.model, err, tt.wantErr)
			}
		})
	}
}

func TestExtractionPayloadToData(t *testing.T) {
	raw := `{
		"full_name": " Jane Doe ",
		"email": "jane@example.com",
		"phone": null,
		"location": "Lyon, France",
		"city": "Lyon",
		"country": "France",
		"age": 34,
		"linkedin_url": "https://linkedin.com/in/janedoe",
		"experience": [{"position": "Software Engineer", "company": "Acme", "duration_years": 3}],
		"technical_skills": ["Go", "PostgreSQL"],
		"total_experience_years": 3,
		"seniority_level": "Mid Level",
		"confidence_score": 0.9
	}`

	var payload extractionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Error {
		t.Fatal("payload.Error = true, want false")
	}

	data := payload.toData()
	if data.FullName != "Jane Doe" {
		t.Fatalf("FullName = %q, want %q", data.FullName, "Jane Doe")
	}
	if data.Phone != "" {
		t.Fatalf("Phone = %q, want empty for null field", data.Phone)
	}
	if data.Age != 34 {
		t.Fatalf("Age = %d, want 34", data.Age)
	}
	if len(data.Experience) != 1 || data.Experience[0].Position != "Software Engineer" {
		t.Fatalf("Experience = %+v, want one Software Engineer entry", data.Experience)
	}
	if data.TotalExperienceYears != 3 {
		t.Fatalf("TotalExperienceYears = %v, want 3", data.TotalExperienceYears)
	}
	if data.SeniorityLevel != "Mid Level" {
		t.Fatalf("SeniorityLevel = %q, want %q", data.SeniorityLevel, "Mid Level")
	}
}

func TestExtractionPayloadErrorShape(t *testing.T) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(`{"error": true, "reason": "not a CV"}`), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !payload.Error {
		t.Fatal("payload.Error = false, want true")
	}
	if payload.Reason != "not a CV" {
		t.Fatalf("payload.Reason = %q, want %q", payload.Reason, "not a CV")
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	messages := BuildExtractionPrompt("John Smith\nSoftware Engineer")
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(messages))
	}
	if messages[0].Role != "system" {
		t.Fatalf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if !strings.Contains(messages[1].Content, "John Smith") {
		t.Fatal("user message missing CV text")
	}
	if !strings.Contains(messages[0].Content, `"error": true`) {
		t.Fatal("system prompt missing failure contract")
	}
}
