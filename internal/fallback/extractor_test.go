package fallback

import (
	"reflect"
	"testing"

	"cv-backend/internal/cvs"
)

const englishCV = `John Smith
Senior Backend Engineer
Location: Casablanca, Morocco
john.smith@example.com
+212 600 123 456
linkedin.com/in/johnsmith

SUMMARY
Seasoned backend developer.

EXPERIENCE
Senior Software Engineer | Acme Corp | Casablanca
2019 - 2022
Built Go services with PostgreSQL and Docker.

Backend Developer
2017 - 2019
Worked on Python APIs.

EDUCATION
Master in Computer Science, University of Casablanca, 2015 - 2017

CERTIFICATIONS
- AWS Certified Solutions Architect - Amazon, 2021
- Bachelor of Science
`

func TestExtractEnglishCV(t *testing.T) {
	res := Extract(englishCV, 2026)
	data := res.Data

	if res.Language != "en" {
		t.Fatalf("Language = %q, want en", res.Language)
	}
	if data.FullName != "John Smith" {
		t.Fatalf("FullName = %q, want John Smith", data.FullName)
	}
	if data.Email != "john.smith@example.com" {
		t.Fatalf("Email = %q", data.Email)
	}
	if data.Phone != "+212 600 123 456" {
		t.Fatalf("Phone = %q", data.Phone)
	}
	if data.Location != "Casablanca, Morocco" || data.City != "Casablanca" || data.Country != "Morocco" {
		t.Fatalf("Location = %q / %q / %q", data.Location, data.City, data.Country)
	}
	if data.LinkedInURL != "https://linkedin.com/in/johnsmith" {
		t.Fatalf("LinkedInURL = %q", data.LinkedInURL)
	}

	if len(data.Experience) != 2 {
		t.Fatalf("len(Experience) = %d, want 2: %+v", len(data.Experience), data.Experience)
	}
	first := data.Experience[0]
	if first.Position != "Senior Software Engineer" || first.Company != "Acme Corp" || first.Location != "Casablanca" {
		t.Fatalf("first entry = %+v", first)
	}
	if first.StartDate != "2019" || first.EndDate != "2022" || first.DurationYears != 3 {
		t.Fatalf("first entry dates = %+v", first)
	}
	second := data.Experience[1]
	if second.Position != "Backend Developer" || second.DurationYears != 2 {
		t.Fatalf("second entry = %+v", second)
	}

	if data.TotalExperienceYears != 5 {
		t.Fatalf("TotalExperienceYears = %v, want 5", data.TotalExperienceYears)
	}
	if data.SeniorityLevel != "Senior" {
		t.Fatalf("SeniorityLevel = %q, want Senior", data.SeniorityLevel)
	}

	if len(data.Education) != 1 {
		t.Fatalf("len(Education) = %d: %+v", len(data.Education), data.Education)
	}
	edu := data.Education[0]
	if edu.Institution != "University of Casablanca" {
		t.Fatalf("Institution = %q", edu.Institution)
	}
	if edu.StartDate != "2015" || edu.EndDate != "2017" {
		t.Fatalf("education dates = %+v", edu)
	}

	if len(data.Certifications) != 1 {
		t.Fatalf("len(Certifications) = %d: %+v", len(data.Certifications), data.Certifications)
	}
	cert := data.Certifications[0]
	if cert.Name != "AWS Certified Solutions Architect" || cert.Issuer != "Amazon" || cert.Year != "2021" {
		t.Fatalf("certification = %+v", cert)
	}

	if !contains(data.TechnicalSkills, "go") || !contains(data.TechnicalSkills, "postgresql") || !contains(data.TechnicalSkills, "python") {
		t.Fatalf("TechnicalSkills = %v", data.TechnicalSkills)
	}
	if !contains(data.Tools, "docker") {
		t.Fatalf("Tools = %v", data.Tools)
	}
	if !contains(data.Keywords, "go") || !contains(data.Keywords, "docker") {
		t.Fatalf("Keywords = %v", data.Keywords)
	}
}

const frenchCV = `Marie Dupont
marie.dupont@exemple.fr

FORMATION
Licence en Informatique, Université de Lyon, 2014 - 2017

EXPÉRIENCES PROFESSIONNELLES
Développeuse Web | Atelier Numérique | Lyon
2018 - 2021

COMPÉTENCES
Python, Docker, travail d'équipe
`

func TestExtractFrenchCV(t *testing.T) {
	res := Extract(frenchCV, 2026)
	data := res.Data

	if res.Language != "fr" {
		t.Fatalf("Language = %q, want fr", res.Language)
	}
	if data.FullName != "Marie Dupont" {
		t.Fatalf("FullName = %q", data.FullName)
	}
	if len(data.Experience) != 1 {
		t.Fatalf("Experience = %+v", data.Experience)
	}
	exp := data.Experience[0]
	if exp.Position != "Développeuse Web" || exp.Company != "Atelier Numérique" || exp.DurationYears != 3 {
		t.Fatalf("experience entry = %+v", exp)
	}
	if len(data.Education) != 1 {
		t.Fatalf("Education = %+v", data.Education)
	}
	if data.Education[0].Institution != "Université de Lyon" {
		t.Fatalf("Institution = %q", data.Education[0].Institution)
	}
	if !contains(data.TechnicalSkills, "python") || !contains(data.Tools, "docker") {
		t.Fatalf("skills = %v / %v", data.TechnicalSkills, data.Tools)
	}
	if !contains(data.SoftSkills, "travail d'équipe") {
		t.Fatalf("SoftSkills = %v", data.SoftSkills)
	}
}

func TestExtractDeterministic(t *testing.T) {
	a := Extract(englishCV, 2026)
	b := Extract(englishCV, 2026)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated extraction produced different results")
	}
}

func TestExtractJobTitleNeverBecomesName(t *testing.T) {
	text := "ENGINEERING MANAGER\nmanager@example.com\n+1 555 123 4567\n\nEXPERIENCE\n2019 - 2021\n"
	res := Extract(text, 2026)
	if res.Data.FullName != cvs.NameNotExtracted {
		t.Fatalf("FullName = %q, want sentinel %q", res.Data.FullName, cvs.NameNotExtracted)
	}
}

func TestExtractOpenEndedDuration(t *testing.T) {
	text := "Anna Berg\n\nEXPERIENCE\nPlatform Lead\n2018 - present\n"
	res := Extract(text, 2026)
	if len(res.Data.Experience) != 1 {
		t.Fatalf("Experience = %+v", res.Data.Experience)
	}
	exp := res.Data.Experience[0]
	if exp.StartDate != "2018" || exp.EndDate != "present" {
		t.Fatalf("dates = %+v", exp)
	}
	if exp.DurationYears != 8 {
		t.Fatalf("DurationYears = %v, want 8", exp.DurationYears)
	}
}

func TestExtractEmptyTextNeverPanics(t *testing.T) {
	res := Extract("", 2026)
	if res.Data.FullName != cvs.NameNotExtracted {
		t.Fatalf("FullName = %q", res.Data.FullName)
	}
	if res.Data.TotalExperienceYears != 0 || res.Data.SeniorityLevel != "Entry Level" {
		t.Fatalf("derived = %v / %q", res.Data.TotalExperienceYears, res.Data.SeniorityLevel)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
