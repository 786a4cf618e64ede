package fallback

import "testing"

func TestNameCascadePhases(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "strict title case",
			lines: []string{"Jean-Luc Martin", "Ingénieur Logiciel"},
			want:  "Jean-Luc Martin",
		},
		{
			name:  "medium mixed case with middle initial",
			lines: []string{"JOHN Q. Smith III", "some text"},
			want:  "JOHN Q. Smith III",
		},
		{
			name:  "lenient multi word",
			lines: []string{"maría del carmen lópez", "details"},
			want:  "maría del carmen lópez",
		},
		{
			name:  "job title rejected in every phase",
			lines: []string{"Senior Engineering Manager", "contact@x.com"},
			want:  "",
		},
		{
			name:  "accented title word rejected",
			lines: []string{"Mon Résumé", "Jean-Luc Martin"},
			want:  "Jean-Luc Martin",
		},
		{
			name:  "section header never a name",
			lines: []string{"Professional Experience", "2019 - 2021"},
			want:  "",
		},
		{
			name:  "empty document",
			lines: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := extractName(tt.lines); got != tt.want {
				t.Fatalf("extractName(%v) = %q, want %q", tt.lines, got, tt.want)
			}
		})
	}
}

func TestFindPhoneIgnoresYears(t *testing.T) {
	text := "Worked from 2019 - 2022 on projects.\nTel: +33 6 12 34 56 78"
	if got := findPhone(text); got != "+33 6 12 34 56 78" {
		t.Fatalf("findPhone = %q", got)
	}
	if got := findPhone("2019 - 2022"); got != "" {
		t.Fatalf("findPhone on year range = %q, want empty", got)
	}
}

func TestFindLocationSplitsCityCountry(t *testing.T) {
	loc, city, country := findLocation("Location: Rabat, Morocco\n")
	if loc != "Rabat, Morocco" || city != "Rabat" || country != "Morocco" {
		t.Fatalf("findLocation = %q / %q / %q", loc, city, country)
	}
}
