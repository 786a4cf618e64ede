package fallback

import "testing"

func TestExtractEducationAccentedKeywords(t *testing.T) {
	tests := []struct {
		name            string
		line            string
		wantDegree      string
		wantInstitution string
	}{
		{
			name:            "accented university keyword",
			line:            "Licence en Informatique, Université de Lyon, 2014 - 2017",
			wantDegree:      "Licence en Informatique",
			wantInstitution: "Université de Lyon",
		},
		{
			name:            "faculte keyword",
			line:            "Master en Biologie, Faculté des Sciences de Rabat",
			wantDegree:      "Master en Biologie",
			wantInstitution: "Faculté des Sciences de Rabat",
		},
		{
			name:            "ecole at line start",
			line:            "École Polytechnique, Diplôme d'Ingénieur, 2018",
			wantDegree:      "Diplôme d'Ingénieur",
			wantInstitution: "École Polytechnique",
		},
		{
			name:            "ascii keywords unaffected",
			line:            "Bachelor of Science, University of Casablanca, 2010 - 2014",
			wantDegree:      "Bachelor of Science",
			wantInstitution: "University of Casablanca",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{"Education", tt.line}
			entries := extractEducation(lines)
			if len(entries) != 1 {
				t.Fatalf("extractEducation(%q) = %d entries, want 1", tt.line, len(entries))
			}
			if entries[0].Degree != tt.wantDegree {
				t.Fatalf("Degree = %q, want %q", entries[0].Degree, tt.wantDegree)
			}
			if entries[0].Institution != tt.wantInstitution {
				t.Fatalf("Institution = %q, want %q", entries[0].Institution, tt.wantInstitution)
			}
		})
	}
}

func TestInstitutionKeywordNeedsWholeWord(t *testing.T) {
	// "ista" is a school acronym, not a substring of a longer word.
	lines := []string{"Education", "Internship at Istanbul offices, 2019"}
	if entries := extractEducation(lines); len(entries) != 0 {
		t.Fatalf("extractEducation = %v, want no entries", entries)
	}
}
