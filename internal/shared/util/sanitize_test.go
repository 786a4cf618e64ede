package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "resume.pdf", want: "resume.pdf"},
		{name: "slashes replaced", in: "a/b\\c.pdf", want: "a_b_c.pdf"},
		{name: "traversal rejected", in: "../etc/passwd", wantErr: true},
		{name: "empty rejected", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeFileName(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafeExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "resume.PDF", want: ".pdf"},
		{in: "photo.jpeg", want: ".jpeg"},
		{in: "noext", want: ""},
		{in: "trailing.", want: ""},
		{in: "weird.p df", want: ""},
	}
	for _, tt := range tests {
		if got := SafeExt(tt.in); got != tt.want {
			t.Fatalf("SafeExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
