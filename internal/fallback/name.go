package fallback

import (
	"regexp"
	"strings"
	"unicode"
)

// Job-title nouns that disqualify a line as a person's name in every phase of
// the cascade. Misreporting a title as a name is worse than reporting nothing.
// Boundaries are explicit classes, not \b: \b is ASCII-only and never matches
// after an accented final letter like the é in "résumé".
var jobTitleRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:engineer|engineering|manager|director|developer|consultant|analyst|designer|architect|specialist|coordinator|technician|administrator|officer|assistant|intern|freelancer?|ing[ée]nieur|directeur|directrice|d[ée]veloppeur|d[ée]veloppeuse|gestionnaire|responsable|chef|consultant[e]?|analyste|technicien(?:ne)?|stagiaire|curriculum|vitae|resume|r[ée]sum[ée]|cv)(?:$|[^\p{L}\p{N}])`)

var (
	strictNameRe = regexp.MustCompile(`^[A-ZÀ-Ý][a-zà-ÿ'.-]+(?:\s+[A-ZÀ-Ý][a-zà-ÿ'.-]+){1,2}$`)
	digitRunRe   = regexp.MustCompile(`\d{3,}`)
	yearTokenRe  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// extractName runs the three-phase cascade over the top of the document.
// Each phase widens the window and loosens the shape requirement; if nothing
// survives, the caller reports the "not extracted" sentinel instead of
// guessing.
func extractName(lines []string) string {
	candidates := nonEmpty(lines)
	if len(candidates) == 0 {
		return ""
	}
	// Contact details on the very first lines usually mean the layout put the
	// name somewhere unconventional, so the whole document stays in play.
	wholeDoc := false
	for i := 0; i < len(candidates) && i < 2; i++ {
		if emailRe.MatchString(candidates[i]) || findPhone(candidates[i]) != "" {
			wholeDoc = true
			break
		}
	}

	if name := scanWindow(candidates, 8, wholeDoc, isStrictName); name != "" {
		return name
	}
	if name := scanWindow(candidates, 12, wholeDoc, isMediumName); name != "" {
		return name
	}
	return scanWindow(candidates, 20, wholeDoc, isLenientName)
}

func scanWindow(lines []string, window int, wholeDoc bool, match func(string) bool) string {
	limit := window
	if wholeDoc || limit > len(lines) {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		line := lines[i]
		if isSectionHeader(line) || jobTitleRe.MatchString(line) {
			continue
		}
		if match(line) {
			return line
		}
	}
	return ""
}

// isStrictName: exactly 2-3 title-case words, no digits, not an all-caps line.
// The pattern requires lowercase letters, which rejects all-caps on its own.
func isStrictName(line string) bool {
	return strictNameRe.MatchString(line)
}

// isMediumName: any mixed-case line without long digit runs or contact tokens.
func isMediumName(line string) bool {
	if len(line) < 4 || len(line) > 60 {
		return false
	}
	if line == strings.ToUpper(line) || line == strings.ToLower(line) {
		return false
	}
	if digitRunRe.MatchString(line) || emailRe.MatchString(line) || looksLikeURL(line) {
		return false
	}
	return true
}

// isLenientName: last resort, any plausible multi-word line near the top.
func isLenientName(line string) bool {
	if len(line) < 5 || len(line) > 100 {
		return false
	}
	if !unicode.IsLetter([]rune(line)[0]) {
		return false
	}
	if !strings.ContainsAny(line, " -") {
		return false
	}
	if emailRe.MatchString(line) || looksLikeURL(line) || yearTokenRe.MatchString(line) {
		return false
	}
	return true
}

func looksLikeURL(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "http") || strings.Contains(lower, "www.") || strings.Contains(lower, ".com")
}
