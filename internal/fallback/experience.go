package fallback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cv-backend/internal/cvs"
)

const monthAlt = `(?:jan(?:uary|vier)?|feb(?:ruary)?|f[ée]vr?(?:ier)?|mar(?:ch|s)?|apr(?:il)?|avril?|may|mai|jun[e]?|juin|jul[y]?|juil(?:let)?|aug(?:ust)?|ao[ûu]t|sep(?:t(?:ember|embre)?)?|oct(?:ober|obre)?|nov(?:ember|embre)?|dec(?:ember)?|d[ée]c(?:embre)?)`

const openEndAlt = `present|current(?:ly)?|now|today|pr[ée]sent|actuel(?:lement)?|aujourd'hui|en cours`

// yearRangeRe matches "2018-2020", "2018 – 2020", "2018/2020", "2018 to 2020",
// "May 2018 - June 2020", and open-ended forms like "2019 - present".
var yearRangeRe = regexp.MustCompile(fmt.Sprintf(
	`(?i)(?:%s\.?\s+)?((?:19|20)\d{2})\s*(?:[-–—]|to|à|/)\s*(?:%s\.?\s+)?((?:19|20)\d{2}|%s)`,
	monthAlt, monthAlt, openEndAlt))

var openEndRe = regexp.MustCompile(`(?i)^(?:` + openEndAlt + `)$`)

// pipeTitleRe matches the "Title | Company | Location" line format.
var pipeTitleRe = regexp.MustCompile(`^([^|]+)\|([^|]+)(?:\|([^|]+))?$`)

const (
	backscanMaxChars = 600
	backscanMaxLines = 10
)

// extractExperience parses the experience section into dated entries. For each
// year-range match it searches backward through nearby lines for the job-title
// line that the range belongs to.
func extractExperience(lines []string, currentYear int) []cvs.ExperienceEntry {
	body, ok := sectionBody(lines, experienceHeaderRe)
	if !ok {
		return nil
	}
	section := strings.Join(body, "\n")

	var entries []cvs.ExperienceEntry
	for _, loc := range yearRangeRe.FindAllStringSubmatchIndex(section, -1) {
		startStr := section[loc[2]:loc[3]]
		endStr := section[loc[4]:loc[5]]

		startYear, err := strconv.Atoi(startStr)
		if err != nil {
			continue
		}
		endYear := currentYear
		endDate := strings.ToLower(endStr)
		if !openEndRe.MatchString(endStr) {
			endYear, err = strconv.Atoi(endStr)
			if err != nil {
				continue
			}
			endDate = endStr
		}
		duration := float64(endYear - startYear)
		if duration < 0 {
			duration = 0
		}

		position, company, location := findTitleBefore(section, loc[0])
		entries = append(entries, cvs.ExperienceEntry{
			Position:      position,
			Company:       company,
			Location:      location,
			StartDate:     startStr,
			EndDate:       endDate,
			DurationYears: duration,
		})
	}
	return entries
}

// findTitleBefore walks backward from the year-range match through at most
// backscanMaxChars characters and backscanMaxLines non-trivial lines, looking
// for the line that names the role. A pipe-delimited line wins outright.
func findTitleBefore(section string, matchStart int) (position, company, location string) {
	from := matchStart - backscanMaxChars
	if from < 0 {
		from = 0
	}
	window := section[from:matchStart]
	lines := nonEmpty(splitLines(window))

	scanned := 0
	var fallbackTitle string
	for i := len(lines) - 1; i >= 0 && scanned < backscanMaxLines; i-- {
		line := lines[i]
		if len(line) < 3 {
			continue
		}
		// A full year range this far back belongs to the previous entry;
		// crossing it would attribute that entry's title to this one.
		if yearRangeRe.MatchString(line) {
			break
		}
		scanned++
		line = strings.Trim(line, " -–—|,")
		if line == "" || isSectionHeader(line) {
			continue
		}
		if m := pipeTitleRe.FindStringSubmatch(line); m != nil {
			position = strings.TrimSpace(m[1])
			company = strings.TrimSpace(m[2])
			location = strings.TrimSpace(m[3])
			return position, company, location
		}
		if fallbackTitle == "" && isTitleLine(line) {
			fallbackTitle = line
		}
	}
	return fallbackTitle, "", ""
}

// isTitleLine accepts a capitalized, mixed-case, reasonably short line.
func isTitleLine(line string) bool {
	if len(line) < 3 || len(line) > 80 {
		return false
	}
	runes := []rune(line)
	if !(runes[0] >= 'A' && runes[0] <= 'Z') && !(runes[0] >= 'À' && runes[0] <= 'Ý') {
		return false
	}
	if line == strings.ToUpper(line) && len(strings.Fields(line)) > 4 {
		return false
	}
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") {
		return false
	}
	return true
}

// totalExperienceYears sums entry durations.
func totalExperienceYears(entries []cvs.ExperienceEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.DurationYears
	}
	return total
}
