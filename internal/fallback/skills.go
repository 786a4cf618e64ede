package fallback

import (
	"regexp"
	"strings"
)

// Fixed vocabularies matched as whole words, case-insensitive, against the
// full document text. French technical synonyms live alongside the English
// terms so one pass covers both languages.
var skillVocabulary = []string{
	// programming languages
	"go", "golang", "python", "java", "javascript", "typescript", "c++", "c#",
	"php", "ruby", "swift", "kotlin", "rust", "scala", "perl", "r", "matlab",
	"sql", "html", "css", "bash", "powershell",
	// frameworks
	"react", "angular", "vue", "svelte", "next.js", "node.js", "nodejs",
	"express", "django", "flask", "fastapi", "spring", "spring boot",
	"laravel", "symfony", "rails", ".net", "flutter", "react native",
	// databases
	"postgresql", "postgres", "mysql", "mariadb", "mongodb", "redis",
	"elasticsearch", "cassandra", "sqlite", "oracle", "dynamodb", "sql server",
	// data / ml
	"machine learning", "deep learning", "apprentissage automatique",
	"data analysis", "analyse de données", "pandas", "numpy", "tensorflow",
	"pytorch", "scikit-learn", "spark", "hadoop", "kafka", "airflow",
	// methods
	"agile", "scrum", "kanban", "devops", "ci/cd", "tdd", "microservices",
	"rest", "graphql", "grpc", "oauth",
}

var toolVocabulary = []string{
	"docker", "kubernetes", "git", "github", "gitlab", "bitbucket", "jenkins",
	"terraform", "ansible", "prometheus", "grafana", "jira", "confluence",
	"slack", "trello", "figma", "postman", "vscode", "intellij", "eclipse",
	"aws", "amazon web services", "azure", "gcp", "google cloud", "heroku",
	"linux", "ubuntu", "windows server", "nginx", "apache",
	"excel", "word", "powerpoint", "photoshop", "illustrator", "autocad",
	"salesforce", "sap", "tableau", "power bi",
}

var softSkillVocabulary = []string{
	"leadership", "communication", "teamwork", "team work", "collaboration",
	"problem solving", "problem-solving", "critical thinking", "adaptability",
	"time management", "creativity", "mentoring", "negotiation",
	"project management", "public speaking", "attention to detail",
	"travail d'équipe", "esprit d'équipe", "gestion de projet", "autonomie",
	"rigueur", "créativité", "prise de décision", "gestion du temps",
	"résolution de problèmes", "sens de l'organisation", "adaptabilité",
}

var languageVocabulary = []string{
	"english", "french", "spanish", "german", "italian", "portuguese",
	"arabic", "chinese", "mandarin", "japanese", "russian", "dutch",
	"anglais", "français", "francais", "espagnol", "allemand", "italien",
	"portugais", "arabe", "chinois", "japonais", "russe", "néerlandais",
}

// Bucket classifiers run over the assembled skill list. They are independent
// patterns, so one skill can land in more than one bucket.
var (
	technicalClassifierRe = regexp.MustCompile(`(?i)^(?:go|golang|python|java|javascript|typescript|c\+\+|c#|php|ruby|swift|kotlin|rust|scala|perl|r|matlab|sql|html|css|bash|powershell|react|angular|vue|svelte|next\.js|node\.?js|express|django|flask|fastapi|spring(?: boot)?|laravel|symfony|rails|\.net|flutter|react native|postgres(?:ql)?|mysql|mariadb|mongodb|redis|elasticsearch|cassandra|sqlite|oracle|dynamodb|sql server|machine learning|deep learning|apprentissage automatique|data analysis|analyse de données|pandas|numpy|tensorflow|pytorch|scikit-learn|spark|hadoop|kafka|airflow|agile|scrum|kanban|devops|ci/cd|tdd|microservices|rest|graphql|grpc|oauth)$`)

	softClassifierRe = regexp.MustCompile(`(?i)(?:leadership|communication|teamwork|team work|collaboration|problem[\s-]solving|critical thinking|adaptab|time management|creativity|créativité|mentoring|negotiation|management|speaking|attention to detail|équipe|equipe|autonomie|rigueur|décision|organisation|résolution)`)

	toolClassifierRe = regexp.MustCompile(`(?i)^(?:docker|kubernetes|git(?:hub|lab)?|bitbucket|jenkins|terraform|ansible|prometheus|grafana|jira|confluence|slack|trello|figma|postman|vscode|intellij|eclipse|aws|amazon web services|azure|gcp|google cloud|heroku|linux|ubuntu|windows server|nginx|apache|excel|word|powerpoint|photoshop|illustrator|autocad|salesforce|sap|tableau|power bi)$`)
)

// wordBoundaryPattern builds a whole-word matcher that also works for terms
// containing regex metacharacters like "c++" and ".net", where \b misbehaves.
func wordBoundaryPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^a-z0-9+#.])` + regexp.QuoteMeta(term) + `(?:[^a-z0-9+#]|$)`)
}

var (
	skillPatterns    = compileVocabulary(skillVocabulary)
	toolPatterns     = compileVocabulary(toolVocabulary)
	softPatterns     = compileVocabulary(softSkillVocabulary)
	languagePatterns = compileVocabulary(languageVocabulary)
)

func compileVocabulary(terms []string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(terms))
	for _, term := range terms {
		out[term] = wordBoundaryPattern(term)
	}
	return out
}

func matchVocabulary(text string, patterns map[string]*regexp.Regexp, order []string) []string {
	var hits []string
	for _, term := range order {
		if patterns[term].MatchString(text) {
			hits = append(hits, term)
		}
	}
	return hits
}

// extractSkills scans the full text for every vocabulary and partitions the
// hits into technical/soft/tools buckets. Classification is not mutually
// exclusive: a term that satisfies several classifiers appears in each bucket.
func extractSkills(text string) (technical, soft, tools, languages []string) {
	lower := strings.ToLower(text)

	all := matchVocabulary(lower, skillPatterns, skillVocabulary)
	all = append(all, matchVocabulary(lower, toolPatterns, toolVocabulary)...)
	all = append(all, matchVocabulary(lower, softPatterns, softSkillVocabulary)...)
	all = dedupe(all)

	for _, skill := range all {
		if technicalClassifierRe.MatchString(skill) {
			technical = append(technical, skill)
		}
		if softClassifierRe.MatchString(skill) {
			soft = append(soft, skill)
		}
		if toolClassifierRe.MatchString(skill) {
			tools = append(tools, skill)
		}
	}
	languages = matchVocabulary(lower, languagePatterns, languageVocabulary)
	return technical, soft, tools, languages
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
