package normalize

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// skillAliases maps each canonical skill to its accepted spellings.
var skillAliases = map[string][]string{
	// JavaScript ecosystem
	"javascript": {"js", "javascript", "java script", "ecmascript", "es6", "es2015", "es2016", "es2017", "es2018"},
	"typescript": {"ts", "typescript", "type script"},
	"nodejs":     {"node.js", "node js", "nodejs", "node"},
	"npm":        {"npm", "node package manager"},
	// Frontend frameworks
	"react":   {"reactjs", "react.js", "react js", "react", "react16", "react17", "react18"},
	"vue":     {"vue.js", "vuejs", "vue js", "vue", "vue2", "vue3"},
	"angular": {"angularjs", "angular.js", "angular", "angular2", "angular4", "angular8", "angular10", "angular12"},
	"svelte":  {"sveltejs", "svelte.js", "svelte"},
	"nextjs":  {"next.js", "nextjs", "next js"},
	"nuxt":    {"nuxtjs", "nuxt.js", "nuxt js", "nuxt"},
	// CSS and styling
	"css":       {"css", "css3", "cascading style sheets"},
	"sass":      {"scss", "sass", "syntactically awesome style sheets"},
	"bootstrap": {"bootstrap", "bootstrap3", "bootstrap4", "bootstrap5"},
	"tailwind":  {"tailwindcss", "tailwind css", "tailwind"},
	// Backend frameworks
	"spring":  {"spring boot", "springboot", "spring framework", "springframework", "spring"},
	"django":  {"django rest framework", "drf", "django framework", "django"},
	"flask":   {"flask framework", "python flask", "flask"},
	"express": {"express.js", "expressjs", "express js", "express framework", "express"},
	"fastapi": {"fast api", "fastapi framework", "fastapi"},
	"laravel": {"laravel framework", "php laravel", "laravel"},
	// Databases
	"postgresql":    {"postgres", "pg", "postgresql", "postgre sql"},
	"mysql":         {"my sql", "mysql", "mariadb"},
	"mongodb":       {"mongo", "mongo db", "mongodb", "nosql"},
	"redis":         {"redis cache", "redis db", "redis"},
	"elasticsearch": {"elastic search", "es", "elasticsearch"},
	"sqlite":        {"sqlite3", "sql lite", "sqlite"},
	// Cloud platforms
	"aws":      {"amazon web services", "amazon aws", "aws cloud", "aws"},
	"gcp":      {"google cloud platform", "google cloud", "gcp"},
	"azure":    {"microsoft azure", "ms azure", "azure cloud", "azure"},
	"firebase": {"google firebase", "firebase platform", "firebase"},
	// Programming languages
	"python":    {"python3", "python 3", "py", "python2.7", "python"},
	"java":      {"java8", "java11", "java17", "openjdk", "oracle java", "java"},
	"csharp":    {"c#", "c sharp", "csharp", ".net", "dotnet"},
	"cplusplus": {"c++", "cpp", "c plus plus"},
	"golang":    {"go", "golang", "go lang"},
	"rust":      {"rust lang", "rust language", "rust"},
	"php":       {"php7", "php8", "hypertext preprocessor", "php"},
	"ruby":      {"ruby lang", "ruby language", "ruby"},
	"swift":     {"swift lang", "ios swift", "swift"},
	"kotlin":    {"kotlin lang", "kotlin jvm", "kotlin"},
	// DevOps and tools
	"docker":     {"containerization", "docker container", "docker"},
	"kubernetes": {"k8s", "kube", "kubernetes orchestration", "kubernetes"},
	"jenkins":    {"jenkins ci", "jenkins ci/cd", "jenkins"},
	"git":        {"version control", "git scm", "github", "gitlab", "git"},
	"terraform":  {"infrastructure as code", "iac", "terraform"},
	"ansible":    {"configuration management", "ansible"},
	// AI/ML terms (Japanese context)
	"ai":           {"artificial intelligence", "machine learning", "ml", "人工知能", "ai技術", "ai"},
	"ml":           {"machine learning", "artificial intelligence", "ai", "機械学習", "ml"},
	"llm":          {"large language model", "大規模言語モデル", "language model", "llm"},
	"chatgpt":      {"gpt", "openai", "generative ai", "生成ai", "chatgpt"},
	"deeplearning": {"deep learning", "neural networks", "ディープラーニング", "deeplearning"},
	"tensorflow":   {"tensor flow", "tf", "tensorflow"},
	"pytorch":      {"torch", "py torch", "pytorch"},
	// Testing frameworks
	"jest":     {"jest testing", "jest framework", "jest"},
	"cypress":  {"cypress testing", "e2e testing", "cypress"},
	"selenium": {"selenium webdriver", "selenium testing", "selenium"},
	"junit":    {"junit testing", "java testing", "junit"},
	"pytest":   {"python testing", "py test", "pytest"},
	// Mobile development
	"reactnative": {"react native", "react-native", "rn", "reactnative"},
	"flutter":     {"flutter framework", "dart flutter", "flutter"},
	"xamarin":     {"xamarin forms", "microsoft xamarin", "xamarin"},
	"ionic":       {"ionic framework", "ionic cordova", "ionic"},
	// Data and analytics
	"spark":  {"apache spark", "spark streaming", "spark"},
	"hadoop": {"apache hadoop", "hadoop ecosystem", "hadoop"},
	"kafka":  {"apache kafka", "kafka streaming", "kafka"},
	"pandas": {"python pandas", "data analysis", "pandas"},
	"numpy":  {"numerical python", "numpy array", "numpy"},
}

var (
	aliasOnce        sync.Once
	aliasToCanonical map[string]string
	compactToCanonical map[string]string
)

func aliasMaps() (map[string]string, map[string]string) {
	aliasOnce.Do(func() {
		aliasToCanonical = make(map[string]string)
		for canonical, aliases := range skillAliases {
			aliasToCanonical[canonical] = canonical
			for _, alias := range aliases {
				aliasToCanonical[alias] = canonical
			}
		}

		compactToCanonical = make(map[string]string)
		for alias, canonical := range aliasToCanonical {
			key := compactKey(alias)
			if _, exists := compactToCanonical[key]; !exists {
				compactToCanonical[key] = canonical
			}
		}
	})
	return aliasToCanonical, compactToCanonical
}

func nfkcLowerTrim(input string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(input)))
}

func compactKey(input string) string {
	folded := strings.ToLower(norm.NFKC.String(input))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '　', '.', '-', '_', '/', '・', ',':
			return -1
		}
		return r
	}, folded)
}

func isSkillSeparator(r rune) bool {
	switch r {
	case ' ', '　', '/', '／', '・', ',', ';', '|', '+':
		return true
	}
	return false
}

func matchCanonicalToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	aliases, compacts := aliasMaps()
	if canonical, ok := aliases[token]; ok {
		return canonical, true
	}

	compact := compactKey(token)
	if canonical, ok := compacts[compact]; ok {
		return canonical, true
	}

	return fuzzyMatchCanonical(compact)
}

// fuzzyMatchCanonical tolerates small typos via Damerau–Levenshtein.
// Aliases or canonical targets shorter than 5 chars are excluded so that
// brief tokens (java, rust, go) never fuzzy-match.
func fuzzyMatchCanonical(compact string) (string, bool) {
	compactLen := len([]rune(compact))
	if compactLen < 5 {
		return "", false
	}

	_, compacts := aliasMaps()
	best := ""
	bestDist := -1
	for alias, canonical := range compacts {
		aliasLen := len([]rune(alias))
		if aliasLen < 5 || len([]rune(canonical)) < 5 {
			continue
		}

		dist := damerauLevenshtein(compact, alias)
		if dist == 0 {
			return canonical, true
		}

		maxLen := compactLen
		if aliasLen > maxLen {
			maxLen = aliasLen
		}
		acceptable := dist == 1 || (maxLen >= 8 && dist == 2)
		if !acceptable {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = canonical, dist
		}
	}

	if bestDist == -1 {
		return "", false
	}
	return best, true
}

// damerauLevenshtein computes the optimal-string-alignment distance.
// No example repo in the retrieval pack carries a Damerau–Levenshtein
// library, so the recurrence lives here.
func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := prev2[j-2] + 1; t < d {
					d = t
				}
			}
			cur[j] = d
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// NormalizeSkill converts one skill string to its canonical form. Unknown
// skills come back NFKC-folded and lowercased.
func NormalizeSkill(skill string) string {
	normalized := nfkcLowerTrim(skill)
	if canonical, ok := matchCanonicalToken(normalized); ok {
		return canonical
	}

	for _, segment := range strings.FieldsFunc(skill, isSkillSeparator) {
		seg := nfkcLowerTrim(segment)
		if seg == "" {
			continue
		}
		if canonical, ok := matchCanonicalToken(seg); ok {
			return canonical
		}
	}

	return normalized
}

// NormalizeSkillSet converts a skill list to a canonical set.
func NormalizeSkillSet(skills []string) map[string]struct{} {
	out := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out[NormalizeSkill(s)] = struct{}{}
	}
	return out
}

// NormalizeSkillsVec converts a skill list to a sorted, deduplicated slice
// for database storage. Entries shorter than 2 chars are dropped.
func NormalizeSkillsVec(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		normalized := NormalizeSkill(s)
		if len([]rune(normalized)) < 2 {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out
}
