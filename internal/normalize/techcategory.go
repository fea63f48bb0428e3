package normalize

import "strings"

var generativeAIKeywords = []string{
	"生成ai", "generative ai", "chatgpt", "gpt", "llm", "claude", "gemini",
	"openai", "llama", "llama2", "mistral", "mixtral", "grok", "perplexity",
	"midjourney", "stable diffusion", "langchain", "大規模言語モデル", "rag",
	"fine-tuning", "プロンプト", "prompt engineering",
}

var popularTechKeywords = []string{
	"ai", "aws", "gcp", "azure", "ml", "機械学習", "kubernetes", "k8s",
	"docker", "terraform", "ansible", "ci/cd", "jenkins", "github actions",
	"gitlab", "apache", "nginx", "mysql", "postgres", "mongodb", "bigquery",
	"snowflake", "spark", "react", "vue", "typescript", "javascript",
	"nodejs", "node.js", "next.js", "nuxt", "angular", "svelte", "flutter",
	"react native", "go", "rust", "python", "java", "kotlin", "scala",
	"swift", "objective-c", "c#", "csharp", "dotnet", ".net", "php",
	"laravel", "symfony", "cakephp", "zend", "ruby", "rails", "django",
	"fastapi", "spring", "spring boot", "express", "データサイエンス", "クラウド",
}

var legacyTechKeywords = []string{
	"cobol", "vb", "visual basic", "mainframe", "メインフレーム", "汎用機",
	"as400", "rpg", "pl/i", "fortran", "delphi", "lotus", "lotus notes",
	"notes", "foxpro", "coldfusion", "powerbuilder", "access",
}

// InferTechCategory infers the tech category from skill tokens in priority
// order: generative AI > popular modern > legacy. Returns "" when nothing
// matches.
func InferTechCategory(skills []string) string {
	all := strings.ToLower(strings.Join(skills, " "))

	for _, k := range generativeAIKeywords {
		if strings.Contains(all, k) {
			return "生成AI関連"
		}
	}
	for _, k := range popularTechKeywords {
		if strings.Contains(all, k) {
			return "人気技術"
		}
	}
	for _, k := range legacyTechKeywords {
		if strings.Contains(all, k) {
			return "レガシー"
		}
	}
	return ""
}
