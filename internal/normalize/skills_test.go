package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkillAliases(t *testing.T) {
	assert.Equal(t, "javascript", NormalizeSkill("JavaScript"))
	assert.Equal(t, "javascript", NormalizeSkill("js"))
	assert.Equal(t, "kubernetes", NormalizeSkill("K8s"))
	assert.Equal(t, "csharp", NormalizeSkill("C#"))
}

func TestNormalizeSkillFullwidthAndSeparators(t *testing.T) {
	assert.Equal(t, "aws", NormalizeSkill("ＡＷＳ"))
	assert.Equal(t, "gcp", NormalizeSkill("ＧＣＰ"))
	assert.Equal(t, "react", NormalizeSkill("React　JS"))
	assert.Equal(t, "python", NormalizeSkill("Python／Django"))
}

func TestNormalizeSkillToleratesSmallTypos(t *testing.T) {
	assert.Equal(t, "javascript", NormalizeSkill("javascirpt"))
	assert.Equal(t, "pytorch", NormalizeSkill("pytroch"))
	assert.Equal(t, "kubernetes", NormalizeSkill("kuberntes"))
}

func TestNormalizeSkillDoesNotOvermatchShortTokens(t *testing.T) {
	assert.Equal(t, "ab", NormalizeSkill("ab"))
	assert.Equal(t, "x", NormalizeSkill("x"))
	// Short canonical targets are excluded from fuzzy matching.
	assert.Equal(t, "javaa", NormalizeSkill("javaa"))
	assert.Equal(t, "rustt", NormalizeSkill("rustt"))
}

func TestNormalizeSkillUnknownLowercases(t *testing.T) {
	assert.Equal(t, "mycustomframework", NormalizeSkill("MyCustomFramework"))
}

func TestNormalizeSkillSetBidirectional(t *testing.T) {
	projectSet := NormalizeSkillSet([]string{"React.js", "K8s"})
	talentSet := NormalizeSkillSet([]string{"react", "kubernetes"})
	assert.Equal(t, projectSet, talentSet)
}

func TestNormalizeSkillSetIsOrderFree(t *testing.T) {
	skills := []string{"Python", "Rust", "K8s", "AWS", "GraphQL"}
	reversed := make([]string, len(skills))
	for i, s := range skills {
		reversed[len(skills)-1-i] = s
	}
	assert.Equal(t, NormalizeSkillSet(skills), NormalizeSkillSet(reversed))
}

func TestNormalizeSkillsVecDedupesAndSorts(t *testing.T) {
	normalized := NormalizeSkillsVec([]string{"Python", "python", "  JS ", "javascript"})
	assert.Equal(t, []string{"javascript", "python"}, normalized)
}

func TestNormalizeSkillsVecDropsShortEntries(t *testing.T) {
	normalized := NormalizeSkillsVec([]string{"Python", "x", ""})
	assert.Equal(t, []string{"python"}, normalized)
}

func TestNormalizeSkillsVecIsIdempotent(t *testing.T) {
	first := NormalizeSkillsVec([]string{"React.js", "K8s", "Python／Django"})
	assert.Equal(t, first, NormalizeSkillsVec(first))
}

func TestDamerauLevenshteinCountsTranspositions(t *testing.T) {
	assert.Equal(t, 0, damerauLevenshtein("python", "python"))
	assert.Equal(t, 1, damerauLevenshtein("pytohn", "python"))
	assert.Equal(t, 1, damerauLevenshtein("pythn", "python"))
	assert.Equal(t, 2, damerauLevenshtein("ptyhno", "python"))
	assert.Equal(t, 6, damerauLevenshtein("", "python"))
}
