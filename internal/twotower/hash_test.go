package twotower

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponto/ses-match/internal/domain"
)

func strp(v string) *string { return &v }
func intp(v int) *int       { return &v }
func i64p(v int64) *int64   { return &v }

func l2norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestHashEmbedderProducesUnitVectors(t *testing.T) {
	tower := NewHashEmbedder(DefaultConfig())

	project := domain.Project{
		RequiredSkillsKeywords: []string{"rust", "python"},
		WorkTodofuken:          strp("東京都"),
	}

	emb := tower.EmbedProject(&project)
	assert.Len(t, emb.Vector, 256)
	assert.InDelta(t, 1.0, l2norm(emb.Vector), 1e-5)
}

func TestHashEmbedderZeroTokensPassThrough(t *testing.T) {
	tower := NewHashEmbedder(DefaultConfig())
	emb := tower.EmbedProject(&domain.Project{})
	assert.Equal(t, 0.0, l2norm(emb.Vector))
}

func TestHashEmbedderIsDeterministic(t *testing.T) {
	tower := NewHashEmbedder(DefaultConfig())
	project := domain.Project{RequiredSkillsKeywords: []string{"rust", "aws"}}

	first := tower.EmbedProject(&project)
	second := tower.EmbedProject(&project)
	assert.Equal(t, first.Vector, second.Vector)
}

func TestSimilarInputsScoreHigher(t *testing.T) {
	tower := NewHashEmbedder(DefaultConfig())

	project := domain.Project{
		RequiredSkillsKeywords: []string{"rust", "aws"},
		WorkTodofuken:          strp("東京都"),
	}
	similar := domain.Talent{
		PossessedSkillsKeywords: []string{"rust", "aws", "docker"},
		ResidentialTodofuken:    strp("東京都"),
	}
	different := domain.Talent{
		PossessedSkillsKeywords: []string{"cobol", "oracle"},
		ResidentialTodofuken:    strp("北海道"),
	}

	projEmb := tower.EmbedProject(&project)
	assert.Greater(t,
		tower.Similarity(projEmb, tower.EmbedTalent(&similar)),
		tower.Similarity(projEmb, tower.EmbedTalent(&different)))
}

func TestRequiredSkillMatchBeatsPreferred(t *testing.T) {
	tower := NewHashEmbedder(DefaultConfig())

	project := domain.Project{
		RequiredSkillsKeywords:  []string{"rust"},
		PreferredSkillsKeywords: []string{"python"},
	}
	requiredMatch := domain.Talent{PossessedSkillsKeywords: []string{"rust"}}
	preferredMatch := domain.Talent{PossessedSkillsKeywords: []string{"python"}}

	projEmb := tower.EmbedProject(&project)
	assert.Greater(t,
		tower.Similarity(projEmb, tower.EmbedTalent(&requiredMatch)),
		tower.Similarity(projEmb, tower.EmbedTalent(&preferredMatch)))
}

func TestCosineSimilarityProperties(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)

	// Symmetric and within [0,1].
	c := []float32{0.3, -0.4, 0.2}
	d := []float32{-0.1, 0.9, 0.4}
	sim := CosineSimilarity(c, d)
	assert.Equal(t, sim, CosineSimilarity(d, c))
	assert.GreaterOrEqual(t, sim, 0.0)
	assert.LessOrEqual(t, sim, 1.0)

	// Opposite vectors map to 0 under the clamped cosine.
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	// Zero norms and dimension mismatches yield 0.
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0, 0}, []float32{1, 0}))
}

func TestSimilarityDimensionMismatchIsZero(t *testing.T) {
	small := NewHashEmbedder(Config{Dimension: 64, ScoreMax: 1})
	large := NewHashEmbedder(Config{Dimension: 256, ScoreMax: 1})

	project := domain.Project{RequiredSkillsKeywords: []string{"rust"}}
	a := small.EmbedProject(&project)
	b := large.EmbedProject(&project)

	assert.Equal(t, 0.0, small.Similarity(a, b))
}

func TestRankTalentsSortsDescendingAndHandlesMissingIDs(t *testing.T) {
	tower := NewHashEmbedder(DefaultConfig())

	project := domain.Project{RequiredSkillsKeywords: []string{"rust", "aws"}}
	match := domain.Talent{ID: i64p(1), PossessedSkillsKeywords: []string{"rust", "aws"}}
	mismatch := domain.Talent{ID: i64p(2), PossessedSkillsKeywords: []string{"cobol"}}
	anonymous := domain.Talent{PossessedSkillsKeywords: []string{"rust"}}

	scores := RankTalents(tower, &project, []domain.Talent{mismatch, match, anonymous})
	require.Len(t, scores, 3)
	assert.Equal(t, int64(1), scores[0].TalentID)
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Score, scores[i].Score)
	}

	// Talents without an id emit id 0.
	found := false
	for _, s := range scores {
		if s.TalentID == 0 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIdentityAndFactory(t *testing.T) {
	tower := NewHashEmbedder(DefaultConfig())
	assert.Equal(t, "hash", tower.Name())
	assert.Equal(t, "v2", tower.Version())
	assert.Equal(t, 256, tower.Dimension())

	// Unknown names fall back to hash.
	fallback := NewEmbedder("onnx", DefaultConfig())
	assert.Equal(t, "hash", fallback.Name())
}

func TestConfigNormalizeScore(t *testing.T) {
	cfg := Config{ScoreMin: 0.2, ScoreMax: 0.8}
	assert.InDelta(t, 0.5, cfg.NormalizeScore(0.5), 1e-9)
	assert.Equal(t, 0.0, cfg.NormalizeScore(0.1))
	assert.Equal(t, 1.0, cfg.NormalizeScore(0.9))

	// Degenerate range passes through.
	flat := Config{ScoreMin: 0.5, ScoreMax: 0.5}
	assert.Equal(t, 0.7, flat.NormalizeScore(0.7))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TWO_TOWER_ENABLED", "true")
	t.Setenv("TWO_TOWER_DIMENSION", "512")
	t.Setenv("TWO_TOWER_WEIGHT", "0.3")
	t.Setenv("TWO_TOWER_SCORE_MIN", "0.1")
	t.Setenv("TWO_TOWER_SCORE_MAX", "0.9")

	cfg := LoadConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 512, cfg.Dimension)
	assert.Equal(t, 0.3, cfg.Weight)
	assert.Equal(t, 0.1, cfg.ScoreMin)
	assert.Equal(t, 0.9, cfg.ScoreMax)
}

func TestSipHash13IsStable(t *testing.T) {
	// Fixed keys and input always produce the same value; different
	// inputs diverge.
	h1 := sipHash13(hashSeedK0, hashSeedK1, []byte("skill:rust"))
	h2 := sipHash13(hashSeedK0, hashSeedK1, []byte("skill:rust"))
	h3 := sipHash13(hashSeedK0, hashSeedK1, []byte("skill:go"))
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestTokenizerBuckets(t *testing.T) {
	assert.Equal(t, "0-2", expYearsBucket(1))
	assert.Equal(t, "3-5", expYearsBucket(4))
	assert.Equal(t, "6-10", expYearsBucket(10))
	assert.Equal(t, "11+", expYearsBucket(20))

	assert.Equal(t, "under30", tankaBucket(25))
	assert.Equal(t, "30-50", tankaBucket(40))
	assert.Equal(t, "50-70", tankaBucket(60))
	assert.Equal(t, "70-100", tankaBucket(80))
	assert.Equal(t, "100+", tankaBucket(150))
}

func TestTokenizeProjectNamespaces(t *testing.T) {
	project := domain.Project{
		RequiredSkillsKeywords:  []string{"Rust"},
		PreferredSkillsKeywords: []string{"AWS"},
		WorkTodofuken:           strp("東京都"),
		WorkArea:                strp("関東"),
		WorkStation:             strp("新宿駅"),
		RemoteOnsite:            strp("リモート併用"),
		MinExperienceYears:      intp(4),
		ContractType:            strp("業務委託"),
		MonthlyTankaMax:         intp(80),
		JapaneseSkill:           strp("N2"),
		EnglishSkill:            strp("不要"),
	}

	tokens := TokenizeProject(&project)
	byToken := map[string]float32{}
	for _, tok := range tokens {
		byToken[tok.Token] = tok.Weight
	}

	assert.Equal(t, float32(2.0), byToken["skill:rust"])
	assert.Equal(t, float32(1.0), byToken["skill:aws"])
	assert.Equal(t, float32(1.5), byToken["loc:東京都"])
	assert.Equal(t, float32(1.0), byToken["loc:area:関東"])
	assert.Equal(t, float32(0.5), byToken["loc:station:新宿駅"])
	assert.Equal(t, float32(1.5), byToken["remote:リモート併用"])
	assert.Equal(t, float32(1.0), byToken["exp:3-5"])
	assert.Equal(t, float32(1.0), byToken["contract:業務委託"])
	assert.Equal(t, float32(1.0), byToken["tanka:70-100"])
	assert.Equal(t, float32(1.0), byToken["lang:ja:N2"])
	assert.Equal(t, float32(1.0), byToken["lang:en:不要"])
}
