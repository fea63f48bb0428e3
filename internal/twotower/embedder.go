package twotower

import (
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/sponto/ses-match/internal/domain"
)

// EmbeddingSource tags which tower produced a vector.
type EmbeddingSource string

// Embedding sources.
const (
	SourceProject EmbeddingSource = "project"
	SourceTalent  EmbeddingSource = "talent"
)

// Embedding is one L2-normalized vector.
type Embedding struct {
	Vector    []float32
	Dimension int
	Source    EmbeddingSource
	CreatedAt time.Time
}

// Embedder is the two-tower abstraction. The hash implementation is
// deterministic and training-free; onnx/candle are learned variants that
// record the same name/version metadata in interaction_logs.
type Embedder interface {
	// Name identifies the implementation ("hash", "onnx", "candle").
	Name() string
	// Version tracks the model generation; bump on any tokenization or
	// hash-parameter change.
	Version() string
	// Dimension is the embedding width.
	Dimension() int

	EmbedProject(project *domain.Project) Embedding
	EmbedTalent(talent *domain.Talent) Embedding
	// EmbedTalents batch-embeds; implementations may override with real
	// batch inference.
	EmbedTalents(talents []domain.Talent) []Embedding
	// Similarity returns a clamped cosine in [0,1]; dimension mismatch
	// yields 0 with a warning.
	Similarity(a, b Embedding) float64
}

// CosineSimilarity is the clamped cosine mapped into [0,1]. Zero norms or
// a length mismatch yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		slog.Warn("embedding dimension mismatch; returning zero similarity",
			slog.Int("a_len", len(a)), slog.Int("b_len", len(b)))
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)
	if normA == 0 || normB == 0 {
		return 0
	}

	return (dot/(normA*normB) + 1) / 2
}

// TalentScore is one ranked (talent_id, similarity) pair. Talents without
// an id are emitted with ID 0.
type TalentScore struct {
	TalentID int64
	Score    float64
}

// RankTalents embeds the project once, batch-embeds the talents, and
// returns similarity scores sorted descending.
func RankTalents(e Embedder, project *domain.Project, talents []domain.Talent) []TalentScore {
	projectEmb := e.EmbedProject(project)
	talentEmbs := e.EmbedTalents(talents)

	scores := make([]TalentScore, 0, len(talents))
	for i := range talents {
		id := int64(0)
		if talents[i].ID != nil {
			id = *talents[i].ID
		}
		scores = append(scores, TalentScore{TalentID: id, Score: e.Similarity(projectEmb, talentEmbs[i])})
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

// NewEmbedder constructs the embedder named by config; unknown names and
// unavailable learned backends fall back to the hash implementation.
func NewEmbedder(name string, config Config) Embedder {
	switch name {
	case "hash", "":
		return NewHashEmbedder(config)
	default:
		// onnx/candle backends are not bundled; fall back deterministically.
		slog.Warn("unknown two-tower embedder; falling back to hash", slog.String("embedder", name))
		return NewHashEmbedder(config)
	}
}

// InitFromEnv loads the config and builds the embedder when enabled.
// Returns a nil embedder when the feature is off.
func InitFromEnv() (Config, Embedder) {
	config := LoadConfigFromEnv()
	if !config.Enabled {
		return config, nil
	}

	name := os.Getenv("TWO_TOWER_EMBEDDER")
	if name == "" {
		name = "hash"
	}
	return config, NewEmbedder(name, config)
}
