package twotower

import (
	"log/slog"
	"math"
	"time"

	"github.com/sponto/ses-match/internal/domain"
)

// Fixed SipHash-1-3 keys. Changing either key changes every embedding;
// bump Version() alongside.
const (
	hashSeedK0 = 0x0123456789abcdef
	hashSeedK1 = 0xfedcba9876543210
)

// HashEmbedder is a deterministic feature-hashing two-tower: no training,
// O(token count), sign-hashed weights, L2-normalized output.
type HashEmbedder struct {
	config Config
}

// NewHashEmbedder builds the embedder, clamping the dimension to >= 1.
func NewHashEmbedder(config Config) *HashEmbedder {
	if config.Dimension < 1 {
		config.Dimension = 1
	}
	return &HashEmbedder{config: config}
}

// Name implements Embedder.
func (h *HashEmbedder) Name() string { return "hash" }

// Version implements Embedder. Bump when tokenization or hashing changes.
func (h *HashEmbedder) Version() string { return "v2" }

// Dimension implements Embedder.
func (h *HashEmbedder) Dimension() int { return h.config.Dimension }

func (h *HashEmbedder) hashToken(token string) int {
	return int(sipHash13(hashSeedK0, hashSeedK1, []byte(token)) % uint64(h.config.Dimension))
}

func (h *HashEmbedder) tokensToEmbedding(tokens []WeightedToken, source EmbeddingSource) Embedding {
	vector := make([]float32, h.config.Dimension)

	for _, wt := range tokens {
		idx := h.hashToken(wt.Token)
		sign := float32(1)
		if sipHash13(hashSeedK0, hashSeedK1, []byte(wt.Token+"_sign"))%2 != 0 {
			sign = -1
		}
		vector[idx] += sign * wt.Weight
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}

	return Embedding{
		Vector:    vector,
		Dimension: h.config.Dimension,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// EmbedProject implements Embedder.
func (h *HashEmbedder) EmbedProject(project *domain.Project) Embedding {
	return h.tokensToEmbedding(TokenizeProject(project), SourceProject)
}

// EmbedTalent implements Embedder.
func (h *HashEmbedder) EmbedTalent(talent *domain.Talent) Embedding {
	return h.tokensToEmbedding(TokenizeTalent(talent), SourceTalent)
}

// EmbedTalents implements Embedder with a plain loop.
func (h *HashEmbedder) EmbedTalents(talents []domain.Talent) []Embedding {
	out := make([]Embedding, len(talents))
	for i := range talents {
		out[i] = h.EmbedTalent(&talents[i])
	}
	return out
}

// Similarity implements Embedder.
func (h *HashEmbedder) Similarity(a, b Embedding) float64 {
	if a.Dimension != b.Dimension {
		slog.Warn("embedding dimension mismatch; returning zero similarity",
			slog.Int("a_dim", a.Dimension), slog.Int("b_dim", b.Dimension))
		return 0
	}
	return CosineSimilarity(a.Vector, b.Vector)
}
