package scoring

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// minSimilarityTokenLength drops single-character tokens before vectorizing.
const minSimilarityTokenLength = 2

var (
	// ErrEmptyText is returned when either text is blank.
	ErrEmptyText = errors.New("empty text")
	// ErrEmptyVocabulary is returned when no terms of either text survive
	// stop-word filtering.
	ErrEmptyVocabulary = errors.New("empty vocabulary after filtering")
)

// Similarity returns the TF-IDF cosine similarity of two texts as a percentage.
// Failures never propagate: the score is 0 with Degraded set and the cause as Reason.
func Similarity(a, b string) types.SubScore {
	cos, err := CosineTFIDF(a, b)
	if err != nil {
		return types.SubScore{Value: 0, Degraded: true, Reason: err.Error()}
	}
	return types.SubScore{Value: clamp(cos * MaxScore)}
}

// CosineTFIDF computes cosine similarity between TF-IDF vectors of a and b over
// the two-document corpus {a, b}. Terms are weighted by raw count times smoothed
// idf ln((1+n)/(1+df))+1 and each vector is L2-normalized.
func CosineTFIDF(a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, ErrEmptyText
	}
	docA, docB := similarityTerms(a), similarityTerms(b)
	if len(docA) == 0 || len(docB) == 0 {
		return 0, ErrEmptyVocabulary
	}

	tfA, tfB := termCounts(docA), termCounts(docB)
	const n = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if tfA[term] > 0 {
			df++
		}
		if tfB[term] > 0 {
			df++
		}
		return math.Log((1+n)/(1+df)) + 1
	}

	vecA := weigh(tfA, idf)
	vecB := weigh(tfB, idf)

	dot := 0.0
	for term, wa := range vecA {
		dot += wa * vecB[term]
	}
	cos := dot / (norm(vecA) * norm(vecB))
	if math.IsNaN(cos) || math.IsInf(cos, 0) {
		return 0, ErrEmptyVocabulary
	}
	return math.Min(cos, 1), nil
}

func similarityTerms(text string) []string {
	tokens := skills.Tokenize(text)
	out := tokens[:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < minSimilarityTokenLength || skills.IsStopWord(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func termCounts(terms []string) map[string]float64 {
	counts := make(map[string]float64, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return counts
}

func weigh(tf map[string]float64, idf func(string) float64) map[string]float64 {
	vec := make(map[string]float64, len(tf))
	for term, count := range tf {
		vec[term] = count * idf(term)
	}
	return vec
}

func norm(vec map[string]float64) float64 {
	sum := 0.0
	for _, w := range vec {
		sum += w * w
	}
	return math.Sqrt(sum)
}
