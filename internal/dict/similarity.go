package dict

import (
	"math"
	"strings"
	"unicode"

	"github.com/rcliao/biomebot/internal/chance"
	"github.com/rcliao/biomebot/internal/memory"
)

// Vector is a sparse term-frequency vector.
type Vector map[string]float64

// tieEpsilon treats scores this close as equal.
const tieEpsilon = 1e-9

// CosineSimilarity computes cosine similarity between two vectors.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for k, av := range a {
		normA += av * av
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Tokenize lowercases text and splits it into single runes, keeping {tag}
// placeholders whole. Whitespace and punctuation are dropped.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	locs := memory.TagPattern.FindAllStringIndex(text, -1)
	pos := 0
	emit := func(s string) {
		for _, r := range s {
			if unicode.IsSpace(r) || unicode.IsPunct(r) {
				continue
			}
			tokens = append(tokens, string(r))
		}
	}
	for _, loc := range locs {
		emit(text[pos:loc[0]])
		tokens = append(tokens, text[loc[0]:loc[1]])
		pos = loc[1]
	}
	emit(text[pos:])
	return tokens
}

// Vectorize builds a vector of token bigrams, falling back to unigrams for
// single-token text.
func Vectorize(text string) Vector {
	tokens := Tokenize(text)
	v := Vector{}
	if len(tokens) == 1 {
		v[tokens[0]] = 1
		return v
	}
	for i := 0; i+1 < len(tokens); i++ {
		v[tokens[i]+"\x00"+tokens[i+1]]++
	}
	return v
}

// Similarity scores text against pattern in [0,1]. Identical token sequences
// score exactly 1.
func Similarity(text, pattern string) float64 {
	if joined := strings.Join(Tokenize(text), ""); joined != "" && joined == strings.Join(Tokenize(pattern), "") {
		return 1
	}
	return clamp(CosineSimilarity(Vectorize(text), Vectorize(pattern)))
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

type indexedInput struct {
	entry  int
	joined string
	vector Vector
}

// Index holds precomputed pattern vectors for a dictionary.
type Index struct {
	dict   *Dictionary
	inputs []indexedInput
}

// NewIndex vectorizes every input pattern after applying normalize.
func NewIndex(d *Dictionary, normalize func(string) string) *Index {
	if normalize == nil {
		normalize = func(s string) string { return s }
	}
	ix := &Index{dict: d}
	for i, e := range d.Entries {
		for _, in := range e.Inputs {
			n := normalize(in)
			ix.inputs = append(ix.inputs, indexedInput{
				entry:  i,
				joined: strings.Join(Tokenize(n), ""),
				vector: Vectorize(n),
			})
		}
	}
	return ix
}

// Best returns the entry whose inputs best match text, and the score. Exact
// ties between entries are broken uniformly at random. An empty index returns
// entry -1.
func (ix *Index) Best(text string, src chance.Source) (int, float64) {
	vec := Vectorize(text)
	joined := strings.Join(Tokenize(text), "")

	best := -1.0
	var tied []int
	seen := map[int]bool{}
	for _, in := range ix.inputs {
		var score float64
		if joined != "" && joined == in.joined {
			score = 1
		} else {
			score = clamp(CosineSimilarity(vec, in.vector))
		}
		switch {
		case score > best+tieEpsilon:
			best = score
			tied = tied[:0]
			seen = map[int]bool{in.entry: true}
			tied = append(tied, in.entry)
		case math.Abs(score-best) <= tieEpsilon && !seen[in.entry]:
			seen[in.entry] = true
			tied = append(tied, in.entry)
		}
	}
	if len(tied) == 0 {
		return -1, 0
	}
	if len(tied) == 1 {
		return tied[0], best
	}
	return tied[src.IntN(len(tied))], best
}

// Entry returns entry i of the indexed dictionary.
func (ix *Index) Entry(i int) Entry {
	return ix.dict.Entries[i]
}
