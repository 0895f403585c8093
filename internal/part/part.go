// Package part implements a single matching unit of a bot: a compiled
// dictionary plus the availability, generosity and retention knobs.
package part

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcliao/biomebot/internal/chance"
	"github.com/rcliao/biomebot/internal/dict"
	"github.com/rcliao/biomebot/internal/memory"
	"github.com/rcliao/biomebot/internal/model"
)

const scoreEpsilon = 1e-9

// Result is the outcome of a reply attempt.
type Result struct {
	Text  string
	Score float64
}

// Part is one matching unit. It is usable only after Compile and Setup.
type Part struct {
	Name         string
	Availability float64
	Generosity   float64
	Retention    float64

	dictionary *dict.Dictionary
	index      *dict.Index
	pronouns   *strings.Replacer
	botWords   []string
	userWords  []string
}

// New validates settings and returns an uncompiled part.
func New(s model.PartSettings) (*Part, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("part name is required")
	}
	for label, v := range map[string]float64{
		"availability": s.Availability,
		"generosity":   s.Generosity,
		"retention":    s.Retention,
	} {
		if !model.InUnitRange(v) {
			return nil, fmt.Errorf("part %s: %s %v out of range [0,1]", s.Name, label, v)
		}
	}
	return &Part{
		Name:         s.Name,
		Availability: s.Availability,
		Generosity:   s.Generosity,
		Retention:    s.Retention,
	}, nil
}

// Compile parses source and records the pronoun vocabulary from mem. On error
// the part stays uncompiled.
func (p *Part) Compile(source string, mem *memory.Memory) error {
	d, err := dict.Compile(p.Name, source)
	if err != nil {
		return err
	}
	p.dictionary = d
	p.index = nil
	if mem != nil {
		p.botWords = append([]string(nil), mem.InDictWordsForBot...)
		p.userWords = append([]string(nil), mem.InDictWordsForUser...)
	}
	return nil
}

// Setup builds the pronoun normalizer and the match index. It is a no-op on
// an uncompiled part.
func (p *Part) Setup() {
	if p.dictionary == nil {
		return
	}
	p.pronouns = pronounReplacer(p.botWords, p.userWords)
	p.index = dict.NewIndex(p.dictionary, p.Normalize)
}

// Ready reports whether the part can answer.
func (p *Part) Ready() bool {
	return p.index != nil
}

// DictBytes returns the size of the compiled dictionary source.
func (p *Part) DictBytes() int {
	if p.dictionary == nil {
		return 0
	}
	return p.dictionary.SourceBytes
}

// Normalize rewrites pronoun vocabulary in text to {bot} and {user}.
func (p *Part) Normalize(text string) string {
	if p.pronouns == nil {
		return text
	}
	return p.pronouns.Replace(text)
}

// Accepts reports whether score clears the generosity floor.
func (p *Part) Accepts(score float64) bool {
	return score+scoreEpsilon >= 1-p.Generosity
}

// AttemptReply matches the name-tagged message text against the dictionary
// and returns a random output of the best entry with its score.
func (p *Part) AttemptReply(msg model.Message, src chance.Source) Result {
	if !p.Ready() {
		return Result{}
	}
	entry, score := p.index.Best(p.Normalize(msg.Text), src)
	if entry < 0 {
		return Result{}
	}
	outputs := p.index.Entry(entry).Outputs
	return Result{
		Text:  outputs[src.IntN(len(outputs))],
		Score: score,
	}
}

// pronounReplacer maps every vocabulary word to its tag, longest word first
// so that "{botName}さん" wins over "{botName}".
func pronounReplacer(botWords, userWords []string) *strings.Replacer {
	type pair struct{ word, tag string }
	var pairs []pair
	for _, w := range botWords {
		if w != "" {
			pairs = append(pairs, pair{w, memory.BotTag})
		}
	}
	for _, w := range userWords {
		if w != "" {
			pairs = append(pairs, pair{w, memory.UserTag})
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return len(pairs[i].word) > len(pairs[j].word)
	})
	args := make([]string, 0, len(pairs)*2)
	for _, pr := range pairs {
		args = append(args, pr.word, pr.tag)
	}
	return strings.NewReplacer(args...)
}
