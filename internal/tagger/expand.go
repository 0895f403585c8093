package tagger

import (
	"github.com/rcliao/biomebot/internal/chance"
	"github.com/rcliao/biomebot/internal/memory"
	"go.uber.org/zap"
)

const (
	DefaultMaxDepth = 16
	// DefaultMaxExpansions caps substitutions per Expand call so that
	// self-multiplying tags cannot blow up even within the depth limit.
	DefaultMaxExpansions = 1024
)

// Expander replaces {tag} placeholders with a random entry of the tag's list,
// expanding the chosen entry recursively.
type Expander struct {
	rand          chance.Source
	logger        *zap.Logger
	maxDepth      int
	maxExpansions int
}

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets the logger used for unknown-tag and depth warnings.
func WithLogger(l *zap.Logger) Option {
	return func(e *Expander) { e.logger = l }
}

// WithMaxDepth sets the recursion limit.
func WithMaxDepth(n int) Option {
	return func(e *Expander) { e.maxDepth = n }
}

// NewExpander creates an Expander drawing from src.
func NewExpander(src chance.Source, opts ...Option) *Expander {
	e := &Expander{
		rand:          src,
		logger:        zap.NewNop(),
		maxDepth:      DefaultMaxDepth,
		maxExpansions: DefaultMaxExpansions,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Expand returns text with every known placeholder expanded. Unknown tags, and
// tags reached past the depth limit, stay verbatim.
func (e *Expander) Expand(text string, table map[string][]string) string {
	budget := e.maxExpansions
	return e.expand(text, table, 0, &budget)
}

func (e *Expander) expand(text string, table map[string][]string, depth int, budget *int) string {
	return memory.TagPattern.ReplaceAllStringFunc(text, func(tag string) string {
		items, ok := table[tag]
		if !ok || len(items) == 0 {
			if !passThrough(tag) {
				e.logger.Warn("unknown tag left unexpanded", zap.String("tag", tag))
			}
			return tag
		}
		if depth >= e.maxDepth || *budget <= 0 {
			e.logger.Warn("tag expansion limit reached",
				zap.String("tag", tag), zap.Int("depth", depth))
			return tag
		}
		*budget--
		item := items[e.rand.IntN(len(items))]
		return e.expand(item, table, depth+1, budget)
	})
}

// passThrough reports tags resolved later by UntagNames.
func passThrough(tag string) bool {
	return tag == memory.BotNameTag || tag == memory.UserNameTag
}
