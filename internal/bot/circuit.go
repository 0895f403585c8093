package bot

import (
	"go.uber.org/zap"

	"github.com/rcliao/biomebot/internal/memory"
	"github.com/rcliao/biomebot/internal/model"
	"github.com/rcliao/biomebot/internal/part"
	"github.com/rcliao/biomebot/internal/sentence"
)

// circuit runs one turn over the parts. Callers hold b.mu.
//
// A queued fragment wins outright with score 1. Otherwise parts are tried in
// current order; the first one that passes its availability draw and whose
// score clears its generosity floor fires. The winner's extra sentences are
// queued and the winner is rotated: to the back when the retention draw
// exceeds its retention, else to the front. With no winner the text is
// {notFound} with score 0.
func (b *Bot) circuit(msg model.Message) part.Result {
	if head, ok := b.mem.Pop(); ok {
		return part.Result{Text: head, Score: 1}
	}

	for _, name := range b.order.Names() {
		p, ok := b.parts[name]
		if !ok {
			continue
		}
		if b.rand.Float64() > p.Availability {
			continue
		}
		r := p.AttemptReply(msg, b.rand)
		if !p.Accepts(r.Score) {
			continue
		}

		head, rest := sentence.Head(r.Text, b.split)
		b.mem.Push(rest...)
		r.Text = head

		if b.rand.Float64() > p.Retention {
			b.order.MoveToBack(name)
		} else {
			b.order.MoveToFront(name)
		}
		b.logger.Debug("part fired",
			zap.String("part", name),
			zap.Float64("score", r.Score),
			zap.Strings("order", b.order.Names()))
		return r
	}

	return part.Result{Text: memory.NotFoundTag}
}
