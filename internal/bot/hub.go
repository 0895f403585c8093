package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/rcliao/biomebot/internal/model"
)

// hubState is the bot's participation profile in multi-party chat. active is
// set while the bot is part of the ongoing exchange and is not persisted.
type hubState struct {
	params model.HubParams
	active bool
}

// HubReply answers msg in multi-party chat. Unless the bot is already engaged
// it speaks only when it passes the hub availability draw; a circuit result
// that falls short of the hub generosity floor is silence. After speaking the
// hub retention draw decides whether the bot stays engaged. Silence is a
// reply with empty text.
func (b *Bot) HubReply(ctx context.Context, msg model.Message) (model.Reply, error) {
	if err := ctx.Err(); err != nil {
		return model.Reply{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if head, ok := b.mem.Pop(); ok {
		text := b.render(head, msg)
		b.persist(ctx)
		return b.envelope(text), nil
	}

	if !b.hub.active && b.rand.Float64() > b.hub.params.Availability {
		b.logger.Debug("hub silent", zap.String("reason", "availability"))
		b.persist(ctx)
		return b.envelope(""), nil
	}

	r := b.circuit(b.tagged(msg))
	if r.Score < 1-b.hub.params.Generosity-scoreEpsilon {
		b.logger.Debug("hub silent",
			zap.String("reason", "generosity"),
			zap.Float64("score", r.Score))
		// The unspoken reply's tail was queued by the circuit.
		b.mem.Queue = []string{}
		b.persist(ctx)
		return b.envelope(""), nil
	}

	b.hub.active = b.rand.Float64() <= b.hub.params.Retention
	text := b.render(r.Text, msg)
	b.persist(ctx)
	return b.envelope(text), nil
}

// Active reports whether the bot is engaged in the hub exchange.
func (b *Bot) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hub.active
}

// ResetHub disengages the bot from the hub exchange.
func (b *Bot) ResetHub() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hub.active = false
}

const scoreEpsilon = 1e-9
