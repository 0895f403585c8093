// Package bot composes parts into a personality that answers messages.
//
// A bot consults its parts in the current order. Each part is gated by its
// availability, must score above its generosity floor, and after firing moves
// to the front or the back of the order depending on its retention draw.
// Multi-sentence replies are split on <BR> and delivered over later turns.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/biomebot/internal/chance"
	"github.com/rcliao/biomebot/internal/memory"
	"github.com/rcliao/biomebot/internal/model"
	"github.com/rcliao/biomebot/internal/part"
	"github.com/rcliao/biomebot/internal/sentence"
	"github.com/rcliao/biomebot/internal/store"
	"github.com/rcliao/biomebot/internal/tagger"
)

// Bot is a personality. A single mutex serializes turns.
type Bot struct {
	mu sync.Mutex

	settings model.BotSettings
	parts    map[string]*part.Part
	order    *Order
	mem      *memory.Memory
	hub      hubState

	store    store.StateStore
	rand     chance.Source
	expander *tagger.Expander
	split    sentence.Options
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Bot.
type Option func(*Bot)

// WithStore sets the durable-state store. Without one, state lives only in
// process memory.
func WithStore(s store.StateStore) Option {
	return func(b *Bot) { b.store = s }
}

// WithRand sets the random source.
func WithRand(src chance.Source) Option {
	return func(b *Bot) { b.rand = src }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// WithSentenceOptions overrides how replies are split into fragments.
func WithSentenceOptions(o sentence.Options) Option {
	return func(b *Bot) { b.split = o }
}

// New builds a bot from settings. When the store holds a snapshot for the
// bot, its memory and current order are restored; otherwise memory comes from
// settings and the current order from the default part order.
func New(ctx context.Context, settings model.BotSettings, opts ...Option) (*Bot, error) {
	if settings.ID == "" {
		return nil, fmt.Errorf("bot id is required")
	}
	b := &Bot{
		parts:  make(map[string]*part.Part),
		rand:   chance.New(0),
		split:  sentence.DefaultOptions(),
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(b)
	}
	b.logger = b.logger.With(zap.String("bot", settings.ID))
	b.expander = tagger.NewExpander(b.rand, tagger.WithLogger(b.logger))

	if err := b.applySettings(settings); err != nil {
		return nil, err
	}
	mem, err := parseMemory(settings)
	if err != nil {
		return nil, err
	}
	b.mem = mem
	b.order = NewOrder(settings.Parts)

	if b.store == nil {
		return b, nil
	}
	snap, err := b.store.LoadState(ctx, settings.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return b, nil
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	}
	if snap.Memory != "" {
		restored, err := memory.Parse("saved memory", snap.Memory)
		if err != nil {
			b.logger.Warn("saved memory rejected, using settings", zap.Error(err))
		} else {
			b.mem = restored
		}
	}
	b.order = NewOrder(Reconcile(snap.CurrentOrder, settings.Parts))
	return b, nil
}

func parseMemory(settings model.BotSettings) (*memory.Memory, error) {
	if settings.Memory == "" {
		return memory.New(), nil
	}
	return memory.Parse("memory", settings.Memory)
}

func (b *Bot) applySettings(settings model.BotSettings) error {
	for label, v := range map[string]float64{
		"hub availability": settings.Hub.Availability,
		"hub generosity":   settings.Hub.Generosity,
		"hub retention":    settings.Hub.Retention,
	} {
		if !model.InUnitRange(v) {
			return fmt.Errorf("%s %v out of range [0,1]", label, v)
		}
	}
	b.settings = settings
	b.settings.Parts = append([]string(nil), settings.Parts...)
	b.hub.params = settings.Hub
	return nil
}

// SetParam replaces the bot's identity and settings. With forceReset the
// memory is reloaded from settings, keeping only the pending queue, and the
// current order restarts from the default order. Without it the current order
// is reconciled against the new default order.
func (b *Bot) SetParam(ctx context.Context, settings model.BotSettings, forceReset bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if settings.ID != b.settings.ID {
		return fmt.Errorf("bot id mismatch: %s != %s", settings.ID, b.settings.ID)
	}
	if err := b.applySettings(settings); err != nil {
		return err
	}
	if !forceReset {
		b.order = NewOrder(Reconcile(b.order.Names(), settings.Parts))
		return nil
	}

	mem, err := parseMemory(settings)
	if err != nil {
		return err
	}
	mem.Queue = append([]string{}, b.mem.Queue...)
	b.mem = mem
	b.order = NewOrder(settings.Parts)
	b.persist(ctx)
	return nil
}

// SetPart compiles and registers a part. A part that fails validation or
// compilation is not registered and the error is returned.
func (b *Bot) SetPart(s model.PartSettings) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := part.New(s)
	if err != nil {
		return err
	}
	if err := p.Compile(s.DictSource, b.mem); err != nil {
		b.logger.Warn("part not registered", zap.String("part", s.Name), zap.Error(err))
		return err
	}
	p.Setup()
	b.parts[s.Name] = p
	return nil
}

// Part returns a registered part.
func (b *Bot) Part(name string) (*part.Part, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.parts[name]
	return p, ok
}

// ID returns the bot id.
func (b *Bot) ID() string {
	return b.settings.ID
}

// Settings returns a copy of the bot settings.
func (b *Bot) Settings() model.BotSettings {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.settings
	s.Parts = append([]string(nil), b.settings.Parts...)
	return s
}

// CurrentOrder returns the working part order.
func (b *Bot) CurrentOrder() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.order.Names()
}

// Memory returns a copy of the bot memory.
func (b *Bot) Memory() *memory.Memory {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mem.Clone()
}

// Reply answers msg in one-to-one chat. A queued fragment from an earlier
// multi-sentence reply is delivered before any part is consulted.
func (b *Bot) Reply(ctx context.Context, msg model.Message) (model.Reply, error) {
	if err := ctx.Err(); err != nil {
		return model.Reply{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.circuit(b.tagged(msg))
	text := b.render(r.Text, msg)

	b.persist(ctx)
	return b.envelope(text), nil
}

// Snapshot returns the durable state of the bot.
func (b *Bot) Snapshot() (model.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Save writes the current snapshot to the store.
func (b *Bot) Save(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return nil
	}
	snap, err := b.snapshot()
	if err != nil {
		return err
	}
	return b.store.SaveState(ctx, b.settings.ID, snap)
}

func (b *Bot) snapshot() (model.Snapshot, error) {
	mem, err := b.mem.Marshal()
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		BotID:        b.settings.ID,
		Memory:       mem,
		CurrentOrder: b.order.Names(),
		UpdatedAt:    b.now(),
	}, nil
}

// persist saves state after a turn. Failures are logged rather than returned:
// every save is a full snapshot, so the next turn repairs a missed one.
func (b *Bot) persist(ctx context.Context) {
	if b.store == nil {
		return
	}
	snap, err := b.snapshot()
	if err == nil {
		err = b.store.SaveState(ctx, b.settings.ID, snap)
	}
	if err != nil {
		b.logger.Error("save state failed", zap.Error(err))
	}
}

func (b *Bot) tagged(msg model.Message) model.Message {
	msg.Text = tagger.TagNames(msg.Text, b.settings.DisplayName, msg.DisplayName)
	return msg
}

// render expands tags and names in text and returns the first sentence.
// Further sentences go to the head of the queue, ahead of fragments queued
// earlier, so delivery order holds. Text that renders blank, such as a bare
// <BR>, is answered with {notFound} so it never reads as silence.
func (b *Bot) render(text string, msg model.Message) string {
	head, rest := sentence.Head(b.surface(text, msg), b.split)
	if strings.TrimSpace(head) == "" {
		b.logger.Debug("blank reply replaced", zap.String("text", text))
		head, rest = sentence.Head(b.surface(memory.NotFoundTag, msg), b.split)
	}
	b.mem.Prepend(rest...)
	return head
}

func (b *Bot) surface(text string, msg model.Message) string {
	text = b.expander.Expand(text, b.mem.TagTable())
	return tagger.UntagNames(text, b.settings.DisplayName, msg.DisplayName)
}

func (b *Bot) envelope(text string) model.Reply {
	return model.Reply{
		BotID:       b.settings.ID,
		Text:        text,
		DisplayName: b.settings.DisplayName,
		PhotoURL:    b.settings.PhotoURL,
	}
}
