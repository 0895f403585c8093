// Package memory holds a bot's associative state: the pending reply queue,
// the tag lexicon and the pronoun vocabulary.
package memory

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// NotFoundTag is substituted when no part produces a reply.
	NotFoundTag = "{notFound}"
	// DefaultNotFound is the expansion of NotFoundTag unless overridden.
	DefaultNotFound = "・・・"

	BotTag      = "{bot}"
	UserTag     = "{user}"
	BotNameTag  = "{botName}"
	UserNameTag = "{userName}"
)

// TagPattern matches a single {identifier} placeholder.
var TagPattern = regexp.MustCompile(`\{[a-zA-Z0-9]+\}`)

var tagKeyPattern = regexp.MustCompile(`^\{[a-zA-Z0-9]+\}$`)

// Memory is the per-bot state. Queue is the only field mutated during a turn.
type Memory struct {
	InDictWordsForBot  []string            `json:"inDictWordsForBot"`
	InDictWordsForUser []string            `json:"inDictWordsForUser"`
	OutDictBotInWords  []string            `json:"outDictBotInWords"`
	OutDictUserInWords []string            `json:"outDictUserInWords"`
	Queue              []string            `json:"queue"`
	Tags               map[string][]string `json:"tags"`
}

// New returns an empty memory with the default {notFound} tag.
func New() *Memory {
	m := &Memory{Tags: map[string][]string{NotFoundTag: {DefaultNotFound}}}
	m.normalize()
	return m
}

// Parse validates source and decodes it. Invalid input is rejected whole.
func Parse(name, source string) (*Memory, error) {
	if err := Validate(name, source); err != nil {
		return nil, err
	}
	m := New()
	if err := json.Unmarshal([]byte(source), m); err != nil {
		return nil, fmt.Errorf("decode memory: %w", err)
	}
	m.normalize()
	return m, nil
}

// normalize fills absent lists with empty ones so a marshaled memory always
// passes Validate.
func (m *Memory) normalize() {
	for _, l := range []*[]string{
		&m.InDictWordsForBot,
		&m.InDictWordsForUser,
		&m.OutDictBotInWords,
		&m.OutDictUserInWords,
		&m.Queue,
	} {
		if *l == nil {
			*l = []string{}
		}
	}
	if m.Tags == nil {
		m.Tags = map[string][]string{}
	}
	if _, ok := m.Tags[NotFoundTag]; !ok {
		m.Tags[NotFoundTag] = []string{DefaultNotFound}
	}
}

// Clone returns a deep copy.
func (m *Memory) Clone() *Memory {
	c := &Memory{
		InDictWordsForBot:  append([]string{}, m.InDictWordsForBot...),
		InDictWordsForUser: append([]string{}, m.InDictWordsForUser...),
		OutDictBotInWords:  append([]string{}, m.OutDictBotInWords...),
		OutDictUserInWords: append([]string{}, m.OutDictUserInWords...),
		Queue:              append([]string{}, m.Queue...),
		Tags:               make(map[string][]string, len(m.Tags)),
	}
	for k, v := range m.Tags {
		c.Tags[k] = append([]string(nil), v...)
	}
	return c
}

// Marshal encodes the memory for durable storage.
func (m *Memory) Marshal() (string, error) {
	m.normalize()
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode memory: %w", err)
	}
	return string(b), nil
}

// Push appends fragments to the tail of the queue. Blank fragments are dropped.
func (m *Memory) Push(fragments ...string) {
	for _, f := range fragments {
		if strings.TrimSpace(f) == "" {
			continue
		}
		m.Queue = append(m.Queue, f)
	}
}

// Prepend inserts fragments at the head of the queue, keeping their order.
func (m *Memory) Prepend(fragments ...string) {
	pending := m.Queue
	m.Queue = []string{}
	m.Push(fragments...)
	m.Queue = append(m.Queue, pending...)
}

// Pop removes and returns the head of the queue.
func (m *Memory) Pop() (string, bool) {
	if len(m.Queue) == 0 {
		return "", false
	}
	head := m.Queue[0]
	m.Queue = m.Queue[1:]
	return head, true
}

// Pending reports the number of queued fragments.
func (m *Memory) Pending() int {
	return len(m.Queue)
}

// TagTable returns the lexicon used for expansion: Tags plus {bot} and {user}
// mapped to the output pronoun words when Tags does not define them.
func (m *Memory) TagTable() map[string][]string {
	table := make(map[string][]string, len(m.Tags)+2)
	for k, v := range m.Tags {
		table[k] = v
	}
	if _, ok := table[BotTag]; !ok && len(m.OutDictBotInWords) > 0 {
		table[BotTag] = m.OutDictBotInWords
	}
	if _, ok := table[UserTag]; !ok && len(m.OutDictUserInWords) > 0 {
		table[UserTag] = m.OutDictUserInWords
	}
	return table
}

// TagKeys returns the defined tag names in sorted order.
func (m *Memory) TagKeys() []string {
	keys := make([]string, 0, len(m.Tags))
	for k := range m.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
