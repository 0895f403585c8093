// Package tagger rewrites proper names to placeholders before matching and
// expands placeholders back into surface text after a reply is chosen.
package tagger

import (
	"strings"

	"github.com/rcliao/biomebot/internal/memory"
)

// TagNames replaces every exact occurrence of the bot and user display names
// in text with {botName} and {userName} in a single pass, so inserted
// placeholders are never rewritten. Where the names overlap the longer one
// wins, and the bot name wins a tie. Empty names are left alone.
func TagNames(text, botName, userName string) string {
	pairs := make([]string, 0, 4)
	if botName != "" {
		pairs = append(pairs, botName, memory.BotNameTag)
	}
	if userName != "" {
		user := []string{userName, memory.UserNameTag}
		if len(userName) > len(botName) {
			pairs = append(user, pairs...)
		} else {
			pairs = append(pairs, user...)
		}
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// UntagNames is the inverse of TagNames on generated output.
func UntagNames(text, botName, userName string) string {
	text = strings.ReplaceAll(text, memory.BotNameTag, botName)
	text = strings.ReplaceAll(text, memory.UserNameTag, userName)
	return text
}
