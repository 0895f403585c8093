// Package sentence splits multi-sentence replies into deliverable fragments.
package sentence

import (
	"strings"
)

// DefaultMarker separates sentences that are delivered on successive turns.
const DefaultMarker = "<BR>"

// Options configures splitting behavior.
type Options struct {
	Marker string
	// TrimSpace trims surrounding whitespace from every fragment.
	TrimSpace bool
}

// DefaultOptions returns default splitting options.
func DefaultOptions() Options {
	return Options{
		Marker:    DefaultMarker,
		TrimSpace: true,
	}
}

// Split breaks text on the marker. Blank fragments are dropped; text without
// a marker returns a single fragment (or nil when blank).
func Split(text string, opts Options) []string {
	if opts.Marker == "" {
		opts = DefaultOptions()
	}

	parts := strings.Split(text, opts.Marker)
	fragments := make([]string, 0, len(parts))
	for _, p := range parts {
		if opts.TrimSpace {
			p = strings.TrimSpace(p)
		}
		if strings.TrimSpace(p) == "" {
			continue
		}
		fragments = append(fragments, p)
	}
	if len(fragments) == 0 {
		return nil
	}
	return fragments
}

// Head returns the first fragment of text and the fragments that follow it.
// Text with no marker comes back unchanged with no rest.
func Head(text string, opts Options) (string, []string) {
	if opts.Marker == "" {
		opts = DefaultOptions()
	}
	if !strings.Contains(text, opts.Marker) {
		return text, nil
	}
	fragments := Split(text, opts)
	if len(fragments) == 0 {
		return "", nil
	}
	return fragments[0], fragments[1:]
}
