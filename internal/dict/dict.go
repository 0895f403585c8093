// Package dict compiles pattern dictionaries and scores input against them.
//
// A dictionary source is JSON with optional comment lines (first non-blank
// character '#'):
//
//	# greetings
//	[
//	  [["hello", "hi"], ["hi {userName}", "hello!"]],
//	  [["bye"], ["see you<BR>take care"]]
//	]
//
// Each entry pairs a non-empty list of input patterns with a non-empty list of
// output candidates.
package dict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/biomebot/internal/memory"
)

// Entry is one input-pattern set and its output candidates.
type Entry struct {
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// Dictionary is a compiled dictionary.
type Dictionary struct {
	Entries []Entry
	// SourceBytes is the size of the source text.
	SourceBytes int
}

// StructureError reports why a dictionary source was rejected.
type StructureError struct {
	Name    string
	Problem string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Problem)
}

// StripComments blanks comment lines, keeping line numbers intact for
// error positions.
func StripComments(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// Compile parses and validates source. On error nothing is returned.
func Compile(name, source string) (*Dictionary, error) {
	body := StripComments(source)

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			line, col := memory.Position(body, syn.Offset)
			return nil, &StructureError{Name: name,
				Problem: fmt.Sprintf("syntax error at line %d column %d: %s", line, col, syn.Error())}
		}
		return nil, &StructureError{Name: name, Problem: "dictionary must be a list of entries"}
	}
	if len(raw) == 0 {
		return nil, &StructureError{Name: name, Problem: "dictionary has no entries"}
	}

	d := &Dictionary{Entries: make([]Entry, 0, len(raw)), SourceBytes: len(source)}
	for i, r := range raw {
		var pair []json.RawMessage
		if err := json.Unmarshal(r, &pair); err != nil || len(pair) != 2 {
			return nil, &StructureError{Name: name,
				Problem: fmt.Sprintf("entry %d must be a pair [inputs, outputs]", i+1)}
		}
		inputs, ok := nonEmptyStrings(pair[0])
		if !ok {
			return nil, &StructureError{Name: name,
				Problem: fmt.Sprintf("entry %d inputs must be a non-empty list of strings", i+1)}
		}
		outputs, ok := nonEmptyStrings(pair[1])
		if !ok {
			return nil, &StructureError{Name: name,
				Problem: fmt.Sprintf("entry %d outputs must be a non-empty list of strings", i+1)}
		}
		d.Entries = append(d.Entries, Entry{Inputs: inputs, Outputs: outputs})
	}
	return d, nil
}

// Validate reports whether source compiles.
func Validate(name, source string) error {
	_, err := Compile(name, source)
	return err
}

func nonEmptyStrings(raw json.RawMessage) ([]string, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	return items, true
}
