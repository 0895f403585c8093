package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StructureError reports why a memory source was rejected.
type StructureError struct {
	Name     string
	Problems []string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, strings.Join(e.Problems, "; "))
}

var pronounKeys = []string{
	"inDictWordsForBot",
	"inDictWordsForUser",
	"outDictBotInWords",
	"outDictUserInWords",
}

// Validate checks that source is a well-formed memory document. It returns nil
// or a *StructureError; it never repairs input.
func Validate(name, source string) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(source), &top); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			line, col := Position(source, syn.Offset)
			return &StructureError{Name: name, Problems: []string{
				fmt.Sprintf("syntax error at line %d column %d: %s", line, col, syn.Error()),
			}}
		}
		return &StructureError{Name: name, Problems: []string{"memory must be an object"}}
	}
	if top == nil {
		return &StructureError{Name: name, Problems: []string{"memory must be an object"}}
	}

	var problems []string
	for _, key := range pronounKeys {
		raw, ok := top[key]
		if !ok {
			continue
		}
		if _, ok := stringList(raw); !ok {
			problems = append(problems, key+" is not a list of strings")
		}
	}
	if raw, ok := top["queue"]; ok {
		if _, ok := stringList(raw); !ok {
			problems = append(problems, "queue is not a list of strings")
		}
	}
	if len(problems) > 0 {
		return &StructureError{Name: name, Problems: problems}
	}

	raw, ok := top["tags"]
	if !ok {
		return nil
	}
	var tags map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return &StructureError{Name: name, Problems: []string{"tags must be an object"}}
	}
	for key, v := range tags {
		if !tagKeyPattern.MatchString(key) {
			problems = append(problems, fmt.Sprintf("tag %q must look like {name}", key))
			continue
		}
		items, ok := stringList(v)
		if !ok {
			problems = append(problems, fmt.Sprintf("tag %s is not a list of strings", key))
			continue
		}
		if len(items) == 0 {
			problems = append(problems, fmt.Sprintf("tag %s is empty", key))
		}
	}
	if len(problems) > 0 {
		return &StructureError{Name: name, Problems: problems}
	}
	return nil
}

func stringList(raw json.RawMessage) ([]string, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Position converts a json.SyntaxError offset in source to the 1-based line
// and column of the offending byte. The offset counts bytes read up to and
// including that byte.
func Position(source string, offset int64) (line, col int) {
	if offset > int64(len(source)) {
		offset = int64(len(source))
	}
	if offset > 0 {
		offset--
	}
	line, col = 1, 1
	for _, r := range source[:offset] {
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
