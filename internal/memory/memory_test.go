package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMemory = `{
  "inDictWordsForBot": ["{botName}さん", "{botName}", "あなた"],
  "inDictWordsForUser": ["{userName}", "私"],
  "outDictBotInWords": ["私"],
  "outDictUserInWords": ["{userName}さん", "あなた"],
  "queue": [],
  "tags": {"{greeting}": ["hello", "hi"]}
}`

func TestParse_Valid(t *testing.T) {
	m, err := Parse("memory", sampleMemory)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "hi"}, m.Tags["{greeting}"])
	assert.Equal(t, []string{DefaultNotFound}, m.Tags[NotFoundTag], "notFound default added")
	assert.Equal(t, 0, m.Pending())
}

func TestParse_KeepsExplicitNotFound(t *testing.T) {
	m, err := Parse("memory", `{"tags": {"{notFound}": ["what?"]}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"what?"}, m.Tags[NotFoundTag])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{"valid", sampleMemory, ""},
		{"empty object", `{}`, ""},
		{"syntax", "{\n  \"tags\": {\n  ,\n}", "syntax error at line 3"},
		{"array top level", `[1, 2]`, "memory must be an object"},
		{"null top level", `null`, "memory must be an object"},
		{"pronoun not list", `{"inDictWordsForBot": "you"}`, "inDictWordsForBot is not a list of strings"},
		{"pronoun mixed", `{"outDictUserInWords": ["a", 1]}`, "outDictUserInWords is not a list of strings"},
		{"tags not object", `{"tags": ["x"]}`, "tags must be an object"},
		{"tag value not list", `{"tags": {"{a}": "x"}}`, "tag {a} is not a list of strings"},
		{"tag value empty", `{"tags": {"{a}": []}}`, "tag {a} is empty"},
		{"tag key shape", `{"tags": {"a": ["x"]}}`, `tag "a" must look like {name}`},
		{"queue not list", `{"queue": "x"}`, "queue is not a list of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate("bot", tt.source)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var se *StructureError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "bot", se.Name)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_RejectsWholesale(t *testing.T) {
	m, err := Parse("bot", `{"tags": {"{a}": ["ok"], "{b}": 3}}`)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestQueue_FIFO(t *testing.T) {
	m := New()
	m.Push("a", "b")
	m.Push("c")

	head, ok := m.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", head)
	head, ok = m.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", head)
	assert.Equal(t, 1, m.Pending())
}

func TestQueue_PopEmpty(t *testing.T) {
	m := New()
	_, ok := m.Pop()
	assert.False(t, ok)
}

func TestQueue_DropsBlank(t *testing.T) {
	m := New()
	m.Push("", "  ", "x")
	assert.Equal(t, []string{"x"}, m.Queue)
}

func TestTagTable_PronounFallback(t *testing.T) {
	m, err := Parse("memory", sampleMemory)
	require.NoError(t, err)

	table := m.TagTable()
	assert.Equal(t, []string{"私"}, table[BotTag])
	assert.Equal(t, []string{"{userName}さん", "あなた"}, table[UserTag])

	m.Tags[BotTag] = []string{"me"}
	assert.Equal(t, []string{"me"}, m.TagTable()[BotTag])
}

func TestClone_Independent(t *testing.T) {
	m := New()
	m.Push("x")
	c := m.Clone()
	c.Push("y")
	c.Tags[NotFoundTag][0] = "changed"

	assert.Equal(t, 1, m.Pending())
	assert.Equal(t, DefaultNotFound, m.Tags[NotFoundTag][0])
}

func TestQueue_Prepend(t *testing.T) {
	m := New()
	m.Push("c")
	m.Prepend("a", "", "b")
	m.Prepend()
	assert.Equal(t, []string{"a", "b", "c"}, m.Queue)
}

func TestMarshalRoundTrip(t *testing.T) {
	m, err := Parse("memory", sampleMemory)
	require.NoError(t, err)
	m.Push("later")

	s, err := m.Marshal()
	require.NoError(t, err)

	back, err := Parse("snapshot", s)
	require.NoError(t, err)
	assert.Equal(t, []string{"later"}, back.Queue)
	assert.Equal(t, m.Tags, back.Tags)
}

func TestMarshal_WithoutPronounListsReparses(t *testing.T) {
	for _, src := range []*Memory{New(), mustParse(t, `{"tags": {"{x}": ["y"]}}`)} {
		src.Push("two")
		s, err := src.Marshal()
		require.NoError(t, err)
		assert.NotContains(t, s, "null")

		back, err := Parse("snapshot", s)
		require.NoError(t, err)
		assert.Equal(t, []string{"two"}, back.Queue)
	}
}

func mustParse(t *testing.T, source string) *Memory {
	t.Helper()
	m, err := Parse("memory", source)
	require.NoError(t, err)
	return m
}

func TestPosition(t *testing.T) {
	line, col := Position("ab\ncd", 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	line, col = Position("x", 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}

func TestValidate_SyntaxErrorColumn(t *testing.T) {
	err := Validate("bot", `{"a": x}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1 column 7")
}
