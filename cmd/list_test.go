package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListShowDelete(t *testing.T) {
	env := newTestEnv(t)
	env.signup("Asha")

	out, err := env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")

	for _, text := range []string{"first question", "second question"} {
		_, err := env.run("send", text)
		require.NoError(t, err)
	}
	sessions := env.sessions("Asha")
	require.Len(t, sessions, 2)

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 session(s)")
	assert.Less(t, strings.Index(out, "second question"), strings.Index(out, "first question"),
		"most recent session should be listed first")

	out, err = env.run("show", sessions[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "You said: second question")

	out, err = env.run("show", "--limit", "1", sessions[0].ID)
	require.NoError(t, err)
	assert.NotContains(t, out, "You said: second question")
	assert.Contains(t, out, "... (1 more message(s))")

	_, err = env.run("show", "missing")
	assert.EqualError(t, err, "session not found: missing")

	out, err = env.run("delete", sessions[1].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session "+sessions[1].ID)
	assert.Len(t, env.sessions("Asha"), 1)

	_, err = env.run("delete", sessions[1].ID)
	assert.Error(t, err)
}

func TestPrintSessionTable(t *testing.T) {
	sessions := []internal.ChatSession{
		{ID: "1700000002000", Title: strings.Repeat("a", 60), Messages: make([]internal.ChatMessage, 2)},
		{ID: "1700000001000", Title: "short", Messages: make([]internal.ChatMessage, 4)},
	}

	var buf bytes.Buffer
	printSessionTable(&buf, sessions, "1700000001000")
	out := buf.String()

	assert.Contains(t, out, "Found 2 session(s)")
	assert.Contains(t, out, strings.Repeat("a", 47)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 48))
	assert.Contains(t, out, "* 1700000001000")
	assert.NotContains(t, out, "* 1700000002000")
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("suggest")
	require.NoError(t, err)

	assert.Contains(t, out, "How can I help you today?")
	for _, category := range internal.SuggestedPrompts {
		assert.Contains(t, out, category.Title)
		for _, p := range category.Prompts {
			assert.Contains(t, out, p)
		}
	}
	assert.Contains(t, out, "12.")
}
