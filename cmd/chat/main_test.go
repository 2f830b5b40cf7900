package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"portfolio-backend/internal/chat"
)

func TestPrinter_WritesOnlyNewText(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	user := chat.Turn{Role: chat.RoleUser, Content: "hi"}
	steps := []chat.Snapshot{
		{Turns: []chat.Turn{user}, Pending: true},
		{Turns: []chat.Turn{user, {Role: chat.RoleAssistant}}, Pending: true},
		{Turns: []chat.Turn{user, {Role: chat.RoleAssistant, Content: "Hel"}}, Pending: true},
		{Turns: []chat.Turn{user, {Role: chat.RoleAssistant, Content: "Hello"}}, Pending: true},
		{Turns: []chat.Turn{user, {Role: chat.RoleAssistant, Content: "Hello"}}},
	}
	for _, s := range steps {
		p.observe(s)
	}

	assert.Equal(t, "Hello", buf.String())
}

func TestPrinter_SeparatesFallbackTurn(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	user := chat.Turn{Role: chat.RoleUser, Content: "hi"}
	partial := chat.Turn{Role: chat.RoleAssistant, Content: "Hel"}
	p.observe(chat.Snapshot{Turns: []chat.Turn{user, partial}, Pending: true})
	p.observe(chat.Snapshot{Turns: []chat.Turn{user, partial, {Role: chat.RoleAssistant, Content: "FAQ answer"}}})

	assert.Equal(t, "Hel\n\nFAQ answer", buf.String())
}
