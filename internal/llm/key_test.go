package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey(t *testing.T) {
	base := []Message{
		{Role: RoleSystem, Content: "You are helpful."},
		{Role: RoleUser, Content: "Which coffee is fruity?"},
	}
	key := DeriveKey(base, "gpt-4o-mini", "chat")

	t.Run("deterministic", func(t *testing.T) {
		again := []Message{
			{Role: RoleSystem, Content: "You are helpful."},
			{Role: RoleUser, Content: "Which coffee is fruity?"},
		}
		assert.Equal(t, key, DeriveKey(again, "gpt-4o-mini", "chat"))
	})

	t.Run("normalizes role case and surrounding space", func(t *testing.T) {
		messy := []Message{
			{Role: "SYSTEM", Content: "  You are helpful.\n"},
			{Role: " user", Content: "Which coffee is fruity?  "},
		}
		assert.Equal(t, key, DeriveKey(messy, "gpt-4o-mini", "chat"))
	})

	tests := []struct {
		name     string
		messages []Message
		model    string
		promptID string
	}{
		{
			name: "different content",
			messages: []Message{
				{Role: RoleSystem, Content: "You are helpful."},
				{Role: RoleUser, Content: "Which coffee is nutty?"},
			},
			model: "gpt-4o-mini", promptID: "chat",
		},
		{
			name: "different order",
			messages: []Message{
				{Role: RoleUser, Content: "Which coffee is fruity?"},
				{Role: RoleSystem, Content: "You are helpful."},
			},
			model: "gpt-4o-mini", promptID: "chat",
		},
		{
			name: "different role",
			messages: []Message{
				{Role: RoleSystem, Content: "You are helpful."},
				{Role: RoleAssistant, Content: "Which coffee is fruity?"},
			},
			model: "gpt-4o-mini", promptID: "chat",
		},
		{name: "different model", messages: base, model: "gpt-4o", promptID: "chat"},
		{name: "different prompt", messages: base, model: "gpt-4o-mini", promptID: "quiz"},
		{
			name: "content shifted across messages",
			messages: []Message{
				{Role: RoleSystem, Content: "You are helpful.Which"},
				{Role: RoleUser, Content: "coffee is fruity?"},
			},
			model: "gpt-4o-mini", promptID: "chat",
		},
		{
			name:     "model and prompt swapped",
			messages: base,
			model:    "chat", promptID: "gpt-4o-mini",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, key, DeriveKey(tt.messages, tt.model, tt.promptID))
		})
	}
}

func TestDeriveKey_EmptyConversation(t *testing.T) {
	assert.Equal(t, DeriveKey(nil, "", ""), DeriveKey([]Message{}, "", ""))
	assert.NotEqual(t, DeriveKey(nil, "", ""), DeriveKey([]Message{{Role: RoleUser}}, "", ""))
}
