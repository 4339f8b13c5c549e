package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/bean-scene/internal/llm"
)

// maxHistory bounds the turns replayed to the model.
const maxHistory = 20

// Chat is an interactive question-and-answer loop over a completion client.
type Chat struct {
	client        llm.Client
	reader        *LineReader
	writer        io.Writer
	history       []llm.Message
	contextTokens int
}

// NewChat creates a chat session.
func NewChat(client llm.Client, r *LineReader, w io.Writer, contextTokens int) *Chat {
	return &Chat{client: client, reader: r, writer: w, contextTokens: contextTokens}
}

// Run reads questions until EOF, "quit", or cancellation.
func (c *Chat) Run(ctx context.Context) error {
	if _, err := fmt.Fprintln(c.writer, FormatTitle("Ask about our coffees")+"\n"+SubtleStyle.Render("Type quit to leave.")); err != nil {
		return fmt.Errorf("failed to write chat banner: %w", err)
	}

	for {
		if _, err := fmt.Fprint(c.writer, FormatPrompt("You")); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := c.reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, ErrInputCancelled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		reply, err := c.Ask(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if _, werr := fmt.Fprintln(c.writer, FormatError(llm.UserMessage(err))); werr != nil {
				return fmt.Errorf("failed to write error: %w", werr)
			}
			continue
		}

		if _, err := fmt.Fprintln(c.writer, RenderReply(reply.Completion, reply.Model, reply.Cached)); err != nil {
			return fmt.Errorf("failed to write reply: %w", err)
		}
	}
}

// Ask sends one question with the running history and records the exchange.
func (c *Chat) Ask(ctx context.Context, question string) (llm.Result, error) {
	messages := append(append([]llm.Message{}, c.history...), llm.Message{Role: llm.RoleUser, Content: question})

	result, err := c.client.Complete(ctx, llm.Request{
		PromptID:      "chat",
		Messages:      messages,
		ContextTokens: c.contextTokens,
	})
	if err != nil {
		return llm.Result{}, err
	}

	c.history = append(messages, llm.Message{Role: llm.RoleAssistant, Content: result.Completion})
	if len(c.history) > maxHistory {
		c.history = c.history[len(c.history)-maxHistory:]
	}
	return result, nil
}
