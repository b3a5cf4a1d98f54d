package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lakshb/ai-chat-relay/internal/model/chat"
)

// fallbackReply is persisted and returned when the model yields an empty
// completion, so a stored reply is never empty.
const fallbackReply = "No response from AI"

// Service wraps the completion model behind a prompt chain compiled once at
// startup.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the chat chain around the supplied model.
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Complete turns prior exchanges plus the incoming message into an assistant
// reply. Each exchange expands into a user turn and an assistant turn, in
// chronological order, with the new message appended as the final user turn.
func (s *Service) Complete(ctx context.Context, history []chat.Exchange, message string) (string, error) {
	input := map[string]any{
		"history": historyMessages(history),
		"query":   message,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	reply := strings.TrimSpace(response.Content)
	if reply == "" {
		log.Printf("[ai] model returned empty completion, using fallback reply")
		return fallbackReply, nil
	}
	return reply, nil
}

func historyMessages(history []chat.Exchange) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	messages := make([]*schema.Message, 0, len(history)*2)
	for _, exchange := range history {
		messages = append(messages, schema.UserMessage(exchange.Message))
		messages = append(messages, schema.AssistantMessage(exchange.Reply, nil))
	}
	return messages
}
