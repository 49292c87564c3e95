package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/daily-hug/internal/config"
	"github.com/zhouzirui/daily-hug/internal/model/chat"
)

// Service generates persona replies through an eino chain over the chat model.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	prompts *PromptBuilder
	now     func() time.Time
}

// NewService creates a Service backed by the Ark chat model described by cfg.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel)
}

// NewServiceWithModel compiles the reply chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chain:   runnable,
		prompts: NewPromptBuilder(),
		now:     time.Now,
	}, nil
}

// Reply produces the persona's answer to req.Message given req.History.
func (s *Service) Reply(ctx context.Context, req chat.ExchangeRequest) (string, error) {
	input := s.buildChainInput(req)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	reply := strings.TrimSpace(response.Content)
	log.Printf("[ai] generated reply for user=%s persona=%s, history=%d, length=%d", req.UserName, req.ModelName, len(req.History), len(reply))
	return reply, nil
}

func (s *Service) buildChainInput(req chat.ExchangeRequest) map[string]any {
	return map[string]any{
		"system":  s.prompts.BuildSystemPrompt(req.UserName, req.ModelName, req.Characters, s.now()),
		"history": buildHistoryMessages(req.History, req.Message),
	}
}

// buildHistoryMessages converts the transport history into chat messages. The
// client's window already ends with the latest user message; when it does not,
// the message is appended so the model always answers it.
func buildHistoryMessages(history []chat.HistoryEntry, message string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	for _, entry := range history {
		switch entry.Role {
		case string(chat.SpeakerUser):
			messages = append(messages, schema.UserMessage(entry.Content))
		case string(chat.SpeakerModel), "assistant":
			messages = append(messages, schema.AssistantMessage(entry.Content, nil))
		}
	}

	if strings.TrimSpace(message) == "" {
		return messages
	}

	n := len(messages)
	if n == 0 || messages[n-1].Role != schema.User || messages[n-1].Content != message {
		messages = append(messages, schema.UserMessage(message))
	}
	return messages
}
