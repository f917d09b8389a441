// Package ai turns a user utterance into a short list of reply drafts by
// invoking the configured chat model with a language-conditioned tutor
// policy and normalizing its structured output.
package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/aibekm/tildos/backend/internal/config"
	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
	"github.com/aibekm/tildos/backend/pkg/logger"
)

// Composer generates reply drafts for a turn.
type Composer struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewComposer creates the generation chain from configuration.
func NewComposer(ctx context.Context, cfg config.AIConfig) (*Composer, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Composer{chatModel: chatModel, chain: runnable}, nil
}

// Compose invokes the generation model with the language-conditioned policy
// and returns at most MaxDrafts reply drafts in model order.
func (c *Composer) Compose(ctx context.Context, userMessage, languageTag string) ([]turnmodel.Draft, error) {
	if userMessage == "" {
		userMessage = "Hello"
	}

	input := map[string]any{
		"system": BuildInstructionPolicy(languageTag),
		"query":  userMessage,
	}

	response, err := c.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run generation chain: %w", err)
	}

	drafts, err := ParseDrafts([]byte(response.Content))
	if err != nil {
		return nil, err
	}

	logger.Info("composed reply drafts",
		zap.String("language", languageTag),
		zap.Int("count", len(drafts)))
	return drafts, nil
}
