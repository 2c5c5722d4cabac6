package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/collabmatch/backend/internal/domain"
)

// Client generates influencer profile summaries through an
// OpenAI-compatible chat completions API.
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient builds a summarizer backed by the configured endpoint. An
// empty apiKey yields a client that reports domain.ErrAINotConfigured.
func NewClient(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == "" {
		return &Client{model: model, logger: logger}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// SummarizeProfile asks the model for a short working summary of one
// influencer profile and the products they have received.
func (c *Client) SummarizeProfile(ctx context.Context, profile *domain.Profile, products []string) (string, error) {
	if c.api == nil {
		return "", domain.ErrAINotConfigured
	}

	prompt := buildPrompt(profile, products)
	c.logger.Debug("requesting profile summary",
		zap.String("name", profile.Name),
		zap.String("model", c.model))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "Du bist ein Assistent für Influencer-Marketing. " +
					"Fasse das Profil in 3-4 Sätzen auf Deutsch zusammen. " +
					"Nenne die bisherigen Produkte und gib eine kurze Einschätzung zur Zusammenarbeit.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   300,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(profile *domain.Profile, products []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Influencer: %s\n", profile.Name)
	if profile.NotionFollower > 0 {
		fmt.Fprintf(&b, "Follower: %d\n", profile.NotionFollower)
	}
	if profile.NotionStatus != "" {
		fmt.Fprintf(&b, "Status: %s\n", profile.NotionStatus)
	}
	if profile.RatingReliability > 0 {
		fmt.Fprintf(&b, "Zuverlässigkeit: %d/5\n", profile.RatingReliability)
	}
	if profile.RatingContentQual > 0 {
		fmt.Fprintf(&b, "Content-Qualität: %d/5\n", profile.RatingContentQual)
	}
	if profile.RatingCommunication > 0 {
		fmt.Fprintf(&b, "Kommunikation: %d/5\n", profile.RatingCommunication)
	}
	if profile.Notes != "" {
		fmt.Fprintf(&b, "Notizen: %s\n", profile.Notes)
	}
	if len(products) > 0 {
		fmt.Fprintf(&b, "Erhaltene Produkte: %s\n", strings.Join(products, ", "))
	} else {
		b.WriteString("Erhaltene Produkte: keine bekannt\n")
	}
	return b.String()
}
