package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/citewatch/citewatch/internal/model"
	openai "github.com/sashabaranov/go-openai"
)

// Summarizer renders an optional natural-language digest of a review
// queue. It never changes triage output; failures are warnings only.
type Summarizer struct {
	client *openai.Client
	model  string
}

// NewSummarizer creates a summarizer from config. A missing API key is
// an error so a misconfigured but enabled summarizer fails loudly.
func NewSummarizer(cfg model.LLMConfig) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	return &Summarizer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  modelName,
	}, nil
}

const systemPrompt = `You summarize document review queues for a citation
verification tool. Describe what needs human attention and why, grouped
by urgency. Only reference items present in the queue; do not speculate
about content you were not shown. Output short Markdown.`

// Summarize generates a Markdown digest of the queue
func (s *Summarizer) Summarize(ctx context.Context, queue *model.DocumentReviewQueue) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: renderQueue(queue)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// renderQueue flattens the queue into a compact prompt
func renderQueue(queue *model.DocumentReviewQueue) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Document: %s\n", queue.DocumentPath)
	fmt.Fprintf(&b, "Items: %d total, %d pending\n\n", queue.Stats.Total, queue.Stats.Pending)

	for _, item := range queue.Items {
		switch item.Type {
		case model.ItemCitation:
			fmt.Fprintf(&b, "- citation [%d] %s: %s (confidence %.2f)\n",
				item.CitationNumber, item.CitationURL, item.VerificationStatus, item.Confidence)
		case model.ItemLowConfidence:
			text := item.ParagraphText
			if len(text) > 200 {
				text = text[:200] + "…"
			}
			fmt.Fprintf(&b, "- low-confidence paragraph (%.2f, %s): %q\n",
				item.Confidence, strings.Join(item.Indicators, "; "), text)
		}
	}

	return b.String()
}
