package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/config"
)

// systemPrompt instructs the model to emit the classification contract as
// a single JSON object. Category names must match capture.AllCategories.
const systemPrompt = `You classify a short piece of free text captured by a user into exactly one category and extract structured fields.

Categories:
- task: something the user needs to do
- project: a multi-step effort or initiative
- person: a contact or note about a person
- learning: an insight, fact, or lesson learned
- health: a health or wellness log entry
- content: an article, video, or link to consume
- question: an open question to answer later

Respond with a single JSON object and nothing else:
{
  "type": "<category>",
  "task_name": "<short name/title for the record, if applicable>",
  "description": "<fuller description, if applicable>",
  "suggested_project": "<parent project name, tasks only>",
  "suggested_domain": "<life area such as work or personal, projects only>",
  "priority": <1-5, tasks only, 1 is highest>,
  "confidence": <0.0-1.0, your confidence in the category>,
  "response": "<one short sentence acknowledging the capture>"
}

Omit fields that do not apply. Always include type and confidence.`

// OpenAIClassifier calls an OpenAI-compatible chat completion endpoint.
type OpenAIClassifier struct {
	client *openai.Client
	cfg    config.ClassifierConfig
}

// NewOpenAIClassifier creates an OpenAI-backed classifier.
func NewOpenAIClassifier(cfg config.ClassifierConfig, apiKey string) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai classifier")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClassifier) Name() string {
	return "openai"
}

// Classify sends the raw text for classification and parses the JSON
// contract. The call is bounded by the configured timeout; the caller
// treats any error as "queued, unclassified".
func (c *OpenAIClassifier) Classify(ctx context.Context, rawText string) (*capture.Classification, error) {
	model := c.cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(c.cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: rawText},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from classifier")
	}

	return ParseClassification(resp.Choices[0].Message.Content)
}

// ParseClassification decodes a classification JSON payload and clamps
// out-of-range values. Some models wrap JSON in markdown fences despite
// the response format hint, so fences are stripped first.
func ParseClassification(content string) (*capture.Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var cl capture.Classification
	if err := json.Unmarshal([]byte(content), &cl); err != nil {
		return nil, fmt.Errorf("malformed classification response: %w", err)
	}

	if cl.Confidence != nil {
		clamped := clampConfidence(*cl.Confidence)
		cl.Confidence = &clamped
	}
	cl.Priority = clampPriority(cl.Priority)

	return &cl, nil
}
