package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-3-haiku-20240307"
	maxTokens        = 1024
)

const completionPrompt = `You turn a small-business owner's free-form description of a product and its costs into a JSON document.

Output ONLY a JSON object with this structure (omit fields you cannot infer):
{
  "name": string,
  "costs": [{
    "name": string,
    "amount": number,
    "allocation": "unit" or "bulk",
    "batchYield": number (required when allocation is "bulk"),
    "bulkUnit": "units" or "days"
  }],
  "productionConfig": {"period": "daily"|"weekly"|"monthly", "daysActive": number, "targetUnits": number},
  "pricingStrategy": "markup" or "competitor",
  "targetNet": number,
  "competitorPrice": number
}

Amounts are in Indonesian Rupiah. "bulk" means the amount was paid once for a batch covering batchYield units (or operating days). Never invent costs the user did not mention.`

type anthropicClient struct {
	httpClient *resty.Client
}

// NewAnthropicClient returns a Client that completes project documents with
// the Anthropic messages API.
func NewAnthropicClient(apiKey string) Client {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(20 * time.Second)

	return &anthropicClient{httpClient: client}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) CompleteProject(ctx context.Context, input string) (json.RawMessage, error) {
	reqBody := messageRequest{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		System:    completionPrompt,
		Messages:  []message{{Role: "user", Content: input}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(anthropicURL)
	if err != nil {
		return nil, fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return nil, fmt.Errorf("empty response from ai")
	}

	return json.RawMessage(stripFences(respBody.Content[0].Text)), nil
}

// stripFences removes a markdown code fence the model sometimes wraps its
// JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
