// embeddings/bedrock.go
package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockProvider generates embeddings via Titan and assigns categories via
// a Claude text completion, keeping both the vector data and the candidate
// text within AWS.
type BedrockProvider struct {
	client           *bedrockruntime.Client
	embeddingModelID string
	categorizeModelID string
}

func NewBedrockProvider(ctx context.Context, region string) (*BedrockProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &BedrockProvider{
		client:            bedrockruntime.NewFromConfig(cfg),
		embeddingModelID:  "amazon.titan-embed-text-v2:0",
		categorizeModelID: "anthropic.claude-3-haiku-20240307-v1:0",
	}, nil
}

type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

type titanEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the Titan embedding vector for text.
func (p *BedrockProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(titanEmbedRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling titan request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.embeddingModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock embed: %w", err)
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decoding titan response: %w", err)
	}

	return resp.Embedding, nil
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Categorize asks a Claude model to pick one or two categories from
// Vocabulary for text, and filters out anything it hallucinates outside the
// vocabulary.
func (p *BedrockProvider) Categorize(ctx context.Context, text string) ([]string, error) {
	systemPrompt := fmt.Sprintf(
		"Pick exactly one or two categories from this list that best describe the content: %s. "+
			"Reply with only a comma-separated list of the chosen categories, nothing else.",
		strings.Join(Vocabulary, ", "))

	req := claudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        32,
		System:           systemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: text},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling claude request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.categorizeModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock categorize: %w", err)
	}

	var resp claudeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decoding claude response: %w", err)
	}

	var raw string
	for _, block := range resp.Content {
		raw += block.Text
	}

	return filterVocabulary(raw), nil
}

func filterVocabulary(raw string) []string {
	allowed := make(map[string]bool, len(Vocabulary))
	for _, v := range Vocabulary {
		allowed[v] = true
	}

	var categories []string
	for _, part := range strings.Split(raw, ",") {
		cat := strings.TrimSpace(part)
		if allowed[cat] {
			categories = append(categories, cat)
		}
		if len(categories) == 2 {
			break
		}
	}
	return categories
}
