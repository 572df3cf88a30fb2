package annotate

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"playcall/internal/config"
	"playcall/internal/validate"
)

// GeminiAnnotator implements Annotator against the Gemini API with a
// response schema built from the finding id set, so the model is constrained
// to annotate exactly the requested ids with per-agent implication enums.
type GeminiAnnotator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiAnnotator creates the annotator from LLM config.
func NewGeminiAnnotator(ctx context.Context, cfg config.LLMConfig) (*GeminiAnnotator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("llm.timeout: %w", err)
	}
	return &GeminiAnnotator{client: client, model: cfg.Model, timeout: timeout}, nil
}

// Annotate sends the prompt and returns the raw response text. The response
// schema requires every finding id and forbids everything else; parse.go
// still re-checks because schema enforcement is best effort on the model
// side.
func (g *GeminiAnnotator) Annotate(ctx context.Context, prompt string, findingIDs []string, agentOf map[string]string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   outputSchema(findingIDs, agentOf),
	})
	if err != nil {
		return "", fmt.Errorf("gemini annotate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini annotate: empty response")
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("gemini annotate: no text parts in response")
	}
	return text, nil
}

// outputSchema builds the annotation response schema for one finding set.
// The findings object lists every id as a required property, pinning the
// key set; severity and implications are closed enums.
func outputSchema(findingIDs []string, agentOf map[string]string) *genai.Schema {
	perFinding := make(map[string]*genai.Schema, len(findingIDs))
	for _, id := range findingIDs {
		perFinding[id] = findingSchema(validate.ImplicationsForAgent(agentOf[id]))
	}
	return &genai.Schema{
		Type: "OBJECT",
		Properties: map[string]*genai.Schema{
			"findings": {
				Type:       "OBJECT",
				Properties: perFinding,
				Required:   append([]string(nil), findingIDs...),
			},
		},
		Required: []string{"findings"},
	}
}

func findingSchema(allowedImplications []string) *genai.Schema {
	return &genai.Schema{
		Type: "OBJECT",
		Properties: map[string]*genai.Schema{
			"severity": {
				Type: "STRING",
				Enum: []string{"low", "medium", "high"},
			},
			"claim_parts": {
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"subject":   {Type: "STRING", Description: "Who or what the claim is about"},
					"assertion": {Type: "STRING", Description: "The falsifiable statement, grounded in the finding"},
					"context":   {Type: "STRING", Description: "Optional qualifying context"},
				},
				Required: []string{"subject", "assertion"},
			},
			"implications": {
				Type:  "ARRAY",
				Items: &genai.Schema{Type: "STRING", Enum: allowedImplications},
			},
			"suppressions": {
				Type:  "ARRAY",
				Items: &genai.Schema{Type: "STRING"},
			},
		},
		Required: []string{"severity", "claim_parts", "implications"},
	}
}
