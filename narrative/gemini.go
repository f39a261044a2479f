package narrative

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/dungeonmaster/types"
)

const geminiPrompt = `You are the narrator of a fantasy role-playing game.
Write 2-3 vivid sentences of second-person narration for this event:

event category: {{.Category}}
outcome: {{.Outcome}}
entities involved: {{.Entities}}
player level: {{.Level}}

Respond with YAML only, in this exact shape:

narrative: <your narration on one line>
`

// Gemini generates narrative text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	tmpl   *template.Template
}

// NewGemini creates a Gemini provider. Close it when done.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	tmpl, err := template.New("narrative").Parse(geminiPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(model),
		tmpl:   tmpl,
	}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, req types.NarrativeRequest) (string, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, struct {
		Category types.Category
		Outcome  types.Outcome
		Entities string
		Level    int
	}{req.Category, req.Outcome, strings.Join(req.Entities, ", "), req.Level}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}

	return parseNarrative(string(text))
}

// parseNarrative extracts the narration from a model response. Responses
// should be a one-line YAML document, but the model sometimes wraps it
// in a code fence or answers in plain prose.
func parseNarrative(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```yaml")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", fmt.Errorf("empty narrative in response")
	}

	var out struct {
		Narrative string `yaml:"narrative"`
	}
	if err := yaml.Unmarshal([]byte(cleaned), &out); err != nil {
		// Plain prose; take it as-is.
		return cleaned, nil
	}
	if out.Narrative == "" {
		return "", fmt.Errorf("empty narrative in response")
	}
	return out.Narrative, nil
}
