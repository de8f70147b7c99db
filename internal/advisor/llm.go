package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joelkehle/costcoach/internal/costanalysis"
)

const coachSystemPrompt = `Eres un asesor financiero cercano y directo para microempresarios colombianos.
Recibes el resultado de un análisis de costos en JSON y escribes una nota breve de acompañamiento.

Reglas:
- Responde en español, máximo tres frases.
- Texto plano, sin markdown, sin listas, sin encabezados.
- Menciona el hallazgo más importante del análisis y una acción concreta.
- No inventes cifras: usa solo las del JSON.
- No des consejo tributario ni legal.`

const coachUserPrompt = `Este es el análisis de costos del negocio:

%s

Escribe la nota de acompañamiento.`

// Coach produces a short commentary for a finished analysis. Implementations
// may call a model; the flow always has a deterministic fallback, so a Coach
// is free to fail.
type Coach interface {
	Note(ctx context.Context, result costanalysis.Result) (string, error)
}

// AnthropicClientCreator is a function type for creating the Anthropic client.
// It exists so tests can inject a mock.
type AnthropicClientCreator func(apiKey string) AnthropicMessager

// AnthropicMessager defines the subset of the Anthropic client we use.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &client.Messages
}

// newAnthropicClient is the package-level creator, overridable in tests.
var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// AnthropicCoach writes the closing note with Claude.
type AnthropicCoach struct {
	messages AnthropicMessager
}

func NewAnthropicCoachFromEnv() (*AnthropicCoach, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicCoach{messages: newAnthropicClient(apiKey)}, nil
}

func (c *AnthropicCoach) Note(ctx context.Context, result costanalysis.Result) (string, error) {
	payload, err := json.Marshal(coachView(result))
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}

	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: coachSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(fmt.Sprintf(coachUserPrompt, string(payload))),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	note := strings.TrimSpace(strings.Join(parts, ""))
	if note == "" {
		return "", fmt.Errorf("empty response from Claude API")
	}
	return note, nil
}

// coachView trims the result to what the note needs, keeping the prompt
// small and free of internal structure.
func coachView(result costanalysis.Result) map[string]any {
	view := map[string]any{
		"tipo_de_negocio": costanalysis.ArchetypeLabel(result.Archetype),
		"analisis":        result.Analysis,
		"indicadores":     result.Metrics,
	}
	if len(result.Alerts) > 0 {
		titles := make([]string, 0, len(result.Alerts))
		for _, a := range result.Alerts {
			titles = append(titles, a.Title)
		}
		view["alertas"] = titles
	}
	if result.Recommendations != nil && len(result.Recommendations.Priority) > 0 {
		view["recomendacion_principal"] = result.Recommendations.Priority[0].Title
	}
	return view
}

// templateNote is the deterministic closing note used when no coach is
// configured or the model call fails.
func templateNote(result costanalysis.Result) string {
	var b strings.Builder
	score := 0.0
	if result.Metrics != nil {
		score = result.Metrics.OverallScore
	}
	switch {
	case score >= 0.85:
		b.WriteString("Tus números se ven consistentes y completos.")
	case score >= 0.60:
		b.WriteString("Tus números son una buena base, aunque hay espacio para afinarlos.")
	default:
		b.WriteString("A tus números les faltan datos importantes; el análisis mejorará cuando los completes.")
	}
	if len(result.Alerts) > 0 {
		fmt.Fprintf(&b, " Presta atención a: %s.", result.Alerts[0].Title)
	}
	if result.Recommendations != nil && len(result.Recommendations.Priority) > 0 {
		fmt.Fprintf(&b, " Tu siguiente paso: %s.", strings.ToLower(result.Recommendations.Priority[0].Title))
	}
	return b.String()
}
