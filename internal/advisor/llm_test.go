package advisor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joelkehle/costcoach/internal/costanalysis"
)

// mockMessager implements AnthropicMessager for testing.
type mockMessager struct {
	response *anthropic.Message
	err      error
	prompt   string
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	if len(params.Messages) > 0 {
		for _, block := range params.Messages[0].Content {
			if block.OfText != nil {
				m.prompt = block.OfText.Text
			}
		}
	}
	return m.response, m.err
}

func newMockMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}
}

func sampleResult() costanalysis.Result {
	return costanalysis.Analyze("manufacturing", map[string]any{
		"materials": 3000.0, "labor": 2000.0, "packaging": 300.0, "overhead": 9000.0,
	})
}

func TestAnthropicCoachNote(t *testing.T) {
	mock := &mockMessager{response: newMockMessage("  Tu estructura de costos es sana; sube el precio óptimo.  ")}
	coach := &AnthropicCoach{messages: mock}

	note, err := coach.Note(context.Background(), sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note != "Tu estructura de costos es sana; sube el precio óptimo." {
		t.Fatalf("unexpected note: %q", note)
	}
	if !strings.Contains(mock.prompt, "Manufactura") {
		t.Fatalf("prompt should carry the archetype label, got %q", mock.prompt)
	}
}

func TestAnthropicCoachEmptyResponse(t *testing.T) {
	coach := &AnthropicCoach{messages: &mockMessager{response: &anthropic.Message{Content: []anthropic.ContentBlockUnion{}}}}
	if _, err := coach.Note(context.Background(), sampleResult()); err == nil {
		t.Fatal("expected error on empty model response")
	}
}

func TestAnthropicCoachTransportError(t *testing.T) {
	coach := &AnthropicCoach{messages: &mockMessager{err: fmt.Errorf("status code: 500")}}
	if _, err := coach.Note(context.Background(), sampleResult()); err == nil {
		t.Fatal("expected error on transport failure")
	}
}

func TestNewAnthropicCoachFromEnvRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicCoachFromEnv(); err == nil {
		t.Fatal("expected error without ANTHROPIC_API_KEY")
	}
}

func TestNewAnthropicCoachFromEnvUsesCreator(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	mock := &mockMessager{response: newMockMessage("nota")}
	old := newAnthropicClient
	newAnthropicClient = func(_ string) AnthropicMessager { return mock }
	defer func() { newAnthropicClient = old }()

	coach, err := NewAnthropicCoachFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note, err := coach.Note(context.Background(), sampleResult())
	if err != nil || note != "nota" {
		t.Fatalf("note=%q err=%v", note, err)
	}
}

func TestTemplateNoteBands(t *testing.T) {
	res := sampleResult()
	note := templateNote(res)
	if !strings.Contains(note, "consistentes") {
		t.Fatalf("full inputs should praise the data, got %q", note)
	}

	low := costanalysis.Analyze("manufacturing", map[string]any{"materials": 9000.0, "labor": 500.0})
	note = templateNote(low)
	if !strings.Contains(note, "faltan datos") && !strings.Contains(note, "buena base") {
		t.Fatalf("degraded inputs should temper the note, got %q", note)
	}
	if len(low.Alerts) > 0 && !strings.Contains(note, low.Alerts[0].Title) {
		t.Fatalf("note should surface the first alert, got %q", note)
	}
}
