// Package gemini is a translation backend that reads the text in a photo
// and translates it with Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrNoAPIKey is returned by New without an API key.
var ErrNoAPIKey = errors.New("gemini: API key required")

// ErrEmpty is returned when the model produced no text.
var ErrEmpty = errors.New("gemini: empty response")

const systemPrompt = `You translate the text visible in photos.
Read every piece of text in the image, in reading order.
Translate it into the requested language.
Reply with the translation only: no quotes, no commentary, no markdown.
If the image contains no readable text, reply with an empty message.`

// Backend calls the Gemini API.
type Backend struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// New creates a backend with its own API client.
func New(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Backend, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Backend{
		client: cl,
		model:  model,
		logger: logger.With("component", "gemini.backend", "model", model),
	}, nil
}

// Name returns "gemini".
func (b *Backend) Name() string { return "gemini" }

// Translate reads the text in image and translates it into lang.
func (b *Backend) Translate(ctx context.Context, image []byte, mime, lang string) (string, error) {
	m := b.client.GenerativeModel(b.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(Prompt(lang)),
		&genai.Blob{MIMEType: mime, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	txt := stripCodeFences(strings.TrimSpace(firstText(resp)))
	if txt == "" {
		return "", ErrEmpty
	}
	b.logger.Debug("generated", "lang", lang, "chars", len([]rune(txt)))
	return txt, nil
}

// Close releases the API client.
func (b *Backend) Close() error {
	return b.client.Close()
}

// Prompt returns the user prompt for a target language code.
func Prompt(lang string) string {
	name := lang
	if tag, err := language.Parse(lang); err == nil {
		if n := display.English.Languages().Name(tag); n != "" {
			name = n
		}
	}
	return fmt.Sprintf("Translate the text in this photo into %s (%s).", name, lang)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

// stripCodeFences removes a ``` fence the model sometimes wraps answers in.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func ptrFloat32(v float32) *float32 { return &v }
