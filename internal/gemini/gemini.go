// Package gemini adapts Google's Gemini API for AI-assisted editing. The
// handler degrades to fixed error strings instead of failing hard, so the
// rest of the pipeline works without an API key.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/coltonbatts/davincimcp/internal/config"
)

// ErrNotInitialized is the fixed string returned by every generation method
// when no API key was provided.
const ErrNotInitialized = "Error: API not initialized"

// Message roles for chat sessions.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn in a chat session.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateOptions are per-call overrides for GenerateWithConfig. Nil fields
// keep the handler defaults.
type GenerateOptions struct {
	Temperature     *float64
	MaxOutputTokens *int
}

// contentGenerator is the slice of the Gemini client the handler needs.
// Tests substitute a stub here.
type contentGenerator interface {
	generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
}

func (g *genaiGenerator) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Handler wraps the Gemini API for text generation. A handler constructed
// without an API key is valid but uninitialized; its methods return
// ErrNotInitialized instead of panicking or erroring.
type Handler struct {
	model       string
	temperature float64
	topP        float64
	topK        float64
	maxTokens   int

	generator   contentGenerator
	initialized bool
	logger      *slog.Logger
}

// NewHandler creates a handler from configuration. An empty API key leaves
// the handler uninitialized.
func NewHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		model:       cfg.Gemini.Model,
		temperature: cfg.Gemini.Temperature,
		topP:        cfg.Gemini.TopP,
		topK:        cfg.Gemini.TopK,
		maxTokens:   cfg.Gemini.MaxOutputTokens,
		logger:      logger,
	}

	if cfg.Gemini.APIKey == "" {
		logger.Info("Gemini handler created but not initialized (needs API key)")
		return h
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error("Failed to initialize Gemini client", "error", err)
		return h
	}

	h.generator = &genaiGenerator{client: client}
	h.initialized = true
	logger.Info("Gemini handler initialized", "model", h.model)
	return h
}

// Initialized reports whether the handler can reach the API.
func (h *Handler) Initialized() bool {
	return h.initialized
}

func (h *Handler) generationConfig(opts GenerateOptions) *genai.GenerateContentConfig {
	temperature := h.temperature
	if opts.Temperature != nil {
		temperature = clamp(*opts.Temperature, 0, 1)
	}
	maxTokens := h.maxTokens
	if opts.MaxOutputTokens != nil {
		maxTokens = *opts.MaxOutputTokens
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		TopP:            genai.Ptr(float32(h.topP)),
		TopK:            genai.Ptr(float32(h.topK)),
		MaxOutputTokens: int32(maxTokens),
	}
}

// Generate produces a response for a single prompt with default settings.
func (h *Handler) Generate(ctx context.Context, prompt string) string {
	return h.GenerateWithConfig(ctx, prompt, GenerateOptions{})
}

// GenerateWithConfig produces a response with per-call overrides. The
// temperature override is clamped to [0, 1].
func (h *Handler) GenerateWithConfig(ctx context.Context, prompt string, opts GenerateOptions) string {
	if !h.initialized {
		h.logger.Warn("Gemini API not initialized")
		return ErrNotInitialized
	}

	h.logger.Info("Processing prompt", "prompt", truncate(prompt, 50))
	text, err := h.generator.generate(ctx, h.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		h.generationConfig(opts))
	if err != nil {
		h.logger.Error("Gemini generation failed", "error", err)
		return fmt.Sprintf("Error: %s", err)
	}
	return text
}

// Chat runs a multi-turn conversation. Only user turns trigger a send; the
// accumulated exchange is replayed as history on each send. Returns the text
// of the last exchange, or a fixed string when no user turn was present.
func (h *Handler) Chat(ctx context.Context, messages []Message) string {
	if !h.initialized {
		h.logger.Warn("Gemini API not initialized")
		return ErrNotInitialized
	}

	h.logger.Info("Processing chat session", "messages", len(messages))

	var history []*genai.Content
	var last string
	responded := false
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		history = append(history, genai.NewContentFromText(msg.Content, genai.RoleUser))
		text, err := h.generator.generate(ctx, h.model, history, h.generationConfig(GenerateOptions{}))
		if err != nil {
			h.logger.Error("Gemini chat turn failed", "error", err)
			return fmt.Sprintf("Error: %s", err)
		}
		history = append(history, genai.NewContentFromText(text, genai.RoleModel))
		last = text
		responded = true
	}

	if !responded {
		return "No response generated from chat session"
	}
	return last
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
