// Package ai is the boundary to the external generative-language API. Every
// failure is absorbed here and converted into a safe default: free-text
// generation falls back to a fixed unavailable message, spam classification
// fails open, and only the structured transcript parse reports its failure
// reason (the voice pipeline needs it to surface the error).
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"grievgo/backend/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrParse is returned when the model output does not decode into the
// expected structured-grievance shape.
var ErrParse = errors.New("could not parse transcript into a grievance")

// Parsed is the structured result of a voice-transcript parse.
type Parsed struct {
	Department  string `json:"department"`
	Description string `json:"description"`
	Error       string `json:"error,omitempty"`
}

// Completer is the raw text-generation call. Implementations may fail; the
// Service above them never lets a raw error reach the UI.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient implements Completer against the chat completions API.
type OpenAIClient struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIClient creates a Completer for the given API key.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Service wraps a Completer with the failure policy the core requires.
// A nil completer means the capability is absent: features stay usable and
// AI output is substituted with the fixed unavailable message.
type Service struct {
	Completer Completer
	Timeout   time.Duration
}

// NewService creates the assistant boundary. completer may be nil.
func NewService(completer Completer) *Service {
	return &Service{
		Completer: completer,
		Timeout:   config.ParseTimeout,
	}
}

// Available reports whether the generative capability is configured.
func (s *Service) Available() bool {
	return s != nil && s.Completer != nil
}

// Generate produces free text for a prompt. It never fails: absence or error
// yields the fixed unavailable message.
func (s *Service) Generate(prompt string) string {
	if !s.Available() {
		return config.AIUnavailableMessage
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	text, err := s.Completer.Complete(ctx, prompt)
	if err != nil {
		log.Printf("ERROR: AI generation failed: %v", err)
		return config.AIUnavailableMessage
	}
	if strings.TrimSpace(text) == "" {
		return config.AIUnavailableMessage
	}
	return text
}

// IsSpam classifies a description. It fails open: any error, absence, or
// unexpected output counts as not-spam.
func (s *Service) IsSpam(text string) bool {
	if !s.Available() {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	out, err := s.Completer.Complete(ctx, spamPrompt(text))
	if err != nil {
		log.Printf("ERROR: AI spam classification failed (treating as not spam): %v", err)
		return false
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(out)), "YES")
}

// ParseGrievance turns a raw speech transcript into a structured draft.
// The department comes back as the model spelled it; reconciliation against
// the fixed list is the caller's concern.
func (s *Service) ParseGrievance(transcript string, departmentList []string) (*Parsed, error) {
	if !s.Available() {
		return nil, fmt.Errorf("%w: assistant is not configured", ErrParse)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("%w: empty transcript", ErrParse)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	out, err := s.Completer.Complete(ctx, parsePrompt(transcript, departmentList))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	parsed, err := decodeParsed(out)
	if err != nil {
		return nil, err
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrParse, parsed.Error)
	}
	if strings.TrimSpace(parsed.Description) == "" {
		return nil, fmt.Errorf("%w: missing description", ErrParse)
	}
	return parsed, nil
}

// decodeParsed tolerates markdown code fences around the JSON payload,
// which chat models add routinely.
func decodeParsed(raw string) (*Parsed, error) {
	raw = strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(raw, "```json"); ok {
		raw = after
	} else if after, ok := strings.CutPrefix(raw, "```"); ok {
		raw = after
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	raw = strings.TrimSpace(raw)

	var parsed Parsed
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrParse, err)
	}
	return &parsed, nil
}
