package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gideonapp/engage/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls.
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices.
	ErrNoChoicesInResponse = "no choices in response"

	maxTitleLength   = 80
	maxMessageLength = 500
)

// personas maps a notification family to its voice.
var personas = map[models.Family]string{
	models.FamilyHannah:     "You are Hannah, a warm, scripture-grounded spiritual companion.",
	models.FamilyChefDaniel: "You are Chef Daniel, a cheerful faith-minded nutrition coach.",
	models.FamilyCoachDavid: "You are Coach David, an encouraging fitness mentor with a pastoral heart.",
	models.FamilyReflection: "You write short, contemplative daily reflections rooted in scripture.",
}

// categoryBriefs describes what each category's content should cover.
var categoryBriefs = map[models.Category]string{
	models.CategoryMorning:       "Write a short morning mindset message to start the day with intention.",
	models.CategoryMidday:        "Write a brief midday pause: one grounding thought for the middle of the day.",
	models.CategoryEvening:       "Write a gentle evening wind-down reflection on the day.",
	models.CategorySuggestion:    "Suggest one small, concrete practice the user could try today.",
	models.CategoryWeeklySummary: "Summarize the user's week of engagement as an encouraging growth note.",
	models.CategoryMonthlyReport: "Write a monthly progress report celebrating consistency and naming one gentle challenge.",
}

// OpenAIProvider implements ContentGenerator using OpenAI's API.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support.
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Generate produces notification content for one user and category.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Content, error) {
	prompt := buildPrompt(req)
	persona, ok := personas[req.Family]
	if !ok {
		return nil, fmt.Errorf("unknown family %q", req.Family)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(persona + ` Respond with valid JSON only: {"title": "...", "message": "..."}.`),
		openai.UserMessage(prompt),
	}
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	requestID := ExtractRequestID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "generate_content"),
			zap.String("model", p.model),
			zap.String("family", string(req.Family)),
			zap.String("category", string(req.Category)),
			zap.String("user_id", req.UserID.String()),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "generate_content"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Duration("latency_ms", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to generate content: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	raw := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "generate_content"),
			zap.String("model", p.model),
			zap.String("response_preview", SanitizeResponse(raw, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return parseContent(raw)
}

// buildPrompt assembles the user message from the category brief and an
// optional tracker summary for personalization.
func buildPrompt(req Request) string {
	var b strings.Builder
	brief, ok := categoryBriefs[req.Category]
	if !ok {
		brief = categoryBriefs[models.CategoryMorning]
	}
	b.WriteString(brief)
	b.WriteString(" Keep the title under 10 words and the message under 3 sentences.")

	if t := req.Tracker; t != nil {
		fmt.Fprintf(&b, "\n\nContext about the user: %d-day streak (longest %d), %d total sessions, engagement level %s.",
			t.CurrentStreak, t.LongestStreak, t.TotalSessions, t.EngagementLevel)
		if len(t.SpiritualThemeHistory) > 0 {
			fmt.Fprintf(&b, " Recent themes: %s.", strings.Join(t.SpiritualThemeHistory, ", "))
		}
		if len(t.EmotionalToneHistory) > 0 {
			fmt.Fprintf(&b, " Recent emotional tones: %s.", strings.Join(t.EmotionalToneHistory, ", "))
		}
	}
	return b.String()
}

// parseContent validates the structured response, salvaging a JSON object
// embedded in surrounding text when needed. A response that cannot be
// parsed is a permanent error; retrying the same prompt rarely helps.
func parseContent(raw string) (*Content, error) {
	var c Content
	candidate := raw
	if err := json.Unmarshal([]byte(candidate), &c); err != nil {
		if len(candidate) > 0 && candidate[0] != '{' {
			start := bytes.Index([]byte(candidate), []byte("{"))
			end := bytes.LastIndex([]byte(candidate), []byte("}"))
			if start != -1 && end != -1 && end > start {
				candidate = candidate[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(candidate), &c); err != nil {
			return nil, fmt.Errorf("failed to parse content response: %w", err)
		}
	}

	c.Title = strings.TrimSpace(c.Title)
	c.Message = strings.TrimSpace(c.Message)
	if c.Title == "" || c.Message == "" {
		return nil, fmt.Errorf("content response missing title or message")
	}
	c.Title = truncate(c.Title, maxTitleLength)
	c.Message = truncate(c.Message, maxMessageLength)
	return &c, nil
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

var _ ContentGenerator = (*OpenAIProvider)(nil)
