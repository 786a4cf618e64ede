package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"cv-backend/internal/cvs"
	"cv-backend/internal/llm"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// extractionPayload is the provider's JSON reply for an extraction call. The
// error/reason pair is how the model reports an unextractable document.
type extractionPayload struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`

	FullName             *string                  `json:"full_name"`
	Email                *string                  `json:"email"`
	Phone                *string                  `json:"phone"`
	Location             *string                  `json:"location"`
	City                 *string                  `json:"city"`
	Country              *string                  `json:"country"`
	Age                  *int                     `json:"age"`
	Gender               *string                  `json:"gender"`
	LinkedInURL          *string                  `json:"linkedin_url"`
	Education            []cvs.EducationEntry     `json:"education"`
	Experience           []cvs.ExperienceEntry    `json:"experience"`
	Certifications       []cvs.CertificationEntry `json:"certifications"`
	Internships          []cvs.ExperienceEntry    `json:"internships"`
	TechnicalSkills      []string                 `json:"technical_skills"`
	SoftSkills           []string                 `json:"soft_skills"`
	Tools                []string                 `json:"tools"`
	Languages            []string                 `json:"languages"`
	Keywords             []string                 `json:"keywords"`
	TotalExperienceYears float64                  `json:"total_experience_years"`
	SeniorityLevel       *string                  `json:"seniority_level"`
	Industry             *string                  `json:"industry"`
	ConfidenceScore      float64                  `json:"confidence_score"`
}

// ExtractCV runs one structured extraction call. A syntactically invalid reply
// gets one repair round-trip before the call fails.
func (c *Client) ExtractCV(ctx context.Context, text string, cfg llm.Config) (llm.Extraction, error) {
	model := c.modelFor(cfg)
	raw, usage, err := c.chatOnce(ctx, model, BuildExtractionPrompt(text), true)
	if err != nil {
		return llm.Extraction{}, err
	}
	logUsage(model, "extract", usage)

	if !json.Valid(raw) {
		raw, usage, err = c.chatOnce(ctx, model, BuildFixJSONPrompt(raw), true)
		if err != nil {
			return llm.Extraction{}, err
		}
		logUsage(model, "extract-fix", usage)
		if !json.Valid(raw) {
			return llm.Extraction{}, fmt.Errorf("invalid JSON from OpenAI")
		}
	}

	var payload extractionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return llm.Extraction{}, fmt.Errorf("openai extraction parse: %w", err)
	}
	if payload.Error {
		reason := payload.Reason
		if reason == "" {
			reason = "provider reported unextractable document"
		}
		return llm.Extraction{}, &llm.ExtractionFailedError{Reason: reason}
	}

	data := payload.toData()
	confidence := payload.ConfidenceScore
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}
	return llm.Extraction{
		Data:       data,
		Confidence: confidence,
		Provider:   "openai",
		Model:      model,
	}, nil
}

// GenerateSummary produces a short recruiter-facing paragraph.
func (c *Client) GenerateSummary(ctx context.Context, data cvs.ExtractedData, cfg llm.Config) (string, error) {
	model := c.modelFor(cfg)
	raw, usage, err := c.chatOnce(ctx, model, BuildSummaryPrompt(data), false)
	if err != nil {
		return "", err
	}
	logUsage(model, "summary", usage)
	summary := strings.TrimSpace(string(raw))
	if summary == "" {
		return "", fmt.Errorf("openai summary empty content")
	}
	return summary, nil
}

func (c *Client) modelFor(cfg llm.Config) string {
	if strings.TrimSpace(cfg.Model) != "" {
		return cfg.Model
	}
	return c.model
}

func (c *Client) chatOnce(ctx context.Context, model string, messages []Message, jsonMode bool) ([]byte, *chatResponseUsage, error) {
	temp := float32(0)
	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	reqBody := chatRequest{
		Model:    model,
		Messages: reqMessages,
	}
	reqBody.Temperature = &temp
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, nil, fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, nil, fmt.Errorf("openai response empty content")
	}
	return []byte(content), toUsage(parsed.Usage), nil
}

func (p extractionPayload) toData() cvs.ExtractedData {
	return cvs.ExtractedData{
		FullName:             deref(p.FullName),
		Email:                deref(p.Email),
		Phone:                deref(p.Phone),
		Location:             deref(p.Location),
		City:                 deref(p.City),
		Country:              deref(p.Country),
		Age:                  derefInt(p.Age),
		Gender:               deref(p.Gender),
		LinkedInURL:          deref(p.LinkedInURL),
		Education:            p.Education,
		Experience:           p.Experience,
		Certifications:       p.Certifications,
		Internships:          p.Internships,
		TechnicalSkills:      p.TechnicalSkills,
		SoftSkills:           p.SoftSkills,
		Tools:                p.Tools,
		Languages:            p.Languages,
		Keywords:             p.Keywords,
		TotalExperienceYears: p.TotalExperienceYears,
		SeniorityLevel:       deref(p.SeniorityLevel),
		Industry:             deref(p.Industry),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

type chatResponseUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func toUsage(raw *struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}) *chatResponseUsage {
	if raw == nil {
		return nil
	}
	return &chatResponseUsage{
		PromptTokens:     raw.PromptTokens,
		CompletionTokens: raw.CompletionTokens,
		TotalTokens:      raw.TotalTokens,
	}
}

func logUsage(model, phase string, usage *chatResponseUsage) {
	if usage == nil {
		log.Printf("llm response model=%s phase=%s", model, phase)
		return
	}
	log.Printf("llm response model=%s phase=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, phase, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

var _ llm.Client = (*Client)(nil)
