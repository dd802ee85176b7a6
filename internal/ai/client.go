// Package ai calls an external completions-style text-generation API for
// course recommendations and syllabus drafts.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TextGenerator produces AI-assisted text. Failures surface as opaque
// upstream errors.
type TextGenerator interface {
	RecommendCourses(ctx context.Context, interests []string) (string, error)
	GenerateSyllabus(ctx context.Context, topic string) (string, error)
}

// Config for the completions endpoint
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

type client struct {
	config Config
	http   *http.Client
}

// NewClient creates a TextGenerator backed by an HTTP completions API
func NewClient(config Config) TextGenerator {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	return &client{
		config: config,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *client) RecommendCourses(ctx context.Context, interests []string) (string, error) {
	prompt := "Recommend some university courses based on these interests: " + strings.Join(interests, ", ")
	return c.complete(ctx, prompt, 100)
}

func (c *client) GenerateSyllabus(ctx context.Context, topic string) (string, error) {
	prompt := "Generate a detailed syllabus for a course on the topic: " + topic
	return c.complete(ctx, prompt, 300)
}

type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

func (c *client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:     c.config.Model,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("text generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("text generation API returned status %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode text generation response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("text generation API returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Text), nil
}
