package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DeepSeekBaseURL OpenAI-совместимый API DeepSeek
	DeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultModel    = "deepseek-chat"

	defaultTimeout = 60 * time.Second
)

// Config настройки клиента
type Config struct {
	APIKey        string
	BaseURL       string // пусто: DeepSeek
	Model         string // пусто: DefaultModel
	FallbackModel string // пусто: без второй попытки
	Timeout       time.Duration
}

// Client клиент OpenAI-совместимого chat completions API
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	fallbackModel string
	httpClient    *http.Client
}

// Message сообщение для чата
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest запрос к API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse ответ от API
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient создаёт новый клиент
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DeepSeekBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       baseURL,
		model:         model,
		fallbackModel: cfg.FallbackModel,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Model возвращает основную модель
func (c *Client) Model() string {
	return c.model
}

// Chat отправляет сообщения и получает ответ; при ошибке основной модели пробует запасную
func (c *Client) Chat(ctx context.Context, messages []Message, temperature float64) (string, error) {
	models := []string{c.model}
	if c.fallbackModel != "" && c.fallbackModel != c.model {
		models = append(models, c.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		result, err := c.chatWithModel(ctx, messages, temperature, model)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// chatWithModel выполняет запрос к конкретной модели
func (c *Client) chatWithModel(ctx context.Context, messages []Message, temperature float64, model string) (string, error) {
	req := ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   1024,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса (%s): %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("ошибка API (%s): HTTP %d", model, resp.StatusCode)
		}
		return "", fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("ошибка API (%s): %s", model, chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ошибка API (%s): HTTP %d", model, resp.StatusCode)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("пустой ответ от API")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// SimpleChat простой запрос с системным и одним пользовательским сообщением
func (c *Client) SimpleChat(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}
	return c.Chat(ctx, messages, 0.7)
}
