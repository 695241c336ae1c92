package llmprovider

import (
	"context"

	"capture-recall/pkg/deepseek"
	"capture-recall/pkg/gemini"
)

// deepseekAdapter maps the DeepSeek client onto Provider.
type deepseekAdapter struct {
	client *deepseek.Client
}

// NewDeepSeekAdapter wraps a DeepSeek client as a Provider.
func NewDeepSeekAdapter(client *deepseek.Client) Provider {
	return &deepseekAdapter{client: client}
}

func (a *deepseekAdapter) Name() string  { return "deepseek" }
func (a *deepseekAdapter) Model() string { return a.client.ModelName() }

func (a *deepseekAdapter) Generate(ctx context.Context, req *Request) (*Response, error) {
	messages := make([]deepseek.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, deepseek.Message{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, deepseek.Message{Role: msg.Role, Content: msg.Content})
	}

	resp, err := a.client.ChatCompletion(ctx, deepseek.ChatRequest{
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Text:         resp.Choices[0].Message.Content,
		ProviderName: a.Name(),
		ModelName:    a.Model(),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// geminiAdapter maps the Gemini client onto Provider.
type geminiAdapter struct {
	client *gemini.Client
}

// NewGeminiAdapter wraps a Gemini client as a Provider.
func NewGeminiAdapter(client *gemini.Client) Provider {
	return &geminiAdapter{client: client}
}

func (a *geminiAdapter) Name() string  { return "gemini" }
func (a *geminiAdapter) Model() string { return a.client.ModelName() }

func (a *geminiAdapter) Generate(ctx context.Context, req *Request) (*Response, error) {
	greq := gemini.GenerateRequest{}
	if req.System != "" {
		greq.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: req.System}}}
	}
	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		greq.Contents = append(greq.Contents, gemini.Content{
			Role:  role,
			Parts: []gemini.Part{{Text: msg.Content}},
		})
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		greq.GenerationConfig = &gemini.GenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	resp, err := a.client.GenerateContent(ctx, greq)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Text:         resp.Candidates[0].Content.Parts[0].Text,
		ProviderName: a.Name(),
		ModelName:    a.Model(),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokenCount,
			OutputTokens: resp.Usage.CandidatesTokenCount,
			TotalTokens:  resp.Usage.TotalTokenCount,
		},
	}, nil
}
