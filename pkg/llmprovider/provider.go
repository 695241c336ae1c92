package llmprovider

import "context"

// Provider is a normalized text-generation backend.
type Provider interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	Name() string
	Model() string
}

// Message is a conversation message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Request is a normalized generation request.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response is a normalized generation response.
type Response struct {
	Text         string
	ProviderName string
	ModelName    string
	Usage        Usage
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
