package embedding

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New builds a client for the configured provider. It returns a nil client for "none".
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderOpenAI:
		backend, err = NewOpenAI(opts.BaseURL, opts.APIKey, opts.Model)
	case ProviderGemini:
		backend, err = NewGemini(ctx, opts.APIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s embedder: %w", opts.Provider, err)
	}
	return NewClient(backend, opts.Timeout, logger), nil
}
