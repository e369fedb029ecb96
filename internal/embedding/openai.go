package embedding

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAI talks to any OpenAI-compatible embeddings endpoint.
type OpenAI struct {
	embedder embeddings.Embedder
}

func NewOpenAI(baseURL, apiKey, model string) (*OpenAI, error) {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if apiKey == "" {
		// local OpenAI-compatible servers accept any token
		apiKey = "none"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	return &OpenAI{embedder: embedder}, nil
}

func (o *OpenAI) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, errEmptyVector
	}
	return vecs[0], nil
}
