// Package ai provides factory functions for creating embedding and LLM
// service adapters.
package ai

import (
	"fmt"

	hashembed "github.com/docuflow-labs/docuflow/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/docuflow-labs/docuflow/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/docuflow-labs/docuflow/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/docuflow-labs/docuflow/internal/adapters/driven/llm/ollama"
	openaillm "github.com/docuflow-labs/docuflow/internal/adapters/driven/llm/openai"
	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

// CreateEmbeddingService creates the embedding service selected by
// configuration. One instance is shared by ingestion and query paths.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.ProviderHash, "":
		return hashembed.NewEmbeddingService(hashembed.Config{
			Dimensions: settings.Dimensions,
		}), nil

	case domain.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service selected by configuration.
// Returns nil when no provider is configured; callers treat a nil
// service as refinement and generation disabled.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.ProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.ProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
