package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/media-rename/internal/auth"
	"github.com/fpang/media-rename/internal/chat"
)

// InitGeminiClient resolves the API key, creates a Gemini client and, when
// validate is set, probes the key with one cheap call against model.
// Exits fatally on failure.
func InitGeminiClient(ctx context.Context, apiKey, model string, validate bool) *genai.Client {
	key, err := auth.GetAPIKey(apiKey)
	if err != nil {
		HandleValidationError(err)
	}

	client, err := chat.NewGeminiClient(ctx, key)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}

	log.Info().Str("model", model).Msg("Gemini client initialized")

	if !validate {
		log.Debug().Msg("API key validation skipped")
		return client
	}

	if err := auth.ValidateAPIKey(ctx, client, model); err != nil {
		HandleValidationError(err)
	}

	log.Info().Msg("API key validation complete - ready for descriptions")

	return client
}
