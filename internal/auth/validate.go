package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/media-rename/internal/metrics"
)

// ValidateAPIKey makes one minimal call against model before a describing
// batch starts, so a bad key fails the run up front rather than on every file.
func ValidateAPIKey(ctx context.Context, client *genai.Client, model string) error {
	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	var verr *ValidationError
	switch {
	case err != nil:
		verr = Classify(err)
	case resp == nil || len(resp.Candidates) == 0:
		verr = &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
	}

	result := "success"
	if verr != nil {
		result = verr.Type.String()
	}
	metrics.New(metricsNamespace).
		Dimension("Result", result).
		Metric("ApiKeyValidationMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("ApiKeyValidationResult").
		Flush()

	if verr != nil {
		log.Error().Err(verr).Str("model", model).Str("result", result).Dur("duration", elapsed).Msg("API key validation failed")
		return verr
	}

	log.Info().Str("model", model).Dur("duration", elapsed).Msg("API key validated")
	return nil
}

const metricsNamespace = "MediaRename"
