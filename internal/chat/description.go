package chat

// description.go asks Gemini for a short phrase describing one image. The
// phrase becomes the last part of a renamed file, so the system instruction
// keeps it short and free of punctuation.

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/media-rename/internal/assets"
)

// maxDescriptionTokens bounds the reply; a file name phrase is a few words.
const maxDescriptionTokens = 64

// Describer sends single-image description requests to one Gemini model.
type Describer struct {
	client *genai.Client
	model  string
}

// NewDescriber returns a Describer using model, or the resolved default
// when model is empty.
func NewDescriber(client *genai.Client, model string) *Describer {
	if model == "" {
		model = GetModelName()
	}
	return &Describer{client: client, model: model}
}

// Model returns the Gemini model ID in use.
func (d *Describer) Model() string { return d.model }

// Describe implements the vision interface used by the describe package.
func (d *Describer) Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	return DescribeImage(ctx, d.client, d.model, image, mimeType, prompt)
}

// DescribeImage sends one inline image with prompt and returns the raw
// reply text. The SDK base64-encodes the bytes for transport.
func DescribeImage(ctx context.Context, client *genai.Client, modelName string, image []byte, mimeType, prompt string) (string, error) {
	if client == nil {
		return "", fmt.Errorf("no Gemini client configured")
	}
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.DescriptionSystemPrompt}},
		},
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: maxDescriptionTokens,
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		{Text: prompt},
	}

	log.Debug().
		Str("model", modelName).
		Int("image_bytes", len(image)).
		Int("prompt_length", len(prompt)).
		Msg("Starting Gemini API call for image description")

	callStart := time.Now()
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := client.Models.GenerateContent(ctx, modelName, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("received empty response from Gemini API")
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Gemini API response received for image description")

	if responseText == "" {
		return "", fmt.Errorf("Gemini returned no text")
	}
	return responseText, nil
}
