// Prompt templates are stored as text files under prompts/ and embedded at compile time.

package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// DescriptionSystemPrompt constrains the model to a filename-friendly phrase.
//
//go:embed prompts/description-system.txt
var DescriptionSystemPrompt string

//go:embed prompts/description-user.txt
var descriptionUserTemplate string

// template.Must panics on malformed templates at program startup rather than at call time.
var descriptionPromptTmpl = template.Must(template.New("description").Parse(descriptionUserTemplate))

// PromptData holds the dynamic data injected into the description template.
type PromptData struct {
	// Prompt is the user's request, or the default for the media kind.
	Prompt string
	// Known lists name parts already derived from metadata. May be empty.
	Known string
}

// RenderDescriptionPrompt renders the per-file description request.
func RenderDescriptionPrompt(prompt, known string) string {
	var buf bytes.Buffer
	_ = descriptionPromptTmpl.Execute(&buf, PromptData{Prompt: prompt, Known: known})
	return buf.String()
}
