// Package textutil cleans free-form model output before it is used in file
// names.
package textutil

import (
	"strings"
	"unicode"
)

// StripMarkdownFences removes ```lang ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text if no fences are found.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return strings.Trim(text, "`")
	}

	startIdx := 1 // skip the opening ``` line
	endIdx := len(lines) - 1

	// Find the closing ```
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}

	return strings.Join(lines[startIdx:endIdx], "\n")
}

// quotePairs are stripped when they wrap the whole answer.
var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"‘", "’"},
	{"「", "」"},
	{"『", "』"},
	{"《", "》"},
}

// CleanDescription turns a model reply into a single-line phrase: fences
// and wrapping quotes are removed, line breaks and control characters
// collapse to single spaces, and trailing sentence punctuation is dropped.
func CleanDescription(text string) string {
	text = StripMarkdownFences(text)

	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	text = strings.Join(strings.Fields(text), " ")

	for changed := true; changed; {
		changed = false
		for _, q := range quotePairs {
			if len(text) >= len(q[0])+len(q[1]) && strings.HasPrefix(text, q[0]) && strings.HasSuffix(text, q[1]) {
				text = strings.TrimSpace(text[len(q[0]) : len(text)-len(q[1])])
				changed = true
			}
		}
	}

	return strings.TrimRight(text, ".。!！?？,，;；:：")
}
