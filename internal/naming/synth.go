package naming

import "strings"

// Separator joins name parts. The full token, padding included, doubles as
// the marker that a file was named by this tool (see Resolve).
type Separator string

const (
	// PhotoSeparator is a full-width vertical bar, rare in camera strings.
	PhotoSeparator Separator = " ｜ "
	// VideoSeparator is an ASCII vertical bar.
	VideoSeparator Separator = " | "
)

// sanitizer replaces characters that are illegal or troublesome in
// filenames. Path separators are included so a name can never leave its
// directory.
var sanitizer = strings.NewReplacer(
	"?", "_",
	"<", "_",
	">", "_",
	"*", "_",
	`"`, "_",
	"'", "_",
	"&", "_",
	"%", "_",
	"#", "_",
	"+", "_",
	"/", "_",
	`\`, "_",
)

// Sanitize replaces forbidden filename characters with underscores.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

// Synthesize joins the part values with sep and sanitizes the result.
// An empty Parts yields "", which callers must treat as "not enough
// metadata" rather than renaming to a bare extension.
func Synthesize(parts Parts, sep Separator) string {
	if len(parts) == 0 {
		return ""
	}
	return Sanitize(strings.Join(parts.Values(), string(sep)))
}
