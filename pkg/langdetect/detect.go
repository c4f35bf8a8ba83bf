// Package langdetect decides which clean up language a document belongs to.
// It uses go-enry to classify files by name, shebang, and content, and maps
// the result onto the languages the parsers understand.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Languages understood by the built-in parsers.
const (
	JavaScript = "javascript"
	Markdown   = "markdown"
	Text       = "text"
)

// DetectFile returns the language of the file at path with the given content.
// The file name is trusted first; content is only consulted when the name is
// ambiguous or has no known extension. Returns Text for everything the
// parsers do not handle.
func DetectFile(path string, content []byte) string {
	name := filepath.Base(path)

	if lang, safe := enry.GetLanguageByExtension(name); safe {
		return normalize(lang)
	}
	if lang, safe := enry.GetLanguageByFilename(name); safe {
		return normalize(lang)
	}
	if filepath.Ext(name) != "" {
		// Extension shared by several languages; let the heuristics decide.
		if lang := enry.GetLanguage(name, content); lang != "" {
			return normalize(lang)
		}
	}
	return Detect(content)
}

// Detect returns the language for content with no file name.
// Returns Text if detection fails or confidence is low.
func Detect(content []byte) string {
	if len(content) == 0 {
		return Text
	}

	// Shebang lines are the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if lang := detectByPattern(content); lang != "" {
		return lang
	}

	candidates := []string{"JavaScript", "Markdown", "Text"}
	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}

	return Text
}

// detectByPattern checks for patterns that are highly indicative.
func detectByPattern(content []byte) string {
	if lang := detectMarkdown(content); lang != "" {
		return lang
	}
	return detectJavaScript(string(content))
}

// detectMarkdown looks for an ATX heading or a fenced code block at the
// start of a line.
func detectMarkdown(content []byte) string {
	for line := range bytes.SplitSeq(content, []byte("\n")) {
		trimmed := bytes.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		if bytes.HasPrefix(trimmed, []byte("# ")) || bytes.HasPrefix(trimmed, []byte("## ")) ||
			bytes.HasPrefix(trimmed, []byte("```")) {
			return Markdown
		}
	}
	return ""
}

// detectJavaScript checks for JavaScript patterns.
func detectJavaScript(contentStr string) string {
	if strings.Contains(contentStr, "=>") ||
		strings.Contains(contentStr, "function ") ||
		strings.Contains(contentStr, "console.log") ||
		strings.Contains(contentStr, "require(") {
		return JavaScript
	}
	return ""
}

// normalize converts go-enry language names to clean up languages.
func normalize(lang string) string {
	switch lang {
	case "JavaScript", "JSX":
		return JavaScript
	case "Markdown":
		return Markdown
	default:
		return Text
	}
}
