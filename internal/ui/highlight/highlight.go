package highlight

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter colors code and data snippets for terminal output
type Highlighter struct {
	enabled   bool
	formatter chroma.Formatter
	style     *chroma.Style
}

// New creates a Highlighter. When disabled, all methods pass text through
// unchanged.
func New(enabled bool) *Highlighter {
	return &Highlighter{
		enabled:   enabled,
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("monokai"),
	}
}

// Highlight applies syntax highlighting to a code string
func (h *Highlighter) Highlight(code, language string) string {
	if !h.enabled {
		return code
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// JSON highlights a JSON payload, used for verbose tool argument dumps
func (h *Highlighter) JSON(data string) string {
	return h.Highlight(data, "json")
}

// codeBlockRegex matches markdown code blocks with optional language
var codeBlockRegex = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// MarkdownCodeBlocks highlights fenced code blocks inside answer text,
// stripping the fence markers
func (h *Highlighter) MarkdownCodeBlocks(text string) string {
	if !h.enabled {
		return text
	}

	return codeBlockRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}

		language := parts[1]
		code := strings.TrimSuffix(parts[2], "\n")

		return h.Highlight(code, language)
	})
}
