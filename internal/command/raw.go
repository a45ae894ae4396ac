package command

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Sentinels around a raw text block. The text between them is taken
// literally and becomes a JSON string value:
//
//	{"write": {"filename": "/x.py", "text": START_RAW
//	print("hi")
//	END_RAW }}
const (
	RawStart = "START_RAW"
	RawEnd   = "END_RAW"
)

// ExpandRaw rewrites raw text blocks in a complete document into escaped
// JSON strings. Lines outside a block pass through unchanged. A block left
// open at the end of the document is closed there. A document that already
// reads as JSON is returned as is, so a sentinel inside a string is left
// alone. If the result still does not read as JSON, the whole original
// document is returned as a single JSON string literal.
func ExpandRaw(text string) string {
	if readsAsJSON(text) {
		return text
	}
	expanded := expandRawBlocks(text)
	if readsAsJSON(expanded) {
		return expanded
	}
	return quoteJSON(text)
}

func readsAsJSON(text string) bool {
	if json.Valid([]byte(text)) {
		return true
	}
	_, err := parseTolerant(text)
	return err == nil
}

func expandRawBlocks(text string) string {
	if !strings.Contains(text, RawStart) {
		return text
	}

	var (
		out   strings.Builder
		raw   []string
		inRaw bool
	)

	for _, line := range strings.SplitAfter(text, "\n") {
		body := strings.TrimSuffix(line, "\n")
		newline := line[len(body):]

		if inRaw {
			end := strings.Index(body, RawEnd)
			if end < 0 {
				raw = append(raw, body)
				continue
			}
			if strings.TrimSpace(body[:end]) != "" {
				raw = append(raw, body[:end])
			}
			out.WriteString(quoteJSON(strings.Join(raw, "\n")))
			inRaw = false
			body = body[end+len(RawEnd):]
		}

		// Outside a block; a line may hold several blocks.
		for {
			start := strings.Index(body, RawStart)
			if start < 0 {
				out.WriteString(body)
				out.WriteString(newline)
				break
			}
			out.WriteString(body[:start])
			body = body[start+len(RawStart):]

			end := strings.Index(body, RawEnd)
			if end < 0 {
				inRaw = true
				raw = raw[:0]
				if strings.TrimSpace(body) != "" {
					raw = append(raw, strings.TrimLeft(body, " \t"))
				}
				break
			}
			out.WriteString(quoteJSON(strings.TrimSpace(body[:end])))
			body = body[end+len(RawEnd):]
		}
	}

	if inRaw {
		out.WriteString(quoteJSON(strings.Join(raw, "\n")))
	}
	return out.String()
}

// quoteJSON renders s as a JSON string literal without HTML escaping.
func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
